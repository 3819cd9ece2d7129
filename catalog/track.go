package catalog

import (
	"fmt"
	"path/filepath"
)

// Tempos is the fixed set of quantized tempos, in ascending order.
// Every track in the catalog is produced at exactly one of these.
var Tempos = []int{84, 94, 102}

// NumKeys is the size of the circular harmonic key space.
const NumKeys = 12

// Section is one of the two audio segments of a track.
type Section string

const (
	SectionLead Section = "lead" // 16 beats
	SectionBody Section = "body" // 64 beats
)

// Beats returns the beat length of a section.
func (s Section) Beats() float64 {
	if s == SectionLead {
		return 16
	}
	return 64
}

// Other returns the section that chains after this one.
func (s Section) Other() Section {
	if s == SectionLead {
		return SectionBody
	}
	return SectionLead
}

// Track is an immutable catalog record.
type Track struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	BPM    int    `json:"bpm"`
	Key    int    `json:"key"` // 1..12, circular
}

// Seconds converts beats at this track's tempo to seconds.
func (t *Track) Seconds(beats float64) float64 {
	return beats / (float64(t.BPM) / 60)
}

// BeatsOf converts seconds at this track's tempo to beats.
func (t *Track) BeatsOf(seconds float64) float64 {
	return seconds * float64(t.BPM) / 60
}

// SectionSeconds returns the full duration of a section at this track's tempo.
func (t *Track) SectionSeconds(s Section) float64 {
	return t.Seconds(s.Beats())
}

// AssetPath returns the audio file for one section of this track:
// an 8-digit zero-padded id plus the section suffix.
func (t *Track) AssetPath(dir string, s Section) string {
	return filepath.Join(dir, fmt.Sprintf("%08d_%s.wav", t.ID, s))
}

// KeyDistance is the circular distance between two harmonic keys.
// distance(1,12)=1, distance(1,7)=6 (the maximum), distance(k,k)=0.
func KeyDistance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	d = d % NumKeys
	if d > NumKeys/2 {
		d = NumKeys - d
	}
	return d
}

// ValidTempo reports whether bpm is in the fixed tempo set.
func ValidTempo(bpm int) bool {
	for _, t := range Tempos {
		if t == bpm {
			return true
		}
	}
	return false
}
