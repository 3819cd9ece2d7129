package catalog

import (
	"math"
	"path/filepath"
	"testing"
)

func TestKeyDistanceCircular(t *testing.T) {
	cases := []struct {
		a, b, want int
	}{
		{1, 12, 1},
		{12, 1, 1},
		{1, 7, 6}, // maximum distance
		{7, 1, 6},
		{3, 3, 0},
		{2, 11, 3},
		{5, 6, 1},
	}
	for _, c := range cases {
		if got := KeyDistance(c.a, c.b); got != c.want {
			t.Errorf("KeyDistance(%d, %d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestKeyDistanceSymmetric(t *testing.T) {
	for a := 1; a <= NumKeys; a++ {
		for b := 1; b <= NumKeys; b++ {
			if KeyDistance(a, b) != KeyDistance(b, a) {
				t.Fatalf("KeyDistance(%d, %d) != KeyDistance(%d, %d)", a, b, b, a)
			}
			if d := KeyDistance(a, b); d > NumKeys/2 {
				t.Fatalf("KeyDistance(%d, %d) = %d exceeds max %d", a, b, d, NumKeys/2)
			}
		}
	}
}

func TestSectionBeats(t *testing.T) {
	if got := SectionLead.Beats(); got != 16 {
		t.Errorf("lead beats = %v, want 16", got)
	}
	if got := SectionBody.Beats(); got != 64 {
		t.Errorf("body beats = %v, want 64", got)
	}
	if SectionLead.Other() != SectionBody || SectionBody.Other() != SectionLead {
		t.Error("sections should alternate")
	}
}

func TestTrackTimingAt94(t *testing.T) {
	tr := &Track{ID: 7, BPM: 94}

	// One beat at 94 bpm is 60/94 s.
	if got, want := tr.Seconds(1.0), 1.0/(94.0/60.0); math.Abs(got-want) > 1e-9 {
		t.Errorf("Seconds(1.0) = %v, want %v", got, want)
	}

	// Body section is 64 beats.
	if got, want := tr.SectionSeconds(SectionBody), 64/(94.0/60.0); math.Abs(got-want) > 1e-9 {
		t.Errorf("SectionSeconds(body) = %v, want %v", got, want)
	}

	// Round trip.
	if got := tr.BeatsOf(tr.Seconds(17.5)); math.Abs(got-17.5) > 1e-9 {
		t.Errorf("BeatsOf(Seconds(17.5)) = %v", got)
	}
}

func TestAssetPath(t *testing.T) {
	tr := &Track{ID: 42}
	want := filepath.Join("assets", "00000042_lead.wav")
	if got := tr.AssetPath("assets", SectionLead); got != want {
		t.Errorf("AssetPath = %q, want %q", got, want)
	}
	want = filepath.Join("assets", "00000042_body.wav")
	if got := tr.AssetPath("assets", SectionBody); got != want {
		t.Errorf("AssetPath = %q, want %q", got, want)
	}
}

func TestValidTempo(t *testing.T) {
	for _, bpm := range Tempos {
		if !ValidTempo(bpm) {
			t.Errorf("ValidTempo(%d) = false", bpm)
		}
	}
	for _, bpm := range []int{0, 85, 100, 128} {
		if ValidTempo(bpm) {
			t.Errorf("ValidTempo(%d) = true", bpm)
		}
	}
}
