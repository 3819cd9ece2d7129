// Package deck owns beat-relative playback for the four deck slots. It
// schedules audio against the speaker clock, chains lead/body sections
// automatically, and implements roll, reverse, spindown, fade and
// cross-deck sync on top of beep streamer composition.
package deck

import (
	"sync"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// Sink is where the engine's master stream lands. SpeakerSink drives the
// real output device; HeadlessSink serves tests.
type Sink interface {
	Init(sr beep.SampleRate, bufLen int) error
	Play(s beep.Streamer)

	// Lock/Unlock guard mutation of live streamers against the render
	// goroutine, mirroring speaker.Lock semantics.
	Lock()
	Unlock()

	Close()
}

// SpeakerSink is the real output backed by the beep speaker.
type SpeakerSink struct{}

func (SpeakerSink) Init(sr beep.SampleRate, bufLen int) error {
	return speaker.Init(sr, bufLen)
}

func (SpeakerSink) Play(s beep.Streamer) { speaker.Play(s) }
func (SpeakerSink) Lock()                { speaker.Lock() }
func (SpeakerSink) Unlock()              { speaker.Unlock() }
func (SpeakerSink) Close()               { speaker.Close() }

// HeadlessSink renders nothing. Tests drive its stream manually with Pull.
type HeadlessSink struct {
	mu     sync.Mutex
	stream beep.Streamer
}

func (h *HeadlessSink) Init(sr beep.SampleRate, bufLen int) error { return nil }

func (h *HeadlessSink) Play(s beep.Streamer) {
	h.mu.Lock()
	h.stream = s
	h.mu.Unlock()
}

func (h *HeadlessSink) Lock()   { h.mu.Lock() }
func (h *HeadlessSink) Unlock() { h.mu.Unlock() }
func (h *HeadlessSink) Close()  {}

// Pull renders n frames from the master stream, standing in for the
// speaker's render loop.
func (h *HeadlessSink) Pull(n int) {
	h.mu.Lock()
	s := h.stream
	h.mu.Unlock()
	if s == nil {
		return
	}
	buf := make([][2]float64, 512)
	for n > 0 {
		chunk := buf
		if n < len(chunk) {
			chunk = chunk[:n]
		}
		h.mu.Lock()
		got, ok := s.Stream(chunk)
		h.mu.Unlock()
		if !ok || got == 0 {
			return
		}
		n -= got
	}
}
