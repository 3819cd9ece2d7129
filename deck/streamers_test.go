package deck

import (
	"math"
	"testing"

	"github.com/gopxl/beep/v2"
)

// constStreamer streams a constant value forever.
type constStreamer struct{ v float64 }

func (c constStreamer) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		samples[i] = [2]float64{c.v, c.v}
	}
	return len(samples), true
}

func (c constStreamer) Err() error { return nil }

// makeBuffer builds a buffer whose left-channel samples are the given values.
func makeBuffer(vals []float64) *beep.Buffer {
	samples := make([][2]float64, len(vals))
	for i, v := range vals {
		samples[i] = [2]float64{v, v}
	}
	buf := beep.NewBuffer(beep.Format{SampleRate: SampleRate, NumChannels: 2, Precision: 2})
	buf.Append(&memStreamer{samples: samples})
	return buf
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-3 }

func TestSlotStreamsSilenceWhenEmpty(t *testing.T) {
	s := &slot{}
	out := make([][2]float64, 8)
	out[3] = [2]float64{0.5, 0.5} // stale data must be cleared

	n, ok := s.Stream(out)
	if n != 8 || !ok {
		t.Fatalf("Stream = %d %v, want 8 true", n, ok)
	}
	for i, frame := range out {
		if frame != ([2]float64{}) {
			t.Errorf("frame %d = %v, want silence", i, frame)
		}
	}
}

func TestSlotPadsAndClearsExhaustedSource(t *testing.T) {
	s := &slot{src: &memStreamer{samples: [][2]float64{{0.5, 0.5}, {0.5, 0.5}}}}
	out := make([][2]float64, 6)

	n, ok := s.Stream(out)
	if n != 6 || !ok {
		t.Fatalf("Stream = %d %v, want 6 true", n, ok)
	}
	if !approx(out[0][0], 0.5) || !approx(out[1][0], 0.5) {
		t.Errorf("source frames not streamed: %v %v", out[0], out[1])
	}
	for i := 2; i < 6; i++ {
		if out[i] != ([2]float64{}) {
			t.Errorf("frame %d = %v, want padded silence", i, out[i])
		}
	}
	// Source runs out mid-buffer: cleared no later than the next call.
	s.Stream(out)
	if s.src != nil {
		t.Error("exhausted source not cleared")
	}
}

func TestLoopRangeWraps(t *testing.T) {
	buf := makeBuffer([]float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7})
	l := newLoopRange(buf, 2, 5)

	out := make([][2]float64, 9)
	n, ok := l.Stream(out)
	if n != 9 || !ok {
		t.Fatalf("Stream = %d %v, want 9 true", n, ok)
	}
	want := []float64{0.2, 0.3, 0.4, 0.2, 0.3, 0.4, 0.2, 0.3, 0.4}
	for i, w := range want {
		if !approx(out[i][0], w) {
			t.Errorf("sample %d = %.4f, want %.4f", i, out[i][0], w)
		}
	}
}

func TestLoopRangeClampsBadWindow(t *testing.T) {
	buf := makeBuffer([]float64{0.1, 0.2, 0.3, 0.4})

	// Inverted window falls back to the whole buffer.
	l := newLoopRange(buf, 3, 1)
	if l.from != 0 || l.to != buf.Len() {
		t.Errorf("window = [%d,%d), want [0,%d)", l.from, l.to, buf.Len())
	}

	// Out-of-range bounds are clamped.
	l = newLoopRange(buf, -2, 100)
	if l.from != 0 || l.to != buf.Len() {
		t.Errorf("window = [%d,%d), want [0,%d)", l.from, l.to, buf.Len())
	}
}

func TestGainRampFadesAndCompletes(t *testing.T) {
	fired := 0
	g := newGainRamp(constStreamer{v: 1.0}, 4, func() { fired++ })

	out := make([][2]float64, 4)
	n, ok := g.Stream(out)
	if n != 4 {
		t.Fatalf("Stream n = %d, want 4", n)
	}
	if ok {
		t.Error("ramp should report done once fully elapsed")
	}
	want := []float64{1.0, 0.75, 0.5, 0.25}
	for i, w := range want {
		if !approx(out[i][0], w) {
			t.Errorf("sample %d gain = %.4f, want %.4f", i, out[i][0], w)
		}
	}
	if fired != 1 {
		t.Errorf("onDone fired %d times, want 1", fired)
	}

	// Done ramps stay silent and never re-fire.
	n, ok = g.Stream(out)
	if n != 0 || ok {
		t.Errorf("post-done Stream = %d %v, want 0 false", n, ok)
	}
	if fired != 1 {
		t.Errorf("onDone re-fired: %d", fired)
	}
}

func TestRateBrakeCompletes(t *testing.T) {
	fired := 0
	b := newRateBrake(constStreamer{v: 0.5}, SampleRate, 0.01, func() { fired++ })

	out := make([][2]float64, 128)
	for i := 0; i < 100; i++ {
		if _, ok := b.Stream(out); !ok {
			break
		}
	}
	if fired != 1 {
		t.Fatalf("onDone fired %d times, want 1", fired)
	}
	if n, ok := b.Stream(out); n != 0 || ok {
		t.Errorf("post-done Stream = %d %v, want 0 false", n, ok)
	}
}
