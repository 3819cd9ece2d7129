package deck

import (
	"math"

	"github.com/gopxl/beep/v2"
)

// slot is a deck's hot-swappable source. It is always alive: with no source
// it streams silence, so each deck can sit in the master mixer permanently.
// The source field is only touched under the sink lock.
type slot struct {
	src beep.Streamer
}

func (s *slot) Stream(samples [][2]float64) (int, bool) {
	filled := 0
	if s.src != nil {
		n, ok := s.src.Stream(samples)
		if !ok {
			s.src = nil
		}
		filled = n
	}
	for i := filled; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}
	return len(samples), true
}

func (s *slot) Err() error { return nil }

// loopRange loops a sample window of a buffer indefinitely. Used for roll:
// the window is [from, to) of the section buffer that was already playing.
type loopRange struct {
	buf      *beep.Buffer
	from, to int
	cur      beep.StreamSeeker
}

func newLoopRange(buf *beep.Buffer, from, to int) *loopRange {
	if from < 0 {
		from = 0
	}
	if to > buf.Len() {
		to = buf.Len()
	}
	if from >= to {
		from, to = 0, buf.Len()
	}
	return &loopRange{buf: buf, from: from, to: to}
}

func (l *loopRange) Stream(samples [][2]float64) (int, bool) {
	filled := 0
	for filled < len(samples) {
		if l.cur == nil {
			l.cur = l.buf.Streamer(l.from, l.to)
		}
		n, ok := l.cur.Stream(samples[filled:])
		if !ok {
			l.cur = nil
			continue
		}
		filled += n
	}
	return filled, true
}

func (l *loopRange) Err() error { return nil }

// gainRamp fades its source linearly to silence over rampLen samples, then
// reports completion once and goes silent. Implements fade-out.
type gainRamp struct {
	src     beep.Streamer
	pos     int
	rampLen int
	done    bool
	onDone  func()
}

func newGainRamp(src beep.Streamer, rampLen int, onDone func()) *gainRamp {
	if rampLen < 1 {
		rampLen = 1
	}
	return &gainRamp{src: src, rampLen: rampLen, onDone: onDone}
}

func (g *gainRamp) Stream(samples [][2]float64) (int, bool) {
	if g.done {
		return 0, false
	}
	n, ok := g.src.Stream(samples)
	for i := 0; i < n; i++ {
		gain := 1 - float64(g.pos+i)/float64(g.rampLen)
		if gain < 0 {
			gain = 0
		}
		samples[i][0] *= gain
		samples[i][1] *= gain
	}
	g.pos += n
	if !ok || g.pos >= g.rampLen {
		g.done = true
		if g.onDone != nil {
			g.onDone()
			g.onDone = nil
		}
	}
	return n, !g.done
}

func (g *gainRamp) Err() error { return g.src.Err() }

// brakeFloor is where the platter is considered stopped.
const brakeFloor = 0.02

// rateBrake ramps playback rate exponentially from 1.0 down to brakeFloor
// over its duration, then reports completion. Simulates a platter brake.
type rateBrake struct {
	res      *beep.Resampler
	pos      int // output samples rendered
	totalLen int
	done     bool
	onDone   func()
}

func newRateBrake(src beep.Streamer, sr beep.SampleRate, seconds float64, onDone func()) *rateBrake {
	total := int(seconds * float64(sr))
	if total < 1 {
		total = 1
	}
	return &rateBrake{
		res:      beep.ResampleRatio(4, 1.0, src),
		totalLen: total,
		onDone:   onDone,
	}
}

func (b *rateBrake) Stream(samples [][2]float64) (int, bool) {
	if b.done {
		return 0, false
	}
	t := float64(b.pos) / float64(b.totalLen)
	ratio := math.Exp(math.Log(brakeFloor) * t)
	b.res.SetRatio(ratio)
	n, ok := b.res.Stream(samples)
	b.pos += n
	if !ok || b.pos >= b.totalLen {
		b.done = true
		if b.onDone != nil {
			b.onDone()
			b.onDone = nil
		}
	}
	return n, !b.done
}

func (b *rateBrake) Err() error { return b.res.Err() }
