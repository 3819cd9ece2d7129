package deck

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"

	"quaddeck/catalog"
	"quaddeck/debug"
)

// Fixed timing contract. Not tunable at runtime.
const (
	SampleRate      = beep.SampleRate(44100)
	FadeSeconds     = 0.2
	SpindownSeconds = 0.8
)

// Clock supplies the engine's notion of now. Swapped in tests.
type Clock func() time.Time

// PlaybackInfo is the read-only synthesis of a deck's live playback.
type PlaybackInfo struct {
	Track    *catalog.Track
	Section  catalog.Section
	Position float64 // seconds into the section
}

// playback anchors a live section: elapsed position is the clock delta
// from startedAt plus startOffset.
type playback struct {
	track       *catalog.Track
	section     catalog.Section
	startOffset float64
	startedAt   time.Time
}

// interruption preserves the pre-roll/pre-reverse position for resume.
type interruption struct {
	track     *catalog.Track
	section   catalog.Section
	position  float64
	startedAt time.Time
}

type completionKind int

const (
	completionSection completionKind = iota
	completionFade
	completionBrake
)

// completion carries a timed-effect or section-end notification from the
// render goroutine back onto the engine's serial timeline. The generation
// makes superseded completions detectably stale.
type completion struct {
	deck int
	gen  uint64
	kind completionKind
}

type deckState struct {
	slot    *slot
	vol     *effects.Volume
	gen     uint64
	playing *playback
	roll    *interruption
	rev     *interruption
}

// Engine owns the four deck slots. At most one of playing/roll/rev drives
// audible output per deck at any instant.
type Engine struct {
	mu       sync.Mutex
	sink     Sink
	cache    *BufferCache
	clock    Clock
	assetDir string

	master      *beep.Mixer
	masterVol   *effects.Volume
	decks       [catalog.NumDecks]*deckState
	completions chan completion
	quit        chan struct{}
}

type Option func(*Engine)

// WithSink substitutes the output sink (tests use HeadlessSink).
func WithSink(s Sink) Option { return func(e *Engine) { e.sink = s } }

// WithCache substitutes the buffer cache.
func WithCache(c *BufferCache) Option { return func(e *Engine) { e.cache = c } }

// WithClock substitutes the wall clock.
func WithClock(c Clock) Option { return func(e *Engine) { e.clock = c } }

// NewEngine builds the engine, initializes the sink and starts the
// completion drain. assetDir is where section audio files live.
func NewEngine(assetDir string, opts ...Option) (*Engine, error) {
	e := &Engine{
		sink:        SpeakerSink{},
		clock:       time.Now,
		assetDir:    assetDir,
		completions: make(chan completion, 32),
		quit:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cache == nil {
		e.cache = NewBufferCache(WAVLoader(SampleRate))
	}

	e.master = &beep.Mixer{}
	for i := range e.decks {
		d := &deckState{slot: &slot{}}
		d.vol = &effects.Volume{Streamer: d.slot, Base: 2}
		e.master.Add(d.vol)
		e.decks[i] = d
	}
	e.masterVol = &effects.Volume{Streamer: e.master, Base: 2}

	if err := e.sink.Init(SampleRate, SampleRate.N(time.Second/20)); err != nil {
		return nil, fmt.Errorf("init audio sink: %w", err)
	}
	e.sink.Play(e.masterVol)

	go e.drain()
	return e, nil
}

// Close stops the completion drain and the sink.
func (e *Engine) Close() {
	close(e.quit)
	e.sink.Close()
}

// drain serializes completion notifications relative to control operations.
func (e *Engine) drain() {
	for {
		select {
		case <-e.quit:
			return
		case c := <-e.completions:
			switch c.kind {
			case completionSection:
				e.chainNext(c.deck, c.gen)
			case completionFade, completionBrake:
				e.finishTimed(c.deck, c.gen)
			}
		}
	}
}

// complete posts a completion from the render goroutine. Must not block:
// it runs under the sink lock.
func (e *Engine) complete(deck int, gen uint64, kind completionKind) {
	select {
	case e.completions <- completion{deck: deck, gen: gen, kind: kind}:
	default:
		debug.Log("engine", "completion buffer full, dropped deck=%d kind=%d", deck, kind)
	}
}

// chainNext continues a naturally finished section into the other section.
// A stale generation means the source was superseded; nothing happens.
func (e *Engine) chainNext(deck int, gen uint64) {
	e.mu.Lock()
	d := e.decks[deck-1]
	if d.gen != gen || d.playing == nil {
		e.mu.Unlock()
		return
	}
	t, next := d.playing.track, d.playing.section.Other()
	e.mu.Unlock()

	debug.Log("engine", "deck %d section end, chaining into %s", deck, next)
	e.Play(t, deck, next, 0)
}

// finishTimed concludes a fade or spindown by hard-stopping the deck.
func (e *Engine) finishTimed(deck int, gen uint64) {
	e.mu.Lock()
	d := e.decks[deck-1]
	if d.gen != gen {
		e.mu.Unlock()
		return
	}
	d.gen++
	d.playing, d.roll, d.rev = nil, nil, nil
	e.setSource(d, nil)
	e.mu.Unlock()
}

// Play starts a section on a deck at a beat offset, stopping any existing
// activity on that deck first. On natural completion the other section is
// chained automatically at offset 0. Asset failures log and leave the deck
// in its prior state.
func (e *Engine) Play(t *catalog.Track, deck int, section catalog.Section, beatOffset float64) {
	if !validDeck(deck) || t == nil {
		debug.Log("engine", "play: bad deck %d or nil track", deck)
		return
	}

	buf, err := e.cache.Get(t.AssetPath(e.assetDir, section))
	if err != nil {
		debug.Log("engine", "deck %d play: %v", deck, err)
		return
	}

	startSec := t.Seconds(beatOffset)
	durSec := t.SectionSeconds(section)
	if startSec >= durSec {
		debug.Log("engine", "deck %d play: offset %.1f beats beyond %s", deck, beatOffset, section)
		return
	}

	e.mu.Lock()
	d := e.decks[deck-1]
	d.gen++
	gen := d.gen
	d.playing = &playback{track: t, section: section, startOffset: startSec, startedAt: e.clock()}
	d.roll, d.rev = nil, nil

	from := clampSample(sampleAt(startSec), buf.Len())
	to := clampSample(sampleAt(durSec), buf.Len())
	src := beep.Seq(
		buf.Streamer(from, to),
		beep.Callback(func() { e.complete(deck, gen, completionSection) }),
	)
	e.setSource(d, src)
	e.mu.Unlock()

	debug.Log("engine", "deck %d play %d %s @ %.3fs for %.3fs", deck, t.ID, section, startSec, durSec-startSec)
}

// Stop halts and discards the deck's active source and clears all tracking,
// which also disarms any pending chain/fade/brake completion.
func (e *Engine) Stop(deck int) {
	if !validDeck(deck) {
		return
	}
	e.mu.Lock()
	d := e.decks[deck-1]
	d.gen++
	d.playing, d.roll, d.rev = nil, nil, nil
	e.setSource(d, nil)
	e.mu.Unlock()
}

// FadeOut ramps the deck linearly to silence over the given duration, then
// stops it. No-op with a diagnostic if nothing is audible.
func (e *Engine) FadeOut(deck int, seconds float64) {
	if !validDeck(deck) {
		return
	}
	e.mu.Lock()
	d := e.decks[deck-1]
	e.sink.Lock()
	cur := d.slot.src
	if cur == nil {
		e.sink.Unlock()
		e.mu.Unlock()
		debug.Log("engine", "deck %d fade: nothing playing", deck)
		return
	}
	d.gen++
	gen := d.gen
	d.slot.src = newGainRamp(cur, sampleAt(seconds), func() { e.complete(deck, gen, completionFade) })
	e.sink.Unlock()
	e.mu.Unlock()
	debug.Log("engine", "deck %d fade out over %.2fs", deck, seconds)
}

// Spindown brakes the deck's playback rate exponentially over the fixed
// spindown time, then stops it. Only a plain playing section has rate
// control; rolls and reverses are not braked.
func (e *Engine) Spindown(deck int) {
	if !validDeck(deck) {
		return
	}
	e.mu.Lock()
	d := e.decks[deck-1]
	if d.playing == nil {
		e.mu.Unlock()
		debug.Log("engine", "deck %d spindown: no rate-controlled source", deck)
		return
	}
	d.gen++
	gen := d.gen
	e.sink.Lock()
	cur := d.slot.src
	if cur != nil {
		d.slot.src = newRateBrake(cur, SampleRate, SpindownSeconds, func() { e.complete(deck, gen, completionBrake) })
	}
	e.sink.Unlock()
	e.mu.Unlock()
	debug.Log("engine", "deck %d spindown", deck)
}

// StartRoll suspends normal playback and loops a tempo-locked window of
// rollBeats starting at the current position. With nothing live the given
// fallback track starts a roll at the top of its body section.
func (e *Engine) StartRoll(deck int, rollBeats float64, fallback *catalog.Track) {
	if !validDeck(deck) {
		return
	}
	e.mu.Lock()
	d := e.decks[deck-1]
	if d.roll != nil || d.rev != nil {
		e.mu.Unlock()
		debug.Log("engine", "deck %d roll: already interrupted", deck)
		return
	}
	tr, sec, pos, ok := e.capturePositionLocked(d, fallback)
	gen := d.gen
	e.mu.Unlock()
	if !ok {
		debug.Log("engine", "deck %d roll: nothing playing and no track", deck)
		return
	}

	buf, err := e.cache.Get(tr.AssetPath(e.assetDir, sec))
	if err != nil {
		debug.Log("engine", "deck %d roll: %v", deck, err)
		return
	}

	e.mu.Lock()
	if d.gen != gen {
		e.mu.Unlock()
		debug.Log("engine", "deck %d roll: superseded during load", deck)
		return
	}
	d.gen++
	d.roll = &interruption{track: tr, section: sec, position: pos, startedAt: e.clock()}
	d.playing = nil
	loop := newLoopRange(buf, sampleAt(pos), sampleAt(pos+tr.Seconds(rollBeats)))
	e.setSource(d, loop)
	e.mu.Unlock()

	debug.Log("engine", "deck %d roll %g beats @ %.3fs", deck, rollBeats, pos)
}

// StopRoll resumes playback where it would have been had the roll never
// happened, chaining into the other section when the resume point overflows.
func (e *Engine) StopRoll(deck int) {
	if !validDeck(deck) {
		return
	}
	e.mu.Lock()
	d := e.decks[deck-1]
	r := d.roll
	if r == nil {
		e.mu.Unlock()
		debug.Log("engine", "deck %d: no roll active", deck)
		return
	}
	resume := r.position + e.clock().Sub(r.startedAt).Seconds()
	e.mu.Unlock()

	e.resumeAt(deck, r.track, r.section, resume)
}

// StartReverse suspends normal playback and plays the current section
// backward, anchored at the interruption point.
func (e *Engine) StartReverse(deck int, fallback *catalog.Track) {
	if !validDeck(deck) {
		return
	}
	e.mu.Lock()
	d := e.decks[deck-1]
	if d.roll != nil || d.rev != nil {
		e.mu.Unlock()
		debug.Log("engine", "deck %d reverse: already interrupted", deck)
		return
	}
	tr, sec, pos, ok := e.capturePositionLocked(d, fallback)
	gen := d.gen
	e.mu.Unlock()
	if !ok {
		debug.Log("engine", "deck %d reverse: nothing playing and no track", deck)
		return
	}

	rbuf, err := e.cache.Reversed(tr.AssetPath(e.assetDir, sec))
	if err != nil {
		debug.Log("engine", "deck %d reverse: %v", deck, err)
		return
	}

	bufSec := float64(rbuf.Len()) / float64(SampleRate)
	from := clampSample(sampleAt(bufSec-pos), rbuf.Len())

	e.mu.Lock()
	if d.gen != gen {
		e.mu.Unlock()
		debug.Log("engine", "deck %d reverse: superseded during load", deck)
		return
	}
	d.gen++
	d.rev = &interruption{track: tr, section: sec, position: pos, startedAt: e.clock()}
	d.playing = nil
	e.setSource(d, rbuf.Streamer(from, rbuf.Len()))
	e.mu.Unlock()

	debug.Log("engine", "deck %d reverse @ %.3fs", deck, pos)
}

// StopReverse mirrors StopRoll's resume math, additionally clamping to the
// section start when the excursion would resume before the section began.
func (e *Engine) StopReverse(deck int) {
	if !validDeck(deck) {
		return
	}
	e.mu.Lock()
	d := e.decks[deck-1]
	r := d.rev
	if r == nil {
		e.mu.Unlock()
		debug.Log("engine", "deck %d: no reverse active", deck)
		return
	}
	resume := r.position + e.clock().Sub(r.startedAt).Seconds()
	if resume < 0 {
		resume = 0
	}
	e.mu.Unlock()

	e.resumeAt(deck, r.track, r.section, resume)
}

// resumeAt restarts normal playback at an absolute section position,
// chaining into the other section with the overflow expressed in beats.
func (e *Engine) resumeAt(deck int, t *catalog.Track, sec catalog.Section, resume float64) {
	durSec := t.SectionSeconds(sec)
	if resume >= durSec {
		e.Play(t, deck, sec.Other(), t.BeatsOf(resume-durSec))
		return
	}
	e.Play(t, deck, sec, t.BeatsOf(resume))
}

// GetCurrentPlaybackState reports the deck's live playback, or nil when
// nothing normal is playing (including during a roll or reverse, whose
// suspended position is internal until resume).
func (e *Engine) GetCurrentPlaybackState(deck int) *PlaybackInfo {
	if !validDeck(deck) {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	d := e.decks[deck-1]
	if d.playing == nil {
		return nil
	}
	p := d.playing
	return &PlaybackInfo{
		Track:    p.track,
		Section:  p.section,
		Position: p.startOffset + e.clock().Sub(p.startedAt).Seconds(),
	}
}

// SyncTo beat-matches the target deck to the source deck: the source's
// elapsed seconds are converted to beats at the target's tempo and playback
// starts there in the source's section. Idle sources and tempo mismatches
// are skipped with a diagnostic.
func (e *Engine) SyncTo(sourceDeck, targetDeck int, targetTrack *catalog.Track) bool {
	info := e.GetCurrentPlaybackState(sourceDeck)
	if info == nil {
		debug.Log("engine", "sync %d->%d: source idle", sourceDeck, targetDeck)
		return false
	}
	if targetTrack == nil {
		debug.Log("engine", "sync %d->%d: no track on target", sourceDeck, targetDeck)
		return false
	}
	if info.Track.BPM != targetTrack.BPM {
		debug.Log("engine", "sync %d->%d: tempo mismatch %d vs %d", sourceDeck, targetDeck, info.Track.BPM, targetTrack.BPM)
		return false
	}
	e.Play(targetTrack, targetDeck, info.Section, targetTrack.BeatsOf(info.Position))
	return true
}

// SetVolume sets a deck's gain (0..1), independent of transport state.
func (e *Engine) SetVolume(deck int, level float64) {
	if !validDeck(deck) {
		return
	}
	e.setGain(e.decks[deck-1].vol, level)
}

// SetMasterVolume sets the master gain (0..1).
func (e *Engine) SetMasterVolume(level float64) {
	e.setGain(e.masterVol, level)
}

func (e *Engine) setGain(v *effects.Volume, level float64) {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	e.sink.Lock()
	if level == 0 {
		v.Silent = true
	} else {
		v.Silent = false
		v.Volume = math.Log2(level)
	}
	e.sink.Unlock()
}

// capturePositionLocked resolves the logical position an interruption
// anchors to: the live playback if any, else the fallback track at the top
// of its body section.
func (e *Engine) capturePositionLocked(d *deckState, fallback *catalog.Track) (*catalog.Track, catalog.Section, float64, bool) {
	if d.playing != nil {
		p := d.playing
		return p.track, p.section, p.startOffset + e.clock().Sub(p.startedAt).Seconds(), true
	}
	if fallback != nil {
		return fallback, catalog.SectionBody, 0, true
	}
	return nil, catalog.SectionBody, 0, false
}

// setSource swaps a deck's live streamer under the sink lock.
func (e *Engine) setSource(d *deckState, src beep.Streamer) {
	e.sink.Lock()
	d.slot.src = src
	e.sink.Unlock()
}

func validDeck(deck int) bool {
	return deck >= 1 && deck <= catalog.NumDecks
}

func sampleAt(sec float64) int {
	return int(math.Round(sec * float64(SampleRate)))
}

func clampSample(n, max int) int {
	if n < 0 {
		return 0
	}
	if n > max {
		return max
	}
	return n
}
