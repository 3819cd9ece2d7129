package router

import (
	"sync"

	"quaddeck/catalog"
	"quaddeck/debug"
	"quaddeck/deck"
	"quaddeck/midi"
	"quaddeck/surface"
)

// Transport is the deck engine surface the router drives. *deck.Engine
// implements it; tests substitute a recorder.
type Transport interface {
	Play(t *catalog.Track, deckNum int, section catalog.Section, beatOffset float64)
	Stop(deckNum int)
	FadeOut(deckNum int, seconds float64)
	Spindown(deckNum int)
	StartRoll(deckNum int, rollBeats float64, fallback *catalog.Track)
	StopRoll(deckNum int)
	StartReverse(deckNum int, fallback *catalog.Track)
	StopReverse(deckNum int)
	GetCurrentPlaybackState(deckNum int) *deck.PlaybackInfo
	SyncTo(sourceDeck, targetDeck int, targetTrack *catalog.Track) bool
	SetVolume(deckNum int, level float64)
	SetMasterVolume(level float64)
}

// Library is the external track catalog interface.
type Library interface {
	ListTracksAtTempo(bpm int) []*catalog.Track
	ListTracksNearKey(bpm, key int) []*catalog.Track
	LoadTrack(deckNum int, t *catalog.Track)
	GetLoadedTrack(deckNum int) *catalog.Track
}

// Router is the coordination layer: control-surface messages in, engine
// calls and semantic events out. Messages arrive on the surface's pump
// goroutine while attach/detach happens on the renderer's, so the entry
// points serialize on a lock; a detached surface's buffered messages can
// still be draining when the next one attaches.
type Router struct {
	mu      sync.Mutex
	res     *surface.Resolver
	engine  Transport
	lib     Library
	surf    midi.Surface // nil until a surface attaches
	events  chan Event
	mirror  *mirror
	browse  []*catalog.Track
	browsed int
}

// New builds a router. The surface attaches later via AttachSurface.
func New(res *surface.Resolver, engine Transport, lib Library) *Router {
	r := &Router{
		res:    res,
		engine: engine,
		lib:    lib,
		events: make(chan Event, 64),
		mirror: newMirror(),
	}
	r.refreshBrowse()
	return r
}

// Events returns the outbound semantic event stream. The channel is
// buffered; receive promptly or events are dropped.
func (r *Router) Events() <-chan Event {
	return r.events
}

// emit publishes an event without ever blocking the control timeline.
func (r *Router) emit(ev Event) {
	select {
	case r.events <- ev:
	default:
		debug.LogEvery(50, "router", "event buffer full, dropped kind=%d", ev.Kind)
	}
}

// AttachSurface binds a (re)connected surface: resolver state is cleared
// and every indicator re-mirrored from scratch.
func (r *Router) AttachSurface(s midi.Surface) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.surf = s
	r.res.Reset()
	r.mirror.reset()
	r.refreshBrowse()
	r.emit(Event{Kind: EventLayout})
	r.emitStates()
	r.remirror()
}

// DetachSurface drops a disconnected surface.
func (r *Router) DetachSurface() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.surf = nil
}

// BrowseList returns the current browse list and highlight index.
func (r *Router) BrowseList() ([]*catalog.Track, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.browse, r.browsed
}

// HandleMessage processes one control-surface message.
func (r *Router) HandleMessage(m midi.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emit(Event{Kind: EventRaw, Channel: m.Channel, Number: m.Number, Value: m.Value, On: m.Pressed})

	if m.Kind == midi.KindKnob {
		r.handleKnob(m)
		return
	}
	r.handleButton(m)
}

func (r *Router) handleButton(m midi.Message) {
	l := r.res.Layout()
	note := r.res.ResolveNote(m.Channel, m.Number)

	switch m.Channel {
	case l.Channels.DeckA:
		r.handleDeckButton(surface.SideA, m, note)
	case l.Channels.DeckB:
		r.handleDeckButton(surface.SideB, m, note)
	case l.Channels.FXA:
		r.handleFXButton(1, m, note)
	case l.Channels.FXB:
		r.handleFXButton(2, m, note)
	case l.Channels.Center:
		r.handleCenterButton(m, note)
	default:
		if d := l.PadChannelDeck(m.Channel); d != 0 {
			r.handlePadChannel(d, m, note)
		}
	}
}

func (r *Router) handleDeckButton(side surface.Side, m midi.Message, note uint8) {
	l := r.res.Layout()
	label := l.ButtonLabel(note)

	if label == "shift" {
		r.res.SetShiftHeld(m.Pressed)
		return
	}

	deckNum := r.res.ResolveActiveDeck(side)

	// Shift-press on a lockable button toggles its sticky latch instead of
	// firing the button.
	if m.Pressed && r.res.ShiftHeld() && l.Lockable(note) {
		locked, changed := r.res.ToggleLock(m.Channel, note, m.Value)
		if changed {
			r.emit(Event{Kind: EventLock, Deck: deckNum, Channel: m.Channel, Number: note, Locked: locked})
			r.mirrorLock(m.Channel, note, locked)
			// Dropping the latch releases a held effect that was persisting.
			if !locked {
				r.releaseLatched(deckNum, label)
			}
		}
		return
	}

	switch label {
	case "play":
		if !m.Pressed {
			return
		}
		if r.engine.GetCurrentPlaybackState(deckNum) != nil {
			r.engine.Stop(deckNum)
			return
		}
		t := r.lib.GetLoadedTrack(deckNum)
		if t == nil {
			debug.Log("router", "deck %d play: no track loaded", deckNum)
			return
		}
		r.engine.Play(t, deckNum, catalog.SectionBody, 0)

	case "cue":
		if !m.Pressed {
			return
		}
		t := r.lib.GetLoadedTrack(deckNum)
		if t == nil {
			debug.Log("router", "deck %d cue: no track loaded", deckNum)
			return
		}
		r.engine.Play(t, deckNum, catalog.SectionLead, 0)

	case "sync":
		if m.Pressed {
			r.syncAll(deckNum)
		}

	case "fade":
		if m.Pressed {
			r.engine.FadeOut(deckNum, deck.FadeSeconds)
		}

	case "spindown":
		if m.Pressed {
			r.engine.Spindown(deckNum)
			r.emit(Event{Kind: EventSpindown, Deck: deckNum})
		}

	case "censor":
		if m.Pressed {
			r.engine.StartReverse(deckNum, r.lib.GetLoadedTrack(deckNum))
		} else if !r.res.Locked(m.Channel, note) {
			r.engine.StopReverse(deckNum)
		}

	case "deckSelect":
		if !m.Pressed {
			return
		}
		r.res.ToggleDeckAlternate(side)
		r.emitDeckButtons()
		r.mirrorToggles()

	case "load":
		if m.Pressed {
			r.loadBrowsed(deckNum)
		}
	}
}

func (r *Router) handleFXButton(fxUnit int, m midi.Message, note uint8) {
	if !m.Pressed {
		return
	}
	base, ok := r.res.Layout().FXBaseDeck(note)
	if !ok {
		return
	}
	target := r.res.ResolveFXDeck(base)
	on := r.res.ToggleFXAssignment(fxUnit, target)
	debug.Log("router", "fx%d deck %d -> %v", fxUnit, target, on)
	r.mirrorFX(m.Channel, note, on)
}

func (r *Router) handleCenterButton(m midi.Message, note uint8) {
	// The center load button loads side A's active deck.
	if label := r.res.Layout().ButtonLabel(note); label == "load" && m.Pressed {
		r.loadBrowsed(r.res.ResolveActiveDeck(surface.SideA))
	}
}

func (r *Router) handlePadChannel(deckNum int, m midi.Message, note uint8) {
	if mode, ok := r.res.Layout().PadModeFor(note); ok {
		if !m.Pressed {
			return
		}
		if r.res.SetPadMode(deckNum, mode) {
			r.emit(Event{Kind: EventModeChange, Deck: deckNum, Mode: mode.String()})
			r.emitPadModes()
			r.mirrorPadModes(deckNum)
		}
		return
	}
	if note < 8 {
		r.handlePad(deckNum, int(note), m.Pressed)
	}
}

func (r *Router) handlePad(deckNum, pad int, pressed bool) {
	mode := r.res.PadModeOf(deckNum)
	if pressed {
		r.emit(Event{Kind: EventPadPress, Deck: deckNum, Pad: pad, Mode: mode.String()})
	} else {
		r.emit(Event{Kind: EventPadRelease, Deck: deckNum, Pad: pad, Mode: mode.String()})
	}

	t := r.lib.GetLoadedTrack(deckNum)

	switch mode {
	case surface.ModeHotCue:
		if !pressed {
			return
		}
		if t == nil {
			debug.Log("router", "deck %d pad %d: no track loaded", deckNum, pad)
			return
		}
		cue := hotCuePoints[pad]
		r.engine.Play(t, deckNum, cue.Section, cue.BeatOffset)

	case surface.ModeRoll:
		if pressed {
			r.engine.StartRoll(deckNum, rollBeatsLadder[pad], t)
		} else {
			r.engine.StopRoll(deckNum)
		}

	default:
		// Slicer and sampler modes are selectable but have no pad actions.
		debug.LogEvery(8, "router", "deck %d pad %d: %s not implemented", deckNum, pad, mode)
	}
}

func (r *Router) handleKnob(m midi.Message) {
	l := r.res.Layout()

	switch m.Channel {
	case l.Channels.DeckA, l.Channels.DeckB:
		if m.Number == l.Knobs.DeckVolume {
			side := surface.SideA
			if m.Channel == l.Channels.DeckB {
				side = surface.SideB
			}
			r.engine.SetVolume(r.res.ResolveActiveDeck(side), float64(m.Value)/127)
		}

	case l.Channels.Center:
		switch m.Number {
		case l.Knobs.Tempo:
			dir := surface.EncoderDirection(m.Value)
			if dir == 0 {
				return
			}
			if bpm, ok := r.res.StepTempo(dir); ok {
				r.refreshBrowse()
				r.emit(Event{Kind: EventTempoChange, Tempo: bpm})
			}
		case l.Knobs.Browse:
			r.stepBrowse(surface.EncoderDirection(m.Value))
		case l.Knobs.Master:
			r.engine.SetMasterVolume(float64(m.Value) / 127)
		}
	}
}

// syncAll beat-matches every other loaded deck to the pressed deck, skipping
// and logging per-target failures. One mismatch never aborts the rest.
func (r *Router) syncAll(sourceDeck int) {
	var synced []int
	for target := 1; target <= catalog.NumDecks; target++ {
		if target == sourceDeck {
			continue
		}
		t := r.lib.GetLoadedTrack(target)
		if t == nil {
			debug.Log("router", "sync %d->%d: no track loaded", sourceDeck, target)
			continue
		}
		if r.engine.SyncTo(sourceDeck, target, t) {
			synced = append(synced, target)
		}
	}
	r.emit(Event{Kind: EventSyncChange, Source: sourceDeck, Targets: synced})
}

// releaseLatched ends an effect that a sticky latch was holding active.
func (r *Router) releaseLatched(deckNum int, label string) {
	switch label {
	case "censor":
		r.engine.StopReverse(deckNum)
	}
}

// refreshBrowse rebuilds the browse list for the current tempo, ordered by
// harmonic key distance from whatever is playing (first live deck wins).
func (r *Router) refreshBrowse() {
	bpm := r.res.Tempo()
	key := 0
	for d := 1; d <= catalog.NumDecks; d++ {
		if info := r.engine.GetCurrentPlaybackState(d); info != nil {
			key = info.Track.Key
			break
		}
	}
	if key == 0 {
		r.browse = r.lib.ListTracksAtTempo(bpm)
	} else {
		r.browse = r.lib.ListTracksNearKey(bpm, key)
	}
	if r.browsed >= len(r.browse) {
		r.browsed = 0
	}
}

func (r *Router) stepBrowse(dir int) {
	if len(r.browse) == 0 || dir == 0 {
		return
	}
	r.browsed += dir
	if r.browsed < 0 {
		r.browsed = 0
	}
	if r.browsed >= len(r.browse) {
		r.browsed = len(r.browse) - 1
	}
}

func (r *Router) loadBrowsed(deckNum int) {
	if len(r.browse) == 0 {
		debug.Log("router", "load deck %d: browse list empty", deckNum)
		return
	}
	t := r.browse[r.browsed]
	r.lib.LoadTrack(deckNum, t)
	r.emit(Event{Kind: EventLoad, Deck: deckNum, Track: t})
}

func (r *Router) emitDeckButtons() {
	r.emit(Event{
		Kind: EventDeckButtons,
		AltA: r.res.DeckAlternate(surface.SideA),
		AltB: r.res.DeckAlternate(surface.SideB),
	})
}

func (r *Router) emitPadModes() {
	var modes [catalog.NumDecks]string
	for d := 1; d <= catalog.NumDecks; d++ {
		modes[d-1] = r.res.PadModeOf(d).String()
	}
	r.emit(Event{Kind: EventPadModes, Modes: modes})
}

func (r *Router) emitStates() {
	r.emitDeckButtons()
	r.emitPadModes()
	r.emit(Event{Kind: EventTempoChange, Tempo: r.res.Tempo()})
}
