package router

import (
	"quaddeck/catalog"
	"quaddeck/debug"
	"quaddeck/surface"
)

// Indicator intensities mirrored to the hardware.
const (
	indicatorOff uint8 = 0
	indicatorDim uint8 = 10
	indicatorOn  uint8 = 127
)

// mirror tracks the last intensity sent per (channel, note) so only actual
// changes hit the wire.
type mirror struct {
	prev map[[2]uint8]uint8
}

func newMirror() *mirror {
	return &mirror{prev: make(map[[2]uint8]uint8)}
}

func (m *mirror) reset() {
	m.prev = make(map[[2]uint8]uint8)
}

// setIndicator sends one indicator update, diffed against the last send.
func (r *Router) setIndicator(channel, note, intensity uint8) {
	if r.surf == nil {
		return
	}
	key := [2]uint8{channel, note}
	if prev, ok := r.mirror.prev[key]; ok && prev == intensity {
		return
	}
	if err := r.surf.SetIndicator(channel, note, intensity); err != nil {
		debug.LogEvery(20, "router", "indicator ch=%d note=0x%02X: %v", channel, note, err)
		return
	}
	r.mirror.prev[key] = intensity
}

func (r *Router) mirrorLock(channel, note uint8, locked bool) {
	if locked {
		r.setIndicator(channel, note, indicatorOn)
	} else {
		r.setIndicator(channel, note, indicatorOff)
	}
}

func (r *Router) mirrorFX(channel, note uint8, on bool) {
	if on {
		r.setIndicator(channel, note, indicatorOn)
	} else {
		r.setIndicator(channel, note, indicatorOff)
	}
}

// mirrorToggles lights each side's deckSelect button when the alternate
// deck is addressed.
func (r *Router) mirrorToggles() {
	l := r.res.Layout()
	note, ok := l.NoteFor("deckSelect")
	if !ok {
		return
	}
	for _, side := range []surface.Side{surface.SideA, surface.SideB} {
		ch := l.Channels.DeckA
		if side == surface.SideB {
			ch = l.Channels.DeckB
		}
		if r.res.DeckAlternate(side) {
			r.setIndicator(ch, note, indicatorOn)
		} else {
			r.setIndicator(ch, note, indicatorDim)
		}
	}
}

// mirrorPadModes lights one deck's mode radio row: selected mode bright,
// the rest dim.
func (r *Router) mirrorPadModes(deckNum int) {
	l := r.res.Layout()
	if deckNum < 1 || deckNum > len(l.Channels.Pads) {
		return
	}
	ch := l.Channels.Pads[deckNum-1]
	selected := r.res.PadModeOf(deckNum)
	for _, mb := range l.PadModes {
		mode, ok := l.PadModeFor(mb.Note)
		if !ok {
			continue
		}
		if mode == selected {
			r.setIndicator(ch, mb.Note, indicatorOn)
		} else {
			r.setIndicator(ch, mb.Note, indicatorDim)
		}
	}
}

// remirror pushes the complete indicator state after a (re)connect.
func (r *Router) remirror() {
	r.mirrorToggles()
	for d := 1; d <= catalog.NumDecks; d++ {
		r.mirrorPadModes(d)
	}
	for _, pair := range r.res.LockedPairs() {
		r.setIndicator(pair[0], pair[1], indicatorOn)
	}
	l := r.res.Layout()
	for _, f := range l.FXAssign {
		for unit, ch := range []uint8{l.Channels.FXA, l.Channels.FXB} {
			target := r.res.ResolveFXDeck(f.Deck)
			r.mirrorFX(ch, f.Note, r.res.FXAssigned(unit+1, target))
		}
	}
}
