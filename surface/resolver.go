package surface

import (
	"quaddeck/catalog"
	"quaddeck/debug"
)

// Side identifies a physical control pair: A drives decks 1/3, B drives 2/4.
type Side int

const (
	SideA Side = iota
	SideB
)

func (s Side) String() string {
	if s == SideA {
		return "A"
	}
	return "B"
}

// PadMode is the radio-selected performance pad mode, per deck.
type PadMode int

const (
	ModeHotCue PadMode = iota
	ModeRoll
	ModeSlicer
	ModeSampler
)

func (m PadMode) String() string {
	switch m {
	case ModeHotCue:
		return "HOT CUE"
	case ModeRoll:
		return "ROLL"
	case ModeSlicer:
		return "SLICER"
	case ModeSampler:
		return "SAMPLER"
	}
	return "?"
}

// The surface's addressable space is bounded and known at compile time, so
// lock state lives in a fixed table rather than a keyed map.
const (
	numChannels = 16
	numNotes    = 128
)

// Resolver is the control-state machine. It classifies messages and mutates
// toggle/lock/mode/tempo state; it never touches audio or rendering. All
// calls arrive from the single control-processing timeline.
type Resolver struct {
	layout *Layout

	shift    bool
	locks    [numChannels][numNotes]bool
	fx       [2][catalog.NumDecks]bool // [fxUnit-1][deck-1]
	padMode  [catalog.NumDecks]PadMode // default ModeHotCue
	alt      [2]bool                   // [side]
	tempoIdx int
}

// NewResolver builds a resolver over a layout, starting at 94 BPM,
// hot cue mode on every deck, nothing locked, base decks selected.
func NewResolver(layout *Layout) *Resolver {
	r := &Resolver{layout: layout}
	r.Reset()
	return r
}

// Layout returns the layout table the resolver was built with.
func (r *Resolver) Layout() *Layout { return r.layout }

// Reset restores power-on state. Called on surface reconnect.
func (r *Resolver) Reset() {
	r.shift = false
	r.locks = [numChannels][numNotes]bool{}
	r.fx = [2][catalog.NumDecks]bool{}
	for i := range r.padMode {
		r.padMode[i] = ModeHotCue
	}
	r.alt = [2]bool{}
	r.tempoIdx = 1 // 94 BPM
}

// SetShiftHeld updates the global shift flag.
func (r *Resolver) SetShiftHeld(pressed bool) {
	r.shift = pressed
}

// ShiftHeld reports the current shift flag.
func (r *Resolver) ShiftHeld() bool { return r.shift }

// ResolveNote maps an alternate-range note back to its canonical note while
// shift is held; otherwise identity. Shift on this surface is an alternate
// note range, not a modifier bit.
func (r *Resolver) ResolveNote(channel, note uint8) uint8 {
	if !r.shift {
		return note
	}
	chName := r.layout.channelName(channel)
	for _, m := range r.layout.ShiftRemap {
		if m.From != note {
			continue
		}
		if m.Channel != "" && m.Channel != chName {
			continue
		}
		return m.To
	}
	return note
}

// ToggleLock flips sticky state for a button on a press event. Release-value
// messages (value 0) never change state; the second return is false then.
func (r *Resolver) ToggleLock(channel, note uint8, value uint8) (locked, changed bool) {
	if value == 0 {
		return r.locks[channel&0x0F][note&0x7F], false
	}
	ch, n := channel&0x0F, note&0x7F
	r.locks[ch][n] = !r.locks[ch][n]
	debug.Log("resolver", "lock ch=%d note=0x%02X -> %v", ch, n, r.locks[ch][n])
	return r.locks[ch][n], true
}

// Locked reports sticky state for a button.
func (r *Resolver) Locked(channel, note uint8) bool {
	return r.locks[channel&0x0F][note&0x7F]
}

// LockedPairs returns every latched (channel, note) pair, for feedback mirroring.
func (r *Resolver) LockedPairs() [][2]uint8 {
	var out [][2]uint8
	for ch := 0; ch < numChannels; ch++ {
		for n := 0; n < numNotes; n++ {
			if r.locks[ch][n] {
				out = append(out, [2]uint8{uint8(ch), uint8(n)})
			}
		}
	}
	return out
}

// ToggleFXAssignment flips FX routing for a (unit, deck) pair. The deck is
// pre-resolved by the caller via ResolveFXDeck.
func (r *Resolver) ToggleFXAssignment(fxUnit, deck int) bool {
	if fxUnit < 1 || fxUnit > 2 || deck < 1 || deck > catalog.NumDecks {
		return false
	}
	r.fx[fxUnit-1][deck-1] = !r.fx[fxUnit-1][deck-1]
	return r.fx[fxUnit-1][deck-1]
}

// FXAssigned reports FX routing for a (unit, deck) pair.
func (r *Resolver) FXAssigned(fxUnit, deck int) bool {
	if fxUnit < 1 || fxUnit > 2 || deck < 1 || deck > catalog.NumDecks {
		return false
	}
	return r.fx[fxUnit-1][deck-1]
}

// ResolveFXDeck maps an fx button's base deck (1 or 2) to its current target:
// the alternate deck (3 or 4) when that side's toggle is on.
func (r *Resolver) ResolveFXDeck(baseDeck int) int {
	switch baseDeck {
	case 1:
		if r.alt[SideA] {
			return 3
		}
		return 1
	case 2:
		if r.alt[SideB] {
			return 4
		}
		return 2
	}
	return baseDeck
}

// ToggleDeckAlternate flips which physical deck a side's shared controls
// address. Takes effect for every subsequent resolution on that side.
func (r *Resolver) ToggleDeckAlternate(side Side) bool {
	r.alt[side] = !r.alt[side]
	debug.Log("resolver", "side %s alternate -> %v (deck %d)", side, r.alt[side], r.ResolveActiveDeck(side))
	return r.alt[side]
}

// DeckAlternate reports a side's toggle state.
func (r *Resolver) DeckAlternate(side Side) bool {
	return r.alt[side]
}

// ResolveActiveDeck returns the deck a side currently addresses:
// 1 or 2 normally, 3 or 4 with the alternate toggle on.
func (r *Resolver) ResolveActiveDeck(side Side) int {
	base := 1
	if side == SideB {
		base = 2
	}
	if r.alt[side] {
		return base + 2
	}
	return base
}

// SideForDeck returns which side's controls address a deck.
func SideForDeck(deck int) Side {
	if deck%2 == 0 {
		return SideB
	}
	return SideA
}

// SetPadMode radio-selects a pad mode for one deck. Returns true only when
// the mode actually changed; a re-press of the lit mode is a no-op.
func (r *Resolver) SetPadMode(deck int, mode PadMode) bool {
	if deck < 1 || deck > catalog.NumDecks {
		return false
	}
	if r.padMode[deck-1] == mode {
		return false
	}
	r.padMode[deck-1] = mode
	debug.Log("resolver", "deck %d pad mode -> %s", deck, mode)
	return true
}

// PadModeOf returns the selected pad mode for a deck.
func (r *Resolver) PadModeOf(deck int) PadMode {
	if deck < 1 || deck > catalog.NumDecks {
		return ModeHotCue
	}
	return r.padMode[deck-1]
}

// Tempo returns the current global tempo.
func (r *Resolver) Tempo() int {
	return catalog.Tempos[r.tempoIdx]
}

// SetTempo forces the tempo to a member of the fixed set (startup only).
func (r *Resolver) SetTempo(bpm int) {
	for i, t := range catalog.Tempos {
		if t == bpm {
			r.tempoIdx = i
			return
		}
	}
}

// StepTempo moves one position through the fixed tempo list. Returns the new
// tempo, or false when already clamped at that boundary (no wraparound).
func (r *Resolver) StepTempo(direction int) (int, bool) {
	next := r.tempoIdx + direction
	if direction == 0 || next < 0 || next >= len(catalog.Tempos) {
		return r.Tempo(), false
	}
	r.tempoIdx = next
	debug.Log("resolver", "tempo -> %d", r.Tempo())
	return r.Tempo(), true
}

// EncoderDirection derives a step direction from an encoder value:
// below the 64 rest value steps down, above steps up, at rest no step.
func EncoderDirection(value uint8) int {
	switch {
	case value < 64:
		return -1
	case value > 64:
		return 1
	}
	return 0
}
