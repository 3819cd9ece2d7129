package surface

import "testing"

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	return NewResolver(DefaultLayout())
}

func TestShiftNoteRemap(t *testing.T) {
	r := newTestResolver(t)
	l := r.Layout()
	play, _ := l.NoteFor("play")

	// Without shift the alternate-range note passes through unchanged.
	if got := r.ResolveNote(l.Channels.DeckA, 0x47); got != 0x47 {
		t.Errorf("unshifted ResolveNote(0x47) = 0x%02X, want 0x47", got)
	}

	r.SetShiftHeld(true)
	if got := r.ResolveNote(l.Channels.DeckA, 0x47); got != play {
		t.Errorf("shifted ResolveNote(0x47) = 0x%02X, want 0x%02X", got, play)
	}

	// Canonical notes are identity even under shift.
	if got := r.ResolveNote(l.Channels.DeckA, 0x0C); got != 0x0C {
		t.Errorf("shifted ResolveNote(0x0C) = 0x%02X, want 0x0C", got)
	}

	r.SetShiftHeld(false)
	if got := r.ResolveNote(l.Channels.DeckA, 0x47); got != 0x47 {
		t.Errorf("after shift release ResolveNote(0x47) = 0x%02X, want 0x47", got)
	}
}

func TestShiftRemapChannelScoped(t *testing.T) {
	r := newTestResolver(t)
	l := r.Layout()
	r.SetShiftHeld(true)

	// 0x58 -> load remap is scoped to the center channel only; on a deck
	// channel 0x58 stays sync.
	if got := r.ResolveNote(l.Channels.Center, 0x58); got != 0x46 {
		t.Errorf("center ResolveNote(0x58) = 0x%02X, want 0x46", got)
	}
	if got := r.ResolveNote(l.Channels.DeckA, 0x58); got == 0x46 {
		t.Errorf("deck channel 0x58 must not remap to load")
	}
}

func TestToggleLockIgnoresRelease(t *testing.T) {
	r := newTestResolver(t)

	// A release-value message never changes lock state.
	locked, changed := r.ToggleLock(0, 0x15, 0)
	if locked || changed {
		t.Fatalf("release toggled lock: locked=%v changed=%v", locked, changed)
	}

	locked, changed = r.ToggleLock(0, 0x15, 127)
	if !locked || !changed {
		t.Fatalf("press should latch: locked=%v changed=%v", locked, changed)
	}

	locked, changed = r.ToggleLock(0, 0x15, 0)
	if !locked || changed {
		t.Fatalf("release after latch changed state: locked=%v changed=%v", locked, changed)
	}

	locked, changed = r.ToggleLock(0, 0x15, 127)
	if locked || !changed {
		t.Fatalf("second press should unlatch: locked=%v changed=%v", locked, changed)
	}
}

func TestLockedPairs(t *testing.T) {
	r := newTestResolver(t)
	r.ToggleLock(0, 0x15, 127)
	r.ToggleLock(1, 0x18, 127)

	pairs := r.LockedPairs()
	if len(pairs) != 2 {
		t.Fatalf("got %d locked pairs, want 2", len(pairs))
	}
	if !r.Locked(0, 0x15) || !r.Locked(1, 0x18) {
		t.Error("latched pairs not reported by Locked")
	}
}

func TestDeckAlternateResolution(t *testing.T) {
	r := newTestResolver(t)

	if got := r.ResolveActiveDeck(SideA); got != 1 {
		t.Errorf("side A base deck = %d, want 1", got)
	}
	if got := r.ResolveActiveDeck(SideB); got != 2 {
		t.Errorf("side B base deck = %d, want 2", got)
	}

	if on := r.ToggleDeckAlternate(SideA); !on {
		t.Error("first toggle should turn alternate on")
	}
	if got := r.ResolveActiveDeck(SideA); got != 3 {
		t.Errorf("side A alternate deck = %d, want 3", got)
	}
	// Side B is untouched.
	if got := r.ResolveActiveDeck(SideB); got != 2 {
		t.Errorf("side B deck = %d, want 2", got)
	}

	if on := r.ToggleDeckAlternate(SideA); on {
		t.Error("second toggle should turn alternate off")
	}
	if got := r.ResolveActiveDeck(SideA); got != 1 {
		t.Errorf("side A deck after untoggle = %d, want 1", got)
	}
}

func TestFXDeckResolution(t *testing.T) {
	r := newTestResolver(t)

	if got := r.ResolveFXDeck(1); got != 1 {
		t.Errorf("fx base deck 1 -> %d, want 1", got)
	}
	r.ToggleDeckAlternate(SideA)
	if got := r.ResolveFXDeck(1); got != 3 {
		t.Errorf("fx base deck 1 with alternate -> %d, want 3", got)
	}
	if got := r.ResolveFXDeck(2); got != 2 {
		t.Errorf("fx base deck 2 -> %d, want 2", got)
	}
	r.ToggleDeckAlternate(SideB)
	if got := r.ResolveFXDeck(2); got != 4 {
		t.Errorf("fx base deck 2 with alternate -> %d, want 4", got)
	}
}

func TestToggleFXAssignment(t *testing.T) {
	r := newTestResolver(t)

	if on := r.ToggleFXAssignment(1, 3); !on {
		t.Error("first toggle should assign")
	}
	if !r.FXAssigned(1, 3) {
		t.Error("assignment not recorded")
	}
	// Independent of lock state and of the other unit.
	if r.FXAssigned(2, 3) {
		t.Error("unit 2 should be unaffected")
	}
	if on := r.ToggleFXAssignment(1, 3); on {
		t.Error("second toggle should clear")
	}
}

func TestPadModeRadio(t *testing.T) {
	r := newTestResolver(t)

	if got := r.PadModeOf(2); got != ModeHotCue {
		t.Fatalf("default mode = %s, want HOT CUE", got)
	}

	if changed := r.SetPadMode(2, ModeRoll); !changed {
		t.Error("switching to roll should report a change")
	}
	if changed := r.SetPadMode(2, ModeRoll); changed {
		t.Error("re-press of the lit mode must be a no-op")
	}
	if got := r.PadModeOf(2); got != ModeRoll {
		t.Errorf("deck 2 mode = %s, want ROLL", got)
	}

	// Radio selection is per deck.
	if got := r.PadModeOf(1); got != ModeHotCue {
		t.Errorf("deck 1 mode = %s, want HOT CUE", got)
	}
}

func TestStepTempoClamps(t *testing.T) {
	r := newTestResolver(t)

	if got := r.Tempo(); got != 94 {
		t.Fatalf("start tempo = %d, want 94", got)
	}

	if bpm, ok := r.StepTempo(1); !ok || bpm != 102 {
		t.Fatalf("step up = %d ok=%v, want 102 true", bpm, ok)
	}
	// Clamp at the top: no wraparound, state untouched.
	if bpm, ok := r.StepTempo(1); ok || bpm != 102 {
		t.Fatalf("step past top = %d ok=%v, want 102 false", bpm, ok)
	}

	r.StepTempo(-1)
	if bpm, ok := r.StepTempo(-1); !ok || bpm != 84 {
		t.Fatalf("step down = %d ok=%v, want 84 true", bpm, ok)
	}
	if bpm, ok := r.StepTempo(-1); ok || bpm != 84 {
		t.Fatalf("step past bottom = %d ok=%v, want 84 false", bpm, ok)
	}
}

func TestEncoderDirection(t *testing.T) {
	cases := []struct {
		value uint8
		want  int
	}{
		{0, -1}, {63, -1}, {64, 0}, {65, 1}, {127, 1},
	}
	for _, c := range cases {
		if got := EncoderDirection(c.value); got != c.want {
			t.Errorf("EncoderDirection(%d) = %d, want %d", c.value, got, c.want)
		}
	}
}

func TestResetClearsEverything(t *testing.T) {
	r := newTestResolver(t)
	r.SetShiftHeld(true)
	r.ToggleLock(0, 0x15, 127)
	r.ToggleDeckAlternate(SideB)
	r.SetPadMode(1, ModeSampler)
	r.StepTempo(1)

	r.Reset()

	if r.ShiftHeld() {
		t.Error("shift survived reset")
	}
	if r.Locked(0, 0x15) {
		t.Error("lock survived reset")
	}
	if r.ResolveActiveDeck(SideB) != 2 {
		t.Error("alternate toggle survived reset")
	}
	if r.PadModeOf(1) != ModeHotCue {
		t.Error("pad mode survived reset")
	}
	if r.Tempo() != 94 {
		t.Error("tempo survived reset")
	}
}
