package surface

import "testing"

func TestDefaultLayoutTables(t *testing.T) {
	l := DefaultLayout()

	if l.Name == "" {
		t.Error("layout has no name")
	}
	if len(l.Channels.Pads) != 4 {
		t.Fatalf("got %d pad channels, want 4", len(l.Channels.Pads))
	}

	for _, label := range []string{"play", "cue", "sync", "shift", "deckSelect", "load", "censor", "spindown", "fade"} {
		if _, ok := l.NoteFor(label); !ok {
			t.Errorf("no note for %q", label)
		}
	}

	censor, _ := l.NoteFor("censor")
	spindown, _ := l.NoteFor("spindown")
	play, _ := l.NoteFor("play")
	if !l.Lockable(censor) || !l.Lockable(spindown) {
		t.Error("censor and spindown must be lockable")
	}
	if l.Lockable(play) {
		t.Error("play must not be lockable")
	}

	if mode, ok := l.PadModeFor(0x1E); !ok || mode != ModeRoll {
		t.Errorf("PadModeFor(0x1E) = %v %v, want ROLL true", mode, ok)
	}
	if _, ok := l.PadModeFor(0x00); ok {
		t.Error("unknown pad-mode note should not resolve")
	}

	if deck, ok := l.FXBaseDeck(0x4C); !ok || deck != 1 {
		t.Errorf("FXBaseDeck(0x4C) = %d %v, want 1 true", deck, ok)
	}
}

func TestPadChannelDeck(t *testing.T) {
	l := DefaultLayout()
	for i, ch := range l.Channels.Pads {
		if got := l.PadChannelDeck(ch); got != i+1 {
			t.Errorf("PadChannelDeck(%d) = %d, want %d", ch, got, i+1)
		}
	}
	if got := l.PadChannelDeck(15); got != 0 {
		t.Errorf("PadChannelDeck(15) = %d, want 0", got)
	}
}

func TestParseLayoutRejectsBadPadCount(t *testing.T) {
	if _, err := ParseLayout([]byte("name: bad\nchannels:\n  pads: [7, 8]\n")); err == nil {
		t.Error("expected error for wrong pad channel count")
	}
}

func TestButtonLabel(t *testing.T) {
	l := DefaultLayout()
	play, _ := l.NoteFor("play")
	if got := l.ButtonLabel(play); got != "play" {
		t.Errorf("ButtonLabel(play note) = %q", got)
	}
	if got := l.ButtonLabel(0x7F); got != "" {
		t.Errorf("ButtonLabel(unknown) = %q, want empty", got)
	}
}
