// Package surface interprets raw control-surface messages: it owns the
// hardware layout table and the stateful resolver that turns button and knob
// messages into semantic decisions. No I/O happens here; the midi package
// delivers messages and the router acts on the decisions.
package surface

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed layout.yaml
var defaultLayoutYAML []byte

// Channels is the surface's fixed addressing scheme.
type Channels struct {
	DeckA  uint8   `yaml:"deckA"`
	DeckB  uint8   `yaml:"deckB"`
	FXA    uint8   `yaml:"fxA"`
	FXB    uint8   `yaml:"fxB"`
	Center uint8   `yaml:"center"`
	Pads   []uint8 `yaml:"pads"` // one channel per deck 1..4
}

// Button describes one physical button on a deck channel.
type Button struct {
	Note     uint8  `yaml:"note"`
	Label    string `yaml:"label"`
	Lockable bool   `yaml:"lockable"`
}

// Remap maps an alternate (shift-layer) note to its canonical note.
// Channel restricts the remap to one named channel; empty means any.
type Remap struct {
	From    uint8  `yaml:"from"`
	To      uint8  `yaml:"to"`
	Channel string `yaml:"channel"`
}

// ModeButton maps a pad-channel note to a pad mode.
type ModeButton struct {
	Note uint8  `yaml:"note"`
	Mode string `yaml:"mode"`
}

// FXButton maps an fx-channel note to its base deck (1 or 2).
type FXButton struct {
	Note uint8 `yaml:"note"`
	Deck int   `yaml:"deck"`
}

// Knobs names the center-channel controller numbers.
type Knobs struct {
	Tempo      uint8 `yaml:"tempo"`
	Browse     uint8 `yaml:"browse"`
	Master     uint8 `yaml:"master"`
	DeckVolume uint8 `yaml:"deckVolume"`
}

// Layout is the static button-to-label table for one surface model.
type Layout struct {
	Name       string       `yaml:"name"`
	Channels   Channels     `yaml:"channels"`
	Buttons    []Button     `yaml:"buttons"`
	ShiftRemap []Remap      `yaml:"shiftRemap"`
	PadModes   []ModeButton `yaml:"padModes"`
	FXAssign   []FXButton   `yaml:"fxAssign"`
	Knobs      Knobs        `yaml:"knobs"`
}

// DefaultLayout parses the embedded layout table.
func DefaultLayout() *Layout {
	l, err := ParseLayout(defaultLayoutYAML)
	if err != nil {
		// The embedded table is part of the build; a parse failure is a bug.
		panic(fmt.Sprintf("surface: embedded layout: %v", err))
	}
	return l
}

// ParseLayout reads a layout table from YAML.
func ParseLayout(data []byte) (*Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	if len(l.Channels.Pads) != 4 {
		return nil, fmt.Errorf("layout %q: need 4 pad channels, got %d", l.Name, len(l.Channels.Pads))
	}
	return &l, nil
}

// ButtonLabel returns the label for a deck-channel note, or "".
func (l *Layout) ButtonLabel(note uint8) string {
	for _, b := range l.Buttons {
		if b.Note == note {
			return b.Label
		}
	}
	return ""
}

// NoteFor returns the note for a button label, or false.
func (l *Layout) NoteFor(label string) (uint8, bool) {
	for _, b := range l.Buttons {
		if b.Label == label {
			return b.Note, true
		}
	}
	return 0, false
}

// Lockable reports whether a deck-channel note is a sticky-latch candidate.
func (l *Layout) Lockable(note uint8) bool {
	for _, b := range l.Buttons {
		if b.Note == note {
			return b.Lockable
		}
	}
	return false
}

// PadModeFor returns the pad mode selected by a pad-channel note.
func (l *Layout) PadModeFor(note uint8) (PadMode, bool) {
	for _, m := range l.PadModes {
		if m.Note == note {
			switch m.Mode {
			case "hotcue":
				return ModeHotCue, true
			case "roll":
				return ModeRoll, true
			case "slicer":
				return ModeSlicer, true
			case "sampler":
				return ModeSampler, true
			}
		}
	}
	return ModeHotCue, false
}

// FXBaseDeck returns the base deck (1 or 2) for an fx-channel note.
func (l *Layout) FXBaseDeck(note uint8) (int, bool) {
	for _, f := range l.FXAssign {
		if f.Note == note {
			return f.Deck, true
		}
	}
	return 0, false
}

// PadChannelDeck returns which deck (1..4) a pad channel addresses, or 0.
func (l *Layout) PadChannelDeck(channel uint8) int {
	for i, ch := range l.Channels.Pads {
		if ch == channel {
			return i + 1
		}
	}
	return 0
}

// channelName returns the layout name for a channel number, for remap scoping.
func (l *Layout) channelName(channel uint8) string {
	switch channel {
	case l.Channels.DeckA:
		return "deckA"
	case l.Channels.DeckB:
		return "deckB"
	case l.Channels.FXA:
		return "fxA"
	case l.Channels.FXB:
		return "fxB"
	case l.Channels.Center:
		return "center"
	}
	return ""
}
