package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	DeckIdle    rune // ○ no track
	DeckLoaded  rune // ◎ track loaded, stopped
	DeckPlaying rune // ● playing
	DeckHeld    rune // ◉ roll/reverse held
	Meter       rune // ▮ position meter fill
	MeterEmpty  rune // ▯ position meter empty
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			DeckIdle:    '○',
			DeckLoaded:  '◎',
			DeckPlaying: '●',
			DeckHeld:    '◉',
			Meter:       '▮',
			MeterEmpty:  '▯',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0
	RoleSurface = 0.1
	RoleMuted   = 0.2
	RoleFG      = 0.35
	RoleAccent  = 0.5
	RoleActive  = 0.65
	RoleWarning = 0.8
	RoleBright  = 1.0
)

// Style helpers

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Bright() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBright))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
