package theme

type RGB [3]uint8

type Palette struct {
	Name   string
	Colors []RGB
}

// DefaultPalette is a dark blue-to-amber gradient tuned for the deck view.
func DefaultPalette() *Palette {
	return &Palette{
		Name: "club",
		Colors: []RGB{
			{16, 14, 40},    // deep night blue
			{36, 30, 80},    // dark indigo
			{70, 55, 130},   // violet
			{120, 90, 180},  // soft purple (readable)
			{190, 110, 200}, // magenta
			{235, 120, 150}, // warm pink
			{250, 140, 90},  // coral
			{255, 170, 60},  // orange
			{255, 210, 80},  // amber
			{255, 245, 170}, // pale gold
		},
	}
}

// Lookup returns interpolated color for normalized value 0-1
func (p *Palette) Lookup(norm float64) RGB {
	if norm <= 0 {
		return p.Colors[0]
	}
	if norm >= 1 {
		return p.Colors[len(p.Colors)-1]
	}

	pos := norm * float64(len(p.Colors)-1)
	i := int(pos)
	frac := pos - float64(i)

	c0 := p.Colors[i]
	c1 := p.Colors[i+1]

	return RGB{
		lerp(c0[0], c1[0], frac),
		lerp(c0[1], c1[1], frac),
		lerp(c0[2], c1[2], frac),
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a)*(1-t) + float64(b)*t)
}
