package router

import "quaddeck/catalog"

// CuePoint is a hot-cue landing spot: a section and a beat offset into it.
type CuePoint struct {
	Section    catalog.Section
	BeatOffset float64
}

// hotCuePoints maps pad index to cue point in HOT CUE mode. Pad 0 is the
// lead top; pads 1-3 land just after the body downbeat; pads 4-7 step
// through the body in 16-beat phrases.
var hotCuePoints = [8]CuePoint{
	{catalog.SectionLead, 0},
	{catalog.SectionBody, 0.5},
	{catalog.SectionBody, 0.75},
	{catalog.SectionBody, 1.0},
	{catalog.SectionBody, 0},
	{catalog.SectionBody, 16},
	{catalog.SectionBody, 32},
	{catalog.SectionBody, 48},
}

// rollBeatsLadder maps pad index to loop length in ROLL mode, halving from
// 2 beats down to 1/64.
var rollBeatsLadder = [8]float64{2, 1, 0.5, 0.25, 0.125, 0.0625, 0.03125, 0.015625}
