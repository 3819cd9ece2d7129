// Package router maps resolved control events onto deck engine calls and
// publishes the semantic event stream the renderer observes.
package router

import "quaddeck/catalog"

// EventKind tags an outbound semantic event.
type EventKind int

const (
	EventLayout EventKind = iota // surface (re)connected, full state follows
	EventRaw                     // raw button/knob, for diagnostics views
	EventLock
	EventTempoChange
	EventDeckButtons // deck-alternate toggle states
	EventPadModes    // all four decks' pad modes
	EventModeChange  // one deck's mode changed
	EventPadPress
	EventPadRelease
	EventSpindown
	EventSyncChange
	EventLoad
)

// Event is a flat record of one state change. Fields are populated per kind.
type Event struct {
	Kind    EventKind
	Deck    int
	Channel uint8
	Number  uint8
	Value   uint8
	Pad     int
	Mode    string
	Locked  bool
	On      bool
	Tempo   int
	Source  int
	Targets []int
	Track   *catalog.Track
	Modes   [catalog.NumDecks]string
	AltA    bool
	AltB    bool
}
