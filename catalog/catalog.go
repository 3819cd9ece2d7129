package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"quaddeck/debug"
)

// NumDecks is the number of playback slots.
const NumDecks = 4

// Catalog holds the track list and which track is loaded on each deck.
// The track list is immutable after construction; the loaded slots are
// mutated from the control timeline while the renderer reads them, so
// they sit behind a lock.
type Catalog struct {
	tracks []*Track

	mu     sync.RWMutex
	loaded [NumDecks]*Track // index 0 = deck 1
}

// New builds a catalog from an already-validated track slice.
func New(tracks []*Track) *Catalog {
	return &Catalog{tracks: tracks}
}

// LoadFile reads a JSON track list (a plain array of track records).
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read track list: %w", err)
	}

	var tracks []*Track
	if err := json.Unmarshal(data, &tracks); err != nil {
		return nil, fmt.Errorf("parse track list: %w", err)
	}

	for _, t := range tracks {
		if !ValidTempo(t.BPM) {
			return nil, fmt.Errorf("track %d %q: tempo %d not in %v", t.ID, t.Title, t.BPM, Tempos)
		}
		if t.Key < 1 || t.Key > NumKeys {
			return nil, fmt.Errorf("track %d %q: key %d out of range 1..%d", t.ID, t.Title, t.Key, NumKeys)
		}
	}

	return New(tracks), nil
}

// ListTracksAtTempo returns the tracks at one tempo, catalog order.
func (c *Catalog) ListTracksAtTempo(bpm int) []*Track {
	var out []*Track
	for _, t := range c.tracks {
		if t.BPM == bpm {
			out = append(out, t)
		}
	}
	return out
}

// ListTracksNearKey returns the tracks at one tempo ordered by circular key
// distance from the given key, closest first. Ties keep catalog order.
func (c *Catalog) ListTracksNearKey(bpm, key int) []*Track {
	out := c.ListTracksAtTempo(bpm)
	sort.SliceStable(out, func(i, j int) bool {
		return KeyDistance(out[i].Key, key) < KeyDistance(out[j].Key, key)
	})
	return out
}

// LoadTrack places a track on a deck (1..4). Replaces any prior track.
func (c *Catalog) LoadTrack(deck int, t *Track) {
	if deck < 1 || deck > NumDecks {
		debug.Log("catalog", "load: deck %d out of range", deck)
		return
	}
	c.mu.Lock()
	c.loaded[deck-1] = t
	c.mu.Unlock()
	if t != nil {
		debug.Log("catalog", "deck %d <- %d %q (%d bpm, key %d)", deck, t.ID, t.Title, t.BPM, t.Key)
	}
}

// UnloadTrack clears a deck's slot.
func (c *Catalog) UnloadTrack(deck int) {
	if deck < 1 || deck > NumDecks {
		return
	}
	c.mu.Lock()
	c.loaded[deck-1] = nil
	c.mu.Unlock()
}

// GetLoadedTrack returns the track on a deck (1..4), or nil.
func (c *Catalog) GetLoadedTrack(deck int) *Track {
	if deck < 1 || deck > NumDecks {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded[deck-1]
}
