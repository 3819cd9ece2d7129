package catalog

import (
	"sync"
	"testing"
)

func testTracks() []*Track {
	return []*Track{
		{ID: 1, Title: "one", BPM: 94, Key: 1},
		{ID: 2, Title: "two", BPM: 94, Key: 7},
		{ID: 3, Title: "three", BPM: 84, Key: 3},
		{ID: 4, Title: "four", BPM: 94, Key: 12},
		{ID: 5, Title: "five", BPM: 102, Key: 5},
	}
}

func TestListTracksAtTempo(t *testing.T) {
	c := New(testTracks())

	got := c.ListTracksAtTempo(94)
	if len(got) != 3 {
		t.Fatalf("got %d tracks at 94, want 3", len(got))
	}
	for _, tr := range got {
		if tr.BPM != 94 {
			t.Errorf("track %d has bpm %d", tr.ID, tr.BPM)
		}
	}

	if got := c.ListTracksAtTempo(120); got != nil {
		t.Errorf("expected no tracks at 120, got %d", len(got))
	}
}

func TestListTracksNearKey(t *testing.T) {
	c := New(testTracks())

	// From key 1: track 1 (dist 0), track 4 (dist 1), track 2 (dist 6).
	got := c.ListTracksNearKey(94, 1)
	if len(got) != 3 {
		t.Fatalf("got %d tracks, want 3", len(got))
	}
	wantOrder := []int{1, 4, 2}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Errorf("position %d: got track %d, want %d", i, got[i].ID, id)
		}
	}
}

func TestLoadUnload(t *testing.T) {
	c := New(testTracks())
	tr := c.ListTracksAtTempo(94)[0]

	if got := c.GetLoadedTrack(1); got != nil {
		t.Fatalf("deck 1 should start empty, got %v", got)
	}

	c.LoadTrack(1, tr)
	if got := c.GetLoadedTrack(1); got != tr {
		t.Fatalf("deck 1 = %v, want %v", got, tr)
	}

	c.UnloadTrack(1)
	if got := c.GetLoadedTrack(1); got != nil {
		t.Fatalf("deck 1 should be empty after unload, got %v", got)
	}

	// Out-of-range decks are ignored, not fatal.
	c.LoadTrack(9, tr)
	if got := c.GetLoadedTrack(9); got != nil {
		t.Fatalf("deck 9 should never hold a track")
	}
}

// The renderer polls loaded tracks every frame while the control timeline
// loads and unloads them. Run under -race.
func TestLoadedSlotsConcurrentWithReader(t *testing.T) {
	c := New(testTracks())
	tr := c.ListTracksAtTempo(94)[0]

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			c.LoadTrack(1, tr)
			c.UnloadTrack(1)
		}
	}()

	for i := 0; i < 1000; i++ {
		if got := c.GetLoadedTrack(1); got != nil && got != tr {
			t.Errorf("deck 1 = %v, want nil or track %d", got, tr.ID)
		}
	}
	wg.Wait()
}
