package deck

import (
	"fmt"
	"os"
	"sync"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"

	"quaddeck/debug"
)

// Loader decodes one audio file into a buffer at the engine's format.
type Loader func(path string) (*beep.Buffer, error)

// WAVLoader decodes a WAV file, resampling to the given rate if needed.
func WAVLoader(sr beep.SampleRate) Loader {
	return func(path string) (*beep.Buffer, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()

		s, format, err := wav.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		defer s.Close()

		var src beep.Streamer = s
		if format.SampleRate != sr {
			src = beep.Resample(4, format.SampleRate, sr, s)
		}
		buf := beep.NewBuffer(beep.Format{SampleRate: sr, NumChannels: 2, Precision: 2})
		buf.Append(src)
		return buf, nil
	}
}

// BufferCache caches decoded buffers by file path. Concurrent requests for
// the same uncached path are coalesced: one in-flight load satisfies all
// waiters. Failed loads are not cached, so a later request retries.
type BufferCache struct {
	mu       sync.Mutex
	loader   Loader
	bufs     map[string]*beep.Buffer
	inflight map[string]chan struct{}
}

func NewBufferCache(loader Loader) *BufferCache {
	return &BufferCache{
		loader:   loader,
		bufs:     make(map[string]*beep.Buffer),
		inflight: make(map[string]chan struct{}),
	}
}

// Get returns the decoded buffer for a path, loading it on first use.
func (c *BufferCache) Get(path string) (*beep.Buffer, error) {
	for {
		c.mu.Lock()
		if buf, ok := c.bufs[path]; ok {
			c.mu.Unlock()
			return buf, nil
		}
		if wait, ok := c.inflight[path]; ok {
			c.mu.Unlock()
			<-wait
			continue // loaded or failed; re-check
		}
		wait := make(chan struct{})
		c.inflight[path] = wait
		c.mu.Unlock()

		buf, err := c.loader(path)

		c.mu.Lock()
		delete(c.inflight, path)
		if err == nil {
			c.bufs[path] = buf
		}
		c.mu.Unlock()
		close(wait)

		if err != nil {
			return nil, err
		}
		debug.Log("cache", "loaded %s (%d samples)", path, buf.Len())
		return buf, nil
	}
}

// Reversed returns a sample-reversed copy of a path's buffer, cached under
// its own key. Used for censor playback.
func (c *BufferCache) Reversed(path string) (*beep.Buffer, error) {
	key := path + "#rev"
	c.mu.Lock()
	if buf, ok := c.bufs[key]; ok {
		c.mu.Unlock()
		return buf, nil
	}
	c.mu.Unlock()

	fwd, err := c.Get(path)
	if err != nil {
		return nil, err
	}

	samples := make([][2]float64, fwd.Len())
	s := fwd.Streamer(0, fwd.Len())
	for pos := 0; pos < len(samples); {
		n, ok := s.Stream(samples[pos:])
		if !ok {
			break
		}
		pos += n
	}
	for i, j := 0, len(samples)-1; i < j; i, j = i+1, j-1 {
		samples[i], samples[j] = samples[j], samples[i]
	}

	rev := beep.NewBuffer(fwd.Format())
	rev.Append(&memStreamer{samples: samples})

	c.mu.Lock()
	c.bufs[key] = rev
	c.mu.Unlock()
	debug.Log("cache", "built reversed %s", path)
	return rev, nil
}

// memStreamer streams an in-memory sample slice once.
type memStreamer struct {
	samples [][2]float64
	pos     int
}

func (m *memStreamer) Stream(samples [][2]float64) (int, bool) {
	if m.pos >= len(m.samples) {
		return 0, false
	}
	n := copy(samples, m.samples[m.pos:])
	m.pos += n
	return n, true
}

func (m *memStreamer) Err() error { return nil }
