package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// DeviceEvent is emitted when the control surface connects/disconnects
type DeviceEvent struct {
	Type    DeviceEventType
	Surface Surface
	ID      string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// DeviceManager handles hot-plug detection of the control surface
type DeviceManager struct {
	surfaces map[string]Surface
	mu       sync.RWMutex
	events   chan DeviceEvent
	pollRate time.Duration
	portName string // configured port substring, "" = builtin match
}

// NewDeviceManager creates a new device manager. portName narrows the port
// match to a configured substring; empty accepts any DDJ-named port.
func NewDeviceManager(portName string) *DeviceManager {
	return &DeviceManager{
		surfaces: make(map[string]Surface),
		events:   make(chan DeviceEvent, 16),
		pollRate: time.Second,
		portName: portName,
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// GetSurface returns the first connected surface (or nil)
func (dm *DeviceManager) GetSurface() Surface {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	for _, s := range dm.surfaces {
		return s
	}
	return nil
}

// ScanOnce performs a single blocking scan. Used at startup, where an absent
// surface is fatal.
func (dm *DeviceManager) ScanOnce() Surface {
	dm.scan()
	return dm.GetSurface()
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

func (dm *DeviceManager) scan() {
	// Get current MIDI ports with timeout (CoreMIDI can hang)
	type portsResult struct {
		inPorts  []drivers.In
		outPorts []drivers.Out
	}

	ch := make(chan portsResult, 1)
	go func() {
		inPorts := gomidi.GetInPorts()
		outPorts := gomidi.GetOutPorts()
		ch <- portsResult{inPorts: inPorts, outPorts: outPorts}
	}()

	var inPorts []drivers.In
	var outPorts []drivers.Out

	select {
	case result := <-ch:
		inPorts = result.inPorts
		outPorts = result.outPorts
	case <-time.After(3 * time.Second):
		// MIDI subsystem is hung - skip this scan
		return
	}

	seenIDs := make(map[string]bool)

	for i, inPort := range inPorts {
		if !IsDDJ(inPort.String(), dm.portName) {
			continue
		}
		id := inPort.String()
		seenIDs[id] = true

		dm.mu.RLock()
		_, exists := dm.surfaces[id]
		dm.mu.RUnlock()

		if !exists {
			// Find matching output port for indicator feedback
			var outPort drivers.Out
			for j, op := range outPorts {
				if strings.EqualFold(op.String(), id) {
					outPort = outPorts[j]
					break
				}
			}

			ddj, err := NewDDJController(id, inPorts[i], outPort)
			if err != nil {
				continue
			}

			dm.mu.Lock()
			dm.surfaces[id] = ddj
			dm.mu.Unlock()

			dm.events <- DeviceEvent{
				Type:    DeviceConnected,
				Surface: ddj,
				ID:      id,
			}
		}
	}

	// Check for disconnects
	dm.mu.Lock()
	var toRemove []string
	for id := range dm.surfaces {
		if !seenIDs[id] {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range toRemove {
		s := dm.surfaces[id]
		s.Close()
		delete(dm.surfaces, id)
		dm.events <- DeviceEvent{
			Type: DeviceDisconnected,
			ID:   id,
		}
	}
	dm.mu.Unlock()
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, s := range dm.surfaces {
		s.Close()
	}
	dm.surfaces = make(map[string]Surface)
}
