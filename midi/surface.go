// Package midi is the control-surface driver layer: it turns physical MIDI
// ports into a stream of decoded button/knob messages and carries indicator
// feedback back to the hardware. Everything above this package works with
// Message values and never sees gomidi types.
package midi

// MessageKind classifies a decoded control-surface message.
type MessageKind int

const (
	KindButton MessageKind = iota // NoteOn/NoteOff
	KindKnob                      // ControlChange
)

// Message is one decoded control-surface message. Buttons report Pressed
// (release arrives with Pressed=false, Value=0); knobs report Value only.
type Message struct {
	Kind    MessageKind
	Channel uint8
	Number  uint8 // note or controller number
	Value   uint8
	Pressed bool
}

// Surface is the interface for a connected control surface.
type Surface interface {
	ID() string

	// Messages streams decoded input in arrival order.
	Messages() <-chan Message

	// SetIndicator lights a button indicator (intensity 0-127, 0 = off).
	SetIndicator(channel, number, intensity uint8) error

	// Lifecycle
	Close() error
}
