package midi

import (
	"fmt"
	"strings"

	"quaddeck/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// DDJController handles a DDJ-style 4-deck controller: buttons arrive as
// NoteOn/NoteOff and knobs as CC, each on the unit's fixed channels. The
// driver preserves arrival order on a single buffered channel.
type DDJController struct {
	id       string
	outPort  drivers.Out
	inPort   drivers.In
	send     func(msg gomidi.Message) error
	stopFunc func()

	msgChan chan Message
}

// NewDDJController opens a controller on the given ports.
func NewDDJController(id string, inPort drivers.In, outPort drivers.Out) (*DDJController, error) {
	c := &DDJController{
		id:      id,
		inPort:  inPort,
		outPort: outPort,
		msgChan: make(chan Message, 64),
	}

	if outPort != nil {
		send, err := gomidi.SendTo(outPort)
		if err != nil {
			return nil, fmt.Errorf("open output: %w", err)
		}
		c.send = send
	}

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			var channel, note, velocity uint8
			var cc, value uint8

			switch {
			case msg.GetNoteOn(&channel, &note, &velocity):
				c.deliver(Message{Kind: KindButton, Channel: channel, Number: note, Value: velocity, Pressed: velocity > 0})
			case msg.GetNoteOff(&channel, &note, &velocity):
				c.deliver(Message{Kind: KindButton, Channel: channel, Number: note})
			case msg.GetControlChange(&channel, &cc, &value):
				c.deliver(Message{Kind: KindKnob, Channel: channel, Number: cc, Value: value})
			}
		})
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		c.stopFunc = stop
	}

	return c, nil
}

func (c *DDJController) deliver(m Message) {
	select {
	case c.msgChan <- m:
	default:
		debug.LogEvery(50, "ddj", "input buffer full, dropped ch=%d num=0x%02X", m.Channel, m.Number)
	}
}

func (c *DDJController) ID() string {
	return c.id
}

func (c *DDJController) Messages() <-chan Message {
	return c.msgChan
}

// SetIndicator mirrors state back to the hardware as NoteOn velocity.
func (c *DDJController) SetIndicator(channel, number, intensity uint8) error {
	if c.send == nil {
		return nil
	}
	return c.send(gomidi.NoteOn(channel, number, intensity))
}

func (c *DDJController) Close() error {
	// Blank all indicators the surface may have lit
	if c.send != nil {
		for ch := uint8(0); ch < 11; ch++ {
			for n := uint8(0); n < 0x7F; n++ {
				c.send(gomidi.NoteOn(ch, n, 0))
			}
		}
	}
	if c.stopFunc != nil {
		c.stopFunc()
	}
	close(c.msgChan)
	return nil
}

// IsDDJ reports whether a port name looks like a supported controller.
// An explicit configured name wins over the builtin match.
func IsDDJ(name, configured string) bool {
	name = strings.ToLower(name)
	if configured != "" {
		return strings.Contains(name, strings.ToLower(configured))
	}
	return strings.Contains(name, "ddj")
}
