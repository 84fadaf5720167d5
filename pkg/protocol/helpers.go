package protocol

import (
	"encoding/base64"
	"fmt"
	"strconv"
)

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewReadyMessage accepts a controller and reports the battery.
func NewReadyMessage(battery string) *Message {
	return NewMessage(KindReady, battery)
}

// NewBusyMessage turns a controller away.
func NewBusyMessage() *Message {
	return NewMessage(KindBusy)
}

// NewBatteryMessage reports the battery voltage.
func NewBatteryMessage(battery string) *Message {
	return NewMessage(KindBattery, battery)
}

// NewSnapshotMessage carries a JPEG, base64 encoded.
func NewSnapshotMessage(jpeg []byte) *Message {
	return NewMessage(KindSnapshot, base64.StdEncoding.EncodeToString(jpeg))
}

// NewBeginMessage presses a control axis.
func NewBeginMessage(c Control, value float64) *Message {
	return NewMessage(KindBegin, string(c), formatValue(value))
}

// NewReleaseMessage releases a control axis.
func NewReleaseMessage(c Control, value float64) *Message {
	return NewMessage(KindRelease, string(c), formatValue(value))
}

// NewPlaySoundMessage asks the robot to speak text.
func NewPlaySoundMessage(text string) *Message {
	return NewMessage(KindPlaySound, text)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// Command is a validated controller command.
type Command struct {
	Kind Kind

	// Control and Value are set for begin and release.
	Control Control
	Value   float64

	// Text is set for playsound.
	Text string
}

// ParseCommand checks m is a command the robot accepts, with the right
// arguments.
func ParseCommand(m *Message) (*Command, error) {
	cmd := &Command{Kind: m.Kind}

	switch m.Kind {
	case KindBegin, KindRelease:
		if len(m.Args) != 2 {
			return nil, &ArgsError{Kind: m.Kind, Required: 2, Args: m.Args}
		}
		c := Control(m.Args[0])
		switch c {
		case ControlDrive, ControlTurn, ControlHeadTurn:
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownControl, m.Args[0])
		}
		v, err := strconv.ParseFloat(m.Args[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadValue, m.Args[1])
		}
		cmd.Control = c
		cmd.Value = v

	case KindPlaySound:
		if len(m.Args) != 1 {
			return nil, &ArgsError{Kind: m.Kind, Required: 1, Args: m.Args}
		}
		cmd.Text = m.Args[0]

	case KindStop, KindStopSound, KindSnapshot, KindToggleLights, KindExit:

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, m.Kind)
	}
	return cmd, nil
}

// GetBattery extracts the voltage from a ready or battery message.
func (m *Message) GetBattery() (string, error) {
	if (m.Kind != KindReady && m.Kind != KindBattery) || len(m.Args) < 1 {
		return "", &ArgsError{Kind: m.Kind, Required: 1, Args: m.Args}
	}
	return m.Args[0], nil
}

// GetSnapshot decodes the JPEG from a snapshot message.
func (m *Message) GetSnapshot() ([]byte, error) {
	if m.Kind != KindSnapshot || len(m.Args) != 1 {
		return nil, &ArgsError{Kind: m.Kind, Required: 1, Args: m.Args}
	}
	data, err := base64.StdEncoding.DecodeString(m.Args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return data, nil
}
