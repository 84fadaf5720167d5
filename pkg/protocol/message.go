// Package protocol defines the messages exchanged between a controller and
// the robot over the control websocket.
//
// Every message is a JSON array of strings, newline terminated: the message
// kind followed by its arguments, e.g. ["begin","drive","0.7"].
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Kind identifies a message.
type Kind string

const (
	// Controller → Robot commands
	KindBegin        Kind = "begin"        // Press a control axis
	KindRelease      Kind = "release"      // Release a control axis
	KindStop         Kind = "stop"         // Stop all movement
	KindPlaySound    Kind = "playsound"    // Speak a phrase
	KindStopSound    Kind = "stopsound"    // Cut off speech
	KindSnapshot     Kind = "snapshot"     // Take a picture (also the reply)
	KindToggleLights Kind = "togglelights" // Flip the indicator light
	KindExit         Kind = "exit"         // Shut the robot down

	// Robot → Controller responses
	KindReady   Kind = "ready"   // Connection accepted
	KindBusy    Kind = "busy"    // Another controller is connected
	KindBattery Kind = "battery" // Periodic battery voltage
)

// Control names a movement axis.
type Control string

const (
	ControlDrive    Control = "drive"
	ControlTurn     Control = "turn"
	ControlHeadTurn Control = "headturn"
)

// Message is a kind plus its arguments.
type Message struct {
	Kind Kind
	Args []string
}

// NewMessage creates a message.
func NewMessage(kind Kind, args ...string) *Message {
	return &Message{Kind: kind, Args: args}
}

// Bytes returns the newline-terminated wire form.
func (m *Message) Bytes() ([]byte, error) {
	items := make([]string, 0, len(m.Args)+1)
	items = append(items, string(m.Kind))
	items = append(items, m.Args...)

	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	return append(data, '\n'), nil
}

func (m *Message) String() string {
	if len(m.Args) == 0 {
		return string(m.Kind)
	}
	return string(m.Kind) + " " + strings.Join(m.Args, " ")
}

// ParseMessage parses the wire form. Non-string items in the array are
// converted to their JSON text, so ["begin","drive",0.5] is accepted.
func ParseMessage(data []byte) (*Message, error) {
	if !utf8.Valid(data) {
		return nil, ErrNotUTF8
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, ErrNotList
		}
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyCommand
	}

	strs := make([]string, len(items))
	for i, raw := range items {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			strs[i] = s
		} else {
			strs[i] = string(raw)
		}
	}
	return &Message{Kind: Kind(strs[0]), Args: strs[1:]}, nil
}
