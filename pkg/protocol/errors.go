package protocol

import (
	"errors"
	"fmt"
)

// Sentinel errors for malformed messages.
var (
	// ErrNotUTF8 is returned for a message that is not valid UTF-8.
	ErrNotUTF8 = errors.New("protocol: message is not utf-8")

	// ErrNotList is returned for JSON that is not an array.
	ErrNotList = errors.New("protocol: message is not a list")

	// ErrEmptyCommand is returned for an empty array.
	ErrEmptyCommand = errors.New("protocol: message is empty")

	// ErrUnknownCommand is returned for a kind the robot does not accept.
	ErrUnknownCommand = errors.New("protocol: unknown command")

	// ErrUnknownControl is returned for an unknown movement axis.
	ErrUnknownControl = errors.New("protocol: unknown control")

	// ErrBadValue is returned for an axis value that is not a number.
	ErrBadValue = errors.New("protocol: bad control value")

	// ErrBadArgs is matched by every ArgsError.
	ErrBadArgs = errors.New("protocol: wrong number of arguments")
)

// ArgsError reports a command with the wrong number of arguments.
type ArgsError struct {
	// Kind is the command.
	Kind Kind

	// Required is the number of arguments the command takes.
	Required int

	// Args are the arguments received.
	Args []string
}

// Error implements the error interface.
func (e *ArgsError) Error() string {
	return fmt.Sprintf("protocol: command %q requires %d arg(s); got %q", e.Kind, e.Required, e.Args)
}

// Is makes errors.Is(err, ErrBadArgs) true for any ArgsError.
func (e *ArgsError) Is(target error) bool {
	return target == ErrBadArgs
}
