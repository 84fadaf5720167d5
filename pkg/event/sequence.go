package event

import (
	"fmt"
	"strings"
)

type sequence struct {
	events []Event
}

// Sequence chains events inside a single queue slot. Each event starts on
// the same tick the previous one finishes, and the sequence is Done when the
// last one is.
//
// Use it instead of having an event add a follow-up to its own queue.
func Sequence(events ...Event) Event {
	return &sequence{events: events}
}

func (s *sequence) Process() Status {
	for len(s.events) > 0 {
		if s.events[0].Process() == InProgress {
			return InProgress
		}
		s.events[0] = nil
		s.events = s.events[1:]
	}
	return Done
}

func (s *sequence) String() string {
	parts := make([]string, len(s.events))
	for i, e := range s.events {
		parts[i] = describe(e)
	}
	return "Sequence[" + strings.Join(parts, " -> ") + "]"
}

func describe(e Event) string {
	if s, ok := e.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", e)
}
