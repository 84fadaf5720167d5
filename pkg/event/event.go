// Package event implements the cooperative scheduling core: small units of
// deferred work (Events) held in per-actor Queues that a single scheduler
// ticks at a fixed rate.
//
// Nothing in this package sleeps or blocks the scheduler. Anything timed or
// conditional is expressed as an Event that is polled once per tick until it
// reports Done.
package event

// Status is the result of processing an Event for one tick.
type Status int

const (
	// InProgress keeps the event in its queue for the next tick.
	InProgress Status = iota
	// Done removes the event from its queue.
	Done
)

func (s Status) String() string {
	switch s {
	case InProgress:
		return "in_progress"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Event is a unit of work polled once per tick.
//
// Process must not block and must not call back into the Queue that holds
// the event. Once an event has returned Done, further calls must return Done
// without side effects.
type Event interface {
	Process() Status
}

// Func adapts an ordinary function to the Event interface. The function
// decides its own Status on every call.
type Func func() Status

// Process calls f.
func (f Func) Process() Status {
	return f()
}
