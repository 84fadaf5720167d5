package event

import (
	"fmt"
	"time"
)

// Timer counts down a number of ticks, optionally runs a start action on
// its first call and runs an end action when the count reaches zero.
//
// A duration of d on a tick of t gives max(floor(d/t)-1, 0) remaining ticks,
// so a timer of N ticks finishes on its Nth call and a zero duration timer
// finishes on its first.
type Timer struct {
	ticks  int
	reset  int
	repeat bool
	start  func()
	end    func()
}

// NewTimer creates a Timer. A repeating timer never finishes; it runs end
// once every period instead. NewTimer panics if tick is not positive.
func NewTimer(d, tick time.Duration, repeat bool, start, end func()) *Timer {
	if tick <= 0 {
		panic("event: non-positive tick length for NewTimer")
	}
	n := int(d/tick) - 1
	if n < 0 {
		n = 0
	}
	return &Timer{
		ticks:  n,
		reset:  n,
		repeat: repeat,
		start:  start,
		end:    end,
	}
}

// NewImmediate runs action on the next tick.
func NewImmediate(action func()) *Timer {
	return &Timer{end: action}
}

// NewRunAfterTime runs action once after d.
func NewRunAfterTime(d, tick time.Duration, action func()) *Timer {
	return NewTimer(d, tick, false, nil, action)
}

// NewRepeat runs action every d, forever. The first run happens after d,
// not immediately.
func NewRepeat(d, tick time.Duration, action func()) *Timer {
	return NewTimer(d, tick, true, nil, action)
}

// NewDurationAction runs start on the next tick and end d later.
func NewDurationAction(d, tick time.Duration, start, end func()) *Timer {
	return NewTimer(d, tick, false, start, end)
}

// Process advances the timer by one tick.
func (t *Timer) Process() Status {
	if t.start != nil {
		start := t.start
		t.start = nil
		start()
	}

	if t.ticks == 0 {
		if t.end != nil {
			t.end()
		}
		if t.repeat {
			t.ticks = t.reset
			return InProgress
		}
	}

	if t.ticks < 0 {
		return Done
	}
	t.ticks--
	if t.ticks < 0 {
		return Done
	}
	return InProgress
}

// Remaining returns the ticks left before the end action runs.
func (t *Timer) Remaining() int {
	if t.ticks < 0 {
		return 0
	}
	return t.ticks
}

func (t *Timer) String() string {
	if t.repeat {
		return fmt.Sprintf("Repeat(%d/%d)", t.ticks, t.reset)
	}
	return fmt.Sprintf("Timer(%d)", t.Remaining())
}
