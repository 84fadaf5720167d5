package event

import "fmt"

// RunAfterCondition polls a predicate every tick and runs an action the
// first time it holds.
type RunAfterCondition struct {
	condition func() bool
	action    func()
	done      bool
	polls     int
}

// NewRunAfterCondition creates a RunAfterCondition.
func NewRunAfterCondition(condition func() bool, action func()) *RunAfterCondition {
	return &RunAfterCondition{condition: condition, action: action}
}

// Process evaluates the condition, running the action if it holds.
func (r *RunAfterCondition) Process() Status {
	if r.done {
		return Done
	}
	r.polls++
	if !r.condition() {
		return InProgress
	}
	r.done = true
	if r.action != nil {
		r.action()
	}
	return Done
}

func (r *RunAfterCondition) String() string {
	return fmt.Sprintf("RunAfterCondition(polls=%d, done=%t)", r.polls, r.done)
}
