package event

import (
	"context"
	"log/slog"
	"sync"

	"github.com/teslashibe/go-dalek/internal/log"
)

// HookResult tells the Queue what to do after a pre or post hook.
type HookResult int

const (
	// Continue leaves the queue as it is.
	Continue HookResult = iota
	// Discard drops every pending event, as Clear would.
	Discard
)

// Hook runs inside the queue's critical section at the start or end of each
// Process call. It must not call methods on the same Queue; return Discard to
// drop pending events instead.
type Hook func() HookResult

// Option configures a Queue.
type Option func(*Queue)

// WithPreProcess sets the hook run before pending events are processed.
func WithPreProcess(h Hook) Option {
	return func(q *Queue) { q.pre = h }
}

// WithPostProcess sets the hook run after pending events are processed.
func WithPostProcess(h Hook) Option {
	return func(q *Queue) { q.post = h }
}

// WithName names the queue in log output.
func WithName(name string) Option {
	return func(q *Queue) { q.name = name }
}

// WithVerbose logs every pending event on each Process call.
func WithVerbose(verbose bool) Option {
	return func(q *Queue) { q.verbose = verbose }
}

// Queue is an ordered list of pending events processed once per tick.
//
// Process runs on the scheduler goroutine while Add, Replace and Clear may be
// called from any goroutine; all of them are mutually exclusive, so a Replace
// lands either wholly before or wholly after a Process pass.
type Queue struct {
	mu     sync.Mutex
	events []Event
	empty  chan struct{} // closed while the queue is empty

	pre     Hook
	post    Hook
	name    string
	verbose bool
}

// NewQueue creates an empty Queue.
func NewQueue(opts ...Option) *Queue {
	q := &Queue{
		empty: make(chan struct{}),
		name:  "queue",
	}
	close(q.empty)
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Name returns the queue's name.
func (q *Queue) Name() string {
	return q.name
}

// Add appends events to the end of the queue.
func (q *Queue) Add(events ...Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.addLocked(events)
}

// AddIfEmpty adds events only if nothing is pending, and reports whether it
// did. It keeps a job and its cleanup from overlapping with a previous run.
func (q *Queue) AddIfEmpty(events ...Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) > 0 {
		return false
	}
	q.addLocked(events)
	return true
}

// Clear drops every pending event without processing it.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.clearLocked()
}

// Replace atomically clears the queue and adds events.
func (q *Queue) Replace(events ...Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.clearLocked()
	q.addLocked(events)
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Process runs one tick: the pre hook, every pending event in order, then the
// post hook. Events that return Done are removed; the rest keep their place.
func (q *Queue) Process() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.pre != nil && q.pre() == Discard {
		q.clearLocked()
	}

	if q.verbose && len(q.events) > 0 {
		q.logPending()
	}

	kept := make([]Event, 0, len(q.events))
	for _, e := range q.events {
		if q.run(e) == InProgress {
			kept = append(kept, e)
		}
	}
	q.events = kept

	if q.post != nil && q.post() == Discard {
		q.clearLocked()
	}

	if len(q.events) == 0 {
		q.signalEmpty()
	}
}

// run processes one event. An event that panics is logged and dropped so the
// rest of the queue keeps its order.
func (q *Queue) run(e Event) (status Status) {
	defer func() {
		if r := recover(); r != nil {
			q.logger().Error("event panicked", "event", describe(e), "panic", r)
			status = Done
		}
	}()
	return e.Process()
}

// WaitUntilEmpty blocks until the queue has no pending events or ctx is done.
// It returns immediately if the queue is already empty.
func (q *Queue) WaitUntilEmpty(ctx context.Context) error {
	q.mu.Lock()
	empty := q.empty
	q.mu.Unlock()

	select {
	case <-empty:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) addLocked(events []Event) {
	if len(events) == 0 {
		return
	}
	if len(q.events) == 0 {
		q.empty = make(chan struct{})
	}
	q.events = append(q.events, events...)
}

func (q *Queue) clearLocked() {
	clear(q.events)
	q.events = q.events[:0]
	q.signalEmpty()
}

func (q *Queue) signalEmpty() {
	select {
	case <-q.empty:
	default:
		close(q.empty)
	}
}

func (q *Queue) logPending() {
	descs := make([]string, len(q.events))
	for i, e := range q.events {
		descs[i] = describe(e)
	}
	q.logger().Info("pending events", slog.Int("count", len(q.events)), slog.Any("events", descs))
}

func (q *Queue) logger() *slog.Logger {
	return log.Component("event").With("queue", q.name)
}
