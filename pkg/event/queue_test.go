package event

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEvent finishes on its doneAt-th call; doneAt <= 0 never finishes.
type countingEvent struct {
	calls  int
	doneAt int
}

func (e *countingEvent) Process() Status {
	e.calls++
	if e.doneAt > 0 && e.calls >= e.doneAt {
		return Done
	}
	return InProgress
}

func TestQueue_FIFOAndRemoval(t *testing.T) {
	const n = 5
	a := &countingEvent{}
	b := &countingEvent{doneAt: n}

	q := NewQueue()
	q.Add(a, b)

	for i := 0; i < n; i++ {
		q.Process()
	}

	assert.Equal(t, 1, q.Len())
	assert.Equal(t, n, a.calls)
	assert.Equal(t, n, b.calls)

	q.Process()
	assert.Equal(t, n+1, a.calls)
	assert.Equal(t, n, b.calls, "removed event must not be processed")
}

func TestQueue_OrderWithinTick(t *testing.T) {
	var order []int
	q := NewQueue()
	for i := 0; i < 4; i++ {
		q.Add(NewImmediate(func() { order = append(order, i) }))
	}
	q.Process()

	assert.Equal(t, []int{0, 1, 2, 3}, order)
	assert.Equal(t, 0, q.Len())
}

func TestQueue_AllRemainingEvaluatedAfterRemoval(t *testing.T) {
	first := &countingEvent{doneAt: 1}
	second := &countingEvent{doneAt: 1}
	third := &countingEvent{}

	q := NewQueue()
	q.Add(first, second, third)
	q.Process()

	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Equal(t, 1, third.calls)
	assert.Equal(t, 1, q.Len())
}

func TestQueue_PanickingEventDropped(t *testing.T) {
	ran := 0
	kept := &countingEvent{}

	q := NewQueue()
	q.Add(
		NewImmediate(func() { ran++ }),
		kept,
		Func(func() Status { panic("boom") }),
	)

	require.NotPanics(t, q.Process)
	assert.Equal(t, 1, q.Len())
	assert.Equal(t, 1, ran)
	assert.Equal(t, 1, kept.calls)

	q.Process()
	assert.Equal(t, 1, ran, "finished event must not run again")
	assert.Equal(t, 2, kept.calls, "remaining event runs once per tick")
	assert.Equal(t, 1, q.Len())
}

func TestQueue_AddIfEmpty(t *testing.T) {
	q := NewQueue()

	assert.True(t, q.AddIfEmpty(&countingEvent{}))
	assert.Equal(t, 1, q.Len())

	assert.False(t, q.AddIfEmpty(&countingEvent{}, &countingEvent{}))
	assert.Equal(t, 1, q.Len())
}

func TestQueue_ClearSkipsProcessing(t *testing.T) {
	e := &countingEvent{}
	q := NewQueue()
	q.Add(e)
	q.Clear()
	q.Process()

	assert.Equal(t, 0, e.calls)
	assert.Equal(t, 0, q.Len())
}

func TestQueue_Replace(t *testing.T) {
	old := &countingEvent{}
	fresh := &countingEvent{}

	q := NewQueue()
	q.Add(old)
	q.Replace(fresh)
	q.Process()

	assert.Equal(t, 0, old.calls)
	assert.Equal(t, 1, fresh.calls)
}

// Replace running concurrently with Process must never let an event from the
// old set and one from the new set run in the same pass.
func TestQueue_ReplaceAtomicity(t *testing.T) {
	q := NewQueue()

	var pass atomic.Int64
	seen := make(map[int64]map[string]bool)
	var mu sync.Mutex

	tagged := func(tag string) Event {
		return Func(func() Status {
			mu.Lock()
			p := pass.Load()
			if seen[p] == nil {
				seen[p] = map[string]bool{}
			}
			seen[p][tag] = true
			mu.Unlock()
			return InProgress
		})
	}

	q.Add(tagged("old"), tagged("old"), tagged("old"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			pass.Add(1)
			q.Process()
		}
	}()

	for i := 0; i < 100; i++ {
		if i%2 == 0 {
			q.Replace(tagged("new"), tagged("new"))
		} else {
			q.Replace(tagged("old"), tagged("old"), tagged("old"))
		}
	}
	<-done

	mu.Lock()
	defer mu.Unlock()
	for p, tags := range seen {
		assert.False(t, tags["old"] && tags["new"], "pass %d ran old and new events", p)
	}
}

func TestQueue_Hooks(t *testing.T) {
	var calls []string
	q := NewQueue(
		WithPreProcess(func() HookResult {
			calls = append(calls, "pre")
			return Continue
		}),
		WithPostProcess(func() HookResult {
			calls = append(calls, "post")
			return Continue
		}),
	)
	q.Add(NewImmediate(func() { calls = append(calls, "event") }))
	q.Process()

	assert.Equal(t, []string{"pre", "event", "post"}, calls)

	calls = nil
	q.Process()
	assert.Equal(t, []string{"pre", "post"}, calls, "hooks run on an empty queue too")
}

func TestQueue_PreHookDiscard(t *testing.T) {
	e := &countingEvent{}
	discard := false
	q := NewQueue(WithPreProcess(func() HookResult {
		if discard {
			return Discard
		}
		return Continue
	}))
	q.Add(e)

	q.Process()
	assert.Equal(t, 1, e.calls)

	discard = true
	q.Process()
	assert.Equal(t, 1, e.calls, "discarded event must not run")
	assert.Equal(t, 0, q.Len())
}

func TestQueue_PostHookDiscardWakesWaiters(t *testing.T) {
	q := NewQueue(WithPostProcess(func() HookResult { return Discard }))
	q.Add(&countingEvent{})

	waited := make(chan error, 1)
	go func() { waited <- q.WaitUntilEmpty(context.Background()) }()

	q.Process()

	select {
	case err := <-waited:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("waiter not released by post-hook discard")
	}
}

func TestQueue_WaitUntilEmpty_AlreadyEmpty(t *testing.T) {
	q := NewQueue()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.NoError(t, q.WaitUntilEmpty(ctx))
}

func TestQueue_WaitUntilEmpty_ReleasedByProcess(t *testing.T) {
	q := NewQueue()
	e := &countingEvent{doneAt: 3}
	q.Add(e)

	released := make(chan struct{})
	go func() {
		_ = q.WaitUntilEmpty(context.Background())
		close(released)
	}()

	for i := 0; i < 2; i++ {
		q.Process()
		select {
		case <-released:
			t.Fatalf("released after %d passes with events pending", i+1)
		case <-time.After(20 * time.Millisecond):
		}
	}

	q.Process()
	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("waiter not released when queue emptied")
	}
}

func TestQueue_WaitUntilEmpty_ReleasedByClear(t *testing.T) {
	q := NewQueue()
	q.Add(&countingEvent{})

	released := make(chan error, 1)
	go func() { released <- q.WaitUntilEmpty(context.Background()) }()

	time.Sleep(10 * time.Millisecond)
	q.Clear()

	select {
	case err := <-released:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("waiter not released by Clear")
	}
}

func TestQueue_WaitUntilEmpty_ContextCancel(t *testing.T) {
	q := NewQueue()
	q.Add(&countingEvent{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := q.WaitUntilEmpty(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueue_RefillAfterEmpty(t *testing.T) {
	q := NewQueue()
	q.Add(NewImmediate(func() {}))
	q.Process()
	require.Equal(t, 0, q.Len())

	q.Add(&countingEvent{})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, q.WaitUntilEmpty(ctx), "refilled queue must block waiters again")
}

func TestQueue_Verbose(t *testing.T) {
	q := NewQueue(WithName("test"), WithVerbose(true))
	q.Add(NewRunAfterTime(time.Second, tick, func() {}), NewRunAfterCondition(func() bool { return false }, nil))
	q.Process()

	assert.Equal(t, "test", q.Name())
	assert.Equal(t, 2, q.Len())
}
