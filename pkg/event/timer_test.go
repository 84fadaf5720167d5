package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tick = 100 * time.Millisecond

type counter struct{ n int }

func (c *counter) inc() { c.n++ }

func TestTimer_ZeroDelay(t *testing.T) {
	var start, end counter
	timer := NewTimer(0, tick, false, start.inc, end.inc)

	assert.Equal(t, Done, timer.Process())
	assert.Equal(t, 1, start.n)
	assert.Equal(t, 1, end.n)

	assert.Equal(t, Done, timer.Process())
	assert.Equal(t, 1, start.n, "start must not fire again")
	assert.Equal(t, 1, end.n, "end must not fire again")
}

func TestTimer_NonRepeat(t *testing.T) {
	for _, n := range []int{1, 2, 5, 30} {
		var start, end counter
		timer := NewTimer(time.Duration(n)*tick, tick, false, start.inc, end.inc)

		for call := 1; call < n; call++ {
			require.Equal(t, InProgress, timer.Process(), "n=%d call=%d", n, call)
			assert.Equal(t, 1, start.n)
			assert.Equal(t, 0, end.n)
		}

		assert.Equal(t, Done, timer.Process(), "n=%d final call", n)
		assert.Equal(t, 1, end.n)

		assert.Equal(t, Done, timer.Process(), "n=%d after done", n)
		assert.Equal(t, 1, start.n)
		assert.Equal(t, 1, end.n)
	}
}

func TestTimer_Repeat(t *testing.T) {
	const n = 4
	var end counter
	timer := NewRepeat(n*tick, tick, end.inc)

	for call := 1; call <= n*10; call++ {
		require.Equal(t, InProgress, timer.Process())
		assert.Equal(t, call/n, end.n, "call %d", call)
	}
}

func TestTimer_RepeatZeroFiresEveryTick(t *testing.T) {
	var end counter
	timer := NewRepeat(0, tick, end.inc)
	for i := 0; i < 5; i++ {
		assert.Equal(t, InProgress, timer.Process())
	}
	assert.Equal(t, 5, end.n)
}

func TestTimer_PartialTickRoundsDown(t *testing.T) {
	var end counter
	timer := NewRunAfterTime(250*time.Millisecond, tick, end.inc)

	assert.Equal(t, InProgress, timer.Process())
	assert.Equal(t, Done, timer.Process())
	assert.Equal(t, 1, end.n)
}

func TestImmediate(t *testing.T) {
	var end counter
	e := NewImmediate(end.inc)
	assert.Equal(t, Done, e.Process())
	assert.Equal(t, Done, e.Process())
	assert.Equal(t, 1, end.n)
}

func TestDurationAction(t *testing.T) {
	on := false
	timer := NewDurationAction(3*tick, tick, func() { on = true }, func() { on = false })

	assert.Equal(t, InProgress, timer.Process())
	assert.True(t, on, "start should run on the first tick")
	assert.Equal(t, InProgress, timer.Process())
	assert.True(t, on)
	assert.Equal(t, Done, timer.Process())
	assert.False(t, on)
}

func TestNewTimer_PanicsOnZeroTick(t *testing.T) {
	assert.Panics(t, func() { NewTimer(time.Second, 0, false, nil, func() {}) })
}

func TestRunAfterCondition(t *testing.T) {
	ready := false
	var action counter
	evaluations := 0
	e := NewRunAfterCondition(func() bool {
		evaluations++
		return ready
	}, action.inc)

	assert.Equal(t, InProgress, e.Process())
	assert.Equal(t, InProgress, e.Process())
	assert.Equal(t, 0, action.n)

	ready = true
	assert.Equal(t, Done, e.Process())
	assert.Equal(t, 1, action.n)
	assert.Equal(t, 3, evaluations)

	assert.Equal(t, Done, e.Process())
	assert.Equal(t, 1, action.n)
	assert.Equal(t, 3, evaluations, "condition must not be re-evaluated after done")
}

func TestSequence_ChainsInSameTick(t *testing.T) {
	var order []string
	seq := Sequence(
		NewRunAfterTime(2*tick, tick, func() { order = append(order, "first") }),
		NewDurationAction(2*tick, tick,
			func() { order = append(order, "on") },
			func() { order = append(order, "off") }),
	)

	assert.Equal(t, InProgress, seq.Process())
	assert.Empty(t, order)

	// first finishes and the duration action starts on the same tick
	assert.Equal(t, InProgress, seq.Process())
	assert.Equal(t, []string{"first", "on"}, order)

	assert.Equal(t, Done, seq.Process())
	assert.Equal(t, []string{"first", "on", "off"}, order)

	assert.Equal(t, Done, seq.Process())
	assert.Len(t, order, 3)
}

func TestSequence_Empty(t *testing.T) {
	assert.Equal(t, Done, Sequence().Process())
}

func TestFunc(t *testing.T) {
	calls := 0
	f := Func(func() Status {
		calls++
		if calls < 3 {
			return InProgress
		}
		return Done
	})
	assert.Equal(t, InProgress, f.Process())
	assert.Equal(t, InProgress, f.Process())
	assert.Equal(t, Done, f.Process())
}
