package dalek

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/teslashibe/go-dalek/internal/log"
)

// Scheduler ticks every actor, in order, at a fixed rate.
//
// A tick that overruns delays the next one; missed ticks are not replayed.
// A panic inside one actor's tick is logged and the loop carries on.
type Scheduler struct {
	actors []Actor
	rate   time.Duration
	log    *slog.Logger

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	mu    sync.Mutex
	ticks uint64
}

// NewScheduler creates a scheduler for actors. It panics if rate is not
// positive.
func NewScheduler(rate time.Duration, actors ...Actor) *Scheduler {
	if rate <= 0 {
		panic("dalek: non-positive scheduler rate")
	}
	return &Scheduler{
		actors: actors,
		rate:   rate,
		log:    log.Component("scheduler"),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Run ticks the actors until Stop is called or ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.rate)
	defer ticker.Stop()

	s.log.Info("scheduler started", "rate", s.rate, "actors", len(s.actors))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped", "reason", ctx.Err())
			return
		case <-s.stop:
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// Stop ends Run. It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Done is closed when Run returns.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

// Ticks returns the number of ticks run so far.
func (s *Scheduler) Ticks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

func (s *Scheduler) tick() {
	for _, a := range s.actors {
		s.process(a)
	}
	s.mu.Lock()
	s.ticks++
	s.mu.Unlock()
}

func (s *Scheduler) process(a Actor) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("actor panicked", "actor", fmt.Sprintf("%T", a), "panic", r)
		}
	}()
	a.Process()
}
