// Package dalek assembles the robot out of actors, each owning one piece of
// hardware and one event queue, and a scheduler that ticks them all.
//
// Domain methods on the actors (and on the Dalek facade) are safe to call
// from any goroutine and return at once: they only add events to a queue.
// The scheduler goroutine is the only one that processes those events.
package dalek

import (
	"log/slog"
	"sync"

	"github.com/teslashibe/go-dalek/internal/log"
	"github.com/teslashibe/go-dalek/pkg/event"
	"github.com/teslashibe/go-dalek/pkg/hardware"
)

// Actor is anything the scheduler ticks.
type Actor interface {
	// Process runs one tick of the actor's queue.
	Process()
	// Disconnect cancels pending work and leaves the hardware idle. It is
	// called once, at shutdown.
	Disconnect()
}

var (
	_ Actor = (*Drive)(nil)
	_ Actor = (*Head)(nil)
	_ Actor = (*Voice)(nil)
	_ Actor = (*Camera)(nil)
	_ Actor = (*Battery)(nil)
)

// queueOptions names a queue and appends caller options.
func queueOptions(name string, hooks []event.Option, extra []event.Option) []event.Option {
	opts := make([]event.Option, 0, len(hooks)+len(extra)+1)
	opts = append(opts, event.WithName(name))
	opts = append(opts, hooks...)
	return append(opts, extra...)
}

// Lights is the indicator LED.
type Lights struct {
	led hardware.LED
	log *slog.Logger

	mu sync.Mutex
}

// NewLights wraps led and switches it off.
func NewLights(led hardware.LED) *Lights {
	l := &Lights{led: led, log: log.Component("lights")}
	l.Off()
	return l
}

// On sets full brightness.
func (l *Lights) On() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.set(l.led.MaxBrightness())
}

// Off switches the light off.
func (l *Lights) Off() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.set(0)
}

// Toggle flips the light.
func (l *Lights) Toggle() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.isOn() {
		l.set(0)
	} else {
		l.set(l.led.MaxBrightness())
	}
}

// IsOn reports whether the light is lit.
func (l *Lights) IsOn() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.isOn()
}

func (l *Lights) isOn() bool {
	b, err := l.led.Brightness()
	if err != nil {
		l.log.Error("read brightness", "error", err)
		return false
	}
	return b > 0
}

func (l *Lights) set(b int) {
	if err := l.led.SetBrightness(b); err != nil {
		l.log.Error("set brightness", "value", b, "error", err)
	}
}
