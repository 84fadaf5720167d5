package dalek

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/teslashibe/go-dalek/internal/log"
	"github.com/teslashibe/go-dalek/pkg/event"
	"github.com/teslashibe/go-dalek/pkg/hardware"
)

// BatteryHandler receives the battery voltage formatted to two decimals.
type BatteryHandler func(status string)

// Battery reports the battery voltage to its handler on a fixed interval.
type Battery struct {
	queue *event.Queue
	power hardware.PowerSupply
	log   *slog.Logger

	mu      sync.Mutex
	handler BatteryHandler
}

// NewBattery creates a Battery that reports every interval.
func NewBattery(power hardware.PowerSupply, interval, tick time.Duration, opts ...event.Option) *Battery {
	b := &Battery{
		power: power,
		log:   log.Component("battery"),
	}
	b.queue = event.NewQueue(queueOptions("battery", nil, opts)...)
	b.queue.Add(event.NewRepeat(interval, tick, b.report))
	b.log.Info("created battery", "interval", interval)
	return b
}

// Process runs one tick.
func (b *Battery) Process() {
	b.queue.Process()
}

// Status returns the voltage, e.g. "7.85".
func (b *Battery) Status() string {
	v, err := b.power.MeasuredVoltage()
	if err != nil {
		b.log.Error("read battery", "error", err)
		return "unknown"
	}
	return fmt.Sprintf("%.2f", v)
}

// SetHandler sets the function that receives readings. Pass nil to clear it.
func (b *Battery) SetHandler(h BatteryHandler) {
	b.mu.Lock()
	b.handler = h
	b.mu.Unlock()
}

// Disconnect stops reporting.
func (b *Battery) Disconnect() {
	b.queue.Clear()
	b.SetHandler(nil)
	b.log.Info("battery disconnected")
}

// Pending returns the number of queued events.
func (b *Battery) Pending() int {
	return b.queue.Len()
}

func (b *Battery) report() {
	b.mu.Lock()
	h := b.handler
	b.mu.Unlock()

	if h != nil {
		h(b.Status())
	}
}
