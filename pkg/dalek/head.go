package dalek

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/teslashibe/go-dalek/internal/config"
	"github.com/teslashibe/go-dalek/internal/log"
	"github.com/teslashibe/go-dalek/pkg/control"
	"github.com/teslashibe/go-dalek/pkg/event"
	"github.com/teslashibe/go-dalek/pkg/hardware"
	"github.com/teslashibe/go-dalek/pkg/sound"
)

// ErrCalibrationInterrupted is returned when the encoder reset was dropped
// before it ran, for example by the soft limit check.
var ErrCalibrationInterrupted = errors.New("dalek: head calibration interrupted")

// Announcer speaks a phrase and waits for it to finish.
type Announcer interface {
	Speak(text string)
	Wait(ctx context.Context) error
}

// Head turns the dome. There is no limit switch, so every tick the encoder
// is checked against a soft limit either side of the calibrated centre.
type Head struct {
	queue *event.Queue
	motor hardware.PositionMotor
	cfg   config.Head
	log   *slog.Logger

	mu  sync.Mutex
	ctl control.TwoWayControl
}

// NewHead creates a Head and stops the motor.
func NewHead(motor hardware.PositionMotor, cfg config.Head, opts ...event.Option) *Head {
	h := &Head{
		motor: motor,
		cfg:   cfg,
		log:   log.Component("head"),
	}
	h.queue = event.NewQueue(queueOptions("head", []event.Option{
		event.WithPreProcess(h.checkLimit),
	}, opts)...)

	h.mu.Lock()
	h.updateMotor()
	h.mu.Unlock()

	h.log.Info("created head")
	return h
}

// Process runs one tick.
func (h *Head) Process() {
	h.queue.Process()
}

// Turn presses the head axis.
func (h *Head) Turn(v float64) {
	h.queue.Add(event.NewImmediate(func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.ctl.Press(v)
		h.updateMotor()
	}))
}

// TurnRelease releases the head axis in direction v.
func (h *Head) TurnRelease(v float64) {
	h.queue.Add(event.NewImmediate(func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.ctl.Release(v)
		h.updateMotor()
	}))
}

// Stop cancels pending commands and stops the head on the next tick.
func (h *Head) Stop() {
	h.queue.Replace(event.NewImmediate(func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.halt()
	}))
}

// Calibrate zeroes the encoder with the head where it is now, announcing
// progress through a. The scheduler must be running.
func (h *Head) Calibrate(ctx context.Context, a Announcer) error {
	a.Speak(string(sound.CommenceAwakening))
	if err := a.Wait(ctx); err != nil {
		return err
	}

	var (
		reset    bool
		resetErr error
	)
	h.queue.Replace(event.NewImmediate(func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.ctl.Off()
		resetErr = h.motor.Reset()
		reset = true
	}))
	if err := h.queue.WaitUntilEmpty(ctx); err != nil {
		return err
	}

	h.mu.Lock()
	ran, err := reset, resetErr
	h.mu.Unlock()
	if !ran {
		return ErrCalibrationInterrupted
	}
	if err != nil {
		return fmt.Errorf("dalek: reset head encoder: %w", err)
	}

	select {
	case <-time.After(time.Second):
	case <-ctx.Done():
		return ctx.Err()
	}

	a.Speak(string(sound.Exterminate))
	if err := a.Wait(ctx); err != nil {
		return err
	}
	h.log.Info("head calibrated")
	return nil
}

// Disconnect drops pending commands and stops the head at once.
func (h *Head) Disconnect() {
	h.queue.Clear()
	h.mu.Lock()
	defer h.mu.Unlock()
	h.halt()
	h.log.Info("head disconnected")
}

// Axis returns the head axis value.
func (h *Head) Axis() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ctl.Value()
}

// Pending returns the number of queued events.
func (h *Head) Pending() int {
	return h.queue.Len()
}

func (h *Head) checkLimit() event.HookResult {
	h.mu.Lock()
	defer h.mu.Unlock()

	v := h.ctl.Value()
	if v == 0 {
		return event.Continue
	}
	pos, err := h.motor.Position()
	if err != nil {
		h.log.Error("read head position", "error", err)
		return event.Continue
	}
	if v > 0 && pos > h.cfg.Limit || v < 0 && pos < -h.cfg.Limit {
		h.log.Debug("head at limit", "position", pos)
		h.halt()
		return event.Discard
	}
	return event.Continue
}

// halt must be called with mu held.
func (h *Head) halt() {
	h.ctl.Off()
	h.updateMotor()
}

// updateMotor must be called with mu held.
func (h *Head) updateMotor() {
	speed := h.ctl.Value() * h.cfg.Speed
	if err := h.motor.SetTargetSpeed(speed); err != nil {
		h.log.Error("set head speed", "speed", speed, "error", err)
		return
	}
	var err error
	if speed == 0 {
		err = h.motor.Stop()
	} else {
		err = h.motor.Run()
	}
	if err != nil {
		h.log.Error("drive head", "speed", speed, "error", err)
	}
}
