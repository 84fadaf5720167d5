package dalek

import (
	"log/slog"
	"sync"

	"github.com/teslashibe/go-dalek/internal/config"
	"github.com/teslashibe/go-dalek/internal/log"
	"github.com/teslashibe/go-dalek/pkg/control"
	"github.com/teslashibe/go-dalek/pkg/event"
	"github.com/teslashibe/go-dalek/pkg/hardware"
)

// Drive steers the two wheels from a drive axis and a turn axis.
//
// Every tick it checks the bumper and counts ticks since the last command;
// a pressed bumper or too long without a command stops the wheels. The idle
// timeout keeps the robot from driving off when the controller drops out.
type Drive struct {
	queue  *event.Queue
	left   hardware.Motor
	right  hardware.Motor
	bumper hardware.TouchSensor
	cfg    config.Drive
	log    *slog.Logger

	mu             sync.Mutex
	drive          control.TwoWayControl
	turn           control.TwoWayControl
	ticksSinceLast int
}

// NewDrive creates a Drive and stops both wheels.
func NewDrive(left, right hardware.Motor, bumper hardware.TouchSensor, cfg config.Drive, opts ...event.Option) *Drive {
	d := &Drive{
		left:   left,
		right:  right,
		bumper: bumper,
		cfg:    cfg,
		log:    log.Component("drive"),
	}
	d.queue = event.NewQueue(queueOptions("drive", []event.Option{
		event.WithPreProcess(d.checkBumper),
		event.WithPostProcess(d.checkIdle),
	}, opts)...)

	d.mu.Lock()
	d.updateWheels()
	d.mu.Unlock()

	d.log.Info("created drive")
	return d
}

// Process runs one tick.
func (d *Drive) Process() {
	d.queue.Process()
}

// Drive presses the forward/back axis.
func (d *Drive) Drive(v float64) {
	d.queue.Add(event.NewImmediate(func() { d.press(&d.drive, v) }))
}

// DriveRelease releases the forward/back axis in direction v.
func (d *Drive) DriveRelease(v float64) {
	d.queue.Add(event.NewImmediate(func() { d.release(&d.drive, v) }))
}

// Turn presses the left/right axis.
func (d *Drive) Turn(v float64) {
	d.queue.Add(event.NewImmediate(func() { d.press(&d.turn, v) }))
}

// TurnRelease releases the left/right axis in direction v.
func (d *Drive) TurnRelease(v float64) {
	d.queue.Add(event.NewImmediate(func() { d.release(&d.turn, v) }))
}

// Stop cancels pending commands and stops both wheels on the next tick.
func (d *Drive) Stop() {
	d.queue.Replace(event.NewImmediate(func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.halt()
	}))
}

// Disconnect drops pending commands and stops the wheels at once.
func (d *Drive) Disconnect() {
	d.queue.Clear()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.halt()
	d.log.Info("drive disconnected")
}

// Axes returns the drive and turn axis values.
func (d *Drive) Axes() (drive, turn float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.drive.Value(), d.turn.Value()
}

// Pending returns the number of queued events.
func (d *Drive) Pending() int {
	return d.queue.Len()
}

func (d *Drive) press(c *control.TwoWayControl, v float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ticksSinceLast = 0
	c.Press(v)
	d.updateWheels()
}

func (d *Drive) release(c *control.TwoWayControl, v float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ticksSinceLast = 0
	c.Release(v)
	d.updateWheels()
}

func (d *Drive) checkBumper() event.HookResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ticksSinceLast++

	pressed, err := d.bumper.IsPressed()
	if err != nil {
		d.log.Error("read bumper", "error", err)
		return event.Continue
	}
	if !pressed {
		return event.Continue
	}
	if d.moving() {
		d.log.Warn("bumper pressed, stopping")
	}
	d.halt()
	return event.Discard
}

func (d *Drive) checkIdle() event.HookResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ticksSinceLast <= d.cfg.IdleTimeoutTicks {
		return event.Continue
	}
	if d.moving() {
		d.log.Warn("no commands received, stopping", "ticks", d.ticksSinceLast)
	}
	d.halt()
	return event.Discard
}

// halt must be called with mu held.
func (d *Drive) halt() {
	d.ticksSinceLast = 0
	d.drive.Off()
	d.turn.Off()
	d.updateWheels()
}

func (d *Drive) moving() bool {
	return d.drive.Value() != 0 || d.turn.Value() != 0
}

// updateWheels must be called with mu held.
func (d *Drive) updateWheels() {
	drivePart := d.cfg.DriveSpeed * d.drive.Value()
	turnPart := d.cfg.TurnSpeed * d.turn.Value()

	d.setWheel("left", d.left, drivePart+turnPart)
	d.setWheel("right", d.right, drivePart-turnPart)
}

func (d *Drive) setWheel(name string, m hardware.Motor, speed float64) {
	if err := m.SetTargetSpeed(speed); err != nil {
		d.log.Error("set wheel speed", "wheel", name, "speed", speed, "error", err)
		return
	}
	var err error
	if speed == 0 {
		err = m.Stop()
	} else {
		err = m.Run()
	}
	if err != nil {
		d.log.Error("drive wheel", "wheel", name, "speed", speed, "error", err)
	}
}
