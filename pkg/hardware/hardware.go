// Package hardware defines the capabilities the robot's actors need from the
// physical platform.
//
// Interfaces are kept small so each actor depends only on what it drives.
// Implementations live in hardware/ev3 (ev3dev sysfs) and hardware/sim
// (in-memory fakes for desktop runs and tests).
package hardware

import (
	"context"
	"errors"
	"os"
)

// ErrNotFound is returned when a device is not attached to the expected port.
var ErrNotFound = errors.New("hardware: device not found")

// Motor is a speed-controlled motor.
type Motor interface {
	Reset() error
	SetTargetSpeed(speed float64) error
	// Run drives the motor at its target speed until Stop is called.
	Run() error
	Stop() error
}

// PositionMotor is a Motor with an encoder.
type PositionMotor interface {
	Motor
	// Position returns the encoder position in degrees since the last Reset.
	Position() (float64, error)
}

// TouchSensor is a push button.
type TouchSensor interface {
	IsPressed() (bool, error)
}

// LED is a dimmable light.
type LED interface {
	SetBrightness(brightness int) error
	Brightness() (int, error)
	MaxBrightness() int
}

// PowerSupply reports the battery voltage.
type PowerSupply interface {
	MeasuredVoltage() (float64, error)
}

// Process is a running subprocess.
type Process interface {
	// Poll reports the exit code if the process has exited.
	Poll() (code int, exited bool)
	Kill() error
	// Wait blocks until the process exits or ctx is done.
	Wait(ctx context.Context) (int, error)
}

// Launcher starts subprocesses.
type Launcher interface {
	Spawn(name string, args ...string) (Process, error)
}

// CameraProbe reports whether a camera is attached.
type CameraProbe func() bool

// DeviceExists returns a CameraProbe that checks for a device node.
func DeviceExists(path string) CameraProbe {
	return func() bool {
		_, err := os.Stat(path)
		return err == nil
	}
}

// Devices bundles every capability the robot is built from.
type Devices struct {
	LeftWheel  Motor
	RightWheel Motor
	Head       PositionMotor
	Bumper     TouchSensor
	LED        LED
	Power      PowerSupply
	Launcher   Launcher
	Camera     CameraProbe
}

// Validate checks that every device is present.
func (d Devices) Validate() error {
	switch {
	case d.LeftWheel == nil, d.RightWheel == nil:
		return errors.Join(ErrNotFound, errors.New("wheel motor missing"))
	case d.Head == nil:
		return errors.Join(ErrNotFound, errors.New("head motor missing"))
	case d.Bumper == nil:
		return errors.Join(ErrNotFound, errors.New("bumper sensor missing"))
	case d.LED == nil:
		return errors.Join(ErrNotFound, errors.New("led missing"))
	case d.Power == nil:
		return errors.Join(ErrNotFound, errors.New("power supply missing"))
	case d.Launcher == nil:
		return errors.Join(ErrNotFound, errors.New("launcher missing"))
	case d.Camera == nil:
		return errors.Join(ErrNotFound, errors.New("camera probe missing"))
	}
	return nil
}
