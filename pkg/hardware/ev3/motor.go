package ev3

import (
	"strconv"

	"github.com/teslashibe/go-dalek/pkg/hardware"
)

// Stop actions understood by tacho motors.
const (
	StopActionCoast = "coast"
	StopActionBrake = "brake"
)

// Motor is a tacho motor. The driver's reset command restores factory
// settings, so Reset reapplies any stop action and ramps set on the Motor.
type Motor struct {
	device

	stopAction string
	ramps      *[2]int
}

var _ hardware.PositionMotor = (*Motor)(nil)

// FindMotor locates the tacho motor on port.
func FindMotor(root, port string) (*Motor, error) {
	d, err := find(root, "tacho-motor", Address(port))
	if err != nil {
		return nil, err
	}
	return &Motor{device: d}, nil
}

func (m *Motor) Reset() error {
	if err := m.write("command", "reset"); err != nil {
		return err
	}
	if m.stopAction != "" {
		if err := m.write("stop_action", m.stopAction); err != nil {
			return err
		}
	}
	if m.ramps != nil {
		return m.writeRamps(m.ramps[0], m.ramps[1])
	}
	return nil
}

func (m *Motor) SetTargetSpeed(speed float64) error {
	return m.write("speed_sp", strconv.Itoa(int(speed)))
}

func (m *Motor) Run() error {
	return m.write("command", "run-forever")
}

func (m *Motor) Stop() error {
	return m.write("command", "stop")
}

func (m *Motor) Position() (float64, error) {
	p, err := m.readInt("position")
	return float64(p), err
}

// SetPosition overwrites the encoder count.
func (m *Motor) SetPosition(p int) error {
	return m.write("position", strconv.Itoa(p))
}

// SetStopAction chooses how the motor behaves on Stop.
func (m *Motor) SetStopAction(action string) error {
	m.stopAction = action
	return m.write("stop_action", action)
}

// SetRamps sets the ramp up and down times in milliseconds.
func (m *Motor) SetRamps(upMillis, downMillis int) error {
	m.ramps = &[2]int{upMillis, downMillis}
	return m.writeRamps(upMillis, downMillis)
}

func (m *Motor) writeRamps(upMillis, downMillis int) error {
	if err := m.write("ramp_up_sp", strconv.Itoa(upMillis)); err != nil {
		return err
	}
	return m.write("ramp_down_sp", strconv.Itoa(downMillis))
}
