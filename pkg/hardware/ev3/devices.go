package ev3

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/teslashibe/go-dalek/pkg/hardware"
)

// TouchSensor is an EV3 touch sensor.
type TouchSensor struct {
	device
}

var _ hardware.TouchSensor = (*TouchSensor)(nil)

// FindTouchSensor locates the touch sensor on port.
func FindTouchSensor(root, port string) (*TouchSensor, error) {
	d, err := find(root, "lego-sensor", Address(port))
	if err != nil {
		return nil, err
	}
	return &TouchSensor{device: d}, nil
}

func (s *TouchSensor) IsPressed() (bool, error) {
	v, err := s.readInt("value0")
	return v == 1, err
}

// PowerSupply is the brick battery.
type PowerSupply struct {
	device
}

var _ hardware.PowerSupply = (*PowerSupply)(nil)

// NewPowerSupply opens the brick battery.
func NewPowerSupply(root string) *PowerSupply {
	return &PowerSupply{device: device{dir: filepath.Join(root, "power_supply", "lego-ev3-battery")}}
}

// MeasuredVoltage returns the battery voltage in volts.
func (p *PowerSupply) MeasuredVoltage() (float64, error) {
	uv, err := p.readInt("voltage_now")
	return float64(uv) / 1e6, err
}

// LED is a light driven from an output port in led mode.
type LED struct {
	device
	max int
}

var _ hardware.LED = (*LED)(nil)

// PortSettleTime is how long the port driver takes to expose a device after
// a mode change.
var PortSettleTime = time.Second

// OpenPortLED switches port to led mode and opens the light behind it.
func OpenPortLED(root, port string) (*LED, error) {
	addr := Address(port)
	p, err := find(root, "lego-port", addr)
	if err != nil {
		return nil, err
	}
	if err := p.write("mode", "led"); err != nil {
		return nil, err
	}
	time.Sleep(PortSettleTime)

	l := &LED{device: device{dir: filepath.Join(root, "leds", addr+"::brick-status")}}
	l.max, err = l.readInt("max_brightness")
	if err != nil {
		return nil, fmt.Errorf("ev3: open led %s: %w", addr, err)
	}
	return l, nil
}

func (l *LED) SetBrightness(b int) error {
	return l.write("brightness", strconv.Itoa(min(max(0, b), l.max)))
}

func (l *LED) Brightness() (int, error) {
	return l.readInt("brightness")
}

func (l *LED) MaxBrightness() int {
	return l.max
}

// Ports names the port of each device.
type Ports struct {
	LeftWheel  string
	RightWheel string
	Head       string
	LED        string
	Bumper     string
}

// Open finds and configures every device. Wheels coast when stopped; the
// head brakes without ramping so it stops where it is told. The camera probe
// is left for the caller to fill in.
func Open(root string, ports Ports) (hardware.Devices, error) {
	var devs hardware.Devices

	left, err := openWheel(root, ports.LeftWheel)
	if err != nil {
		return devs, err
	}
	right, err := openWheel(root, ports.RightWheel)
	if err != nil {
		return devs, err
	}

	head, err := FindMotor(root, ports.Head)
	if err != nil {
		return devs, err
	}
	if err := head.SetStopAction(StopActionBrake); err != nil {
		return devs, err
	}
	if err := head.SetRamps(0, 0); err != nil {
		return devs, err
	}
	if err := head.Reset(); err != nil {
		return devs, err
	}

	bumper, err := FindTouchSensor(root, ports.Bumper)
	if err != nil {
		return devs, err
	}

	led, err := OpenPortLED(root, ports.LED)
	if err != nil {
		return devs, err
	}

	devs = hardware.Devices{
		LeftWheel:  left,
		RightWheel: right,
		Head:       head,
		Bumper:     bumper,
		LED:        led,
		Power:      NewPowerSupply(root),
		Launcher:   hardware.ExecLauncher{},
	}
	return devs, nil
}

func openWheel(root, port string) (*Motor, error) {
	m, err := FindMotor(root, port)
	if err != nil {
		return nil, err
	}
	if err := m.SetStopAction(StopActionCoast); err != nil {
		return nil, err
	}
	if err := m.Reset(); err != nil {
		return nil, err
	}
	return m, nil
}
