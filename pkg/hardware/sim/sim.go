// Package sim provides in-memory hardware for running the robot without an
// ev3 brick. Every device records what it was asked to do and logs it, and
// sensor readings can be set from tests.
package sim

import (
	"log/slog"
	"sync"
	"time"

	"github.com/teslashibe/go-dalek/internal/log"
	"github.com/teslashibe/go-dalek/pkg/hardware"
)

// DefaultVoltage is the reading a new PowerSupply reports.
const DefaultVoltage = 8.0

// Robot is a complete set of simulated devices.
type Robot struct {
	LeftWheel  *Motor
	RightWheel *Motor
	Head       *Motor
	Bumper     *TouchSensor
	LED        *LED
	Power      *PowerSupply
	Launcher   *Launcher

	mu        sync.Mutex
	hasCamera bool
}

// New creates a simulated robot with no camera attached.
func New() *Robot {
	return &Robot{
		LeftWheel:  NewMotor("left-wheel"),
		RightWheel: NewMotor("right-wheel"),
		Head:       NewMotor("head"),
		Bumper:     &TouchSensor{},
		LED:        NewLED("led"),
		Power:      &PowerSupply{volts: DefaultVoltage},
		Launcher:   &Launcher{},
	}
}

// SetCamera attaches or detaches the simulated camera.
func (r *Robot) SetCamera(present bool) {
	r.mu.Lock()
	r.hasCamera = present
	r.mu.Unlock()
}

func (r *Robot) cameraPresent() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hasCamera
}

// Devices returns the robot as a hardware.Devices bundle.
func (r *Robot) Devices() hardware.Devices {
	return hardware.Devices{
		LeftWheel:  r.LeftWheel,
		RightWheel: r.RightWheel,
		Head:       r.Head,
		Bumper:     r.Bumper,
		LED:        r.LED,
		Power:      r.Power,
		Launcher:   r.Launcher,
		Camera:     r.cameraPresent,
	}
}

var (
	_ hardware.PositionMotor = (*Motor)(nil)
	_ hardware.TouchSensor   = (*TouchSensor)(nil)
	_ hardware.LED           = (*LED)(nil)
	_ hardware.PowerSupply   = (*PowerSupply)(nil)
	_ hardware.Launcher      = (*Launcher)(nil)
)

// Motor is a simulated motor. Its position only changes through SetPosition
// and Reset.
type Motor struct {
	name string
	log  *slog.Logger

	mu       sync.Mutex
	speed    float64
	running  bool
	position float64
	commands []string
}

// NewMotor creates a stopped motor at position 0.
func NewMotor(name string) *Motor {
	return &Motor{name: name, log: log.Component("sim").With("device", name)}
}

func (m *Motor) record(cmd string) {
	m.commands = append(m.commands, cmd)
	m.log.Debug(cmd, "speed", m.speed)
}

func (m *Motor) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.speed = 0
	m.running = false
	m.position = 0
	m.record("reset")
	return nil
}

func (m *Motor) SetTargetSpeed(speed float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.speed = speed
	return nil
}

func (m *Motor) Run() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = true
	m.record("run")
	return nil
}

func (m *Motor) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
	m.record("stop")
	return nil
}

func (m *Motor) Position() (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position, nil
}

// SetPosition moves the simulated encoder.
func (m *Motor) SetPosition(p float64) {
	m.mu.Lock()
	m.position = p
	m.mu.Unlock()
}

// Speed returns the last target speed.
func (m *Motor) Speed() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speed
}

// Running reports whether Run was called more recently than Stop.
func (m *Motor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Commands returns the reset/run/stop commands received so far.
func (m *Motor) Commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.commands...)
}

// TouchSensor is a simulated button.
type TouchSensor struct {
	mu      sync.Mutex
	pressed bool
}

func (s *TouchSensor) IsPressed() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pressed, nil
}

// SetPressed presses or releases the button.
func (s *TouchSensor) SetPressed(pressed bool) {
	s.mu.Lock()
	s.pressed = pressed
	s.mu.Unlock()
}

// MaxBrightness is the brightness ceiling of a simulated LED.
const MaxBrightness = 100

// LED is a simulated light.
type LED struct {
	name string
	log  *slog.Logger

	mu         sync.Mutex
	brightness int
	changes    int
}

// NewLED creates an LED that starts off.
func NewLED(name string) *LED {
	return &LED{name: name, log: log.Component("sim").With("device", name)}
}

// SetBrightness clamps b to [0, MaxBrightness].
func (l *LED) SetBrightness(b int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.brightness = min(max(0, b), MaxBrightness)
	l.changes++
	l.log.Debug("brightness", "value", l.brightness)
	return nil
}

func (l *LED) Brightness() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.brightness, nil
}

func (l *LED) MaxBrightness() int {
	return MaxBrightness
}

// Changes returns how many times the brightness was set.
func (l *LED) Changes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.changes
}

// PowerSupply is a simulated battery.
type PowerSupply struct {
	mu    sync.Mutex
	volts float64
}

func (p *PowerSupply) MeasuredVoltage() (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volts, nil
}

// SetVoltage changes the reading.
func (p *PowerSupply) SetVoltage(v float64) {
	p.mu.Lock()
	p.volts = v
	p.mu.Unlock()
}

// Spawn records one call to Launcher.Spawn.
type Spawn struct {
	Name    string
	Args    []string
	Process *Process
}

// Launcher records spawned commands and hands back controllable processes.
type Launcher struct {
	// ExitAfter, if set, makes every process exit with code 0 after the
	// given duration. Otherwise processes run until Exit or Kill.
	ExitAfter time.Duration

	// OnSpawn, if set, runs for every spawn and may act on the process.
	OnSpawn func(name string, args []string, p *Process)

	mu     sync.Mutex
	spawns []Spawn
}

func (l *Launcher) Spawn(name string, args ...string) (hardware.Process, error) {
	p := NewProcess()

	l.mu.Lock()
	l.spawns = append(l.spawns, Spawn{Name: name, Args: args, Process: p})
	exitAfter := l.ExitAfter
	onSpawn := l.OnSpawn
	l.mu.Unlock()

	log.Component("sim").Debug("spawn", "name", name, "args", args)

	if onSpawn != nil {
		onSpawn(name, args, p)
	}
	if exitAfter > 0 {
		time.AfterFunc(exitAfter, func() { p.Exit(0) })
	}
	return p, nil
}

// Spawns returns every spawn so far.
func (l *Launcher) Spawns() []Spawn {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Spawn(nil), l.spawns...)
}

// Last returns the most recent spawn, or nil.
func (l *Launcher) Last() *Spawn {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.spawns) == 0 {
		return nil
	}
	s := l.spawns[len(l.spawns)-1]
	return &s
}
