package dalek

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/teslashibe/go-dalek/internal/config"
	"github.com/teslashibe/go-dalek/internal/log"
	"github.com/teslashibe/go-dalek/pkg/event"
	"github.com/teslashibe/go-dalek/pkg/hardware"
	"github.com/teslashibe/go-dalek/pkg/sound"
)

// Dalek is the whole robot. Its methods are what the network, gamepad and
// shell front ends call.
type Dalek struct {
	lights  *Lights
	voice   *Voice
	camera  *Camera
	battery *Battery
	drive   *Drive
	head    *Head

	scheduler *Scheduler
	log       *slog.Logger
}

// Status is a point-in-time view of the robot.
type Status struct {
	Battery   string         `json:"battery"`
	Speaking  bool           `json:"speaking"`
	LightsOn  bool           `json:"lights_on"`
	Drive     float64        `json:"drive"`
	Turn      float64        `json:"turn"`
	HeadTurn  float64        `json:"head_turn"`
	Ticks     uint64         `json:"ticks"`
	Pending   map[string]int `json:"pending"`
	Timestamp time.Time      `json:"timestamp"`
}

// New builds the robot from devs. It fails only if a device is missing.
func New(devs hardware.Devices, cfg config.Config) (*Dalek, error) {
	if err := devs.Validate(); err != nil {
		return nil, fmt.Errorf("dalek: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("dalek: %w", err)
	}

	opts := []event.Option{event.WithVerbose(cfg.Verbose)}

	d := &Dalek{log: log.Component("dalek")}
	d.lights = NewLights(devs.LED)
	d.voice = NewVoice(d.lights, devs.Launcher, cfg.Voice, cfg.TickLength, opts...)
	d.camera = NewCamera(devs.Launcher, devs.Camera, CameraConfig{
		Command:    cfg.Camera.Command,
		Args:       cfg.CameraArgs(),
		OutputFile: cfg.Camera.OutputFile,
	}, opts...)
	d.battery = NewBattery(devs.Power, cfg.BatteryInterval, cfg.TickLength, opts...)
	d.drive = NewDrive(devs.LeftWheel, devs.RightWheel, devs.Bumper, cfg.Drive, opts...)
	d.head = NewHead(devs.Head, cfg.Head, opts...)

	// drive and head first so the bumper and soft limit are checked before
	// anything else each tick
	d.scheduler = NewScheduler(cfg.TickLength, d.drive, d.head, d.voice, d.camera, d.battery)
	return d, nil
}

// Run ticks the robot until Shutdown or ctx is done.
func (d *Dalek) Run(ctx context.Context) {
	d.scheduler.Run(ctx)
}

// Calibrate zeroes the head. Run must already be going.
func (d *Dalek) Calibrate(ctx context.Context) error {
	if err := d.head.Calibrate(ctx, d.voice); err != nil {
		return err
	}
	d.log.Info("ready")
	return nil
}

// Shutdown stops every actor, announces hibernation and waits for it to
// finish, then stops the scheduler.
func (d *Dalek) Shutdown(ctx context.Context) error {
	d.drive.Disconnect()
	d.head.Disconnect()
	d.battery.Disconnect()
	d.camera.Disconnect()
	d.voice.Stop()

	d.voice.Speak(string(sound.StatusHibernation))
	err := d.voice.Wait(ctx)
	if err == nil {
		err = d.voice.WaitUntilEmpty(ctx)
	}

	d.voice.Disconnect()
	d.scheduler.Stop()
	d.log.Info("shut down")
	return err
}

// Done is closed once the scheduler has stopped.
func (d *Dalek) Done() <-chan struct{} {
	return d.scheduler.Done()
}

func (d *Dalek) Drive(v float64)           { d.drive.Drive(v) }
func (d *Dalek) DriveRelease(v float64)    { d.drive.DriveRelease(v) }
func (d *Dalek) Turn(v float64)            { d.drive.Turn(v) }
func (d *Dalek) TurnRelease(v float64)     { d.drive.TurnRelease(v) }
func (d *Dalek) HeadTurn(v float64)        { d.head.Turn(v) }
func (d *Dalek) HeadTurnRelease(v float64) { d.head.TurnRelease(v) }

// StopMoving stops the wheels and the head.
func (d *Dalek) StopMoving() {
	d.drive.Stop()
	d.head.Stop()
}

// ToggleLights flips the indicator light.
func (d *Dalek) ToggleLights() {
	d.lights.Toggle()
}

// Speak says text, cutting off anything already playing.
func (d *Dalek) Speak(text string) {
	d.voice.Speak(text)
}

// StopSpeaking cuts off speech.
func (d *Dalek) StopSpeaking() {
	d.voice.Stop()
}

// TakePicture requests a snapshot for the camera handler.
func (d *Dalek) TakePicture() {
	d.camera.TakePicture()
}

// SetCameraHandler sets where snapshots go. Pass nil to clear it.
func (d *Dalek) SetCameraHandler(h SnapshotHandler) {
	d.camera.SetHandler(h)
}

// SetBatteryHandler sets where periodic battery readings go. Pass nil to
// clear it.
func (d *Dalek) SetBatteryHandler(h BatteryHandler) {
	d.battery.SetHandler(h)
}

// BatteryStatus returns the battery voltage, e.g. "7.85".
func (d *Dalek) BatteryStatus() string {
	return d.battery.Status()
}

// Status returns a snapshot of the robot's state.
func (d *Dalek) Status() Status {
	drive, turn := d.drive.Axes()
	return Status{
		Battery:  d.battery.Status(),
		Speaking: d.voice.Speaking(),
		LightsOn: d.lights.IsOn(),
		Drive:    drive,
		Turn:     turn,
		HeadTurn: d.head.Axis(),
		Ticks:    d.scheduler.Ticks(),
		Pending: map[string]int{
			"voice":   d.voice.Pending(),
			"camera":  d.camera.Pending(),
			"battery": d.battery.Pending(),
			"drive":   d.drive.Pending(),
			"head":    d.head.Pending(),
		},
		Timestamp: time.Now(),
	}
}
