// Package gamepad drives the robot from a Bluetooth game controller read
// through the Linux evdev interface.
package gamepad

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/teslashibe/go-dalek/internal/log"
	"github.com/teslashibe/go-dalek/pkg/sound"
)

// Robot is what the controller drives. *dalek.Dalek satisfies it.
type Robot interface {
	Drive(v float64)
	DriveRelease(v float64)
	Turn(v float64)
	TurnRelease(v float64)
	HeadTurn(v float64)
	HeadTurnRelease(v float64)
	Speak(text string)
}

// Handler maps controller events onto robot commands.
//
//	left stick X  → turn
//	left stick Y  → drive (up is forwards)
//	right stick X → head turn
//	buttons, d-pad → phrases
type Handler struct {
	robot  Robot
	turn   *StickAxis
	drive  *StickAxis
	head   *StickAxis
	dpadX  *DPadAxis
	dpadY  *DPadAxis
	sounds map[uint16]sound.Sound
}

// NewHandler creates a handler for robot with the default button map.
func NewHandler(robot Robot) *Handler {
	h := &Handler{
		robot:  robot,
		turn:   NewStickAxis(robot.Turn, robot.TurnRelease, false),
		drive:  NewStickAxis(robot.Drive, robot.DriveRelease, true),
		head:   NewStickAxis(robot.HeadTurn, robot.HeadTurnRelease, false),
		sounds: Sounds,
	}
	h.dpadX = NewDPadAxis(BtnDPadRight, BtnDPadLeft, h.play)
	h.dpadY = NewDPadAxis(BtnDPadDown, BtnDPadUp, h.play)
	return h
}

// Handle processes one event.
func (h *Handler) Handle(e Event) {
	switch e.Type {
	case EvKey:
		if e.Value == keyDown {
			h.play(e.Code)
		}
	case EvAbs:
		switch e.Code {
		case AbsX:
			h.turn.Handle(e.Value)
		case AbsY:
			h.drive.Handle(e.Value)
		case AbsRX:
			h.head.Handle(e.Value)
		case AbsHat0X:
			h.dpadX.Handle(e.Value)
		case AbsHat0Y:
			h.dpadY.Handle(e.Value)
		}
	}
}

func (h *Handler) play(code uint16) {
	if s, ok := h.sounds[code]; ok {
		h.robot.Speak(s.String())
	}
}

// Config holds the controller settings.
type Config struct {
	DeviceName string
	InputDir   string
	SysDir     string

	// RetryInterval is the wait between device scans.
	RetryInterval time.Duration
}

// Controller finds the game controller, grabs it and feeds its events to
// a Handler, reconnecting whenever the device goes away.
type Controller struct {
	robot Robot
	cfg   Config
	log   *slog.Logger
}

// New creates a controller.
func New(robot Robot, cfg Config) *Controller {
	if cfg.SysDir == "" {
		cfg.SysDir = DefaultSysDir
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = time.Second
	}
	return &Controller{
		robot: robot,
		cfg:   cfg,
		log:   log.Component("gamepad"),
	}
}

// Run scans for the controller until ctx is done.
func (c *Controller) Run(ctx context.Context) {
	for {
		path, err := Find(c.cfg.InputDir, c.cfg.SysDir, c.cfg.DeviceName)
		if err == nil {
			c.log.Info("found controller", "path", path)
			if err := c.serve(ctx, path); err != nil && ctx.Err() == nil {
				c.log.Warn("controller lost", "path", path, "error", err)
			}
		} else if !errors.Is(err, ErrNotFound) {
			c.log.Warn("device scan failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.cfg.RetryInterval):
		}
	}
}

// serve reads one device until it fails or ctx is done.
func (c *Controller) serve(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := grab(f); err != nil {
		c.log.Warn("exclusive grab failed", "path", path, "error", err)
	} else {
		defer release(f)
	}

	// Closing the file unblocks the read below.
	stop := context.AfterFunc(ctx, func() { f.Close() })
	defer stop()

	return c.readLoop(f)
}

func (c *Controller) readLoop(r io.Reader) error {
	h := NewHandler(c.robot)
	for {
		e, err := ReadEvent(r)
		if err != nil {
			return err
		}
		h.Handle(e)
	}
}
