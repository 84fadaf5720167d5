package dalek

import (
	"log/slog"
	"os"
	"sync"

	"github.com/teslashibe/go-dalek/internal/log"
	"github.com/teslashibe/go-dalek/pkg/event"
	"github.com/teslashibe/go-dalek/pkg/hardware"
)

// SnapshotHandler receives a captured JPEG.
type SnapshotHandler func(jpeg []byte)

// CameraConfig describes how to take a picture.
type CameraConfig struct {
	// Command and Args run the capture; Args must end with OutputFile.
	Command    string
	Args       []string
	OutputFile string
}

// Camera takes still pictures with a capture subprocess. Only one capture
// runs at a time; requests made while one is in flight are dropped.
type Camera struct {
	queue    *event.Queue
	launcher hardware.Launcher
	present  hardware.CameraProbe
	cfg      CameraConfig
	log      *slog.Logger

	mu      sync.Mutex
	handler SnapshotHandler
	current *capture
}

// NewCamera creates a Camera.
func NewCamera(launcher hardware.Launcher, present hardware.CameraProbe, cfg CameraConfig, opts ...event.Option) *Camera {
	c := &Camera{
		launcher: launcher,
		present:  present,
		cfg:      cfg,
		log:      log.Component("camera"),
	}
	c.queue = event.NewQueue(queueOptions("camera", nil, opts)...)
	c.log.Info("created camera", "camera_found", present())
	return c
}

// Process runs one tick.
func (c *Camera) Process() {
	c.queue.Process()
}

// SetHandler sets the function that receives snapshots. Pass nil to clear it.
func (c *Camera) SetHandler(h SnapshotHandler) {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
}

// TakePicture starts a capture unless one is already running.
func (c *Camera) TakePicture() {
	c.mu.Lock()
	hasHandler := c.handler != nil
	c.mu.Unlock()
	if !hasHandler {
		c.log.Warn("attempted to take a picture with no handler")
		return
	}

	if !c.present() {
		c.log.Info("no camera found")
		return
	}

	cp := &capture{camera: c}
	if !c.queue.AddIfEmpty(
		event.NewImmediate(cp.start),
		event.NewRunAfterCondition(cp.exited, cp.deliver),
	) {
		c.log.Debug("capture already in progress")
	}
}

// Disconnect cancels any capture and clears the handler.
func (c *Camera) Disconnect() {
	c.queue.Clear()

	var proc hardware.Process
	c.mu.Lock()
	if c.current != nil {
		proc = c.current.proc
	}
	c.current = nil
	c.handler = nil
	c.mu.Unlock()

	if proc != nil {
		if err := proc.Kill(); err != nil {
			c.log.Error("stop capture", "error", err)
		}
	}
	c.log.Info("camera disconnected")
}

// Pending returns the number of queued events.
func (c *Camera) Pending() int {
	return c.queue.Len()
}

// capture is one run of the capture subprocess.
type capture struct {
	camera *Camera
	proc   hardware.Process
}

func (cp *capture) start() {
	c := cp.camera
	proc, err := c.launcher.Spawn(c.cfg.Command, c.cfg.Args...)
	if err != nil {
		c.log.Error("start capture", "error", err)
		return
	}

	c.mu.Lock()
	cp.proc = proc
	c.current = cp
	c.mu.Unlock()
}

func (cp *capture) exited() bool {
	if cp.proc == nil {
		return true
	}
	_, exited := cp.proc.Poll()
	return exited
}

func (cp *capture) deliver() {
	c := cp.camera

	c.mu.Lock()
	if c.current == cp {
		c.current = nil
	}
	handler := c.handler
	c.mu.Unlock()

	if cp.proc == nil {
		return
	}
	if code, _ := cp.proc.Poll(); code != 0 {
		c.log.Error("capture subprocess failed", "exit_code", code)
		return
	}

	data, err := os.ReadFile(c.cfg.OutputFile)
	if err != nil {
		c.log.Error("read snapshot", "error", err)
		return
	}
	if handler != nil {
		handler(data)
	}
}
