package dalek

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/teslashibe/go-dalek/internal/config"
	"github.com/teslashibe/go-dalek/internal/log"
	"github.com/teslashibe/go-dalek/pkg/event"
	"github.com/teslashibe/go-dalek/pkg/hardware"
	"github.com/teslashibe/go-dalek/pkg/sound"
)

// Voice plays recorded phrases, flashing the lights in time with them, and
// falls back to text to speech for anything without a recording.
//
// Each recording <name>.wav may have a <name>.txt flash schedule alongside
// it in the sound directory.
type Voice struct {
	queue    *event.Queue
	lights   *Lights
	launcher hardware.Launcher
	cfg      config.Voice
	tick     time.Duration
	log      *slog.Logger

	// speakMu serialises Speak and Stop from the producer goroutines.
	speakMu sync.Mutex

	mu   sync.Mutex
	proc hardware.Process
}

// NewVoice creates a Voice.
func NewVoice(lights *Lights, launcher hardware.Launcher, cfg config.Voice, tick time.Duration, opts ...event.Option) *Voice {
	v := &Voice{
		lights:   lights,
		launcher: launcher,
		cfg:      cfg,
		tick:     tick,
		log:      log.Component("voice"),
	}
	v.queue = event.NewQueue(queueOptions("voice", nil, opts)...)
	v.log.Info("created voice", "sound_dir", cfg.SoundDir)
	return v
}

// Process runs one tick.
func (v *Voice) Process() {
	v.queue.Process()
}

// Speak stops anything already playing and starts text.
func (v *Voice) Speak(text string) {
	v.speakMu.Lock()
	defer v.speakMu.Unlock()

	v.stop()

	name := sound.Filename(text)
	wav := filepath.Join(v.cfg.SoundDir, name+".wav")

	var (
		proc hardware.Process
		err  error
	)
	if _, statErr := os.Stat(wav); statErr == nil {
		proc, err = v.launcher.Spawn(v.cfg.PlayCommand, wav)
	} else {
		proc, err = v.launcher.Spawn(v.cfg.TextToSpeechCommand, sound.Espeakify(text))
	}
	if err != nil {
		v.log.Error("start speech", "text", text, "error", err)
		return
	}

	v.mu.Lock()
	v.proc = proc
	v.mu.Unlock()

	v.queue.Add(event.NewRunAfterCondition(
		func() bool {
			_, exited := proc.Poll()
			return exited
		},
		func() { v.finished(proc) },
	))

	if flashes := v.flashSchedule(name); len(flashes) > 0 {
		v.queue.Add(v.flashEvents(flashes)...)
	}
	v.log.Debug("speaking", "text", text)
}

// Stop kills the current speech, cancels its light schedule and switches
// the lights off.
func (v *Voice) Stop() {
	v.speakMu.Lock()
	defer v.speakMu.Unlock()
	v.stop()
}

func (v *Voice) stop() {
	v.queue.Clear()
	v.lights.Off()

	v.mu.Lock()
	proc := v.proc
	v.proc = nil
	v.mu.Unlock()

	if proc != nil {
		if err := proc.Kill(); err != nil {
			v.log.Error("stop speech", "error", err)
		}
	}
}

// Wait blocks until the current speech finishes or ctx is done.
func (v *Voice) Wait(ctx context.Context) error {
	v.mu.Lock()
	proc := v.proc
	v.mu.Unlock()

	if proc == nil {
		return nil
	}
	if _, err := proc.Wait(ctx); err != nil && ctx.Err() != nil {
		return err
	}

	v.mu.Lock()
	if v.proc == proc {
		v.proc = nil
	}
	v.mu.Unlock()
	return nil
}

// WaitUntilEmpty blocks until the light schedule has finished.
func (v *Voice) WaitUntilEmpty(ctx context.Context) error {
	return v.queue.WaitUntilEmpty(ctx)
}

// Speaking reports whether speech is playing.
func (v *Voice) Speaking() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.proc == nil {
		return false
	}
	_, exited := v.proc.Poll()
	return !exited
}

// Disconnect stops any speech.
func (v *Voice) Disconnect() {
	v.Stop()
	v.log.Info("voice disconnected")
}

// Pending returns the number of queued events.
func (v *Voice) Pending() int {
	return v.queue.Len()
}

func (v *Voice) finished(proc hardware.Process) {
	code, _ := proc.Poll()
	if code != 0 {
		v.log.Error("speech subprocess failed", "exit_code", code)
	}
}

func (v *Voice) flashSchedule(name string) []sound.Flash {
	path := filepath.Join(v.cfg.SoundDir, name+".txt")
	flashes, err := sound.LoadFlashSchedule(path)
	switch {
	case err == nil:
		return flashes
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		v.log.Error("skipping light schedule", "sound", name, "error", err)
		return nil
	}
}

// flashEvents turns each flash into a wait followed by an on/off window.
func (v *Voice) flashEvents(flashes []sound.Flash) []event.Event {
	events := make([]event.Event, 0, len(flashes))
	for _, f := range flashes {
		events = append(events, event.Sequence(
			event.NewRunAfterTime(f.On, v.tick, nil),
			event.NewDurationAction(f.Duration(), v.tick, v.lights.On, v.lights.Off),
		))
	}
	return events
}
