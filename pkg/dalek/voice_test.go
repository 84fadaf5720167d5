package dalek

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-dalek/internal/config"
	"github.com/teslashibe/go-dalek/pkg/hardware"
	"github.com/teslashibe/go-dalek/pkg/hardware/sim"
	"github.com/teslashibe/go-dalek/pkg/sound"
)

const testTick = 100 * time.Millisecond

type voiceFixture struct {
	voice    *Voice
	led      *sim.LED
	lights   *Lights
	launcher *sim.Launcher
	dir      string
}

func newVoiceFixture(t *testing.T) *voiceFixture {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig().Voice
	cfg.SoundDir = dir

	led := sim.NewLED("led")
	lights := NewLights(led)
	launcher := &sim.Launcher{}
	return &voiceFixture{
		voice:    NewVoice(lights, launcher, cfg, testTick),
		led:      led,
		lights:   lights,
		launcher: launcher,
		dir:      dir,
	}
}

func (f *voiceFixture) writeFile(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, name), []byte(content), 0o644))
}

func TestVoice_PlaysRecording(t *testing.T) {
	f := newVoiceFixture(t)
	f.writeFile(t, "gun.wav", "RIFF")

	f.voice.Speak(string(sound.Gun))

	last := f.launcher.Last()
	require.NotNil(t, last)
	assert.Equal(t, "aplay", last.Name)
	assert.Equal(t, []string{filepath.Join(f.dir, "gun.wav")}, last.Args)
	assert.True(t, f.voice.Speaking())
}

func TestVoice_FallsBackToSpeech(t *testing.T) {
	f := newVoiceFixture(t)

	f.voice.Speak("You would make a good Dalek")

	last := f.launcher.Last()
	require.NotNil(t, last)
	assert.Equal(t, "espeak", last.Name)
	assert.Equal(t, []string{"You would make a good Dahlek"}, last.Args)
}

func TestVoice_FlashSchedule(t *testing.T) {
	f := newVoiceFixture(t)
	f.writeFile(t, "gun.wav", "RIFF")
	f.writeFile(t, "gun.txt", "0.0\n0.2\n0.3\n0.5\n")

	f.voice.Speak(string(sound.Gun))
	assert.Equal(t, 3, f.voice.Pending(), "speech reaper plus two flashes")

	f.voice.Process()
	assert.True(t, f.lights.IsOn(), "first flash starts at once")

	f.voice.Process()
	assert.False(t, f.lights.IsOn(), "first flash ends after 0.2s")

	f.voice.Process()
	assert.True(t, f.lights.IsOn(), "second flash starts at 0.3s")

	f.voice.Process()
	assert.False(t, f.lights.IsOn())
	assert.Equal(t, 1, f.voice.Pending(), "only the reaper is left")

	f.launcher.Last().Process.Exit(0)
	f.voice.Process()
	assert.Equal(t, 0, f.voice.Pending())
	assert.False(t, f.voice.Speaking())
}

func TestVoice_OddScheduleSkipsFlashes(t *testing.T) {
	f := newVoiceFixture(t)
	f.writeFile(t, "gun.wav", "RIFF")
	f.writeFile(t, "gun.txt", "0.0\n0.2\n0.3\n")

	f.voice.Speak(string(sound.Gun))
	changes := f.led.Changes()

	assert.NotNil(t, f.launcher.Last(), "speech still plays")
	assert.Equal(t, 1, f.voice.Pending())
	for i := 0; i < 5; i++ {
		f.voice.Process()
	}
	assert.Equal(t, changes, f.led.Changes(), "lights untouched")
}

func TestVoice_SpeakCancelsPrevious(t *testing.T) {
	f := newVoiceFixture(t)
	f.writeFile(t, "gun.wav", "RIFF")
	f.writeFile(t, "gun.txt", "0.5\n1.0\n")

	f.voice.Speak(string(sound.Gun))
	first := f.launcher.Last().Process

	f.voice.Speak(string(sound.Report))

	assert.True(t, first.Killed())
	assert.Equal(t, 1, f.voice.Pending(), "old light schedule cancelled")
	assert.Len(t, f.launcher.Spawns(), 2)
}

// gatedLauncher holds the first spawn until gate is closed.
type gatedLauncher struct {
	sim.Launcher
	entered chan struct{}
	gate    chan struct{}
	once    sync.Once
}

func (l *gatedLauncher) Spawn(name string, args ...string) (hardware.Process, error) {
	first := false
	l.once.Do(func() { first = true })
	if first {
		close(l.entered)
		<-l.gate
	}
	return l.Launcher.Spawn(name, args...)
}

func TestVoice_ConcurrentSpeakLeavesOneProcess(t *testing.T) {
	cfg := config.DefaultConfig().Voice
	cfg.SoundDir = t.TempDir()
	launcher := &gatedLauncher{
		entered: make(chan struct{}),
		gate:    make(chan struct{}),
	}
	v := NewVoice(NewLights(sim.NewLED("led")), launcher, cfg, testTick)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		v.Speak("one")
	}()
	<-launcher.entered
	go func() {
		defer wg.Done()
		v.Speak("two")
	}()
	time.Sleep(20 * time.Millisecond)
	close(launcher.gate)
	wg.Wait()

	spawns := launcher.Spawns()
	require.Len(t, spawns, 2)
	live := 0
	for _, s := range spawns {
		if !s.Process.Killed() {
			live++
		}
	}
	assert.Equal(t, 1, live, "only the latest speech keeps playing")
	assert.True(t, v.Speaking())

	v.Stop()
	for i, s := range spawns {
		assert.True(t, s.Process.Killed(), "process %d", i)
	}
	assert.False(t, v.Speaking())
}

func TestVoice_Stop(t *testing.T) {
	f := newVoiceFixture(t)
	f.writeFile(t, "gun.wav", "RIFF")
	f.writeFile(t, "gun.txt", "0.0\n1.0\n")

	f.voice.Speak(string(sound.Gun))
	f.voice.Process()
	require.True(t, f.lights.IsOn())

	f.voice.Stop()
	assert.False(t, f.lights.IsOn())
	assert.Equal(t, 0, f.voice.Pending())
	assert.True(t, f.launcher.Last().Process.Killed())
	assert.False(t, f.voice.Speaking())
}

func TestVoice_Wait(t *testing.T) {
	f := newVoiceFixture(t)
	f.launcher.ExitAfter = 20 * time.Millisecond

	f.voice.Speak(string(sound.Report))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, f.voice.Wait(ctx))
	assert.False(t, f.voice.Speaking())

	assert.NoError(t, f.voice.Wait(ctx), "nothing to wait for")
}

func TestVoice_WaitCancelled(t *testing.T) {
	f := newVoiceFixture(t)
	f.voice.Speak(string(sound.Report))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, f.voice.Wait(ctx), context.DeadlineExceeded)
}

func TestVoice_FailedSpeechCompletes(t *testing.T) {
	f := newVoiceFixture(t)
	f.voice.Speak(string(sound.Report))

	f.launcher.Last().Process.Exit(1)
	f.voice.Process()
	assert.Equal(t, 0, f.voice.Pending())
}
