package dalek

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-dalek/pkg/hardware/sim"
)

type cameraFixture struct {
	camera   *Camera
	robot    *sim.Robot
	output   string
	mu       sync.Mutex
	received [][]byte
}

func newCameraFixture(t *testing.T) *cameraFixture {
	t.Helper()
	f := &cameraFixture{
		robot:  sim.New(),
		output: filepath.Join(t.TempDir(), "snapshot.jpeg"),
	}
	f.robot.SetCamera(true)
	devs := f.robot.Devices()
	f.camera = NewCamera(devs.Launcher, devs.Camera, CameraConfig{
		Command:    "streamer",
		Args:       []string{"-o", f.output},
		OutputFile: f.output,
	})
	f.camera.SetHandler(func(b []byte) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.received = append(f.received, b)
	})
	return f
}

func (f *cameraFixture) snapshots() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.received)
}

func TestCamera_DeliversSnapshot(t *testing.T) {
	f := newCameraFixture(t)

	f.camera.TakePicture()
	f.camera.Process()

	spawns := f.robot.Launcher.Spawns()
	require.Len(t, spawns, 1)
	assert.Equal(t, "streamer", spawns[0].Name)
	assert.Equal(t, []string{"-o", f.output}, spawns[0].Args)
	assert.Equal(t, 1, f.camera.Pending(), "waiting for capture to finish")

	require.NoError(t, os.WriteFile(f.output, []byte("jpeg"), 0o644))
	spawns[0].Process.Exit(0)
	f.camera.Process()

	assert.Equal(t, 0, f.camera.Pending())
	require.Equal(t, 1, f.snapshots())
	assert.Equal(t, []byte("jpeg"), f.received[0])
}

func TestCamera_NoOverlap(t *testing.T) {
	f := newCameraFixture(t)
	require.NoError(t, os.WriteFile(f.output, []byte("jpeg"), 0o644))

	f.camera.TakePicture()
	f.camera.TakePicture()
	f.camera.Process()
	f.camera.TakePicture()
	f.camera.Process()

	require.Len(t, f.robot.Launcher.Spawns(), 1, "second capture must not start")

	f.robot.Launcher.Last().Process.Exit(0)
	f.camera.Process()
	f.camera.Process()
	assert.Equal(t, 1, f.snapshots())
}

func TestCamera_FailedCaptureHasNoCallback(t *testing.T) {
	f := newCameraFixture(t)
	require.NoError(t, os.WriteFile(f.output, []byte("stale"), 0o644))

	f.camera.TakePicture()
	f.camera.Process()
	f.robot.Launcher.Last().Process.Exit(1)
	f.camera.Process()

	assert.Equal(t, 0, f.camera.Pending())
	assert.Equal(t, 0, f.snapshots())

	// the next request is not blocked by the failure
	f.camera.TakePicture()
	f.camera.Process()
	assert.Len(t, f.robot.Launcher.Spawns(), 2)
}

func TestCamera_NoDevice(t *testing.T) {
	f := newCameraFixture(t)
	f.robot.SetCamera(false)

	f.camera.TakePicture()
	f.camera.Process()

	assert.Equal(t, 0, f.camera.Pending())
	assert.Empty(t, f.robot.Launcher.Spawns())
}

func TestCamera_NoHandler(t *testing.T) {
	f := newCameraFixture(t)
	f.camera.SetHandler(nil)

	f.camera.TakePicture()
	assert.Equal(t, 0, f.camera.Pending())
}

func TestCamera_Disconnect(t *testing.T) {
	f := newCameraFixture(t)

	f.camera.TakePicture()
	f.camera.Process()
	proc := f.robot.Launcher.Last().Process

	f.camera.Disconnect()
	assert.True(t, proc.Killed())
	assert.Equal(t, 0, f.camera.Pending())
}
