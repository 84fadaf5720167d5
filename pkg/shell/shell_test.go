package shell

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-dalek/pkg/protocol"
	"github.com/teslashibe/go-dalek/pkg/sound"
)

type mockRobot struct {
	calls []string
}

func (m *mockRobot) record(format string, args ...any) {
	m.calls = append(m.calls, fmt.Sprintf(format, args...))
}

func (m *mockRobot) Drive(v float64)           { m.record("drive %g", v) }
func (m *mockRobot) DriveRelease(v float64)    { m.record("drive-release %g", v) }
func (m *mockRobot) Turn(v float64)            { m.record("turn %g", v) }
func (m *mockRobot) TurnRelease(v float64)     { m.record("turn-release %g", v) }
func (m *mockRobot) HeadTurn(v float64)        { m.record("head %g", v) }
func (m *mockRobot) HeadTurnRelease(v float64) { m.record("head-release %g", v) }
func (m *mockRobot) StopMoving()               { m.record("stop") }
func (m *mockRobot) ToggleLights()             { m.record("lights") }
func (m *mockRobot) Speak(text string)         { m.record("speak %s", text) }
func (m *mockRobot) StopSpeaking()             { m.record("quiet") }
func (m *mockRobot) TakePicture()              { m.record("picture") }

func TestExecute(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
		out  string
	}{
		{"drive", []string{"0.5"}, "drive 0.5", "drive 0.5"},
		{"drive", []string{"0"}, "drive 0", "drive 0"},
		{"turn", []string{"-1"}, "turn -1", "turn -1"},
		{"head", []string{"0.25"}, "head 0.25", "headturn 0.25"},
		{"release", []string{"turn", "-1"}, "turn-release -1", ""},
		{"release", []string{"headturn", "1"}, "head-release 1", ""},
		{"stop", nil, "stop", "stopped"},
		{"say", []string{"Daleks", "are", "supreme"}, "speak Daleks are supreme", ""},
		{"quiet", nil, "quiet", "quiet"},
		{"lights", nil, "lights", "toggled"},
		{"snapshot", nil, "picture", "snapshot requested"},
	}

	for _, tt := range tests {
		t.Run(tt.name+" "+strings.Join(tt.args, " "), func(t *testing.T) {
			robot := &mockRobot{}
			out, err := Execute(Local{Robot: robot}, tt.name, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.out, out)
			assert.Equal(t, []string{tt.want}, robot.calls)
		})
	}
}

func TestExecuteUsage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"drive", nil},
		{"drive", []string{"fast"}},
		{"turn", []string{"2"}},
		{"release", []string{"drive"}},
		{"release", []string{"fly", "1"}},
		{"say", nil},
		{"dance", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			robot := &mockRobot{}
			_, err := Execute(Local{Robot: robot}, tt.name, tt.args)
			assert.True(t, errors.Is(err, ErrUsage), "got %v", err)
			assert.Empty(t, robot.calls)
		})
	}
}

func TestSoundsListed(t *testing.T) {
	out, err := Execute(Local{Robot: &mockRobot{}}, "sounds", nil)
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, len(sound.All))
	assert.Contains(t, lines, sound.Exterminate.String())
}

func TestLocalUnknownControl(t *testing.T) {
	l := Local{Robot: &mockRobot{}}
	assert.ErrorIs(t, l.Begin(protocol.Control("fly"), 1), protocol.ErrUnknownControl)
	assert.ErrorIs(t, l.Release(protocol.Control("fly"), 1), protocol.ErrUnknownControl)
}
