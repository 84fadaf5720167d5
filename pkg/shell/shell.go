// Package shell provides the interactive terminal used to drive the robot,
// either directly on the brick or remotely over the control websocket.
package shell

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell/v2"

	"github.com/teslashibe/go-dalek/pkg/protocol"
	"github.com/teslashibe/go-dalek/pkg/sound"
)

// ErrUsage is returned for malformed command arguments.
var ErrUsage = errors.New("shell: usage")

// Commander is what the shell drives. *client.Client satisfies it, and
// Local adapts a robot on the same host.
type Commander interface {
	Begin(ctl protocol.Control, value float64) error
	Release(ctl protocol.Control, value float64) error
	Stop() error
	PlaySound(text string) error
	StopSound() error
	Snapshot() error
	ToggleLights() error
}

// command is one shell verb.
type command struct {
	name string
	help string
	run  func(c Commander, args []string) (string, error)
}

var commands = []command{
	{"drive", "drive <-1..1>    drive forwards or backwards, 0 stops", axis(protocol.ControlDrive)},
	{"turn", "turn <-1..1>     turn on the spot", axis(protocol.ControlTurn)},
	{"head", "head <-1..1>     turn the head", axis(protocol.ControlHeadTurn)},
	{"release", "release <drive|turn|headturn> <-1..1>", release},
	{"stop", "stop             stop all movement", simple(Commander.Stop, "stopped")},
	{"say", "say <text>       speak a phrase", say},
	{"quiet", "quiet            stop speaking", simple(Commander.StopSound, "quiet")},
	{"lights", "lights           toggle the lights", simple(Commander.ToggleLights, "toggled")},
	{"snapshot", "snapshot         take a picture", simple(Commander.Snapshot, "snapshot requested")},
	{"sounds", "sounds           list the recorded phrases", listSounds},
}

// Execute runs one shell command by name.
func Execute(c Commander, name string, args []string) (string, error) {
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd.run(c, args)
		}
	}
	return "", fmt.Errorf("%w: unknown command %q", ErrUsage, name)
}

// New builds a shell over c. extra commands, such as status, are added
// after the built-in ones.
func New(c Commander, banner string, extra ...*ishell.Cmd) *ishell.Shell {
	sh := ishell.New()
	sh.Println(banner)

	for _, cmd := range commands {
		name := cmd.name
		sh.AddCmd(&ishell.Cmd{
			Name: name,
			Help: cmd.help,
			Func: func(ctx *ishell.Context) {
				out, err := Execute(c, name, ctx.Args)
				if err != nil {
					ctx.Err(err)
					return
				}
				if out != "" {
					ctx.Println(out)
				}
			},
		})
	}
	for _, cmd := range extra {
		sh.AddCmd(cmd)
	}
	return sh
}

func parseValue(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrUsage, s)
	}
	if v < -1 || v > 1 {
		return 0, fmt.Errorf("%w: %v is outside -1..1", ErrUsage, v)
	}
	return v, nil
}

func axis(ctl protocol.Control) func(Commander, []string) (string, error) {
	return func(c Commander, args []string) (string, error) {
		if len(args) != 1 {
			return "", fmt.Errorf("%w: %s <-1..1>", ErrUsage, ctl)
		}
		v, err := parseValue(args[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %v", ctl, v), c.Begin(ctl, v)
	}
}

func release(c Commander, args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("%w: release <drive|turn|headturn> <-1..1>", ErrUsage)
	}
	ctl := protocol.Control(args[0])
	switch ctl {
	case protocol.ControlDrive, protocol.ControlTurn, protocol.ControlHeadTurn:
	default:
		return "", fmt.Errorf("%w: unknown control %q", ErrUsage, args[0])
	}
	v, err := parseValue(args[1])
	if err != nil {
		return "", err
	}
	return "", c.Release(ctl, v)
}

func say(c Commander, args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("%w: say <text>", ErrUsage)
	}
	return "", c.PlaySound(strings.Join(args, " "))
}

func simple(fn func(Commander) error, done string) func(Commander, []string) (string, error) {
	return func(c Commander, _ []string) (string, error) {
		if err := fn(c); err != nil {
			return "", err
		}
		return done, nil
	}
}

func listSounds(Commander, []string) (string, error) {
	names := make([]string, len(sound.All))
	for i, s := range sound.All {
		names[i] = s.String()
	}
	sort.Strings(names)
	return strings.Join(names, "\n"), nil
}
