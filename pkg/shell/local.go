package shell

import "github.com/teslashibe/go-dalek/pkg/protocol"

// Robot is the subset of *dalek.Dalek that Local drives.
type Robot interface {
	Drive(v float64)
	DriveRelease(v float64)
	Turn(v float64)
	TurnRelease(v float64)
	HeadTurn(v float64)
	HeadTurnRelease(v float64)
	StopMoving()
	ToggleLights()
	Speak(text string)
	StopSpeaking()
	TakePicture()
}

// Local adapts a robot in the same process to Commander.
type Local struct {
	Robot Robot
}

var _ Commander = Local{}

func (l Local) Begin(ctl protocol.Control, v float64) error {
	switch ctl {
	case protocol.ControlDrive:
		l.Robot.Drive(v)
	case protocol.ControlTurn:
		l.Robot.Turn(v)
	case protocol.ControlHeadTurn:
		l.Robot.HeadTurn(v)
	default:
		return protocol.ErrUnknownControl
	}
	return nil
}

func (l Local) Release(ctl protocol.Control, v float64) error {
	switch ctl {
	case protocol.ControlDrive:
		l.Robot.DriveRelease(v)
	case protocol.ControlTurn:
		l.Robot.TurnRelease(v)
	case protocol.ControlHeadTurn:
		l.Robot.HeadTurnRelease(v)
	default:
		return protocol.ErrUnknownControl
	}
	return nil
}

func (l Local) Stop() error                 { l.Robot.StopMoving(); return nil }
func (l Local) PlaySound(text string) error { l.Robot.Speak(text); return nil }
func (l Local) StopSound() error            { l.Robot.StopSpeaking(); return nil }
func (l Local) Snapshot() error             { l.Robot.TakePicture(); return nil }
func (l Local) ToggleLights() error         { l.Robot.ToggleLights(); return nil }
