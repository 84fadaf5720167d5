package gamepad

import "github.com/teslashibe/go-dalek/pkg/sound"

const (
	stickMax      = 255
	stickDeadZone = 10
)

// StickAxis converts raw stick positions to control values in [-1, 1] and
// reports changes. Positions within the dead zone around the middle read as
// zero; a zero is only reported once after movement.
type StickAxis struct {
	press   func(float64)
	release func(float64)
	invert  bool
	last    float64
}

// NewStickAxis creates an axis that calls press with new non-zero values
// and release with the previous value when the stick re-centres.
func NewStickAxis(press, release func(float64), invert bool) *StickAxis {
	return &StickAxis{press: press, release: release, invert: invert}
}

// Convert maps a raw position to a control value.
func (a *StickAxis) Convert(raw int32) float64 {
	middle := stickMax / 2.0
	v := float64(raw)
	if v >= middle-stickDeadZone && v <= middle+stickDeadZone {
		return 0
	}
	out := (v - middle) / middle
	if a.invert {
		out = -out
	}
	return out
}

// Handle processes a raw position.
func (a *StickAxis) Handle(raw int32) {
	v := a.Convert(raw)
	switch {
	case v != 0:
		a.last = v
		a.press(v)
	case a.last != 0:
		prev := a.last
		a.last = 0
		a.release(prev)
	}
}

// DPadAxis turns a hat axis into button presses, firing once per edge.
type DPadAxis struct {
	plus, minus uint16
	play        func(code uint16)
	current     int32
}

// NewDPadAxis creates a hat axis that plays plus on +1 and minus on -1.
func NewDPadAxis(plus, minus uint16, play func(code uint16)) *DPadAxis {
	return &DPadAxis{plus: plus, minus: minus, play: play}
}

// Handle processes a hat value of -1, 0 or 1.
func (d *DPadAxis) Handle(value int32) {
	switch {
	case value == 1 && d.current != 1:
		d.play(d.plus)
	case value == -1 && d.current != -1:
		d.play(d.minus)
	}
	d.current = value
}

// Sounds maps buttons to phrases. Comments name the PS4 controller button.
var Sounds = map[uint16]sound.Sound{
	BtnSouth:     sound.Exterminate,                // cross
	BtnWest:      sound.Gun,                        // square
	BtnEast:      sound.Exterminate3,               // circle
	BtnNorth:     sound.DaleksAreSupreme,           // triangle
	BtnTL:        sound.Doctor,                     // L1
	BtnTR:        sound.TheDoctor,                  // R1
	BtnTL2:       sound.ItIsTheDoctor,              // L2
	BtnTR2:       sound.TheDoctorMustDie,           // R2
	BtnThumbL:    sound.CanIBeOfAssistance,         // left stick
	BtnThumbR:    sound.WouldYouCareForSomeTea,     // right stick
	BtnSelect:    sound.YouWouldMakeAGoodDalek,     // share
	BtnStart:     sound.DaleksDoNotQuestionOrders,  // options
	BtnMode:      sound.SocialInteractionWillCease, // PS
	BtnDPadLeft:  sound.Explain,
	BtnDPadRight: sound.Report,
	BtnDPadUp:    sound.ThatIsIncorrect,
	BtnDPadDown:  sound.IdentifyYourself,
}
