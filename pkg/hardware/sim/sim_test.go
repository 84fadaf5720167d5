package sim

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSimulatedMotor(t *testing.T) {
	Convey("A simulated motor", t, func() {
		m := NewMotor("test")

		Convey("records run and stop commands", func() {
			So(m.SetTargetSpeed(300), ShouldBeNil)
			So(m.Run(), ShouldBeNil)
			So(m.Running(), ShouldBeTrue)
			So(m.Speed(), ShouldEqual, 300)

			So(m.Stop(), ShouldBeNil)
			So(m.Running(), ShouldBeFalse)
			So(m.Commands(), ShouldResemble, []string{"run", "stop"})
		})

		Convey("reset zeroes the encoder", func() {
			m.SetPosition(140)
			pos, err := m.Position()
			So(err, ShouldBeNil)
			So(pos, ShouldEqual, 140)

			So(m.Reset(), ShouldBeNil)
			pos, _ = m.Position()
			So(pos, ShouldEqual, 0)
		})
	})
}

func TestSimulatedLED(t *testing.T) {
	Convey("A simulated LED clamps brightness", t, func() {
		l := NewLED("test")

		So(l.SetBrightness(250), ShouldBeNil)
		b, _ := l.Brightness()
		So(b, ShouldEqual, MaxBrightness)

		So(l.SetBrightness(-4), ShouldBeNil)
		b, _ = l.Brightness()
		So(b, ShouldEqual, 0)
		So(l.Changes(), ShouldEqual, 2)
	})
}

func TestSimulatedSensors(t *testing.T) {
	Convey("Sensor readings can be set", t, func() {
		r := New()

		pressed, _ := r.Bumper.IsPressed()
		So(pressed, ShouldBeFalse)
		r.Bumper.SetPressed(true)
		pressed, _ = r.Bumper.IsPressed()
		So(pressed, ShouldBeTrue)

		v, _ := r.Power.MeasuredVoltage()
		So(v, ShouldEqual, DefaultVoltage)
		r.Power.SetVoltage(7.25)
		v, _ = r.Power.MeasuredVoltage()
		So(v, ShouldEqual, 7.25)

		Convey("and the camera can be attached", func() {
			devices := r.Devices()
			So(devices.Validate(), ShouldBeNil)
			So(devices.Camera(), ShouldBeFalse)
			r.SetCamera(true)
			So(devices.Camera(), ShouldBeTrue)
		})
	})
}

func TestSimulatedLauncher(t *testing.T) {
	Convey("A simulated launcher", t, func() {
		l := &Launcher{}

		Convey("records spawns", func() {
			p, err := l.Spawn("aplay", "sounds/gun.wav")
			So(err, ShouldBeNil)
			So(l.Spawns(), ShouldHaveLength, 1)
			So(l.Last().Name, ShouldEqual, "aplay")
			So(l.Last().Args, ShouldResemble, []string{"sounds/gun.wav"})

			_, exited := p.Poll()
			So(exited, ShouldBeFalse)

			Convey("and exits when told", func() {
				l.Last().Process.Exit(2)
				code, exited := p.Poll()
				So(exited, ShouldBeTrue)
				So(code, ShouldEqual, 2)

				code, err := p.Wait(context.Background())
				So(err, ShouldBeNil)
				So(code, ShouldEqual, 2)
			})

			Convey("and can be killed", func() {
				So(p.Kill(), ShouldBeNil)
				So(l.Last().Process.Killed(), ShouldBeTrue)
				code, _ := p.Poll()
				So(code, ShouldEqual, KilledExitCode)

				l.Last().Process.Exit(0)
				code, _ = p.Poll()
				So(code, ShouldEqual, KilledExitCode)
			})
		})

		Convey("exits processes on its own when ExitAfter is set", func() {
			l.ExitAfter = 10 * time.Millisecond
			p, _ := l.Spawn("espeak", "hello")

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			code, err := p.Wait(ctx)
			So(err, ShouldBeNil)
			So(code, ShouldEqual, 0)
		})

		Convey("runs OnSpawn for each process", func() {
			var names []string
			l.OnSpawn = func(name string, args []string, p *Process) {
				names = append(names, name)
				p.Exit(1)
			}
			p, _ := l.Spawn("streamer", "-o", "out.jpeg")
			code, exited := p.Poll()
			So(exited, ShouldBeTrue)
			So(code, ShouldEqual, 1)
			So(names, ShouldResemble, []string{"streamer"})
		})
	})
}
