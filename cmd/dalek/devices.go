package main

import (
	"os"
	"time"

	"github.com/teslashibe/go-dalek/internal/config"
	"github.com/teslashibe/go-dalek/pkg/hardware"
	"github.com/teslashibe/go-dalek/pkg/hardware/ev3"
	"github.com/teslashibe/go-dalek/pkg/hardware/sim"
)

// simSpeechTime is how long simulated speech and captures take.
const simSpeechTime = 1500 * time.Millisecond

// placeholderJPEG is an empty JPEG (start and end markers only).
var placeholderJPEG = []byte{0xff, 0xd8, 0xff, 0xd9}

func openDevices(cfg config.Config) (hardware.Devices, error) {
	if cfg.Hardware == config.HardwareEV3 {
		devs, err := ev3.Open(ev3.DefaultRoot, ev3.Ports(cfg.Ports))
		if err != nil {
			return devs, err
		}
		devs.Camera = hardware.DeviceExists(cfg.Camera.Device)
		return devs, nil
	}

	r := sim.New()
	r.SetCamera(true)
	r.Launcher.ExitAfter = simSpeechTime
	r.Launcher.OnSpawn = func(name string, _ []string, _ *sim.Process) {
		if name == cfg.Camera.Command {
			os.WriteFile(cfg.Camera.OutputFile, placeholderJPEG, 0o644)
		}
	}
	return r.Devices(), nil
}
