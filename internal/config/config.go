// Package config provides configuration loading for go-dalek commands.
//
// Values are layered: DefaultConfig(), then an optional YAML file, then
// DALEK_* environment variables. The result is validated before use.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Hardware backends.
const (
	HardwareSim = "sim"
	HardwareEV3 = "ev3"
)

// Sentinel errors returned by Validate.
var (
	ErrInvalidTick     = errors.New("config: tick length must be positive")
	ErrInvalidIdle     = errors.New("config: idle timeout ticks must be positive")
	ErrInvalidHead     = errors.New("config: head limit must be positive")
	ErrInvalidBattery  = errors.New("config: battery interval must be positive")
	ErrUnknownHardware = errors.New("config: unknown hardware backend")
)

// Ports names the ev3 ports each device is plugged into.
type Ports struct {
	LeftWheel  string `yaml:"left_wheel" env:"LEFT_WHEEL"`
	RightWheel string `yaml:"right_wheel" env:"RIGHT_WHEEL"`
	Head       string `yaml:"head" env:"HEAD"`
	LED        string `yaml:"led" env:"LED"`
	Bumper     string `yaml:"bumper" env:"BUMPER"`
}

// Drive holds the drive tuning. The speeds are signed because the wheels are
// mounted backwards.
type Drive struct {
	DriveSpeed       float64 `yaml:"drive_speed" env:"SPEED"`
	TurnSpeed        float64 `yaml:"turn_speed" env:"TURN_SPEED"`
	IdleTimeoutTicks int     `yaml:"idle_timeout_ticks" env:"IDLE_TIMEOUT_TICKS"`
}

// Head holds the head tuning. HeadLimit is in encoder degrees either side of
// the calibrated centre.
type Head struct {
	Limit float64 `yaml:"limit" env:"LIMIT"`
	Speed float64 `yaml:"speed" env:"SPEED"`
}

// Voice holds the speech settings.
type Voice struct {
	SoundDir            string `yaml:"sound_dir" env:"SOUND_DIR"`
	PlayCommand         string `yaml:"play_command" env:"PLAY_COMMAND"`
	TextToSpeechCommand string `yaml:"text_to_speech_command" env:"TTS_COMMAND"`
}

// Camera holds the snapshot settings. The output file is appended to Args.
type Camera struct {
	Command    string   `yaml:"command" env:"COMMAND"`
	Args       []string `yaml:"args" env:"ARGS" envSeparator:" "`
	Device     string   `yaml:"device" env:"DEVICE"`
	OutputFile string   `yaml:"output_file" env:"OUTPUT_FILE"`
}

// Gamepad holds the physical controller settings.
type Gamepad struct {
	Enabled    bool   `yaml:"enabled" env:"ENABLED"`
	DeviceName string `yaml:"device_name" env:"DEVICE_NAME"`
	InputDir   string `yaml:"input_dir" env:"INPUT_DIR"`
}

// Config is the complete runtime configuration for the robot binary.
type Config struct {
	// Scheduler
	TickLength      time.Duration `yaml:"tick_length" env:"TICK_LENGTH"`
	BatteryInterval time.Duration `yaml:"battery_interval" env:"BATTERY_INTERVAL"`

	// Hardware
	Hardware string `yaml:"hardware" env:"HARDWARE"`
	Ports    Ports  `yaml:"ports" envPrefix:"PORT_"`

	Drive   Drive   `yaml:"drive" envPrefix:"DRIVE_"`
	Head    Head    `yaml:"head" envPrefix:"HEAD_"`
	Voice   Voice   `yaml:"voice" envPrefix:"VOICE_"`
	Camera  Camera  `yaml:"camera" envPrefix:"CAMERA_"`
	Gamepad Gamepad `yaml:"gamepad" envPrefix:"GAMEPAD_"`

	// Network
	ListenAddr string `yaml:"listen_addr" env:"LISTEN_ADDR"`
	StaticDir  string `yaml:"static_dir" env:"STATIC_DIR"`

	// Logging
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"`
	Verbose   bool   `yaml:"verbose" env:"EVENT_QUEUE_VERBOSE"`
}

// DefaultConfig returns the configuration the robot was tuned with.
func DefaultConfig() Config {
	return Config{
		TickLength:      100 * time.Millisecond,
		BatteryInterval: 10 * time.Second,

		Hardware: HardwareSim,
		Ports: Ports{
			LeftWheel:  "outD",
			RightWheel: "outA",
			Head:       "outB",
			LED:        "outC",
			Bumper:     "in2",
		},

		Drive: Drive{
			DriveSpeed:       -700,
			TurnSpeed:        -500,
			IdleTimeoutTicks: 75,
		},
		Head: Head{
			Limit: 135,
			Speed: 300,
		},
		Voice: Voice{
			SoundDir:            "sounds",
			PlayCommand:         "aplay",
			TextToSpeechCommand: "espeak",
		},
		Camera: Camera{
			Command:    "streamer",
			Args:       []string{"-s", "800x600", "-o"},
			Device:     "/dev/video0",
			OutputFile: filepath.Join(os.TempDir(), "dalek-snapshot.jpeg"),
		},
		Gamepad: Gamepad{
			DeviceName: "Wireless Controller",
			InputDir:   "/dev/input",
		},

		ListenAddr: ":" + DefaultDalekPort,
		StaticDir:  "html",

		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and DALEK_* environment variables.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "DALEK_"}); err != nil {
		return cfg, fmt.Errorf("config: environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.TickLength <= 0 {
		return ErrInvalidTick
	}
	if c.Drive.IdleTimeoutTicks <= 0 {
		return ErrInvalidIdle
	}
	if c.Head.Limit <= 0 {
		return ErrInvalidHead
	}
	if c.BatteryInterval <= 0 {
		return ErrInvalidBattery
	}
	switch c.Hardware {
	case HardwareSim, HardwareEV3:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownHardware, c.Hardware)
	}
	return nil
}

// CameraArgs returns the full argument list for the capture command.
func (c *Config) CameraArgs() []string {
	args := make([]string, 0, len(c.Camera.Args)+1)
	args = append(args, c.Camera.Args...)
	return append(args, c.Camera.OutputFile)
}
