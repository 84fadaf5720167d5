// Dalek - drives the robot from the web controller, a game controller or
// the terminal
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abiosoft/ishell/v2"

	"github.com/teslashibe/go-dalek/internal/config"
	"github.com/teslashibe/go-dalek/internal/log"
	"github.com/teslashibe/go-dalek/pkg/dalek"
	"github.com/teslashibe/go-dalek/pkg/gamepad"
	"github.com/teslashibe/go-dalek/pkg/hub"
	"github.com/teslashibe/go-dalek/pkg/remote"
	"github.com/teslashibe/go-dalek/pkg/shell"
	"github.com/teslashibe/go-dalek/pkg/web"
)

const (
	statusInterval  = time.Second
	shutdownTimeout = 15 * time.Second
)

type options struct {
	configPath string
	hardware   string
	shell      bool
	gamepad    bool
	debug      bool
}

func main() {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Configuration error: %v\n", err)
		os.Exit(1)
	}
	if opts.hardware != "" {
		cfg.Hardware = opts.hardware
	}
	if opts.gamepad {
		cfg.Gamepad.Enabled = true
	}
	if opts.debug {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Configuration error: %v\n", err)
		os.Exit(1)
	}

	log.InitWithFormat(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, opts); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.configPath, "config", "", "YAML config file")
	flag.StringVar(&o.hardware, "hardware", "", "Hardware backend: sim or ev3 (overrides config)")
	flag.BoolVar(&o.shell, "shell", false, "Drive from an interactive terminal shell")
	flag.BoolVar(&o.gamepad, "gamepad", false, "Read the Bluetooth game controller")
	flag.BoolVar(&o.debug, "debug", false, "Enable debug logging")
	flag.Parse()
	return o
}

func run(cfg config.Config, opts options) error {
	devs, err := openDevices(cfg)
	if err != nil {
		return err
	}

	robot, err := dalek.New(devs, cfg)
	if err != nil {
		return err
	}

	// The scheduler outlives ctx so shutdown can still speak.
	go robot.Run(context.Background())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := robot.Calibrate(ctx); err != nil {
		log.Warn("calibration interrupted", "error", err)
	}

	telemetry := hub.New("telemetry")
	rem := remote.New(robot, telemetry, cancel)
	srv := web.NewServer(web.Config{
		Addr:           cfg.ListenAddr,
		StaticDir:      cfg.StaticDir,
		StatusInterval: statusInterval,
	}, robot, rem, telemetry)
	srv.StartAsync(ctx)

	if cfg.Gamepad.Enabled {
		pad := gamepad.New(robot, gamepad.Config{
			DeviceName: cfg.Gamepad.DeviceName,
			InputDir:   cfg.Gamepad.InputDir,
		})
		go pad.Run(ctx)
	}

	if opts.shell {
		sh := shell.New(shell.Local{Robot: robot}, "Dalek shell. Type help for commands.", statusCmd(robot))
		go func() {
			sh.Run()
			cancel()
		}()
		defer sh.Close()
	}

	<-ctx.Done()
	log.Info("shutting down")

	if err := srv.Shutdown(); err != nil {
		log.Warn("web shutdown", "error", err)
	}

	sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer scancel()
	if err := robot.Shutdown(sctx); err != nil {
		log.Warn("shutdown incomplete", "error", err)
	}
	<-robot.Done()
	return nil
}

func statusCmd(robot *dalek.Dalek) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "status",
		Help: "status           show battery, axes and queues",
		Func: func(c *ishell.Context) {
			st := robot.Status()
			c.Printf("battery %s  lights %v  speaking %v\n", st.Battery, st.LightsOn, st.Speaking)
			c.Printf("drive %.2f  turn %.2f  head %.2f\n", st.Drive, st.Turn, st.HeadTurn)
			c.Printf("tick %d  pending %v\n", st.Ticks, st.Pending)
		},
	}
}
