// Dalek Remote - drives a robot over its control websocket from a terminal
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/abiosoft/ishell/v2"

	"github.com/teslashibe/go-dalek/internal/config"
	"github.com/teslashibe/go-dalek/internal/log"
	"github.com/teslashibe/go-dalek/pkg/client"
	"github.com/teslashibe/go-dalek/pkg/shell"
)

func main() {
	host := flag.String("host", config.DalekAddr(config.DefaultDalekHost), "Robot host[:port] (overrides DALEK_HOST env var)")
	snapDir := flag.String("snapshots", ".", "Directory for received snapshots")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := "info"
	if *debug {
		level = "debug"
	}
	log.Init(level)

	url := config.DalekURL(*host)
	c := client.New(url)

	var battery atomic.Value
	battery.Store("unknown")
	c.OnReady = func(b string) {
		battery.Store(b)
		fmt.Printf("🤖 Connected to %s (battery %sV)\n", url, b)
	}
	c.OnBusy = func() {
		fmt.Println("⚠️  Another controller is connected")
	}
	c.OnBattery = func(b string) {
		battery.Store(b)
		log.Debug("battery", "volts", b)
	}
	c.OnSnapshot = func(jpeg []byte) {
		path, err := saveSnapshot(*snapDir, jpeg, time.Now())
		if err != nil {
			log.Error("saving snapshot", "error", err)
			return
		}
		fmt.Printf("📷 Saved %s\n", path)
	}
	c.OnError = func(err error) {
		log.Warn("connection error", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.Connect(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	defer c.Close()

	sh := shell.New(c, "Dalek remote. Type help for commands.",
		&ishell.Cmd{
			Name: "battery",
			Help: "battery          last reported battery voltage",
			Func: func(ctx *ishell.Context) { ctx.Println(battery.Load()) },
		},
		&ishell.Cmd{
			Name: "shutdown",
			Help: "shutdown         power the robot down",
			Func: func(ctx *ishell.Context) {
				if err := c.Exit(); err != nil {
					ctx.Err(err)
				}
			},
		},
	)

	go func() {
		<-c.Done()
		sh.Close()
	}()
	sh.Run()
}

// saveSnapshot writes jpeg under dir with a timestamped name.
func saveSnapshot(dir string, jpeg []byte, at time.Time) (string, error) {
	path := filepath.Join(dir, "snapshot-"+at.Format("20060102-150405.000")+".jpeg")
	if err := os.WriteFile(path, jpeg, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
