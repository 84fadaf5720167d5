package config

import (
	"fmt"
	"net"
	"os"
)

// Default remote connection settings.
const (
	DefaultDalekPort = "12346"
	DefaultDalekHost = "localhost"
)

// DalekAddr returns the robot host from DALEK_HOST env var.
// Falls back to the provided default if not set.
func DalekAddr(defaultHost string) string {
	if host := os.Getenv("DALEK_HOST"); host != "" {
		return host
	}
	return defaultHost
}

// DalekURL returns the control websocket URL for a robot host.
// The default port is used unless host already carries one.
func DalekURL(host string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return fmt.Sprintf("ws://%s/ws", host)
	}
	return fmt.Sprintf("ws://%s/ws", net.JoinHostPort(host, DefaultDalekPort))
}
