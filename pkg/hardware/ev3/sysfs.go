// Package ev3 drives LEGO EV3 hardware through the ev3dev sysfs interface.
package ev3

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/teslashibe/go-dalek/pkg/hardware"
)

// DefaultRoot is where ev3dev mounts its device classes.
const DefaultRoot = "/sys/class"

// portPrefix is prepended to short port names such as "outA".
const portPrefix = "ev3-ports:"

// Address expands a short port name to its ev3dev address.
func Address(port string) string {
	if strings.HasPrefix(port, portPrefix) {
		return port
	}
	return portPrefix + port
}

// device is one sysfs device directory.
type device struct {
	dir string
}

func (d device) read(attr string) (string, error) {
	b, err := os.ReadFile(filepath.Join(d.dir, attr))
	if err != nil {
		return "", fmt.Errorf("ev3: read %s: %w", attr, err)
	}
	return strings.TrimSpace(string(b)), nil
}

func (d device) readInt(attr string) (int, error) {
	s, err := d.read(attr)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("ev3: parse %s %q: %w", attr, s, err)
	}
	return v, nil
}

func (d device) write(attr, value string) error {
	if err := os.WriteFile(filepath.Join(d.dir, attr), []byte(value), 0o644); err != nil {
		return fmt.Errorf("ev3: write %s=%s: %w", attr, value, err)
	}
	return nil
}

// find returns the device in class whose address attribute matches.
func find(root, class, address string) (device, error) {
	entries, err := os.ReadDir(filepath.Join(root, class))
	if err != nil {
		return device{}, fmt.Errorf("ev3: list %s: %w", class, err)
	}
	for _, e := range entries {
		d := device{dir: filepath.Join(root, class, e.Name())}
		addr, err := d.read("address")
		if err != nil {
			continue
		}
		if addr == address {
			return d, nil
		}
	}
	return device{}, fmt.Errorf("%w: %s on %s", hardware.ErrNotFound, class, address)
}
