package gamepad

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultSysDir is where the kernel describes input devices.
const DefaultSysDir = "/sys/class/input"

// ErrNotFound is returned by Find when no device has the wanted name.
var ErrNotFound = errors.New("gamepad: controller not found")

// Find returns the event device under inputDir whose name, as reported in
// sysDir, equals name.
func Find(inputDir, sysDir, name string) (string, error) {
	paths, err := filepath.Glob(filepath.Join(inputDir, "event*"))
	if err != nil {
		return "", err
	}
	sort.Strings(paths)

	for _, p := range paths {
		data, err := os.ReadFile(filepath.Join(sysDir, filepath.Base(p), "device", "name"))
		if err != nil {
			continue
		}
		if strings.TrimSpace(string(data)) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q in %s", ErrNotFound, name, inputDir)
}
