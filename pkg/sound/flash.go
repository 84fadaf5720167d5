package sound

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrOddSchedule is returned for a flash file with an odd number of entries.
var ErrOddSchedule = errors.New("sound: flash schedule must have an even number of lines")

// Flash is one light-on window, as offsets from the start of the sound.
type Flash struct {
	On  time.Duration
	Off time.Duration
}

// Duration returns how long the light stays on.
func (f Flash) Duration() time.Duration {
	return f.Off - f.On
}

// LoadFlashSchedule reads a flash file: one offset in seconds per line,
// alternating on and off. Blank lines are ignored.
func LoadFlashSchedule(path string) ([]Flash, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sound: open flash schedule: %w", err)
	}
	defer f.Close()

	var offsets []time.Duration
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		secs, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("sound: %s:%d: %w", path, line, err)
		}
		offsets = append(offsets, time.Duration(secs*float64(time.Second)))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("sound: read flash schedule: %w", err)
	}

	if len(offsets)%2 != 0 {
		return nil, fmt.Errorf("%w: %s has %d", ErrOddSchedule, path, len(offsets))
	}

	flashes := make([]Flash, 0, len(offsets)/2)
	for i := 0; i < len(offsets); i += 2 {
		flashes = append(flashes, Flash{On: offsets[i], Off: offsets[i+1]})
	}
	return flashes, nil
}
