package sound

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"A Dalek's voice", "a-daleks-voice"},
		{"test-text", "test-text"},
		{"Exterminate, exterminate, exterminate!", "exterminate-exterminate-exterminate"},
		{"Can I be of assistance?", "can-i-be-of-assistance"},
	}
	for _, tc := range tests {
		if got := Filename(tc.in); got != tc.want {
			t.Errorf("Filename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	if got := StatusHibernation.Filename(); got != "status-hibernation" {
		t.Errorf("StatusHibernation.Filename() = %q", got)
	}
}

func TestEspeakify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Daleks are supreme", "Dahleks are supreme"},
		{"You are a good dalek", "You are a good Dahlek"},
		{"Test", "Test"},
	}
	for _, tc := range tests {
		if got := Espeakify(tc.in); got != tc.want {
			t.Errorf("Espeakify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAllFilenamesUnique(t *testing.T) {
	seen := make(map[string]Sound)
	for _, s := range All {
		name := s.Filename()
		if name == "" {
			t.Errorf("%q has an empty filename", s)
		}
		if prev, ok := seen[name]; ok {
			t.Errorf("%q and %q share filename %q", prev, s, name)
		}
		seen[name] = s
	}
}

func writeSchedule(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gun.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFlashSchedule(t *testing.T) {
	path := writeSchedule(t, "0.2\n0.5\n\n1.0\n1.25\n")

	flashes, err := LoadFlashSchedule(path)
	if err != nil {
		t.Fatalf("LoadFlashSchedule: %v", err)
	}

	want := []Flash{
		{On: 200 * time.Millisecond, Off: 500 * time.Millisecond},
		{On: time.Second, Off: 1250 * time.Millisecond},
	}
	if len(flashes) != len(want) {
		t.Fatalf("got %d flashes, want %d", len(flashes), len(want))
	}
	for i := range want {
		if flashes[i] != want[i] {
			t.Errorf("flash %d = %+v, want %+v", i, flashes[i], want[i])
		}
	}
	if d := flashes[0].Duration(); d != 300*time.Millisecond {
		t.Errorf("Duration() = %v, want 300ms", d)
	}
}

func TestLoadFlashSchedule_Odd(t *testing.T) {
	path := writeSchedule(t, "0.2\n0.5\n0.9\n")

	_, err := LoadFlashSchedule(path)
	if !errors.Is(err, ErrOddSchedule) {
		t.Errorf("err = %v, want ErrOddSchedule", err)
	}
}

func TestLoadFlashSchedule_BadNumber(t *testing.T) {
	path := writeSchedule(t, "0.2\nsoon\n")

	if _, err := LoadFlashSchedule(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadFlashSchedule_Missing(t *testing.T) {
	_, err := LoadFlashSchedule(filepath.Join(t.TempDir(), "none.txt"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want not-exist", err)
	}
}
