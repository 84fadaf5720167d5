package gamepad

import (
	"os"

	"golang.org/x/sys/unix"
)

// EVIOCGRAB, _IOW('E', 0x90, int)
const eviocgrab = 0x40044590

// grab takes the device exclusively so the console does not see it.
func grab(f *os.File) error {
	return unix.IoctlSetInt(int(f.Fd()), eviocgrab, 1)
}

func release(f *os.File) error {
	return unix.IoctlSetInt(int(f.Fd()), eviocgrab, 0)
}
