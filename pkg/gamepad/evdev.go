package gamepad

import (
	"encoding/binary"
	"fmt"
	"io"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Linux input event types and codes used by the controller.
const (
	EvKey uint16 = 0x01
	EvAbs uint16 = 0x03

	AbsX     uint16 = 0x00
	AbsY     uint16 = 0x01
	AbsRX    uint16 = 0x03
	AbsHat0X uint16 = 0x10
	AbsHat0Y uint16 = 0x11

	BtnSouth     uint16 = 0x130
	BtnEast      uint16 = 0x131
	BtnNorth     uint16 = 0x133
	BtnWest      uint16 = 0x134
	BtnTL        uint16 = 0x136
	BtnTR        uint16 = 0x137
	BtnTL2       uint16 = 0x138
	BtnTR2       uint16 = 0x139
	BtnSelect    uint16 = 0x13a
	BtnStart     uint16 = 0x13b
	BtnMode      uint16 = 0x13c
	BtnThumbL    uint16 = 0x13d
	BtnThumbR    uint16 = 0x13e
	BtnDPadUp    uint16 = 0x220
	BtnDPadDown  uint16 = 0x221
	BtnDPadLeft  uint16 = 0x222
	BtnDPadRight uint16 = 0x223

	keyDown int32 = 1
)

// timevalSize is the kernel's struct timeval on this platform: 8 bytes on
// the 32-bit brick, 16 on 64-bit hosts.
var timevalSize = int(unsafe.Sizeof(unix.Timeval{}))

// EventSize is the size of one struct input_event.
var EventSize = timevalSize + 8

// Event is a decoded input event without its timestamp.
type Event struct {
	Type  uint16
	Code  uint16
	Value int32
}

// DecodeEvent decodes one struct input_event in native byte order.
func DecodeEvent(b []byte) (Event, error) {
	if len(b) < EventSize {
		return Event{}, fmt.Errorf("gamepad: short event: %d bytes", len(b))
	}
	b = b[timevalSize:]
	return Event{
		Type:  binary.NativeEndian.Uint16(b[0:2]),
		Code:  binary.NativeEndian.Uint16(b[2:4]),
		Value: int32(binary.NativeEndian.Uint32(b[4:8])),
	}, nil
}

// EncodeEvent is the inverse of DecodeEvent, with a zero timestamp.
func EncodeEvent(e Event) []byte {
	b := make([]byte, EventSize)
	p := b[timevalSize:]
	binary.NativeEndian.PutUint16(p[0:2], e.Type)
	binary.NativeEndian.PutUint16(p[2:4], e.Code)
	binary.NativeEndian.PutUint32(p[4:8], uint32(e.Value))
	return b
}

// ReadEvent reads and decodes the next event from r.
func ReadEvent(r io.Reader) (Event, error) {
	buf := make([]byte, EventSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Event{}, err
	}
	return DecodeEvent(buf)
}
