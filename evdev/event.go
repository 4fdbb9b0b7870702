// Package evdev opens a Linux input device node and publishes the raw kernel
// input_event stream, undecoded, onto a bounded channel. No multi-touch or
// gesture semantics live here — that is the job of the mt and gesture
// packages further down the pipeline.
package evdev

import (
	"encoding/binary"
	"time"
)

// Event type families (linux/input-event-codes.h). Only a subset is
// meaningful to the rest of the pipeline; anything else is forwarded
// untouched.
const (
	EvSyn uint16 = 0x00
	EvKey uint16 = 0x01
	EvRel uint16 = 0x02
	EvAbs uint16 = 0x03
)

// Codes within EV_SYN.
const (
	SynReport uint16 = 0
)

// Codes within EV_KEY that are interpreted directly as button passthrough.
const (
	BtnLeft   uint16 = 0x110
	BtnRight  uint16 = 0x111
	BtnMiddle uint16 = 0x112
)

// Codes within EV_ABS that carry Protocol-B multi-touch state.
const (
	AbsMTSlot       uint16 = 0x2f
	AbsMTTouchMajor uint16 = 0x30
	AbsMTTouchMinor uint16 = 0x31
	AbsMTOrient     uint16 = 0x34
	AbsMTPositionX  uint16 = 0x35
	AbsMTPositionY  uint16 = 0x36
	AbsMTTrackingID uint16 = 0x39
)

// Codes within EV_REL, forwarded/ignored further down the pipeline.
const (
	RelX      uint16 = 0x00
	RelY      uint16 = 0x01
	RelWheel  uint16 = 0x08
	RelHWheel uint16 = 0x06
)

// rawEvent mirrors struct input_event from linux/input.h on a 64-bit system:
// two timeval fields (seconds, microseconds as platform longs), a type, a
// code, and a signed 32-bit value. Field widths match amd64/arm64 ABI, the
// only targets this daemon supports.
type rawEvent struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

const rawEventSize = 24

// Event is the decoded, public form of one kernel input event — the unit
// the Device Reader publishes on its sink channel.
type Event struct {
	Type  uint16
	Code  uint16
	Value int32
	Time  time.Time
}

// decode parses one fixed-size input_event record. It never errors on
// well-formed input; malformed/truncated reads are handled by the reader,
// which simply won't call decode on a short buffer.
func decode(buf []byte, now time.Time) Event {
	var re rawEvent
	re.Sec = int64(binary.LittleEndian.Uint64(buf[0:8]))
	re.Usec = int64(binary.LittleEndian.Uint64(buf[8:16]))
	re.Type = binary.LittleEndian.Uint16(buf[16:18])
	re.Code = binary.LittleEndian.Uint16(buf[18:20])
	re.Value = int32(binary.LittleEndian.Uint32(buf[20:24]))

	return Event{
		Type:  re.Type,
		Code:  re.Code,
		Value: re.Value,
		Time:  now,
	}
}
