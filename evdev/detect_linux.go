//go:build linux

package evdev

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctl request-code construction, following the _IOC macro from
// asm-generic/ioctl.h. EVIOCGNAME and EVIOCGBIT are built this way,
// parameterised by buffer length.
const (
	iocRead      = 2
	iocNRBits    = 8
	iocTypeBits  = 8
	iocSizeBits  = 14
	iocNRShift   = 0
	iocTypeShift = iocNRShift + iocNRBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits
)

func iocRequest(dir, typ, nr, size uintptr) uintptr {
	return (dir << iocDirShift) | (typ << iocTypeShift) | (nr << iocNRShift) | (size << iocSizeShift)
}

func eviocgname(size int) uintptr {
	return iocRequest(iocRead, 'E', 0x06, uintptr(size))
}

func evbitRequest(size int) uintptr {
	// EVIOCGBIT(0, size): the global supported-event-types bitmap.
	return iocRequest(iocRead, 'E', 0x20, uintptr(size))
}

func evbitForTypeRequest(evType uint16, size int) uintptr {
	return iocRequest(iocRead, 'E', uintptr(0x20+evType), uintptr(size))
}

func ioctl(fd int, req uintptr, buf []byte) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(unsafe.Pointer(&buf[0])))
	if errno != 0 {
		return errno
	}
	return nil
}

// deviceName returns the kernel-reported name of the device at path.
func deviceName(path string) (string, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, 256)
	if err := ioctl(int(f.Fd()), eviocgname(len(buf)), buf); err != nil {
		return "", err
	}
	if i := strings.IndexByte(string(buf), 0); i >= 0 {
		return string(buf[:i]), nil
	}
	return string(buf), nil
}

// bitSet checks whether bit `code` is set in an EVIOCGBIT bitmap.
func bitSet(bitmap []byte, code uint16) bool {
	idx := code / 8
	if int(idx) >= len(bitmap) {
		return false
	}
	return bitmap[idx]&(1<<(code%8)) != 0
}

// hasCapability reports whether every code in codes is set in the device's
// EVIOCGBIT bitmap for ev type evType. With no codes it reports true whenever
// the ioctl succeeds.
func hasCapability(f *os.File, evType uint16, codes ...uint16) (bool, error) {
	const bufSize = 96 // enough bits for ABS_MT_* and REL_* codes used here
	buf := make([]byte, bufSize)
	if err := ioctl(int(f.Fd()), evbitForTypeRequest(evType, bufSize), buf); err != nil {
		return false, err
	}
	for _, c := range codes {
		if !bitSet(buf, c) {
			return false, nil
		}
	}
	return true, nil
}

// FindDevice enumerates /dev/input/event* and returns the path of the first
// device whose kernel name contains namePattern and which exposes both the
// relative pointer axes and the absolute multi-touch axes required by this
// daemon.
func FindDevice(namePattern string) (string, error) {
	matches, err := filepath.Glob("/dev/input/event*")
	if err != nil {
		return "", err
	}
	sort.Strings(matches)

	for _, path := range matches {
		name, err := deviceName(path)
		if err != nil {
			continue
		}
		if !strings.Contains(name, namePattern) {
			continue
		}
		if ok := deviceExposesRequiredAxes(path); ok {
			return path, nil
		}
	}
	return "", fmt.Errorf("no input device matching %q exposes both relative pointer and multi-touch axes", namePattern)
}

func deviceExposesRequiredAxes(path string) bool {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return false
	}
	defer f.Close()

	hasRel, err := hasCapability(f, EvRel, RelX, RelY)
	if err != nil || !hasRel {
		return false
	}
	hasAbs, err := hasCapability(f, EvAbs, AbsMTSlot, AbsMTPositionX, AbsMTPositionY, AbsMTTrackingID)
	if err != nil || !hasAbs {
		return false
	}
	return true
}
