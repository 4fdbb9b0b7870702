//go:build !linux

package evdev

import "fmt"

// FindDevice is unsupported outside Linux; this daemon only targets the
// Linux Protocol-B evdev surface.
func FindDevice(namePattern string) (string, error) {
	return "", fmt.Errorf("device auto-detection requires linux")
}
