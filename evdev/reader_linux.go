//go:build linux

package evdev

import (
	"errors"
	"syscall"
)

// isRetryable reports whether err is a transient read failure
// (EAGAIN/EINTR) that should be retried after a short backoff, as opposed
// to a persistent failure (device disappeared) that should surface as
// DeviceLost.
func isRetryable(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.EAGAIN || errno == syscall.EINTR
	}
	return false
}
