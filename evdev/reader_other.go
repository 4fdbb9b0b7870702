//go:build !linux

package evdev

// isRetryable always reports false on non-Linux platforms: this daemon's
// device layer only targets Linux's Protocol-B evdev surface, so a build on
// any other OS should fail fast rather than retry forever.
func isRetryable(err error) bool {
	return false
}
