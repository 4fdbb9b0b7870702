package mt

import "time"

// Frame is an immutable snapshot of every active contact at one
// synchronisation marker. The Decoder emits exactly one Frame per
// SYN_REPORT, modulo the 1ms coalescing rule.
type Frame struct {
	Contacts []TouchContact
	Time     time.Time
}

// Active returns the number of active contacts in the frame.
func (f Frame) Active() int {
	return len(f.Contacts)
}
