package mt

import (
	"time"

	"github.com/badu/mtgestured/evdev"
	"github.com/rs/zerolog"
)

const numSlots = 16

// coalesceWindow is the minimum gap between two SYN_REPORT markers that are
// treated as distinct commits; anything closer is collapsed into the first
// one to avoid duplicate downstream work. In a synchronous, non-buffering
// decoder the practical way to do this is to drop the redundant follow-up
// commit rather than hold every frame back by one step waiting to see
// whether it will be superseded — the two frames differ by under a
// millisecond of state, so which one survives is immaterial. See
// DESIGN.md for the tradeoff this was chosen over.
const coalesceWindow = time.Millisecond

// ButtonSignal is a passthrough EV_KEY button event, decoded but not
// otherwise interpreted — it bypasses the Recogniser entirely.
type ButtonSignal struct {
	Code    uint16
	Pressed bool
}

// Result is what one decoder.Feed call may produce: at most one Frame commit
// and/or at most one button signal, from a single raw input event.
type Result struct {
	Frame  *Frame
	Button *ButtonSignal
}

// slotState is the decoder's working copy of a contact, plus whether it has
// a tracking-id. Only a tracking-id creates a contact, so attribute updates
// that reach a slot before its tracking-id are discarded, not buffered for
// the contact that follows.
type slotState struct {
	contact    *TouchContact
	hasTouchID bool // true once ABS_MT_TRACKING_ID >= 0 has been seen for the live occupant
}

// Decoder implements Linux Multi-Touch Protocol Type B: it consumes raw
// evdev.Events and emits synchronised Frames plus passthrough button
// signals. One Decoder instance owns one device's contact table.
type Decoder struct {
	log zerolog.Logger

	currentSlot int
	slots       [numSlots]slotState

	completed       []CompletedContact
	completedTTL    time.Duration // retention window: tapTimeoutMS * 2
	lastSyncTime    time.Time
	haveLastSync    bool
}

// CompletedContact is a contact archived after termination, retained briefly
// for the Recogniser's post-hoc gesture classification.
type CompletedContact struct {
	TouchContact
	TerminatedAt time.Time
}

// NewDecoder builds a Decoder. tapTimeout is the configured one-finger tap
// timeout; the completed-contact retention window is 2x that.
func NewDecoder(tapTimeout time.Duration, log zerolog.Logger) *Decoder {
	return &Decoder{
		log:          log,
		completedTTL: tapTimeout * 2,
	}
}

// Completed returns the contacts that terminated since the last time
// ClearCompleted was called, for the Recogniser to inspect on an Idle
// transition.
func (d *Decoder) Completed() []CompletedContact {
	return d.completed
}

// ClearCompleted empties the completed-contact list; the Recogniser calls
// this once it has classified a gesture from it.
func (d *Decoder) ClearCompleted() {
	d.completed = nil
}

// Feed decodes one raw event and returns whatever it produced: a committed
// Frame (on SYN_REPORT), a button signal (on EV_KEY), or neither.
func (d *Decoder) Feed(ev evdev.Event) Result {
	switch ev.Type {
	case evdev.EvAbs:
		d.feedAbs(ev)
		return Result{}
	case evdev.EvSyn:
		if ev.Code != evdev.SynReport {
			return Result{}
		}
		return d.commit(ev.Time)
	case evdev.EvKey:
		if sig, ok := buttonSignal(ev); ok {
			return Result{Button: &sig}
		}
		return Result{}
	default:
		// EV_REL and anything else is ignored by this decoder.
		return Result{}
	}
}

func buttonSignal(ev evdev.Event) (ButtonSignal, bool) {
	switch ev.Code {
	case evdev.BtnLeft, evdev.BtnRight, evdev.BtnMiddle:
		return ButtonSignal{Code: ev.Code, Pressed: ev.Value != 0}, true
	default:
		return ButtonSignal{}, false
	}
}

func (d *Decoder) feedAbs(ev evdev.Event) {
	switch ev.Code {
	case evdev.AbsMTSlot:
		if ev.Value < 0 || int(ev.Value) >= numSlots {
			d.log.Debug().Int32("slot", ev.Value).Msg("protocol violation: slot out of range, discarded")
			return
		}
		d.currentSlot = int(ev.Value)

	case evdev.AbsMTTrackingID:
		d.feedTrackingID(ev)

	case evdev.AbsMTPositionX:
		if c := d.liveContact(); c != nil {
			c.X = int(ev.Value)
			c.LastUpdateTime = ev.Time
		}

	case evdev.AbsMTPositionY:
		if c := d.liveContact(); c != nil {
			c.Y = int(ev.Value)
			c.LastUpdateTime = ev.Time
		}

	case evdev.AbsMTTouchMajor:
		if c := d.liveContact(); c != nil {
			c.TouchMajor = int(ev.Value)
			c.LastUpdateTime = ev.Time
		}

	case evdev.AbsMTTouchMinor:
		if c := d.liveContact(); c != nil {
			c.TouchMinor = int(ev.Value)
			c.LastUpdateTime = ev.Time
		}

	case evdev.AbsMTOrient:
		if c := d.liveContact(); c != nil {
			c.Orientation = int(ev.Value)
			c.LastUpdateTime = ev.Time
		}
	}
}

// liveContact returns the contact occupying the current slot, or nil if the
// slot has no tracking-id yet. No placeholder is created for such a slot, so
// attribute writes that arrive before the tracking-id are dropped, even when
// the tracking-id follows in the same sync group.
func (d *Decoder) liveContact() *TouchContact {
	st := &d.slots[d.currentSlot]
	if st.contact == nil {
		return nil
	}
	return st.contact
}

func (d *Decoder) feedTrackingID(ev evdev.Event) {
	st := &d.slots[d.currentSlot]

	if ev.Value < 0 {
		if st.contact != nil && st.hasTouchID {
			d.archive(st.contact, ev.Time)
		}
		st.contact = nil
		st.hasTouchID = false
		return
	}

	if st.contact != nil {
		// Replacement without a prior termination: treat as implicit
		// termination-plus-new-contact.
		if st.hasTouchID {
			d.archive(st.contact, ev.Time)
		}
	}

	st.contact = &TouchContact{
		TrackingID:       int(ev.Value),
		Slot:             d.currentSlot,
		FirstContactTime: ev.Time,
		LastUpdateTime:   ev.Time,
		Active:           true,
	}
	st.hasTouchID = true
}

func (d *Decoder) archive(c *TouchContact, now time.Time) {
	c.Active = false
	d.completed = append(d.completed, CompletedContact{TouchContact: c.Clone(), TerminatedAt: now})
}

// commit captures a Frame of all active contacts and garbage-collects
// completed contacts older than the retention window.
func (d *Decoder) commit(now time.Time) Result {
	if d.haveLastSync && now.Sub(d.lastSyncTime) < coalesceWindow {
		// Redundant commit inside the same burst: update bookkeeping only.
		d.lastSyncTime = now
		d.gcCompleted(now)
		return Result{}
	}
	d.lastSyncTime = now
	d.haveLastSync = true

	contacts := make([]TouchContact, 0, numSlots)
	for i := range d.slots {
		st := &d.slots[i]
		if st.contact != nil && st.hasTouchID {
			if !st.contact.firstPosSet {
				st.contact.FirstX, st.contact.FirstY = st.contact.X, st.contact.Y
				st.contact.firstPosSet = true
			}
			contacts = append(contacts, st.contact.Clone())
		} else if st.contact != nil {
			// Slot has partial state but never got a tracking-id by this sync:
			// discard it.
			st.contact = nil
		}
	}

	d.gcCompleted(now)

	return Result{Frame: &Frame{Contacts: contacts, Time: now}}
}

func (d *Decoder) gcCompleted(now time.Time) {
	if d.completedTTL <= 0 || len(d.completed) == 0 {
		return
	}
	kept := d.completed[:0]
	for _, c := range d.completed {
		if now.Sub(c.TerminatedAt) <= d.completedTTL {
			kept = append(kept, c)
		}
	}
	d.completed = kept
}
