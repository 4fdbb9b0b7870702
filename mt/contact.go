package mt

import (
	"time"

	"github.com/badu/mtgestured/geom"
)

// TouchContact is one physical finger contact on the surface, tracked
// across its full lifetime.
type TouchContact struct {
	TrackingID int
	Slot       int

	X, Y int

	// FirstX, FirstY are the coordinates at which the contact was first
	// positioned, kept alongside the live X/Y so the Recogniser can compute
	// swipe/pinch displacement from start to release.
	FirstX, FirstY int
	firstPosSet    bool

	TouchMajor  int
	TouchMinor  int
	Orientation int

	FirstContactTime time.Time
	LastUpdateTime   time.Time

	Active bool
}

// FirstPosition returns the contact's starting surface coordinate.
func (c *TouchContact) FirstPosition() geom.Point {
	return geom.NewPoint(c.FirstX, c.FirstY)
}

// Position returns the contact's current surface coordinate.
func (c *TouchContact) Position() geom.Point {
	return geom.NewPoint(c.X, c.Y)
}

// Pressure derives the contact's pressure in percent from its touch
// ellipse axes: ((major+minor)/2) / 1020 * 100.
func (c *TouchContact) Pressure() float64 {
	return (float64(c.TouchMajor+c.TouchMinor) / 2) / 1020 * 100
}

// Lifetime returns the time from the contact's first appearance to its last
// attribute update; time after the last update is not counted.
func (c *TouchContact) Lifetime() time.Duration {
	return c.LastUpdateTime.Sub(c.FirstContactTime)
}

// Clone returns a value copy, used when archiving a contact into the
// completed list or handing one to a Frame snapshot — Frame contents are
// immutable once captured.
func (c *TouchContact) Clone() TouchContact {
	return *c
}
