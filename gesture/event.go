// Package gesture implements the gesture recogniser: a state machine over
// mt.Frames that emits semantic GestureEvents, plus the typed bus those
// events are published on.
package gesture

import "github.com/badu/mtgestured/geom"

// Direction is a swipe's dominant axis/sense.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "unknown"
	}
}

// Axis is which scroll axis an event reports on.
type Axis int

const (
	Vertical Axis = iota
	Horizontal
)

// PinchKind distinguishes pinch-in from pinch-out.
type PinchKind int

const (
	In PinchKind = iota
	Out
)

// ButtonCode identifies which physical button a Button event reports.
type ButtonCode int

const (
	ButtonLeft ButtonCode = iota
	ButtonRight
	ButtonMiddle
)

// EventID topics for the Bus, one per GestureEvent kind.
const (
	TopicTap    = "gesture.tap"
	TopicSwipe  = "gesture.swipe"
	TopicScroll = "gesture.scroll"
	TopicPinch  = "gesture.pinch"
	TopicButton = "gesture.button"
)

// Event is implemented by every concrete gesture event and satisfies the
// Bus's publish contract (its EventID selects the topic).
type Event interface {
	EventID() string
}

// Tap reports a one- or two-finger tap.
type Tap struct {
	FingerCount  int
	Position     geom.Point
	PressureAvg  float64
}

func (Tap) EventID() string { return TopicTap }

// Swipe reports a two-finger directional swipe.
type Swipe struct {
	FingerCount int
	Direction   Direction
	Distance    float64
}

func (Swipe) EventID() string { return TopicSwipe }

// Scroll reports an incremental per-frame scroll step.
type Scroll struct {
	Axis  Axis
	Delta int
}

func (Scroll) EventID() string { return TopicScroll }

// Pinch reports a two-finger pinch-in or pinch-out.
type Pinch struct {
	Kind        PinchKind
	ScaleFactor float64
}

func (Pinch) EventID() string { return TopicPinch }

// Button reports a physical button press or release, passed through
// directly from the decoder.
type Button struct {
	Code    ButtonCode
	Pressed bool
}

func (Button) EventID() string { return TopicButton }
