package gesture

import (
	"math"
	"time"

	"github.com/badu/mtgestured/config"
	"github.com/badu/mtgestured/geom"
	"github.com/badu/mtgestured/mt"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type state int

const (
	stateIdle state = iota
	stateSingleTouch
	stateMultiTouch
)

// Recognizer is the gesture state machine: it consumes mt.Frames (and, on
// release, the Decoder's completed-contact list) and publishes GestureEvents
// on a Bus. One instance owns one device's gesture state; it is not safe for
// concurrent use from more than one goroutine, matching the single pipeline
// task that drives it.
type Recognizer struct {
	cfg config.Gesture
	bus Bus
	log zerolog.Logger

	state state

	// debounce is a token-bucket limiter used purely as a cooldown gate: one
	// token, refilled at the configured debounce interval, so every
	// non-scroll emission other than the first within the window is
	// suppressed.
	debounce *rate.Limiter

	prevMulti map[int]geom.Point
}

// NewRecognizer builds a Recognizer publishing onto bus.
func NewRecognizer(cfg config.Gesture, bus Bus, log zerolog.Logger) *Recognizer {
	interval := cfg.DebounceInterval
	if interval <= 0 {
		interval = time.Millisecond
	}
	return &Recognizer{
		cfg:      cfg,
		bus:      bus,
		log:      log,
		state:    stateIdle,
		debounce: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Process advances the state machine by one Frame. decoder is consulted for
// its completed-contact list on any transition back to Idle, and that list
// is cleared once classification runs.
func (r *Recognizer) Process(frame *mt.Frame, decoder *mt.Decoder) {
	active := frame.Active()

	switch r.state {
	case stateIdle:
		switch {
		case active == 1:
			r.state = stateSingleTouch
		case active >= 2:
			r.state = stateMultiTouch
			r.prevMulti = snapshotPositions(frame)
		}

	case stateSingleTouch:
		switch {
		case active == 0:
			r.evaluateRelease(decoder)
			r.state = stateIdle
		case active >= 2:
			r.state = stateMultiTouch
			r.prevMulti = snapshotPositions(frame)
		}

	case stateMultiTouch:
		switch {
		case active == 0:
			r.evaluateRelease(decoder)
			r.state = stateIdle
			r.prevMulti = nil
		case active >= 2:
			r.emitScroll(frame)
			r.prevMulti = snapshotPositions(frame)
		default:
			// One contact lifted but at least one remains: classification
			// still needs both completed contacts, so stay in MultiTouch
			// until the final release. Reset the scroll baseline so the
			// partial frame doesn't register as a spurious displacement.
			r.prevMulti = snapshotPositions(frame)
		}
	}
}

func snapshotPositions(frame *mt.Frame) map[int]geom.Point {
	m := make(map[int]geom.Point, len(frame.Contacts))
	for _, c := range frame.Contacts {
		m[c.Slot] = c.Position()
	}
	return m
}

func (r *Recognizer) emitScroll(frame *mt.Frame) {
	for _, c := range frame.Contacts {
		prev, ok := r.prevMulti[c.Slot]
		if !ok {
			continue
		}
		dx := c.X - prev.X
		dy := c.Y - prev.Y

		switch {
		case geom.Abs(dx) >= geom.Abs(dy) && geom.Abs(dx) >= r.cfg.ScrollThreshold:
			r.bus.Publish(Scroll{Axis: Horizontal, Delta: dx})
			return
		case geom.Abs(dy) >= r.cfg.ScrollThreshold:
			r.bus.Publish(Scroll{Axis: Vertical, Delta: dy})
			return
		}
	}
}

func (r *Recognizer) evaluateRelease(decoder *mt.Decoder) {
	completed := decoder.Completed()
	decoder.ClearCompleted()

	event := classify(completed, r.cfg)
	if event == nil {
		return
	}
	if !r.debounce.Allow() {
		r.log.Debug().Str("gesture", event.EventID()).Msg("suppressed by debounce")
		return
	}
	r.log.Info().Str("gesture", event.EventID()).Msg("gesture recognised")
	r.bus.Publish(event)
}

// classify applies the release-time classification order: two-finger tap,
// then one-finger tap, then two-finger swipe, then pinch. The first match
// wins; anything else yields no gesture.
func classify(completed []mt.CompletedContact, cfg config.Gesture) Event {
	switch len(completed) {
	case 1:
		return classifyOneFingerTap(completed[0], cfg)
	case 2:
		if e := classifyTwoFingerTap(completed[0], completed[1], cfg); e != nil {
			return e
		}
		if e := classifyTwoFingerSwipe(completed[0], completed[1], cfg); e != nil {
			return e
		}
		return classifyPinch(completed[0], completed[1], cfg)
	default:
		return nil
	}
}

func classifyOneFingerTap(c mt.CompletedContact, cfg config.Gesture) Event {
	if c.Lifetime() >= cfg.TapTimeout {
		return nil
	}
	motion := geom.DistanceRaw(c.FirstPosition(), c.Position())
	if motion >= float64(cfg.SwipeThreshold) {
		return nil
	}
	return Tap{FingerCount: 1, Position: c.Position(), PressureAvg: c.Pressure()}
}

func classifyTwoFingerTap(a, b mt.CompletedContact, cfg config.Gesture) Event {
	if a.Lifetime() >= cfg.TwoFingerTapTimeout || b.Lifetime() >= cfg.TwoFingerTapTimeout {
		return nil
	}
	if geom.DistanceMM(a.Position(), b.Position()) >= cfg.TwoFingerTapDistanceThreshold {
		return nil
	}
	if a.Pressure() < cfg.ContactPressureThreshold || b.Pressure() < cfg.ContactPressureThreshold {
		return nil
	}
	skew := a.FirstContactTime.Sub(b.FirstContactTime)
	if skew < 0 {
		skew = -skew
	}
	if skew > cfg.SimultaneousContactWindow {
		return nil
	}
	return Tap{
		FingerCount: 2,
		Position:    geom.Center(a.Position(), b.Position()),
		PressureAvg: (a.Pressure() + b.Pressure()) / 2,
	}
}

func classifyTwoFingerSwipe(a, b mt.CompletedContact, cfg config.Gesture) Event {
	dxA, dyA := a.X-a.FirstX, a.Y-a.FirstY
	dxB, dyB := b.X-b.FirstX, b.Y-b.FirstY

	meanDX := float64(dxA+dxB) / 2
	meanDY := float64(dyA+dyB) / 2
	magnitude := math.Hypot(meanDX, meanDY)
	if magnitude < float64(cfg.SwipeThreshold) {
		return nil
	}

	var dir Direction
	if math.Abs(meanDX) >= math.Abs(meanDY) {
		if meanDX >= 0 {
			dir = Right
		} else {
			dir = Left
		}
	} else {
		if meanDY >= 0 {
			dir = Down
		} else {
			dir = Up
		}
	}
	return Swipe{FingerCount: 2, Direction: dir, Distance: magnitude}
}

func classifyPinch(a, b mt.CompletedContact, cfg config.Gesture) Event {
	start := geom.DistanceRaw(a.FirstPosition(), b.FirstPosition())
	if start == 0 {
		return nil
	}
	end := geom.DistanceRaw(a.Position(), b.Position())
	ratio := end / start
	if math.Abs(ratio-1) < cfg.PinchThreshold {
		return nil
	}
	kind := In
	if ratio > 1 {
		kind = Out
	}
	return Pinch{Kind: kind, ScaleFactor: ratio}
}
