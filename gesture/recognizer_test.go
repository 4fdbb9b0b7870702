package gesture_test

import (
	"testing"
	"time"

	"github.com/badu/mtgestured/config"
	"github.com/badu/mtgestured/evdev"
	"github.com/badu/mtgestured/gesture"
	"github.com/badu/mtgestured/mt"
	"github.com/rs/zerolog"
)

func abs(code uint16, value int32, t time.Time) evdev.Event {
	return evdev.Event{Type: evdev.EvAbs, Code: code, Value: value, Time: t}
}

func slot(s int32, t time.Time) evdev.Event { return abs(evdev.AbsMTSlot, s, t) }

func syn(t time.Time) evdev.Event {
	return evdev.Event{Type: evdev.EvSyn, Code: evdev.SynReport, Time: t}
}

func defaultGestureConfig() config.Gesture {
	cfg, _ := config.Parse([]byte("device:\n  path: /dev/null\n"))
	return cfg.Gesture
}

// run feeds events through a Decoder and Recognizer pair wired the way the
// daemon wires them, capturing every published gesture.Event in order.
func run(t *testing.T, cfg config.Gesture, events []evdev.Event) []gesture.Event {
	t.Helper()
	decoder := mt.NewDecoder(cfg.TapTimeout, zerolog.Nop())
	bus := gesture.NewBus()
	var captured []gesture.Event
	capture := func(e gesture.Event) { captured = append(captured, e) }
	for _, topic := range []string{gesture.TopicTap, gesture.TopicSwipe, gesture.TopicScroll, gesture.TopicPinch, gesture.TopicButton} {
		bus.Subscribe(topic, capture)
	}
	rec := gesture.NewRecognizer(cfg, bus, zerolog.Nop())

	for _, ev := range events {
		res := decoder.Feed(ev)
		if res.Frame != nil {
			rec.Process(res.Frame, decoder)
		}
		if res.Button != nil {
			code := gesture.ButtonLeft
			switch res.Button.Code {
			case evdev.BtnRight:
				code = gesture.ButtonRight
			case evdev.BtnMiddle:
				code = gesture.ButtonMiddle
			}
			bus.Publish(gesture.Button{Code: code, Pressed: res.Button.Pressed})
		}
	}
	return captured
}

func twoFingerContact(slotID int32, id, x int32, t time.Time) []evdev.Event {
	return []evdev.Event{
		slot(slotID, t),
		abs(evdev.AbsMTTrackingID, id, t),
		abs(evdev.AbsMTPositionX, x, t),
		abs(evdev.AbsMTPositionY, 0, t),
		abs(evdev.AbsMTTouchMajor, 600, t),
		abs(evdev.AbsMTTouchMinor, 600, t),
	}
}

func TestTwoFingerTapPositive(t *testing.T) {
	cfg := defaultGestureConfig()
	t0 := time.Unix(0, 0)
	t1 := t0.Add(150 * time.Millisecond)

	var events []evdev.Event
	events = append(events, twoFingerContact(0, 100, 0, t0)...)
	events = append(events, twoFingerContact(1, 101, 130, t0)...)
	events = append(events, syn(t0))
	events = append(events,
		slot(0, t1), abs(evdev.AbsMTTrackingID, -1, t1),
		slot(1, t1), abs(evdev.AbsMTTrackingID, -1, t1),
		syn(t1),
	)

	got := run(t, cfg, events)
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 event, got %d: %#v", len(got), got)
	}
	tap, ok := got[0].(gesture.Tap)
	if !ok || tap.FingerCount != 2 {
		t.Fatalf("expected a 2-finger Tap, got %#v", got[0])
	}
}

func TestTwoFingerTapRejectedByDistance(t *testing.T) {
	cfg := defaultGestureConfig()
	t0 := time.Unix(0, 0)
	t1 := t0.Add(150 * time.Millisecond)

	var events []evdev.Event
	events = append(events, twoFingerContact(0, 100, 0, t0)...)
	events = append(events, twoFingerContact(1, 101, 1000, t0)...)
	events = append(events, syn(t0))
	events = append(events,
		slot(0, t1), abs(evdev.AbsMTTrackingID, -1, t1),
		slot(1, t1), abs(evdev.AbsMTTrackingID, -1, t1),
		syn(t1),
	)

	got := run(t, cfg, events)
	if len(got) != 0 {
		t.Fatalf("expected no gesture, got %#v", got)
	}
}

func TestTwoFingerSwipeRight(t *testing.T) {
	cfg := defaultGestureConfig()
	t0 := time.Unix(0, 0)
	t50 := t0.Add(50 * time.Millisecond)
	t60 := t0.Add(60 * time.Millisecond)

	events := []evdev.Event{
		slot(0, t0), abs(evdev.AbsMTTrackingID, 200, t0), abs(evdev.AbsMTPositionX, 0, t0), abs(evdev.AbsMTPositionY, 0, t0),
		slot(1, t0), abs(evdev.AbsMTTrackingID, 201, t0), abs(evdev.AbsMTPositionX, 130, t0), abs(evdev.AbsMTPositionY, 0, t0),
		syn(t0),

		slot(0, t50), abs(evdev.AbsMTPositionX, 2730, t50),
		slot(1, t50), abs(evdev.AbsMTPositionX, 2860, t50),
		syn(t50),

		slot(0, t60), abs(evdev.AbsMTTrackingID, -1, t60),
		slot(1, t60), abs(evdev.AbsMTTrackingID, -1, t60),
		syn(t60),
	}

	got := run(t, cfg, events)
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 event, got %d: %#v", len(got), got)
	}
	swipe, ok := got[0].(gesture.Swipe)
	if !ok {
		t.Fatalf("expected a Swipe, got %#v", got[0])
	}
	if swipe.Direction != gesture.Right {
		t.Fatalf("expected direction Right, got %v", swipe.Direction)
	}
	if swipe.Distance < float64(cfg.SwipeThreshold) {
		t.Fatalf("expected distance >= swipe threshold, got %f", swipe.Distance)
	}
}

func TestSingleFingerClickPassthrough(t *testing.T) {
	cfg := defaultGestureConfig()
	t0 := time.Unix(0, 0)

	events := []evdev.Event{
		{Type: evdev.EvKey, Code: evdev.BtnLeft, Value: 1, Time: t0},
		{Type: evdev.EvKey, Code: evdev.BtnLeft, Value: 0, Time: t0},
	}

	got := run(t, cfg, events)
	if len(got) != 2 {
		t.Fatalf("expected 2 Button events, got %d: %#v", len(got), got)
	}
	first, ok := got[0].(gesture.Button)
	if !ok || first.Code != gesture.ButtonLeft || !first.Pressed {
		t.Fatalf("expected Button{Left,true}, got %#v", got[0])
	}
	second, ok := got[1].(gesture.Button)
	if !ok || second.Code != gesture.ButtonLeft || second.Pressed {
		t.Fatalf("expected Button{Left,false}, got %#v", got[1])
	}
}

func TestPinchOut(t *testing.T) {
	cfg := defaultGestureConfig()
	t0 := time.Unix(0, 0)
	t190 := t0.Add(190 * time.Millisecond)
	t200 := t0.Add(200 * time.Millisecond)

	events := []evdev.Event{
		slot(0, t0), abs(evdev.AbsMTTrackingID, 300, t0), abs(evdev.AbsMTPositionX, -130, t0), abs(evdev.AbsMTPositionY, 0, t0),
		slot(1, t0), abs(evdev.AbsMTTrackingID, 301, t0), abs(evdev.AbsMTPositionX, 130, t0), abs(evdev.AbsMTPositionY, 0, t0),
		syn(t0),

		slot(0, t190), abs(evdev.AbsMTPositionX, -260, t190),
		slot(1, t190), abs(evdev.AbsMTPositionX, 260, t190),
		syn(t190),

		slot(0, t200), abs(evdev.AbsMTTrackingID, -1, t200),
		slot(1, t200), abs(evdev.AbsMTTrackingID, -1, t200),
		syn(t200),
	}

	got := run(t, cfg, events)
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 event, got %d: %#v", len(got), got)
	}
	pinch, ok := got[0].(gesture.Pinch)
	if !ok {
		t.Fatalf("expected a Pinch, got %#v", got[0])
	}
	if pinch.Kind != gesture.Out {
		t.Fatalf("expected PinchKind Out, got %v", pinch.Kind)
	}
	if pinch.ScaleFactor < 1.9 || pinch.ScaleFactor > 2.1 {
		t.Fatalf("expected scale factor ~2.0, got %f", pinch.ScaleFactor)
	}
}

func TestDebounceSuppressesSecondTap(t *testing.T) {
	cfg := defaultGestureConfig()
	t0 := time.Unix(0, 0)
	t50 := t0.Add(50 * time.Millisecond)
	t100 := t0.Add(100 * time.Millisecond)
	t150 := t0.Add(150 * time.Millisecond)

	var events []evdev.Event
	events = append(events, twoFingerContact(0, 1, 0, t0)...)
	events = append(events, twoFingerContact(1, 2, 130, t0)...)
	events = append(events, syn(t0))
	events = append(events,
		slot(0, t50), abs(evdev.AbsMTTrackingID, -1, t50),
		slot(1, t50), abs(evdev.AbsMTTrackingID, -1, t50),
		syn(t50),
	)
	events = append(events, twoFingerContact(0, 3, 0, t100)...)
	events = append(events, twoFingerContact(1, 4, 130, t100)...)
	events = append(events, syn(t100))
	events = append(events,
		slot(0, t150), abs(evdev.AbsMTTrackingID, -1, t150),
		slot(1, t150), abs(evdev.AbsMTTrackingID, -1, t150),
		syn(t150),
	)

	got := run(t, cfg, events)
	if len(got) != 1 {
		t.Fatalf("expected the second tap to be debounced away, got %d events: %#v", len(got), got)
	}
}
