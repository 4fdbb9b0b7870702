// Package action implements the gesture dispatcher: it maps GestureEvents
// onto configured action strings and runs them as detached child processes,
// never blocking the pipeline that feeds it.
package action

import (
	"os/exec"
	"strings"

	"github.com/badu/mtgestured/config"
	"github.com/badu/mtgestured/gesture"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Reserved action literals that map onto the platform's pointer-synthesis
// tool instead of being split into argv and exec'd directly.
const (
	ActionClick            = "click"
	ActionRightClick       = "right_click"
	ActionMiddleClick      = "middle_click"
	ActionScrollVertical   = "scroll_vertical"
	ActionScrollHorizontal = "scroll_horizontal"
)

// Synthesizer invokes the platform's pointer-synthesis tool for a reserved
// action literal. The core never performs synthesis itself; a real binary
// wires in xdotool/ydotool or similar here.
type Synthesizer interface {
	Synthesize(literal string, arg int) error
}

// Dispatcher subscribes to a gesture.Bus and executes the configured action
// for every event it sees, except button releases, which map to no key.
type Dispatcher struct {
	actions     map[string]string
	synthesizer Synthesizer
	log         zerolog.Logger
}

// New builds a Dispatcher. synthesizer may be nil; reserved literals then
// log a warning and are dropped instead of invoking anything.
func New(actions map[string]string, synthesizer Synthesizer, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{actions: actions, synthesizer: synthesizer, log: log}
}

// Attach subscribes the Dispatcher to every gesture topic on bus.
func (d *Dispatcher) Attach(bus gesture.Bus) {
	bus.Subscribe(gesture.TopicTap, d.onEvent)
	bus.Subscribe(gesture.TopicSwipe, d.onEvent)
	bus.Subscribe(gesture.TopicScroll, d.onEvent)
	bus.Subscribe(gesture.TopicPinch, d.onEvent)
	bus.Subscribe(gesture.TopicButton, d.onEvent)
}

func (d *Dispatcher) onEvent(e gesture.Event) {
	key, scrollDelta := gestureKey(e)
	if key == "" {
		return
	}
	id := uuid.New().String()

	action, ok := d.actions[key]
	if !ok || action == "" {
		d.log.Debug().Str("corr_id", id).Str("key", key).Msg("no action bound, dropping")
		return
	}
	d.dispatch(id, key, action, scrollDelta)
}

func gestureKey(e gesture.Event) (string, int) {
	switch ev := e.(type) {
	case gesture.Tap:
		if ev.FingerCount == 2 {
			return config.KeyTap2Finger, 0
		}
		return config.KeyTap1Finger, 0
	case gesture.Swipe:
		switch ev.Direction {
		case gesture.Left:
			return config.KeySwipeLeft2, 0
		case gesture.Right:
			return config.KeySwipeRight2, 0
		case gesture.Up:
			return config.KeySwipeUp2, 0
		default:
			return config.KeySwipeDown2, 0
		}
	case gesture.Scroll:
		if ev.Axis == gesture.Horizontal {
			return config.KeyScrollHorizontal, ev.Delta
		}
		return config.KeyScrollVertical, ev.Delta
	case gesture.Pinch:
		if ev.Kind == gesture.In {
			return config.KeyPinchIn, 0
		}
		return config.KeyPinchOut, 0
	case gesture.Button:
		if !ev.Pressed {
			return "", 0
		}
		switch ev.Code {
		case gesture.ButtonRight:
			return config.KeyButtonRight, 0
		case gesture.ButtonMiddle:
			return config.KeyButtonMiddle, 0
		default:
			return config.KeyButtonLeft, 0
		}
	default:
		return "", 0
	}
}

// dispatch runs action, either via the Synthesizer (reserved literal) or as
// a detached child process. Only the spawn happens inline; the process's
// completion is never awaited.
func (d *Dispatcher) dispatch(corrID, key, action string, delta int) {
	log := d.log.With().Str("corr_id", corrID).Str("key", key).Str("action", action).Logger()

	if literal, ok := reservedLiteral(action); ok {
		if d.synthesizer == nil {
			log.Warn().Msg("reserved action configured but no synthesizer wired, dropping")
			return
		}
		if err := d.synthesizer.Synthesize(literal, delta); err != nil {
			log.Warn().Err(err).Msg("synthesis failed")
		}
		return
	}

	args := strings.Fields(action)
	if len(args) == 0 {
		log.Debug().Msg("empty action, dropping")
		return
	}

	cmd := exec.Command(args[0], args[1:]...)
	if err := cmd.Start(); err != nil {
		log.Warn().Err(err).Msg("action spawn failed")
		return
	}
	log.Info().Int("pid", cmd.Process.Pid).Msg("action dispatched")

	// Reap in the background; the pipeline never waits on completion.
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Debug().Err(err).Msg("action process exited with error")
		}
	}()
}

func reservedLiteral(action string) (string, bool) {
	switch action {
	case ActionClick, ActionRightClick, ActionMiddleClick, ActionScrollVertical, ActionScrollHorizontal:
		return action, true
	default:
		return "", false
	}
}
