// Package daemon is the process supervisor: it owns process lifecycle,
// wires the ingest and pipeline tasks, restarts ingest after a DeviceLost
// error, and reacts to hotplug signals for a faster reconnect than the
// plain retry-after-delay loop.
package daemon

import (
	"context"
	"errors"
	"time"

	"github.com/badu/mtgestured/action"
	"github.com/badu/mtgestured/config"
	"github.com/badu/mtgestured/evdev"
	"github.com/badu/mtgestured/gesture"
	"github.com/badu/mtgestured/mt"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	channelCapacity = 1024
	reopenDelay     = 2 * time.Second
)

// Supervisor wires evdev.Reader -> mt.Decoder -> gesture.Recognizer/Bus ->
// action.Dispatcher and keeps the pipeline alive across device loss.
type Supervisor struct {
	cfg        *config.Config
	devicePath string
	log        zerolog.Logger
	bus        gesture.Bus
	dispatcher *action.Dispatcher
}

// New builds a Supervisor for one device path. The gesture bus and action
// dispatcher are created and wired together immediately so diagnostics can
// subscribe to the bus before Run is called.
func New(cfg *config.Config, devicePath string, synthesizer action.Synthesizer, log zerolog.Logger) *Supervisor {
	bus := gesture.NewBus()
	dispatcher := action.New(cfg.Actions, synthesizer, log)
	dispatcher.Attach(bus)
	return &Supervisor{cfg: cfg, devicePath: devicePath, log: log, bus: bus, dispatcher: dispatcher}
}

// Bus exposes the gesture bus for additional subscribers (diagnostics,
// tests).
func (s *Supervisor) Bus() gesture.Bus { return s.bus }

// Run blocks until ctx is cancelled or the pipeline fails for a reason other
// than DeviceLost. A DeviceUnavailable on the first open is returned; one
// from a later reopen attempt is retried like DeviceLost.
func (s *Supervisor) Run(ctx context.Context) error {
	watcher, err := evdev.NewHotplugWatcher(s.log)
	if err != nil {
		s.log.Warn().Err(err).Msg("hotplug watch unavailable, falling back to retry-only reconnect")
		watcher = nil
	} else {
		defer watcher.Close()
	}

	for attempt := 0; ; attempt++ {
		runErr := s.runOnce(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if runErr == nil {
			return nil
		}

		var lost *evdev.DeviceLost
		var unavailable *evdev.DeviceUnavailable
		if !errors.As(runErr, &lost) && !(attempt > 0 && errors.As(runErr, &unavailable)) {
			return runErr
		}

		s.log.Warn().Err(runErr).Dur("retry_in", reopenDelay).Msg("device lost, will retry")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reopenDelay):
		case <-added(watcher):
			s.log.Info().Msg("hotplug signal received, retrying immediately")
		}
	}
}

func added(w *evdev.HotplugWatcher) <-chan string {
	if w == nil {
		return nil
	}
	return w.Added()
}

// runOnce opens the device and runs the ingest/pipeline task pair until
// either fails or ctx is cancelled.
func (s *Supervisor) runOnce(ctx context.Context) error {
	reader, err := evdev.Open(s.devicePath, s.log)
	if err != nil {
		return err
	}
	defer reader.Close()

	rawCh := make(chan evdev.Event, channelCapacity)
	decoder := mt.NewDecoder(s.cfg.Gesture.TapTimeout, s.log)
	recognizer := gesture.NewRecognizer(s.cfg.Gesture, s.bus, s.log)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return reader.Run(gctx, rawCh)
	})

	g.Go(func() error {
		return s.pipeline(gctx, rawCh, decoder, recognizer)
	})

	return g.Wait()
}

// pipeline drains rawCh, advancing the Decoder and Recogniser. On
// cancellation it drops whatever remains buffered and returns.
func (s *Supervisor) pipeline(ctx context.Context, rawCh <-chan evdev.Event, decoder *mt.Decoder, recognizer *gesture.Recognizer) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-rawCh:
			if !ok {
				return nil
			}
			result := decoder.Feed(ev)
			if result.Frame != nil {
				recognizer.Process(result.Frame, decoder)
			}
			if result.Button != nil {
				s.bus.Publish(translateButton(*result.Button))
			}
		}
	}
}

func translateButton(sig mt.ButtonSignal) gesture.Event {
	code := gesture.ButtonLeft
	switch sig.Code {
	case evdev.BtnRight:
		code = gesture.ButtonRight
	case evdev.BtnMiddle:
		code = gesture.ButtonMiddle
	}
	return gesture.Button{Code: code, Pressed: sig.Pressed}
}
