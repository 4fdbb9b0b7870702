package evdev

import (
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// HotplugWatcher watches /dev/input for device nodes appearing, giving the
// supervisor a faster reconnect signal than the blind delay-based retry loop
// it otherwise falls back to. It never replaces that baseline — if the watch
// itself fails to start, the caller falls back to polling.
type HotplugWatcher struct {
	watcher *fsnotify.Watcher
	log     zerolog.Logger
}

// NewHotplugWatcher starts watching /dev/input for Create events.
func NewHotplugWatcher(log zerolog.Logger) (*HotplugWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add("/dev/input"); err != nil {
		w.Close()
		return nil, err
	}
	return &HotplugWatcher{watcher: w, log: log}, nil
}

// Close stops the watcher.
func (h *HotplugWatcher) Close() error {
	return h.watcher.Close()
}

// Added fires whenever a new "eventN" node appears under /dev/input.
func (h *HotplugWatcher) Added() <-chan string {
	out := make(chan string, 1)
	go func() {
		defer close(out)
		for {
			select {
			case ev, ok := <-h.watcher.Events:
				if !ok {
					return
				}
				if ev.Op&fsnotify.Create == 0 {
					continue
				}
				if !strings.Contains(ev.Name, "event") {
					continue
				}
				select {
				case out <- ev.Name:
				default:
				}
			case err, ok := <-h.watcher.Errors:
				if !ok {
					return
				}
				h.log.Debug().Err(err).Msg("hotplug watcher error")
			}
		}
	}()
	return out
}
