package config_test

import (
	"testing"
	"time"

	"github.com/badu/mtgestured/config"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := config.Parse([]byte(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Gesture.DebounceInterval != 100*time.Millisecond {
		t.Fatalf("expected default debounce 100ms, got %v", cfg.Gesture.DebounceInterval)
	}
	if cfg.Device.NamePattern != "Magic Mouse" {
		t.Fatalf("expected default name pattern, got %q", cfg.Device.NamePattern)
	}
	if !cfg.Device.AutoDetect {
		t.Fatalf("expected auto_detect default true when no path given")
	}
}

func TestParseCoercesStringNumbers(t *testing.T) {
	doc := `
gesture:
  scroll_threshold: "75"
  pinch_threshold: "0.25"
  tap_timeout_ms: "500"
`
	cfg, err := config.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Gesture.ScrollThreshold != 75 {
		t.Fatalf("expected 75, got %d", cfg.Gesture.ScrollThreshold)
	}
	if cfg.Gesture.PinchThreshold != 0.25 {
		t.Fatalf("expected 0.25, got %f", cfg.Gesture.PinchThreshold)
	}
	if cfg.Gesture.TapTimeout != 500*time.Millisecond {
		t.Fatalf("expected 500ms, got %v", cfg.Gesture.TapTimeout)
	}
}

func TestParseRejectsNegativeThreshold(t *testing.T) {
	doc := `
gesture:
  scroll_threshold: -10
`
	_, err := config.Parse([]byte(doc))
	if err == nil {
		t.Fatalf("expected error for negative scroll_threshold")
	}
	var ci *config.ConfigInvalid
	if !asConfigInvalid(err, &ci) {
		t.Fatalf("expected ConfigInvalid, got %T: %v", err, err)
	}
	if ci.Key != "scroll_threshold" {
		t.Fatalf("expected key scroll_threshold, got %q", ci.Key)
	}
}

func TestParseActionsMap(t *testing.T) {
	doc := `
actions:
  tap_1finger: click
  tap_2finger: /usr/bin/notify-send "tap"
`
	cfg, err := config.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Actions[config.KeyTap1Finger] != "click" {
		t.Fatalf("expected click action, got %q", cfg.Actions[config.KeyTap1Finger])
	}
}

func asConfigInvalid(err error, target **config.ConfigInvalid) bool {
	ci, ok := err.(*config.ConfigInvalid)
	if ok {
		*target = ci
	}
	return ok
}
