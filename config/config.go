// Package config loads and validates the daemon's on-disk configuration.
// A Config is built once at startup and is immutable for the rest of the
// process lifetime — nothing in this package mutates a *Config after Load
// returns.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Device describes how to locate the input device node.
type Device struct {
	Path        string `yaml:"path"`
	AutoDetect  bool   `yaml:"auto_detect"`
	NamePattern string `yaml:"name_pattern"`
}

// Gesture carries every tunable gesture-recognition threshold, already
// coerced and defaulted.
type Gesture struct {
	ScrollThreshold               int
	SwipeThreshold                int
	PinchThreshold                float64
	TapTimeout                    time.Duration
	DebounceInterval              time.Duration
	TwoFingerTapTimeout           time.Duration
	TwoFingerTapDistanceThreshold float64 // millimetres
	ContactPressureThreshold      float64 // percent
	SimultaneousContactWindow     time.Duration
}

// Gesture key constants, matched against Actions.
const (
	KeyTap1Finger       = "tap_1finger"
	KeyTap2Finger       = "tap_2finger"
	KeySwipeLeft2       = "swipe_left_2finger"
	KeySwipeRight2      = "swipe_right_2finger"
	KeySwipeUp2         = "swipe_up_2finger"
	KeySwipeDown2       = "swipe_down_2finger"
	KeyScrollVertical   = "scroll_vertical"
	KeyScrollHorizontal = "scroll_horizontal"
	KeyPinchIn          = "pinch_in"
	KeyPinchOut         = "pinch_out"
	KeyButtonLeft       = "button_left"
	KeyButtonRight      = "button_right"
	KeyButtonMiddle     = "button_middle"
)

// Config is the read-only, fully-resolved configuration for one process run.
type Config struct {
	Device  Device
	Gesture Gesture
	Actions map[string]string
}

// raw mirrors the on-disk YAML document before coercion/defaulting. Unknown
// keys are ignored by yaml.v3 unmarshalling into a named struct.
type raw struct {
	Device struct {
		Path        string `yaml:"path"`
		AutoDetect  *bool  `yaml:"auto_detect"`
		NamePattern string `yaml:"name_pattern"`
	} `yaml:"device"`
	Gesture map[string]interface{} `yaml:"gesture"`
	Actions map[string]string      `yaml:"actions"`
}

// Load reads path, validates it, and returns a fully-defaulted Config.
// A malformed document or an out-of-range tunable produces a ConfigInvalid
// error naming the offending key.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigInvalid{Key: "(file)", Err: err}
	}
	return Parse(data)
}

// Parse builds a Config from an in-memory YAML document; Load uses this
// after reading the file, and tests exercise it directly.
func Parse(data []byte) (*Config, error) {
	var r raw
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, &ConfigInvalid{Key: "(document)", Err: err}
	}

	cfg := &Config{
		Device: Device{
			Path:        r.Device.Path,
			AutoDetect:  r.Device.Path == "" || (r.Device.AutoDetect != nil && *r.Device.AutoDetect),
			NamePattern: defaultString(r.Device.NamePattern, "Magic Mouse"),
		},
		Gesture: defaultGesture(),
		Actions: r.Actions,
	}
	if r.Device.AutoDetect != nil {
		cfg.Device.AutoDetect = *r.Device.AutoDetect
	}
	if cfg.Actions == nil {
		cfg.Actions = map[string]string{}
	}

	if err := applyGestureOverrides(&cfg.Gesture, r.Gesture); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaultGesture returns the built-in defaults for every gesture tunable.
func defaultGesture() Gesture {
	return Gesture{
		ScrollThreshold:               50,
		SwipeThreshold:                100,
		PinchThreshold:                0.1,
		TapTimeout:                    300 * time.Millisecond,
		DebounceInterval:              100 * time.Millisecond,
		TwoFingerTapTimeout:           250 * time.Millisecond,
		TwoFingerTapDistanceThreshold: 30,
		ContactPressureThreshold:      50,
		SimultaneousContactWindow:     100 * time.Millisecond,
	}
}

// applyGestureOverrides coerces whatever scalar type the config author used
// (int, float, or quoted string) into the right Go type with spf13/cast, so
// "100", 100, and 100.0 are all accepted for an integer tunable.
func applyGestureOverrides(g *Gesture, m map[string]interface{}) error {
	intField := func(key string, dst *int) error {
		v, ok := m[key]
		if !ok {
			return nil
		}
		n, err := cast.ToIntE(v)
		if err != nil {
			return &ConfigInvalid{Key: key, Err: err}
		}
		*dst = n
		return nil
	}
	msField := func(key string, dst *time.Duration) error {
		v, ok := m[key]
		if !ok {
			return nil
		}
		n, err := cast.ToIntE(v)
		if err != nil {
			return &ConfigInvalid{Key: key, Err: err}
		}
		*dst = time.Duration(n) * time.Millisecond
		return nil
	}
	floatField := func(key string, dst *float64) error {
		v, ok := m[key]
		if !ok {
			return nil
		}
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return &ConfigInvalid{Key: key, Err: err}
		}
		*dst = f
		return nil
	}

	if err := intField("scroll_threshold", &g.ScrollThreshold); err != nil {
		return err
	}
	if err := intField("swipe_threshold", &g.SwipeThreshold); err != nil {
		return err
	}
	if err := floatField("pinch_threshold", &g.PinchThreshold); err != nil {
		return err
	}
	if err := msField("tap_timeout_ms", &g.TapTimeout); err != nil {
		return err
	}
	if err := msField("debounce_ms", &g.DebounceInterval); err != nil {
		return err
	}
	if err := msField("two_finger_tap_timeout_ms", &g.TwoFingerTapTimeout); err != nil {
		return err
	}
	if err := floatField("two_finger_tap_distance_threshold", &g.TwoFingerTapDistanceThreshold); err != nil {
		return err
	}
	if err := floatField("contact_pressure_threshold", &g.ContactPressureThreshold); err != nil {
		return err
	}
	if err := msField("simultaneous_contact_window_ms", &g.SimultaneousContactWindow); err != nil {
		return err
	}
	return nil
}

func (c *Config) validate() error {
	if c.Device.NamePattern == "" {
		return &ConfigInvalid{Key: "device.name_pattern", Err: fmt.Errorf("must not be empty")}
	}
	if c.Gesture.ScrollThreshold <= 0 {
		return &ConfigInvalid{Key: "scroll_threshold", Err: fmt.Errorf("must be positive")}
	}
	if c.Gesture.SwipeThreshold <= 0 {
		return &ConfigInvalid{Key: "swipe_threshold", Err: fmt.Errorf("must be positive")}
	}
	if c.Gesture.PinchThreshold <= 0 {
		return &ConfigInvalid{Key: "pinch_threshold", Err: fmt.Errorf("must be positive")}
	}
	return nil
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// ConfigInvalid reports a malformed configuration document, naming the
// offending key.
type ConfigInvalid struct {
	Key string
	Err error
}

func (e *ConfigInvalid) Error() string {
	return fmt.Sprintf("config invalid at %q: %v", e.Key, e.Err)
}

func (e *ConfigInvalid) Unwrap() error {
	return e.Err
}
