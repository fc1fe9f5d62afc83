package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	// FileName is the settings file looked up next to the executable.
	FileName      = "config.json"
	ConfigEnvVar  = "MOUSE_OVERLAY_CONFIG"
	minIntervalMS = 1
)

// ErrNotObject is returned when the settings file is valid JSON but not an object.
var ErrNotObject = errors.New("top-level JSON structure must be an object")

// Button names used as click_colors keys.
const (
	ButtonLeft   = "left"
	ButtonRight  = "right"
	ButtonMiddle = "middle"
)

// Effects switches whole effect categories on or off.
type Effects struct {
	CursorRing   bool `json:"cursor_ring"`
	CursorTail   bool `json:"cursor_tail"`
	ClickEffects bool `json:"click_effects"`
	DragTrails   bool `json:"drag_trails"`
	KeyDisplay   bool `json:"key_display"`
}

// KeyDisplay configures the held-keys strip.
type KeyDisplay struct {
	MaxKeys         int     `json:"max_keys"`
	Linger          float64 `json:"linger"`
	Fade            float64 `json:"fade"`
	Margin          float64 `json:"margin"`
	Scale           float64 `json:"scale"`
	TextColor       Color   `json:"text_color"`
	BackgroundColor Color   `json:"background_color"`
}

// Config holds every overlay setting. Durations are in seconds, sizes in pixels.
type Config struct {
	UpdateIntervalMS        int              `json:"update_interval_ms"`
	PersistDuration         float64          `json:"persist_duration"`
	FadeDuration            float64          `json:"fade_duration"`
	CursorRingRadius        float64          `json:"cursor_ring_radius"`
	CursorRingThickness     float64          `json:"cursor_ring_thickness"`
	CursorRingColor         Color            `json:"cursor_ring_color"`
	ClickRadius             float64          `json:"click_radius"`
	ClickOutlineThickness   float64          `json:"click_outline_thickness"`
	ClickColors             map[string]Color `json:"click_colors"`
	DragColor               Color            `json:"drag_color"`
	DragLineWidth           float64          `json:"drag_line_width"`
	MinPointDistance        float64          `json:"min_point_distance"`
	DragThreshold           float64          `json:"drag_threshold"`
	ExitHotkey              string           `json:"exit_hotkey"`
	ToggleHotkey            string           `json:"toggle_hotkey"`
	CursorIdleTimeout       float64          `json:"cursor_idle_timeout"`
	CursorIdleFadeDuration  float64          `json:"cursor_idle_fade_duration"`
	ClickEffectLoopTime     float64          `json:"click_effect_loop_time"`
	ClickEffectDuration     float64          `json:"click_effect_duration"`
	ClickEffectFadeDuration float64          `json:"click_effect_fade_duration"`
	MaxClickMarkers         int              `json:"max_click_markers"`
	CursorDrawShrinkTime    float64          `json:"cursor_draw_shrink_time"`
	CursorTailColor         Color            `json:"cursor_tail_color"`
	CursorTailWidth         float64          `json:"cursor_tail_width"`
	CursorTailMaxAge        float64          `json:"cursor_tail_max_age"`
	CursorTailMinDistance   float64          `json:"cursor_tail_min_distance"`
	CursorTailMaxLength     float64          `json:"cursor_tail_max_length"`
	Effects                 Effects          `json:"effects"`
	KeyDisplay              KeyDisplay       `json:"key_display"`
}

// Default returns a fresh copy of the built-in settings.
func Default() *Config {
	return &Config{
		UpdateIntervalMS:      16,
		PersistDuration:       3.0,
		FadeDuration:          0.75,
		CursorRingRadius:      24,
		CursorRingThickness:   3,
		CursorRingColor:       RGBA(0, 180, 255, 180),
		ClickRadius:           18,
		ClickOutlineThickness: 2,
		ClickColors: map[string]Color{
			ButtonLeft:   RGBA(0, 255, 128, 200),
			ButtonRight:  RGBA(255, 80, 80, 200),
			ButtonMiddle: RGBA(255, 200, 0, 200),
		},
		DragColor:               RGBA(120, 200, 255, 180),
		DragLineWidth:           4,
		MinPointDistance:        2.0,
		DragThreshold:           10,
		ExitHotkey:              "ctrl+shift+q",
		CursorIdleTimeout:       2.5,
		CursorIdleFadeDuration:  1.0,
		ClickEffectLoopTime:     0.4,
		ClickEffectDuration:     0.4,
		ClickEffectFadeDuration: 0.15,
		MaxClickMarkers:         8,
		CursorDrawShrinkTime:    0.12,
		CursorTailColor:         RGBA(0, 180, 255, 140),
		CursorTailWidth:         3,
		CursorTailMaxAge:        0.15,
		CursorTailMinDistance:   2.0,
		CursorTailMaxLength:     40.0,
		Effects: Effects{
			CursorRing:   true,
			CursorTail:   true,
			ClickEffects: true,
			DragTrails:   true,
			KeyDisplay:   false,
		},
		KeyDisplay: KeyDisplay{
			MaxKeys:         6,
			Linger:          0.6,
			Fade:            0.3,
			Margin:          48,
			Scale:           2,
			TextColor:       RGBA(255, 255, 255, 230),
			BackgroundColor: RGBA(20, 20, 20, 170),
		},
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.ClickColors = make(map[string]Color, len(c.ClickColors))
	for k, v := range c.ClickColors {
		out.ClickColors[k] = v
	}
	return &out
}

// Parse applies the JSON overrides in data on top of the defaults. Nested
// objects merge key by key; any error discards the whole override.
func Parse(data []byte) (*Config, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Default(), nil
	}
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON")
	}
	if !gjson.ParseBytes(data).IsObject() {
		return nil, ErrNotObject
	}

	data, err := coerceWholeNumbers(data)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	// null switches a hotkey off.
	if isNull(data, "exit_hotkey") {
		cfg.ExitHotkey = ""
	}
	if isNull(data, "toggle_hotkey") {
		cfg.ToggleHotkey = ""
	}
	// The tail follows the ring color unless it is set explicitly.
	if !gjson.GetBytes(data, "cursor_tail_color").Exists() {
		cfg.CursorTailColor = cfg.CursorRingColor
	}
	cfg.normalize()
	return cfg, nil
}

// wholeNumberKeys hold counts and intervals. They accept any JSON number or
// an integer string and are truncated toward zero.
var wholeNumberKeys = []string{"update_interval_ms", "max_click_markers", "key_display.max_keys"}

func coerceWholeNumbers(data []byte) ([]byte, error) {
	for _, key := range wholeNumberKeys {
		v := gjson.GetBytes(data, key)
		var n float64
		switch v.Type {
		case gjson.Number:
			if !strings.ContainsAny(v.Raw, ".eE") {
				continue
			}
			n = v.Num
		case gjson.String:
			i, err := strconv.Atoi(strings.TrimSpace(v.Str))
			if err != nil {
				return nil, fmt.Errorf("%s must be a whole number, got %q", key, v.Str)
			}
			n = float64(i)
		default:
			continue
		}
		if math.Abs(n) > math.MaxInt32 {
			return nil, fmt.Errorf("%s is out of range: %v", key, n)
		}
		var err error
		if data, err = sjson.SetBytes(data, key, int(math.Trunc(n))); err != nil {
			return nil, fmt.Errorf("set %s: %w", key, err)
		}
	}
	return data, nil
}

func isNull(data []byte, key string) bool {
	v := gjson.GetBytes(data, key)
	return v.Exists() && v.Type == gjson.Null
}

func (c *Config) normalize() {
	if c.UpdateIntervalMS < minIntervalMS {
		c.UpdateIntervalMS = minIntervalMS
	}
	if c.ClickColors == nil {
		c.ClickColors = map[string]Color{}
	}
	c.ExitHotkey = NormalizeHotkey(c.ExitHotkey)
	c.ToggleHotkey = NormalizeHotkey(c.ToggleHotkey)
	if c.KeyDisplay.MaxKeys < 1 {
		c.KeyDisplay.MaxKeys = 1
	}
	if c.KeyDisplay.Scale <= 0 {
		c.KeyDisplay.Scale = 1
	}
}

// Read loads settings from path. A missing file yields the defaults.
func Read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to apply overrides from %s: %w", path, err)
	}
	return cfg, nil
}

// Load is Read with the startup fallback: any problem is logged and the
// defaults are used.
func Load(path string) *Config {
	cfg, err := Read(path)
	if err != nil {
		log.Printf("Warning: %v. Falling back to defaults.", err)
		return Default()
	}
	return cfg
}

// ResolvePath picks the settings file: explicit override, then the
// MOUSE_OVERLAY_CONFIG env var, then config.json beside the executable.
func ResolvePath(override string) string {
	if p := strings.TrimSpace(override); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv(ConfigEnvVar)); p != "" {
		return p
	}
	execPath, err := os.Executable()
	if err != nil {
		return FileName
	}
	return filepath.Join(filepath.Dir(execPath), FileName)
}

// TickInterval is the frame period in milliseconds, never below 1.
func (c *Config) TickInterval() int {
	if c.UpdateIntervalMS < minIntervalMS {
		return minIntervalMS
	}
	return c.UpdateIntervalMS
}

// EffectNames lists the toggleable categories by their JSON name.
var EffectNames = []string{"cursor_ring", "cursor_tail", "click_effects", "drag_trails", "key_display"}

// Effect reports whether the named category is enabled.
func (e Effects) Effect(name string) (bool, bool) {
	p := e.field(name)
	if p == nil {
		return false, false
	}
	return *p, true
}

// SetEffect switches the named category. Unknown names return false.
func (e *Effects) SetEffect(name string, on bool) bool {
	p := e.field(name)
	if p == nil {
		return false
	}
	*p = on
	return true
}

var effectAliases = map[string]string{
	"ring":   "cursor_ring",
	"tail":   "cursor_tail",
	"clicks": "click_effects",
	"trails": "drag_trails",
	"keys":   "key_display",
}

// CanonicalEffect resolves a category name or its short alias ("tail") to
// the JSON name used under "effects".
func CanonicalEffect(name string) (string, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := effectAliases[n]; ok {
		n = alias
	}
	for _, known := range EffectNames {
		if n == known {
			return n, true
		}
	}
	return "", false
}

func (e *Effects) field(name string) *bool {
	canonical, _ := CanonicalEffect(name)
	switch canonical {
	case "cursor_ring":
		return &e.CursorRing
	case "cursor_tail":
		return &e.CursorTail
	case "click_effects":
		return &e.ClickEffects
	case "drag_trails":
		return &e.DragTrails
	case "key_display":
		return &e.KeyDisplay
	}
	return nil
}
