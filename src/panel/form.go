package panel

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"mouse-overlay/src/config"
	"mouse-overlay/src/hotkey"
)

type numberField struct {
	key      string
	label    string
	min, max float64
	step     float64
	integer  bool
	get      func(*config.Config) float64
}

type colorField struct {
	key   string
	label string
	get   func(*config.Config) (config.Color, bool)
}

type textField struct {
	key   string
	label string
	get   func(*config.Config) string
}

func clickColor(button string) func(*config.Config) (config.Color, bool) {
	return func(c *config.Config) (config.Color, bool) {
		col, ok := c.ClickColors[button]
		return col, ok
	}
}

func always(get func(*config.Config) config.Color) func(*config.Config) (config.Color, bool) {
	return func(c *config.Config) (config.Color, bool) { return get(c), true }
}

var numberFields = []numberField{
	{"update_interval_ms", "Frame interval (ms)", 1, 100, 1, true, func(c *config.Config) float64 { return float64(c.UpdateIntervalMS) }},
	{"cursor_ring_radius", "Ring radius", 2, 80, 1, false, func(c *config.Config) float64 { return c.CursorRingRadius }},
	{"cursor_ring_thickness", "Ring thickness", 1, 12, 1, false, func(c *config.Config) float64 { return c.CursorRingThickness }},
	{"cursor_idle_timeout", "Idle timeout (s)", 0, 10, 0.1, false, func(c *config.Config) float64 { return c.CursorIdleTimeout }},
	{"cursor_idle_fade_duration", "Idle fade (s)", 0, 5, 0.05, false, func(c *config.Config) float64 { return c.CursorIdleFadeDuration }},
	{"cursor_draw_shrink_time", "Draw shrink (s)", 0, 1, 0.01, false, func(c *config.Config) float64 { return c.CursorDrawShrinkTime }},
	{"click_radius", "Click radius", 2, 80, 1, false, func(c *config.Config) float64 { return c.ClickRadius }},
	{"click_outline_thickness", "Click outline", 1, 12, 1, false, func(c *config.Config) float64 { return c.ClickOutlineThickness }},
	{"click_effect_loop_time", "Click loop (s)", 0.05, 2, 0.05, false, func(c *config.Config) float64 { return c.ClickEffectLoopTime }},
	{"click_effect_duration", "Click hold (s)", 0, 3, 0.05, false, func(c *config.Config) float64 { return c.ClickEffectDuration }},
	{"click_effect_fade_duration", "Click fade (s)", 0, 2, 0.05, false, func(c *config.Config) float64 { return c.ClickEffectFadeDuration }},
	{"max_click_markers", "Max click markers", 0, 50, 1, true, func(c *config.Config) float64 { return float64(c.MaxClickMarkers) }},
	{"drag_line_width", "Trail width", 1, 20, 1, false, func(c *config.Config) float64 { return c.DragLineWidth }},
	{"drag_threshold", "Drag threshold", 0, 50, 1, false, func(c *config.Config) float64 { return c.DragThreshold }},
	{"min_point_distance", "Trail point spacing", 0, 20, 0.5, false, func(c *config.Config) float64 { return c.MinPointDistance }},
	{"persist_duration", "Trail lifetime (s)", 0, 10, 0.1, false, func(c *config.Config) float64 { return c.PersistDuration }},
	{"fade_duration", "Trail fade (s)", 0, 5, 0.05, false, func(c *config.Config) float64 { return c.FadeDuration }},
	{"cursor_tail_width", "Tail width", 0, 20, 1, false, func(c *config.Config) float64 { return c.CursorTailWidth }},
	{"cursor_tail_max_age", "Tail age (s)", 0, 1, 0.01, false, func(c *config.Config) float64 { return c.CursorTailMaxAge }},
	{"cursor_tail_max_length", "Tail length", 0, 200, 1, false, func(c *config.Config) float64 { return c.CursorTailMaxLength }},
	{"key_display.max_keys", "Keys shown", 1, 12, 1, true, func(c *config.Config) float64 { return float64(c.KeyDisplay.MaxKeys) }},
	{"key_display.linger", "Key linger (s)", 0, 3, 0.05, false, func(c *config.Config) float64 { return c.KeyDisplay.Linger }},
	{"key_display.fade", "Key fade (s)", 0, 2, 0.05, false, func(c *config.Config) float64 { return c.KeyDisplay.Fade }},
}

var colorFields = []colorField{
	{"cursor_ring_color", "Ring", always(func(c *config.Config) config.Color { return c.CursorRingColor })},
	{"cursor_tail_color", "Tail", always(func(c *config.Config) config.Color { return c.CursorTailColor })},
	{"drag_color", "Trail", always(func(c *config.Config) config.Color { return c.DragColor })},
	{"click_colors.left", "Left click", clickColor(config.ButtonLeft)},
	{"click_colors.right", "Right click", clickColor(config.ButtonRight)},
	{"click_colors.middle", "Middle click", clickColor(config.ButtonMiddle)},
	{"key_display.text_color", "Key text", always(func(c *config.Config) config.Color { return c.KeyDisplay.TextColor })},
	{"key_display.background_color", "Key background", always(func(c *config.Config) config.Color { return c.KeyDisplay.BackgroundColor })},
}

var hotkeyFields = []textField{
	{"exit_hotkey", "Exit hotkey", func(c *config.Config) string { return c.ExitHotkey }},
	{"toggle_hotkey", "Show/hide hotkey", func(c *config.Config) string { return c.ToggleHotkey }},
}

// formState is the editable copy of the settings behind the panel widgets.
type formState struct {
	effects map[string]bool
	numbers map[string]float64
	colors  map[string]string
	hotkeys map[string]string
}

func stateFromConfig(cfg *config.Config) formState {
	s := formState{
		effects: map[string]bool{},
		numbers: map[string]float64{},
		colors:  map[string]string{},
		hotkeys: map[string]string{},
	}
	for _, name := range config.EffectNames {
		s.effects[name], _ = cfg.Effects.Effect(name)
	}
	for _, f := range numberFields {
		s.numbers[f.key] = f.get(cfg)
	}
	for _, f := range colorFields {
		if col, ok := f.get(cfg); ok {
			s.colors[f.key] = col.Hex()
		} else {
			s.colors[f.key] = ""
		}
	}
	for _, f := range hotkeyFields {
		s.hotkeys[f.key] = f.get(cfg)
	}
	return s
}

func (s formState) clone() formState {
	out := formState{
		effects: make(map[string]bool, len(s.effects)),
		numbers: make(map[string]float64, len(s.numbers)),
		colors:  make(map[string]string, len(s.colors)),
		hotkeys: make(map[string]string, len(s.hotkeys)),
	}
	for k, v := range s.effects {
		out.effects[k] = v
	}
	for k, v := range s.numbers {
		out.numbers[k] = v
	}
	for k, v := range s.colors {
		out.colors[k] = v
	}
	for k, v := range s.hotkeys {
		out.hotkeys[k] = v
	}
	return out
}

// patch returns the dotted keys whose values differ from base, ready for
// config.Patch. Invalid colors or hotkeys are reported together.
func (s formState) patch(base *config.Config) (map[string]any, error) {
	orig := stateFromConfig(base)
	out := map[string]any{}
	var errs []error

	for _, name := range config.EffectNames {
		if s.effects[name] != orig.effects[name] {
			out["effects."+name] = s.effects[name]
		}
	}
	for _, f := range numberFields {
		v := s.numbers[f.key]
		if v == orig.numbers[f.key] {
			continue
		}
		if v < f.min || v > f.max {
			errs = append(errs, fmt.Errorf("%s must be between %g and %g", f.label, f.min, f.max))
			continue
		}
		if f.integer {
			out[f.key] = int(math.Round(v))
		} else {
			out[f.key] = v
		}
	}
	for _, f := range colorFields {
		text := strings.TrimSpace(s.colors[f.key])
		if text == orig.colors[f.key] || text == "" {
			continue
		}
		col, err := config.ParseColor(text)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s color: %w", f.label, err))
			continue
		}
		out[f.key] = []int{int(col.R), int(col.G), int(col.B), int(col.A)}
	}
	for _, f := range hotkeyFields {
		combo := config.NormalizeHotkey(s.hotkeys[f.key])
		if combo == config.NormalizeHotkey(orig.hotkeys[f.key]) {
			continue
		}
		if _, err := hotkey.NewMatcher(combo); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.label, err))
			continue
		}
		out[f.key] = combo
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}
