package hotkey

import (
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"
	"unicode"
)

// Matcher detects a key combination from a stream of key down/up events.
// It does not own an input hook; the event loop feeds it.
type Matcher struct {
	combo string
	mu    sync.Mutex
	keys  []keyState
}

type keyState struct {
	name     string
	keycodes []uint16
	rawcodes []uint16
	pressed  bool
}

// NewMatcher builds a matcher for a combo such as "Ctrl+Shift+Q". An empty
// combo yields a nil matcher, which never fires.
func NewMatcher(combo string) (*Matcher, error) {
	if strings.TrimSpace(combo) == "" {
		return nil, nil
	}
	keys := parseHotkey(combo)
	m := &Matcher{combo: combo}
	for _, keyName := range keys {
		info, ok := lookupKey(keyName)
		if !ok || len(info.keycodes)+len(info.rawcodes) == 0 {
			return nil, fmt.Errorf("cannot map key %q in hotkey %q", keyName, combo)
		}
		m.keys = append(m.keys, keyState{name: keyName, keycodes: info.keycodes, rawcodes: info.rawcodes})
	}
	if len(m.keys) == 0 {
		return nil, fmt.Errorf("no valid keys in hotkey %q", combo)
	}
	log.Printf("Hotkey matcher configured for: %s (%v)", combo, keys)
	return m, nil
}

// Combo returns the configured combination.
func (m *Matcher) Combo() string {
	if m == nil {
		return ""
	}
	return m.combo
}

// KeyDown records a press and reports whether the whole combination is now
// held. On a match the state resets so holding the keys fires once.
func (m *Matcher) KeyDown(k Key) bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.keys {
		if m.keys[i].matches(k) {
			m.keys[i].pressed = true
		}
	}
	for i := range m.keys {
		if !m.keys[i].pressed {
			return false
		}
	}
	log.Printf("HOTKEY COMBINATION DETECTED! %s", m.combo)
	for i := range m.keys {
		m.keys[i].pressed = false
	}
	return true
}

// KeyUp records a release.
func (m *Matcher) KeyUp(k Key) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.keys {
		if m.keys[i].matches(k) {
			m.keys[i].pressed = false
		}
	}
}

// matches prefers the hook keycode. Virtual key rawcodes are only trusted
// when the event has no keycode, since other platforms reuse those numbers
// for unrelated keys.
func (s keyState) matches(k Key) bool {
	if len(s.name) == 1 && k.Keychar > 0 && unicode.ToLower(k.Keychar) == rune(s.name[0]) {
		return true
	}
	if k.Keycode != 0 && len(s.keycodes) > 0 {
		return slices.Contains(s.keycodes, k.Keycode)
	}
	return slices.Contains(s.rawcodes, k.Rawcode)
}

// parseHotkey converts a hotkey string like "Ctrl+Alt+q" to normalized key names
func parseHotkey(hotkeyConfig string) []string {
	parts := strings.Split(strings.ToLower(hotkeyConfig), "+")
	var keys []string

	for _, part := range parts {
		part = strings.TrimSpace(strings.Trim(strings.TrimSpace(part), "<>"))
		switch part {
		case "":
			continue
		case "ctrl", "control":
			keys = append(keys, "ctrl")
		case "alt", "option":
			keys = append(keys, "alt")
		case "shift":
			keys = append(keys, "shift")
		case "win", "cmd", "super", "command":
			keys = append(keys, "cmd")
		default:
			keys = append(keys, part)
		}
	}

	return keys
}
