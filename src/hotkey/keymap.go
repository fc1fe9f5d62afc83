package hotkey

import (
	"fmt"
	"strings"
	"unicode"

	hook "github.com/robotn/gohook"
)

// Key is one key event as the hook reports it. Keycode is the hook's own
// scancode and means the same key on every platform; Rawcode is the OS code
// (virtual key on Windows, keysym on X11, keycode on macOS).
type Key struct {
	Rawcode uint16
	Keycode uint16
	Keychar rune
}

// ID identifies the physical key so a press and its release pair up.
func (k Key) ID() uint32 {
	if k.Keycode != 0 {
		return 1<<16 | uint32(k.Keycode)
	}
	return uint32(k.Rawcode)
}

// keyInfo is one entry of the key table. keycodes come from gohook's
// cross-platform table; rawcodes are Windows virtual key codes, used only for
// events that arrive without a keycode.
type keyInfo struct {
	label    string
	keycodes []uint16
	rawcodes []uint16
}

var (
	keysByName      = map[string]keyInfo{}
	labelsByKeycode = map[uint16]string{}
	labelsByRawcode = map[uint16]string{}
	modifierNames   = map[string]bool{"ctrl": true, "alt": true, "shift": true, "cmd": true}
)

// hookKeycodes looks the names up in gohook's table. Names it does not know
// are skipped.
func hookKeycodes(names ...string) []uint16 {
	var codes []uint16
	seen := map[uint16]bool{}
	for _, n := range names {
		if c, ok := hook.Keycode[n]; ok && c != 0 && !seen[c] {
			seen[c] = true
			codes = append(codes, c)
		}
	}
	return codes
}

func init() {
	// extra names only widen the gohook lookup (right-hand modifiers).
	add := func(label string, raw []uint16, names []string, extra ...string) {
		info := keyInfo{
			label:    label,
			keycodes: hookKeycodes(append(append([]string(nil), names...), extra...)...),
			rawcodes: raw,
		}
		for _, n := range names {
			keysByName[n] = info
		}
		for _, c := range info.keycodes {
			if _, dup := labelsByKeycode[c]; !dup {
				labelsByKeycode[c] = label
			}
		}
		for _, c := range raw {
			if _, dup := labelsByRawcode[c]; !dup {
				labelsByRawcode[c] = label
			}
		}
	}
	names := func(n ...string) []string { return n }

	// Modifiers carry both the left and right variants.
	add("Ctrl", []uint16{162, 163}, names("ctrl", "control"), "lctrl", "rctrl")
	add("Alt", []uint16{164, 165}, names("alt", "option"), "lalt", "ralt")
	add("Shift", []uint16{160, 161}, names("shift"), "lshift", "rshift")
	add("Win", []uint16{91, 92}, names("cmd", "win", "super", "command"), "lcmd", "rcmd")

	for c := 'a'; c <= 'z'; c++ {
		add(strings.ToUpper(string(c)), []uint16{uint16(c - 'a' + 65)}, names(string(c)))
	}
	for c := '0'; c <= '9'; c++ {
		add(string(c), []uint16{uint16(c - '0' + 48)}, names(string(c)))
	}
	for n := 1; n <= 24; n++ {
		add(fmt.Sprintf("F%d", n), []uint16{uint16(111 + n)}, names(fmt.Sprintf("f%d", n)))
	}

	add("Space", []uint16{32}, names("space"))
	add("Enter", []uint16{13}, names("enter", "return"))
	add("Esc", []uint16{27}, names("esc", "escape"))
	add("Tab", []uint16{9}, names("tab"))
	add("Backspace", []uint16{8}, names("backspace"))
	add("Del", []uint16{46}, names("delete", "del"))
	add("Ins", []uint16{45}, names("insert", "ins"))
	add("Home", []uint16{36}, names("home"))
	add("End", []uint16{35}, names("end"))
	add("PgUp", []uint16{33}, names("pageup", "pgup"))
	add("PgDn", []uint16{34}, names("pagedown", "pgdn"))
	add("←", []uint16{37}, names("left"))
	add("↑", []uint16{38}, names("up"))
	add("→", []uint16{39}, names("right"))
	add("↓", []uint16{40}, names("down"))
}

func lookupKey(keyName string) (keyInfo, bool) {
	info, ok := keysByName[strings.ToLower(strings.TrimSpace(keyName))]
	return info, ok
}

// keyNameToRawcodes maps a key name to its virtual key codes, nil when unknown.
func keyNameToRawcodes(keyName string) []uint16 {
	info, ok := lookupKey(keyName)
	if !ok {
		return nil
	}
	return info.rawcodes
}

// KeyLabel returns the display label for a key event, e.g. "Ctrl" or "A".
func KeyLabel(k Key) string {
	if k.Keycode != 0 {
		if label, ok := labelsByKeycode[k.Keycode]; ok {
			return label
		}
	} else if label, ok := labelsByRawcode[k.Rawcode]; ok {
		return label
	}
	if c := k.Keychar; c > 0 && c != unicode.ReplacementChar && c != 0xFFFF && unicode.IsPrint(c) {
		return strings.ToUpper(string(c))
	}
	if k.Keycode != 0 {
		return fmt.Sprintf("#%d", k.Keycode)
	}
	return fmt.Sprintf("#%d", k.Rawcode)
}

// IsModifier reports whether the label names a modifier key.
func IsModifier(label string) bool {
	return modifierNames[strings.ToLower(label)] || strings.EqualFold(label, "win")
}
