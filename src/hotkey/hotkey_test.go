package hotkey

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	hook "github.com/robotn/gohook"
)

func TestKeyNameToRawcodes(t *testing.T) {
	tests := []struct {
		keyName  string
		expected []uint16
	}{
		{"ctrl", []uint16{162, 163}},
		{"alt", []uint16{164, 165}},
		{"shift", []uint16{160, 161}},
		{"win", []uint16{91, 92}},
		{"cmd", []uint16{91, 92}},
		{"q", []uint16{81}},
		{"A", []uint16{65}},
		{"0", []uint16{48}},
		{"9", []uint16{57}},
		{"f1", []uint16{112}},
		{"f12", []uint16{123}},
		{"f24", []uint16{135}},
		{"space", []uint16{32}},
		{"escape", []uint16{27}},
		{"return", []uint16{13}},
		{"pgdn", []uint16{34}},
		{"unknown", nil},
	}

	for _, tt := range tests {
		t.Run(tt.keyName, func(t *testing.T) {
			if diff := cmp.Diff(tt.expected, keyNameToRawcodes(tt.keyName)); diff != "" {
				t.Errorf("keyNameToRawcodes(%q) mismatch (-want +got):\n%s", tt.keyName, diff)
			}
		})
	}
}

func TestParseHotkey(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"Ctrl+Alt+Q", []string{"ctrl", "alt", "q"}},
		{"ctrl+shift+q", []string{"ctrl", "shift", "q"}},
		{"<ctrl>+<shift>+escape", []string{"ctrl", "shift", "escape"}},
		{"Alt+F4", []string{"alt", "f4"}},
		{"Ctrl+Win+E", []string{"ctrl", "cmd", "e"}},
		{"Super + Alt + T", []string{"cmd", "alt", "t"}},
		{"Control+Option+x", []string{"ctrl", "alt", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if diff := cmp.Diff(tt.expected, parseHotkey(tt.input)); diff != "" {
				t.Errorf("parseHotkey(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestMatcherFiresOnceWhenAllHeld(t *testing.T) {
	m, err := NewMatcher("ctrl+shift+q")
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}

	if m.KeyDown(Key{Rawcode: 162}) {
		t.Fatal("fired on ctrl alone")
	}
	if m.KeyDown(Key{Rawcode: 160}) {
		t.Fatal("fired on ctrl+shift")
	}
	if !m.KeyDown(Key{Rawcode: 81, Keychar: 'q'}) {
		t.Fatal("Expected ctrl+shift+q to fire")
	}
	// state resets: a key repeat of q alone does not fire again
	if m.KeyDown(Key{Rawcode: 81, Keychar: 'q'}) {
		t.Error("fired again on repeat after reset")
	}
}

func TestMatcherReleaseBreaksCombo(t *testing.T) {
	m, err := NewMatcher("Ctrl+Alt+Q")
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}
	m.KeyDown(Key{Rawcode: 163}) // right ctrl
	m.KeyDown(Key{Rawcode: 164})
	m.KeyUp(Key{Rawcode: 164})
	if m.KeyDown(Key{Rawcode: 81}) {
		t.Error("fired although alt was released")
	}
}

func TestMatcherKeycharFallback(t *testing.T) {
	m, err := NewMatcher("shift+q")
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}
	m.KeyDown(Key{Rawcode: 160})
	if !m.KeyDown(Key{Rawcode: 9999, Keychar: 'Q'}) {
		t.Error("Expected typed character to match the letter key")
	}
}

func TestNewMatcherErrors(t *testing.T) {
	m, err := NewMatcher("")
	if err != nil || m != nil {
		t.Errorf("Expected nil matcher for empty combo, got %v, %v", m, err)
	}
	if m.KeyDown(Key{Rawcode: 1}) || m.Combo() != "" {
		t.Error("nil matcher must never fire")
	}
	if _, err := NewMatcher("ctrl+bogus"); err == nil {
		t.Error("Expected error for unknown key")
	}
	if _, err := NewMatcher("+ +"); err == nil {
		t.Error("Expected error for a combo without keys")
	}
}

func TestKeyLabel(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{Key{Rawcode: 162}, "Ctrl"},
		{Key{Rawcode: 161}, "Shift"},
		{Key{Rawcode: 65, Keychar: 'a'}, "A"},
		{Key{Rawcode: 113}, "F2"},
		{Key{Rawcode: 32, Keychar: ' '}, "Space"},
		{Key{Rawcode: 40}, "↓"},
		{Key{Rawcode: 5000, Keychar: 'é'}, "É"},
		{Key{Rawcode: 5001, Keychar: 0xFFFF}, "#5001"},
		// X11 keysyms with hook keycodes
		{Key{Rawcode: 0xffe3, Keycode: hook.Keycode["ctrl"]}, "Ctrl"},
		{Key{Rawcode: 0xffe1, Keycode: hook.Keycode["shift"]}, "Shift"},
		{Key{Rawcode: 0x71, Keycode: hook.Keycode["q"], Keychar: 'q'}, "Q"},
	}
	for _, tt := range tests {
		if got := KeyLabel(tt.key); got != tt.want {
			t.Errorf("KeyLabel(%+v) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestMatcherUsesHookKeycodes(t *testing.T) {
	m, err := NewMatcher("ctrl+shift+q")
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}
	// Linux reports X11 keysyms as rawcodes; only the keycodes are portable.
	if m.KeyDown(Key{Rawcode: 0xffe3, Keycode: hook.Keycode["ctrl"]}) {
		t.Fatal("fired on ctrl alone")
	}
	m.KeyDown(Key{Rawcode: 0xffe1, Keycode: hook.Keycode["shift"]})
	if !m.KeyDown(Key{Rawcode: 0x71, Keycode: hook.Keycode["q"]}) {
		t.Error("Expected ctrl+shift+q to fire from hook keycodes")
	}
}

func TestMatcherIgnoresRawcodeWhenKeycodeKnown(t *testing.T) {
	m, err := NewMatcher("a")
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}
	// 65 is VK_A on Windows but the event's keycode says q.
	if m.KeyDown(Key{Rawcode: 65, Keycode: hook.Keycode["q"], Keychar: 'q'}) {
		t.Error("virtual key rawcode matched although the keycode differs")
	}
}

func TestKeyID(t *testing.T) {
	if (Key{Rawcode: 1, Keycode: 30}).ID() == (Key{Rawcode: 30}).ID() {
		t.Error("keycode and rawcode identities collide")
	}
	if (Key{Rawcode: 1, Keycode: 30}).ID() != (Key{Rawcode: 2, Keycode: 30}).ID() {
		t.Error("same keycode must identify the same key")
	}
}

func TestIsModifier(t *testing.T) {
	for _, label := range []string{"Ctrl", "Shift", "Alt", "Win"} {
		if !IsModifier(label) {
			t.Errorf("Expected %q to be a modifier", label)
		}
	}
	if IsModifier("A") {
		t.Error("A is not a modifier")
	}
}
