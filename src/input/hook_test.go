package input

import (
	"testing"

	hook "github.com/robotn/gohook"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		raw    hook.Event
		want   Event
		wantOK bool
	}{
		{"move", hook.Event{Kind: hook.MouseMove, X: 10, Y: -4}, Event{Kind: Move, X: 10, Y: -4}, true},
		{"drag", hook.Event{Kind: hook.MouseDrag, X: 3, Y: 4}, Event{Kind: Move, X: 3, Y: 4}, true},
		{"left press", hook.Event{Kind: hook.MouseHold, Button: hook.MouseMap["left"], X: 1, Y: 2}, Event{Kind: Press, Button: ButtonLeft, X: 1, Y: 2}, true},
		{"right release", hook.Event{Kind: hook.MouseUp, Button: hook.MouseMap["right"]}, Event{Kind: Release, Button: ButtonRight}, true},
		{"middle press", hook.Event{Kind: hook.MouseHold, Button: hook.MouseMap["center"]}, Event{Kind: Press, Button: ButtonMiddle}, true},
		{"wheel button ignored", hook.Event{Kind: hook.MouseHold, Button: hook.MouseMap["wheelUp"]}, Event{}, false},
		{"click ignored", hook.Event{Kind: hook.MouseDown, Button: hook.MouseMap["left"]}, Event{}, false},
		{"key hold", hook.Event{Kind: hook.KeyHold, Rawcode: 65, Keychar: 'a'}, Event{Kind: KeyDown, Rawcode: 65, Keychar: 'a'}, true},
		{"key hold keycode", hook.Event{Kind: hook.KeyHold, Rawcode: 0xffe3, Keycode: 29}, Event{Kind: KeyDown, Rawcode: 0xffe3, Keycode: 29}, true},
		{"key typed ignored", hook.Event{Kind: hook.KeyDown, Rawcode: 65, Keychar: 'a'}, Event{}, false},
		{"key up", hook.Event{Kind: hook.KeyUp, Rawcode: 65, Keycode: 30}, Event{Kind: KeyUp, Rawcode: 65, Keycode: 30}, true},
		{"wheel ignored", hook.Event{Kind: hook.MouseWheel}, Event{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := normalize(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("normalize ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("normalize = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	if Press.String() != "press" || KeyUp.String() != "keyup" {
		t.Errorf("unexpected names %q %q", Press, KeyUp)
	}
	if Kind(42).String() != "kind(42)" {
		t.Errorf("unexpected fallback name %q", Kind(42))
	}
}
