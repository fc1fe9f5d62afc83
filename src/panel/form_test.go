package panel

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mouse-overlay/src/config"
)

func TestStateFromDefaults(t *testing.T) {
	st := stateFromConfig(config.Default())
	if got := st.colors["click_colors.left"]; got != "#c800ff80" {
		t.Errorf("left color = %q, want #c800ff80", got)
	}
	if got := st.hotkeys["exit_hotkey"]; got != "ctrl+shift+q" {
		t.Errorf("exit hotkey = %q", got)
	}
	if st.effects["key_display"] || !st.effects["drag_trails"] {
		t.Errorf("effects = %v", st.effects)
	}
	if got := st.numbers["key_display.max_keys"]; got != 6 {
		t.Errorf("max keys = %v, want 6", got)
	}
}

func TestPatchWithoutChangesIsEmpty(t *testing.T) {
	cfg := config.Default()
	values, err := stateFromConfig(cfg).patch(cfg)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if len(values) != 0 {
		t.Errorf("values = %v, want none", values)
	}
}

func TestPatchCollectsChanges(t *testing.T) {
	cfg := config.Default()
	st := stateFromConfig(cfg)
	st.effects["key_display"] = true
	st.numbers["click_radius"] = 30
	st.numbers["max_click_markers"] = 12.4
	st.colors["cursor_ring_color"] = " #ff0000 "
	st.hotkeys["toggle_hotkey"] = "<Ctrl>+<Alt>+X"

	values, err := st.patch(cfg)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	want := map[string]any{
		"effects.key_display": true,
		"click_radius":        30.0,
		"max_click_markers":   12,
		"cursor_ring_color":   []int{255, 0, 0, 255},
		"toggle_hotkey":       "ctrl+alt+x",
	}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Errorf("patch mismatch (-want +got):\n%s", diff)
	}
}

func TestPatchReportsAllErrors(t *testing.T) {
	cfg := config.Default()
	st := stateFromConfig(cfg)
	st.colors["drag_color"] = "blue"
	st.hotkeys["exit_hotkey"] = "ctrl+nosuchkey"
	st.numbers["click_radius"] = 500

	_, err := st.patch(cfg)
	if err == nil {
		t.Fatal("invalid form accepted")
	}
	for _, want := range []string{"Trail color", "Exit hotkey", "Click radius"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestMissingClickColorStaysUnset(t *testing.T) {
	cfg := config.Default()
	delete(cfg.ClickColors, config.ButtonMiddle)
	st := stateFromConfig(cfg)
	if st.colors["click_colors.middle"] != "" {
		t.Fatalf("middle color = %q, want empty", st.colors["click_colors.middle"])
	}
	values, err := st.patch(cfg)
	if err != nil || len(values) != 0 {
		t.Errorf("patch = %v, %v; want nothing", values, err)
	}
}

func TestPatchRoundTripsThroughFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)
	cfg := config.Default()
	st := stateFromConfig(cfg)
	st.numbers["cursor_tail_max_length"] = 80
	st.colors["click_colors.right"] = "#112233"
	values, err := st.patch(cfg)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	saved, err := config.Patch(path, values)
	if err != nil {
		t.Fatalf("config.Patch: %v", err)
	}
	if saved.CursorTailMaxLength != 80 {
		t.Errorf("tail length = %v, want 80", saved.CursorTailMaxLength)
	}
	if got := saved.ClickColors[config.ButtonRight]; got != config.RGBA(0x11, 0x22, 0x33, 255) {
		t.Errorf("right color = %+v", got)
	}
	if got := saved.ClickColors[config.ButtonLeft]; got != cfg.ClickColors[config.ButtonLeft] {
		t.Errorf("left color changed to %+v", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	st := stateFromConfig(config.Default())
	cp := st.clone()
	cp.numbers["click_radius"] = 99
	cp.effects["cursor_ring"] = false
	if st.numbers["click_radius"] == 99 || !st.effects["cursor_ring"] {
		t.Error("clone shares maps with the original")
	}
}

func TestFormatNumber(t *testing.T) {
	if got := formatNumber(numberField{integer: true}, 12); got != "12" {
		t.Errorf("integer format = %q", got)
	}
	if got := formatNumber(numberField{}, 0.125); got != "0.13" && got != "0.12" {
		t.Errorf("float format = %q", got)
	}
}
