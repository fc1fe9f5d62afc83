package display

import (
	"image"
	"testing"
)

func TestFromBoundsUnion(t *testing.T) {
	layout := FromBounds([]image.Rectangle{
		image.Rect(0, 0, 1920, 1080),
		image.Rect(-1280, 200, 0, 1224),
	})
	want := image.Rect(-1280, 0, 1920, 1224)
	if layout.Virtual != want {
		t.Errorf("Expected virtual %v, got %v", want, layout.Virtual)
	}
	if layout.Width() != 3200 || layout.Height() != 1224 {
		t.Errorf("unexpected size %dx%d", layout.Width(), layout.Height())
	}
	if got := layout.PrimaryLocal(); got != image.Rect(1280, 0, 3200, 1080) {
		t.Errorf("unexpected primary in local coordinates: %v", got)
	}
}

func TestToLocal(t *testing.T) {
	layout := FromBounds([]image.Rectangle{image.Rect(-100, -50, 100, 50)})
	x, y := layout.ToLocal(0, 0)
	if x != 100 || y != 50 {
		t.Errorf("Expected (100,50), got (%v,%v)", x, y)
	}
}

func TestFromBoundsEmpty(t *testing.T) {
	if got := FromBounds(nil); got != (Layout{}) {
		t.Errorf("Expected zero layout, got %+v", got)
	}
}

func TestDetect(t *testing.T) {
	// Needs a display; only log in headless environments.
	layout, err := Detect()
	if err != nil {
		t.Logf("Detect failed (expected in headless environment): %v", err)
		return
	}
	if layout.Width() <= 0 || layout.Height() <= 0 {
		t.Errorf("Expected non-empty layout, got %+v", layout)
	}
}
