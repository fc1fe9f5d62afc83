package display

import (
	"errors"
	"image"

	"github.com/kbinani/screenshot"
)

// ErrNoDisplays is returned when the platform reports no active monitor.
var ErrNoDisplays = errors.New("no active displays found")

// Layout describes the desktop the overlay covers.
type Layout struct {
	// Virtual is the union of every monitor in global coordinates.
	Virtual image.Rectangle
	// Primary is display 0, also in global coordinates.
	Primary image.Rectangle
}

// Detect computes the layout from the active displays.
func Detect() (Layout, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return Layout{}, ErrNoDisplays
	}
	bounds := make([]image.Rectangle, n)
	for i := range bounds {
		bounds[i] = screenshot.GetDisplayBounds(i)
	}
	return FromBounds(bounds), nil
}

// FromBounds builds a layout from per-monitor rectangles; the first one is
// treated as primary.
func FromBounds(bounds []image.Rectangle) Layout {
	if len(bounds) == 0 {
		return Layout{}
	}
	union := bounds[0]
	for _, b := range bounds[1:] {
		union = union.Union(b)
	}
	return Layout{Virtual: union, Primary: bounds[0]}
}

// ToLocal maps a global screen position into overlay coordinates.
func (l Layout) ToLocal(x, y int) (float64, float64) {
	return float64(x - l.Virtual.Min.X), float64(y - l.Virtual.Min.Y)
}

// PrimaryLocal returns the primary display rectangle in overlay coordinates.
func (l Layout) PrimaryLocal() image.Rectangle {
	return l.Primary.Sub(l.Virtual.Min)
}

func (l Layout) Width() int  { return l.Virtual.Dx() }
func (l Layout) Height() int { return l.Virtual.Dy() }
