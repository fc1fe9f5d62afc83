package input

import (
	"context"
	"fmt"
	"time"
)

// Kind identifies a normalized input event.
type Kind int

const (
	Move Kind = iota
	Press
	Release
	KeyDown
	KeyUp
)

func (k Kind) String() string {
	switch k {
	case Move:
		return "move"
	case Press:
		return "press"
	case Release:
		return "release"
	case KeyDown:
		return "keydown"
	case KeyUp:
		return "keyup"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Button names match the click_colors keys in the settings file.
type Button string

const (
	ButtonNone   Button = ""
	ButtonLeft   Button = "left"
	ButtonRight  Button = "right"
	ButtonMiddle Button = "middle"
)

// Event is one OS input event in global screen coordinates.
type Event struct {
	Kind    Kind
	X, Y    int
	Button  Button
	Rawcode uint16
	// Keycode is gohook's platform-independent key code; 0 when unknown.
	Keycode uint16
	Keychar rune
	When    time.Time
}

// Source delivers normalized events until ctx is done or Stop is called.
type Source interface {
	Start(ctx context.Context) (<-chan Event, error)
	Stop()
}

// Pointer reports the current global cursor position.
type Pointer func() (x, y int)
