package input

import "github.com/go-vgo/robotgo"

// SystemPointer polls the OS cursor position. Hook moves only matter while
// dragging; the renderer samples this once per frame.
func SystemPointer() (int, int) {
	return robotgo.Location()
}
