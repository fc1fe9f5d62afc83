package input

import (
	"context"
	"errors"
	"log"
	"sync"

	hook "github.com/robotn/gohook"
)

const eventBuffer = 256

// HookSource reads the global gohook event stream. Only one may run per
// process because gohook keeps a single global hook.
type HookSource struct {
	mu      sync.Mutex
	running bool
	stop    sync.Once
}

func NewHookSource() *HookSource { return &HookSource{} }

// Start installs the hook and forwards normalized events. Moves are dropped
// when the consumer falls behind; presses, releases and keys are not.
func (s *HookSource) Start(ctx context.Context) (<-chan Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil, errors.New("input hook already running")
	}

	evChan := hook.Start()
	if evChan == nil {
		return nil, errors.New("gohook.Start() returned nil channel")
	}
	s.running = true
	log.Printf("input: gohook started")

	out := make(chan Event, eventBuffer)
	go func() {
		defer close(out)
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in input hook goroutine: %v", r)
			}
		}()
		for {
			select {
			case <-ctx.Done():
				s.Stop()
				return
			case raw, ok := <-evChan:
				if !ok {
					log.Printf("input: event channel closed")
					return
				}
				ev, ok := normalize(raw)
				if !ok {
					continue
				}
				if ev.Kind == Move {
					select {
					case out <- ev:
					default:
					}
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					s.Stop()
					return
				}
			}
		}
	}()
	return out, nil
}

// Stop removes the hook. Safe to call more than once.
func (s *HookSource) Stop() {
	s.stop.Do(func() {
		hook.End()
		log.Printf("input: gohook stopped")
	})
}

// normalize maps gohook kinds onto ours. gohook reports a physical press as
// MouseHold/KeyHold; MouseDown/KeyDown are the synthesized click and typed
// events and are ignored. Typed events carry no keycode, and holding a key
// already repeats KeyHold.
func normalize(ev hook.Event) (Event, bool) {
	out := Event{
		X:       int(ev.X),
		Y:       int(ev.Y),
		Rawcode: ev.Rawcode,
		Keycode: ev.Keycode,
		Keychar: ev.Keychar,
		When:    ev.When,
	}
	switch ev.Kind {
	case hook.MouseMove, hook.MouseDrag:
		out.Kind = Move
	case hook.MouseHold:
		out.Kind = Press
		out.Button = buttonFromHook(ev.Button)
	case hook.MouseUp:
		out.Kind = Release
		out.Button = buttonFromHook(ev.Button)
	case hook.KeyHold:
		out.Kind = KeyDown
	case hook.KeyUp:
		out.Kind = KeyUp
	default:
		return Event{}, false
	}
	if (out.Kind == Press || out.Kind == Release) && out.Button == ButtonNone {
		return Event{}, false
	}
	return out, true
}

func buttonFromHook(b uint16) Button {
	switch b {
	case hook.MouseMap["left"]:
		return ButtonLeft
	case hook.MouseMap["right"]:
		return ButtonRight
	case hook.MouseMap["center"]:
		return ButtonMiddle
	}
	return ButtonNone
}
