package scene

import (
	"math"
	"sync"
	"time"

	"mouse-overlay/src/config"
	"mouse-overlay/src/display"
	"mouse-overlay/src/hotkey"
	"mouse-overlay/src/input"
)

// Point is a position in overlay (local) coordinates.
type Point struct {
	X, Y float64
}

func (p Point) sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

func distSq(a, b Point) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

type marker struct {
	pos       Point
	color     config.Color
	button    input.Button
	loopTime  float64
	duration  float64
	createdAt time.Time
	releaseAt time.Time
}

type stroke struct {
	points    []Point
	color     config.Color
	createdAt time.Time
}

type tailSample struct {
	at  time.Time
	pos Point
}

// Scene is the animation model behind the overlay. Input handlers and the
// frame loop may run on different goroutines; every method locks.
type Scene struct {
	mu      sync.Mutex
	cfg     *config.Config
	layout  display.Layout
	visible bool

	cursor        Point
	haveCursor    bool
	cursorMovedAt time.Time
	pressOrigin   Point

	markers      []*marker
	pressMarkers map[input.Button]*marker
	strokes      []*stroke
	active       *stroke

	leftDown    bool
	leftPressAt time.Time
	buttonDown  map[input.Button]bool

	tail []tailSample
	keys keyStrip
}

// New creates a scene covering layout. cfg is copied.
func New(cfg *config.Config, layout display.Layout) *Scene {
	return &Scene{
		cfg:          cfg.Clone(),
		layout:       layout,
		visible:      true,
		pressMarkers: map[input.Button]*marker{},
		buttonDown:   map[input.Button]bool{},
	}
}

// SetConfig swaps the settings. Animation state is kept except for the
// categories the new settings switch off.
func (s *Scene) SetConfig(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg.Clone()
	fx := s.cfg.Effects
	if !fx.ClickEffects {
		s.markers = nil
		s.pressMarkers = map[input.Button]*marker{}
	}
	if !fx.DragTrails {
		s.strokes = nil
	}
	if !fx.CursorTail {
		s.tail = nil
	}
	if !fx.KeyDisplay {
		s.keys.clear()
	}
}

// Config returns a copy of the active settings.
func (s *Scene) Config() *config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Clone()
}

// TickInterval is the configured frame period in milliseconds.
func (s *Scene) TickInterval() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.TickInterval()
}

// SetLayout changes the covered desktop, e.g. after a monitor change.
func (s *Scene) SetLayout(layout display.Layout) {
	s.mu.Lock()
	s.layout = layout
	s.mu.Unlock()
}

func (s *Scene) SetVisible(v bool) {
	s.mu.Lock()
	s.visible = v
	s.mu.Unlock()
}

func (s *Scene) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

func (s *Scene) local(x, y int) Point {
	lx, ly := s.layout.ToLocal(x, y)
	return Point{X: lx, Y: ly}
}

// Tick samples the cursor (global coordinates) once per frame and drops
// expired markers and strokes.
func (s *Scene) Tick(now time.Time, x, y int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := s.local(x, y)
	if !s.haveCursor || pos != s.cursor {
		s.haveCursor = true
		s.cursorMovedAt = now
	}
	s.cursor = pos
	s.updateTail(now)
	s.prune(now)
	s.keys.prune(now, s.cfg.KeyDisplay)
}

func (s *Scene) prune(now time.Time) {
	kept := s.markers[:0]
	for _, m := range s.markers {
		if _, _, done := s.markerPhase(m, now); !done {
			kept = append(kept, m)
		}
	}
	clearTail(s.markers, len(kept))
	s.markers = kept

	persist := s.cfg.PersistDuration
	strokes := s.strokes[:0]
	for _, st := range s.strokes {
		if seconds(now, st.createdAt) <= persist {
			strokes = append(strokes, st)
		}
	}
	for i := len(strokes); i < len(s.strokes); i++ {
		s.strokes[i] = nil
	}
	s.strokes = strokes
}

func clearTail(ms []*marker, from int) {
	for i := from; i < len(ms); i++ {
		ms[i] = nil
	}
}

// Press handles a mouse button going down at global (x, y).
func (s *Scene) Press(button input.Button, x, y int, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := s.local(x, y)
	if button == input.ButtonLeft {
		s.leftDown = true
		s.leftPressAt = now
	}
	s.buttonDown[button] = true
	if s.active != nil {
		return
	}
	s.pressOrigin = pos
	if !s.cfg.Effects.ClickEffects {
		return
	}
	col, ok := s.cfg.ClickColors[string(button)]
	if !ok {
		return
	}
	m := &marker{
		pos:       pos,
		color:     col,
		button:    button,
		loopTime:  math.Max(minPeriod, s.cfg.ClickEffectLoopTime),
		duration:  math.Max(0, s.cfg.ClickEffectDuration),
		createdAt: now,
	}
	s.markers = append(s.markers, m)
	s.enforceMarkerLimit()
	s.pressMarkers[button] = m
}

// Move handles pointer motion. Only drags matter: a stroke starts once the
// pointer leaves the drag threshold around the press origin.
func (s *Scene) Move(x, y int, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.leftDown {
		return
	}
	pos := s.local(x, y)
	if s.active == nil {
		d := pos.sub(s.pressOrigin)
		thr := s.cfg.DragThreshold
		if math.Abs(d.X) <= thr && math.Abs(d.Y) <= thr {
			return
		}
		s.active = &stroke{points: []Point{pos}, color: s.cfg.DragColor, createdAt: now}
		s.leftPressAt = now
		if pm := s.pressMarkers[input.ButtonLeft]; pm != nil {
			s.removeMarker(pm)
		}
		s.pressMarkers[input.ButtonLeft] = nil
	}
	s.appendStrokePoint(pos)
}

// Release handles a mouse button going up at global (x, y).
func (s *Scene) Release(button input.Button, x, y int, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := s.local(x, y)
	s.pressOrigin = Point{}
	if button == input.ButtonLeft {
		s.leftDown = false
		s.leftPressAt = time.Time{}
		if s.active != nil {
			s.appendStrokePoint(pos)
			if len(s.active.points) > 1 && s.cfg.Effects.DragTrails {
				s.active.createdAt = now
				s.strokes = append(s.strokes, s.active)
			}
			s.active = nil
		}
	}
	s.buttonDown[button] = false
	s.markReleased(button, now)
}

// KeyDown records a held key for the key strip.
func (s *Scene) KeyDown(key hotkey.Key, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cfg.Effects.KeyDisplay {
		return
	}
	s.keys.down(key, now, s.cfg.KeyDisplay.MaxKeys)
}

// KeyUp starts the linger/fade of a released key.
func (s *Scene) KeyUp(key hotkey.Key, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys.up(key, now)
}

func (s *Scene) markReleased(button input.Button, now time.Time) {
	for _, m := range s.markers {
		if m.button == button && (m.releaseAt.IsZero() || m.releaseAt.Before(now)) {
			m.releaseAt = now
		}
	}
	s.pressMarkers[button] = nil
}

func (s *Scene) removeMarker(target *marker) {
	for i, m := range s.markers {
		if m == target {
			s.markers = append(s.markers[:i], s.markers[i+1:]...)
			return
		}
	}
}

// enforceMarkerLimit drops the oldest markers beyond max_click_markers.
func (s *Scene) enforceMarkerLimit() {
	limit := s.cfg.MaxClickMarkers
	if limit <= 0 {
		return
	}
	excess := len(s.markers) - limit
	if excess <= 0 {
		return
	}
	removed := s.markers[:excess]
	for button, pm := range s.pressMarkers {
		for _, r := range removed {
			if pm == r {
				s.pressMarkers[button] = nil
			}
		}
	}
	s.markers = append([]*marker(nil), s.markers[excess:]...)
}

func (s *Scene) appendStrokePoint(p Point) {
	if s.active == nil {
		return
	}
	pts := s.active.points
	if len(pts) == 0 {
		s.active.points = append(pts, p)
		return
	}
	minDist := s.cfg.MinPointDistance
	if distSq(p, pts[len(pts)-1]) < minDist*minDist {
		return
	}
	s.active.points = append(pts, p)
}

func (s *Scene) updateTail(now time.Time) {
	if s.cfg.CursorTailMaxAge <= 0 || s.cfg.CursorTailWidth <= 0 || !s.cfg.Effects.CursorTail {
		s.tail = s.tail[:0]
		return
	}
	if len(s.tail) == 0 {
		s.tail = append(s.tail, tailSample{at: now, pos: s.cursor})
	} else {
		minDist := s.cfg.CursorTailMinDistance
		if distSq(s.cursor, s.tail[len(s.tail)-1].pos) >= minDist*minDist {
			s.tail = append(s.tail, tailSample{at: now, pos: s.cursor})
		}
	}
	s.trimTail(now)
}

// trimTail drops samples older than the max age, then keeps only the newest
// stretch no longer than the (draw-mode scaled) max length.
func (s *Scene) trimTail(now time.Time) {
	maxAge := s.cfg.CursorTailMaxAge
	drop := 0
	for drop < len(s.tail) && seconds(now, s.tail[drop].at) > maxAge {
		drop++
	}
	if drop > 0 {
		s.tail = append(s.tail[:0], s.tail[drop:]...)
	}

	maxLen := math.Max(0, s.cfg.CursorTailMaxLength*(0.9-0.3*s.drawProgress(now)))
	if maxLen <= 0 || len(s.tail) < 2 {
		return
	}
	total := 0.0
	cutoff := 0
	for i := len(s.tail) - 1; i > 0; i-- {
		cur, prev := s.tail[i].pos, s.tail[i-1].pos
		total += math.Hypot(cur.X-prev.X, cur.Y-prev.Y)
		if total > maxLen {
			cutoff = i
			break
		}
	}
	if cutoff > 0 {
		s.tail = append(s.tail[:0], s.tail[cutoff:]...)
	}
}

// Stats is a snapshot of live element counts, used by tests and logging.
type Stats struct {
	Markers     int
	Strokes     int
	ActivePts   int
	TailSamples int
	Keys        int
}

func (s *Scene) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{
		Markers:     len(s.markers),
		Strokes:     len(s.strokes),
		TailSamples: len(s.tail),
		Keys:        len(s.keys.entries),
	}
	if s.active != nil {
		st.ActivePts = len(s.active.points)
	}
	return st
}

func seconds(now, then time.Time) float64 { return now.Sub(then).Seconds() }
