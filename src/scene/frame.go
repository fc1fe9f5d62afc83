package scene

import (
	"math"
	"time"

	"mouse-overlay/src/config"
	"mouse-overlay/src/input"
)

// Shape identifies how a Primitive is drawn.
type Shape int

const (
	// Circle is an outline of Radius around Points[0], stroked Width wide.
	Circle Shape = iota
	// Disc is a filled circle of Radius around Points[0].
	Disc
	// Line joins Points[0] and Points[1].
	Line
	// Polyline joins consecutive Points.
	Polyline
	// Label draws Text centered horizontally on Points[0], with Points[0].Y
	// as the bottom edge of the text box.
	Label
)

// Primitive is one renderer-agnostic draw call.
type Primitive struct {
	Shape      Shape
	Points     []Point
	Radius     float64
	Width      float64
	Color      config.Color
	Text       string
	Background config.Color
	Scale      float64
}

// Frame builds the draw list for now. Later primitives paint over earlier
// ones.
func (s *Scene) Frame(now time.Time) []Primitive {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.visible {
		return nil
	}
	var out []Primitive
	fx := s.cfg.Effects
	if fx.CursorTail {
		out = s.appendTail(out, now)
	}
	if fx.CursorRing && s.haveCursor {
		out = s.appendRing(out, now)
	}
	if fx.ClickEffects {
		out = s.appendClickEffects(out, now)
	}
	if fx.DragTrails {
		out = s.appendStrokes(out, now)
	}
	if fx.KeyDisplay {
		out = s.appendKeyStrip(out, now)
	}
	return out
}

func (s *Scene) appendTail(out []Primitive, now time.Time) []Primitive {
	base := s.cfg.CursorTailColor
	if s.cfg.CursorTailWidth <= 0 || len(s.tail) < 2 || base.A == 0 {
		return out
	}
	dp := s.drawProgress(now)
	width := math.Max(2, math.Trunc(s.cfg.CursorTailWidth*(0.9-0.3*dp))+2)
	maxAge := math.Max(minPeriod, s.cfg.CursorTailMaxAge)
	mod := 0.6 + 0.4*(1-dp)
	for i := 1; i < len(s.tail); i++ {
		prev, cur := s.tail[i-1], s.tail[i]
		age := math.Min(seconds(now, prev.at), seconds(now, cur.at))
		if age >= maxAge {
			continue
		}
		a := math.Max(0, 1-age/maxAge)
		out = append(out, Primitive{
			Shape:  Line,
			Points: []Point{prev.pos, cur.pos},
			Width:  width,
			Color:  base.WithAlphaScale(a * mod),
		})
	}
	return out
}

func (s *Scene) appendRing(out []Primitive, now time.Time) []Primitive {
	alpha := s.idleAlpha(now)
	if alpha <= 0 {
		return out
	}
	col := s.cfg.CursorRingColor.WithAlphaScale(alpha * s.ringFade(now))
	radius := s.cfg.CursorRingRadius
	thickness := math.Trunc(s.cfg.CursorRingThickness)
	dp := s.drawProgress(now)
	switch {
	case dp > 0:
		radius = math.Max(3, s.cfg.CursorRingRadius*(1-0.75*dp))
		thickness = math.Max(1, math.Trunc(s.cfg.CursorRingThickness*(1-0.6*dp)))
	case s.buttonDown[input.ButtonLeft] && s.active == nil:
		radius = math.Max(4, s.cfg.CursorRingRadius*0.55)
		thickness = math.Max(1, math.Trunc(s.cfg.CursorRingThickness*0.6))
	}
	out = append(out, Primitive{Shape: Circle, Points: []Point{s.cursor}, Radius: radius, Width: thickness, Color: col})
	if dp > 0 {
		dot := col
		dot.A = uint8(float64(col.A) * (0.65 + 0.35*dp))
		out = append(out, Primitive{
			Shape:  Disc,
			Points: []Point{s.cursor},
			Radius: math.Max(2.5, s.cfg.CursorRingRadius*(0.45+0.25*dp)),
			Color:  dot,
		})
	}
	return out
}

// rippleStep staggers the three left-click ripples.
const rippleStep = 0.18

func (s *Scene) appendClickEffects(out []Primitive, now time.Time) []Primitive {
	r := s.cfg.ClickRadius
	outline := math.Max(1, s.cfg.ClickOutlineThickness)
	for _, m := range s.markers {
		progress, strength, done := s.markerPhase(m, now)
		if done || strength <= 0 {
			continue
		}
		c := m.pos
		switch m.button {
		case input.ButtonLeft:
			for i := 0; i < 3; i++ {
				start := float64(i) * rippleStep
				if progress < start {
					continue
				}
				local := (progress - start) / math.Max(minPeriod, 1-start)
				if local > 1 {
					continue
				}
				out = append(out, Primitive{
					Shape:  Circle,
					Points: []Point{c},
					Radius: r * (0.15 + 1.8*local + 0.28*float64(i)),
					Width:  math.Max(1, math.Trunc(outline*(1-0.5*local))),
					Color:  m.color.WithAlphaScale(math.Max(0, 1-local) * strength),
				})
			}
		case input.ButtonRight:
			pulse := 1 + 0.2*math.Sin(math.Pi*progress)
			col := m.color.WithAlphaScale(math.Max(0, 1-progress) * strength)
			arm := r * 1.15 * pulse
			tick := arm * 0.55
			for _, dx := range []float64{-1, 1} {
				for _, dy := range []float64{-1, 1} {
					corner := Point{X: c.X + dx*arm, Y: c.Y + dy*arm}
					out = append(out,
						Primitive{Shape: Line, Points: []Point{corner, {X: corner.X - dx*tick, Y: corner.Y}}, Width: outline, Color: col},
						Primitive{Shape: Line, Points: []Point{corner, {X: corner.X, Y: corner.Y - dy*tick}}, Width: outline, Color: col},
					)
				}
			}
		case input.ButtonMiddle:
			pulse := 1 + 0.2*math.Sin(math.Pi*progress)
			col := m.color.WithAlphaScale(math.Max(0, 1-progress) * strength)
			half := r * 0.85 * pulse
			out = append(out,
				Primitive{Shape: Line, Points: []Point{{X: c.X - half, Y: c.Y - half}, {X: c.X + half, Y: c.Y + half}}, Width: outline, Color: col},
				Primitive{Shape: Line, Points: []Point{{X: c.X - half, Y: c.Y + half}, {X: c.X + half, Y: c.Y - half}}, Width: outline, Color: col},
			)
		default:
			out = append(out, Primitive{
				Shape:  Circle,
				Points: []Point{c},
				Radius: r * (1 - 0.3*progress),
				Width:  outline,
				Color:  m.color.WithAlphaScale(math.Max(0, 1-progress) * strength),
			})
		}
	}
	return out
}

func (s *Scene) appendStrokes(out []Primitive, now time.Time) []Primitive {
	width := s.cfg.DragLineWidth
	for _, st := range s.strokes {
		age := seconds(now, st.createdAt)
		if age > s.cfg.PersistDuration || len(st.points) < 2 {
			continue
		}
		a := strokeAlpha(age, s.cfg.PersistDuration, s.cfg.FadeDuration)
		if a <= 0 {
			continue
		}
		out = append(out, Primitive{
			Shape:  Polyline,
			Points: append([]Point(nil), st.points...),
			Width:  width,
			Color:  st.color.WithAlphaScale(a),
		})
	}
	if s.active != nil && len(s.active.points) >= 2 {
		out = append(out, Primitive{
			Shape:  Polyline,
			Points: append([]Point(nil), s.active.points...),
			Width:  width,
			Color:  s.active.color,
		})
	}
	return out
}

func (s *Scene) appendKeyStrip(out []Primitive, now time.Time) []Primitive {
	opts := s.cfg.KeyDisplay
	text, alpha := s.keys.label(now, opts)
	if text == "" || alpha <= 0 {
		return out
	}
	primary := s.layout.PrimaryLocal()
	anchor := Point{
		X: float64(primary.Min.X+primary.Max.X) / 2,
		Y: float64(primary.Max.Y) - opts.Margin,
	}
	return append(out, Primitive{
		Shape:      Label,
		Points:     []Point{anchor},
		Text:       text,
		Color:      opts.TextColor.WithAlphaScale(alpha),
		Background: opts.BackgroundColor.WithAlphaScale(alpha),
		Scale:      opts.Scale,
	})
}
