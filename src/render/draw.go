package render

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"mouse-overlay/src/scene"
)

var labelFace font.Face = basicfont.Face7x13

func drawPrimitive(dst *ebiten.Image, p scene.Primitive) {
	if p.Color.A == 0 && p.Background.A == 0 {
		return
	}
	clr := p.Color.NRGBA()
	switch p.Shape {
	case scene.Circle:
		c := p.Points[0]
		vector.StrokeCircle(dst, float32(c.X), float32(c.Y), float32(p.Radius), float32(p.Width), clr, true)
	case scene.Disc:
		c := p.Points[0]
		vector.DrawFilledCircle(dst, float32(c.X), float32(c.Y), float32(p.Radius), clr, true)
	case scene.Line:
		a, b := p.Points[0], p.Points[1]
		vector.StrokeLine(dst, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), float32(p.Width), clr, true)
	case scene.Polyline:
		drawPolyline(dst, p)
	case scene.Label:
		drawLabel(dst, p)
	}
}

// drawPolyline strokes each segment and rounds the joints so wide trails
// do not show gaps at corners.
func drawPolyline(dst *ebiten.Image, p scene.Primitive) {
	clr := p.Color.NRGBA()
	w := float32(p.Width)
	for i := 1; i < len(p.Points); i++ {
		a, b := p.Points[i-1], p.Points[i]
		vector.StrokeLine(dst, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), w, clr, true)
	}
	if w <= 2 {
		return
	}
	for _, pt := range p.Points {
		vector.DrawFilledCircle(dst, float32(pt.X), float32(pt.Y), w/2, clr, true)
	}
}

func drawLabel(dst *ebiten.Image, p scene.Primitive) {
	textW := text.BoundString(labelFace, p.Text).Dx()
	m := labelFace.Metrics()
	box, origin := labelGeometry(p.Points[0], textW, m.Height.Ceil(), m.Ascent.Ceil(), p.Scale)

	if p.Background.A > 0 {
		vector.DrawFilledRect(dst, float32(box.Min.X), float32(box.Min.Y), float32(box.Dx()), float32(box.Dy()), p.Background.NRGBA(), false)
	}
	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(p.Scale, p.Scale)
	opts.GeoM.Translate(origin.X, origin.Y)
	opts.ColorScale.ScaleWithColor(p.Color.NRGBA())
	text.DrawWithOptions(dst, p.Text, labelFace, opts)
}

// labelGeometry lays out a label box centered on anchor.X whose bottom edge
// sits on anchor.Y. It returns the box and the text baseline origin.
func labelGeometry(anchor scene.Point, textW, textH, ascent int, scale float64) (image.Rectangle, scene.Point) {
	if scale <= 0 {
		scale = 1
	}
	padX, padY := 6*scale, 4*scale
	w := float64(textW)*scale + 2*padX
	h := float64(textH)*scale + 2*padY
	left := anchor.X - w/2
	top := anchor.Y - h
	box := image.Rect(int(left), int(top), int(left+w), int(anchor.Y))
	return box, scene.Point{X: left + padX, Y: top + padY + float64(ascent)*scale}
}
