package render

import (
	"context"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"mouse-overlay/src/display"
	"mouse-overlay/src/input"
	"mouse-overlay/src/scene"
)

const windowTitle = "mouse-overlay"

// Overlay is the ebiten game driving the scene. Update samples the cursor
// and advances the animation; Draw paints the scene's primitives.
type Overlay struct {
	ctx     context.Context
	scene   *scene.Scene
	pointer input.Pointer
	layout  display.Layout
	now     func() time.Time
	tps     int
}

// New creates an overlay. A nil pointer falls back to the system cursor.
func New(ctx context.Context, sc *scene.Scene, layout display.Layout, pointer input.Pointer) *Overlay {
	if pointer == nil {
		pointer = input.SystemPointer
	}
	return &Overlay{
		ctx:     ctx,
		scene:   sc,
		pointer: pointer,
		layout:  layout,
		now:     time.Now,
	}
}

func (o *Overlay) Update() error {
	if o.ctx.Err() != nil {
		return ebiten.Termination
	}
	if tps := tpsFor(o.scene.TickInterval()); tps != o.tps {
		o.tps = tps
		ebiten.SetTPS(tps)
	}
	x, y := o.pointer()
	o.scene.Tick(o.now(), x, y)
	return nil
}

func (o *Overlay) Draw(screen *ebiten.Image) {
	screen.Clear()
	for _, p := range o.scene.Frame(o.now()) {
		drawPrimitive(screen, p)
	}
}

func (o *Overlay) Layout(outsideWidth, outsideHeight int) (int, int) {
	return o.layout.Width(), o.layout.Height()
}

// Run opens the transparent, click-through window over the whole virtual
// desktop and blocks until ctx is cancelled. It must be called from the
// main goroutine.
func (o *Overlay) Run() error {
	v := o.layout.Virtual
	log.Printf("Overlay window: %dx%d at (%d,%d)", v.Dx(), v.Dy(), v.Min.X, v.Min.Y)

	ebiten.SetWindowTitle(windowTitle)
	ebiten.SetWindowDecorated(false)
	ebiten.SetWindowFloating(true)
	ebiten.SetWindowMousePassthrough(true)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	ebiten.SetWindowSize(v.Dx(), v.Dy())
	ebiten.SetWindowPosition(v.Min.X, v.Min.Y)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetScreenClearedEveryFrame(true)
	o.tps = tpsFor(o.scene.TickInterval())
	ebiten.SetTPS(o.tps)

	err := ebiten.RunGameWithOptions(o, &ebiten.RunGameOptions{
		ScreenTransparent: true,
		SkipTaskbar:       true,
		InitUnfocused:     true,
	})
	if err == ebiten.Termination {
		return nil
	}
	return err
}

// tpsFor converts a frame period in milliseconds to ticks per second.
func tpsFor(intervalMS int) int {
	if intervalMS < 1 {
		intervalMS = 1
	}
	tps := 1000 / intervalMS
	if tps < 1 {
		tps = 1
	}
	return tps
}
