//go:build cgo

package display

import (
	"context"
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/echoflaresat/orrery/orbit"
)

// Run opens the window and drives loop from the display refresh. It blocks
// until the window closes, Esc is pressed, or ctx ends.
func (w *Window) Run(ctx context.Context, loop *orbit.Loop, tps int) error {
	if tps <= 0 {
		tps = 60
	}
	scale := max(w.Scale, 1)

	g := &windowGame{ctx: ctx, w: w, loop: loop}
	ebiten.SetWindowTitle(w.Title)
	ebiten.SetWindowSize(w.Renderer.Width*scale, w.Renderer.Height*scale)
	ebiten.SetTPS(tps)

	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

type windowGame struct {
	ctx  context.Context
	w    *Window
	loop *orbit.Loop
	img  *ebiten.Image
}

func (g *windowGame) Update() error {
	if err := g.ctx.Err(); err != nil {
		return err
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		g.loop.Stop()
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.loop.TogglePause()
	case inpututil.IsKeyJustPressed(ebiten.KeyL):
		g.w.Scene.ToggleLabels()
	}

	var yaw, tilt int
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
		yaw--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
		yaw++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		tilt++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		tilt--
	}
	if yaw != 0 || tilt != 0 {
		g.w.swing(yaw, tilt)
	}

	if err := g.loop.AdvanceFrame(g.ctx); err != nil {
		if errors.Is(err, orbit.ErrStopped) {
			return ebiten.Termination
		}
		return err
	}
	return nil
}

func (g *windowGame) Draw(screen *ebiten.Image) {
	frame := g.w.Frame()
	if frame == nil {
		return
	}
	b := frame.Bounds()
	if g.img == nil || g.img.Bounds().Dx() != b.Dx() || g.img.Bounds().Dy() != b.Dy() {
		if g.img != nil {
			g.img.Deallocate()
		}
		g.img = ebiten.NewImage(b.Dx(), b.Dy())
	}
	g.img.WritePixels(frame.Pix)
	screen.DrawImage(g.img, nil)
}

func (g *windowGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.w.Renderer.Width, g.w.Renderer.Height
}
