// Package display puts the orbit loop's frames in front of someone: a desktop
// window, a directory of PNG files, or a terminal.
package display

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/echoflaresat/orrery/orbit"
	"github.com/echoflaresat/orrery/render"
	"github.com/echoflaresat/orrery/scene"
)

var ErrNoWindow = errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")

// yawStep and tiltStep are how far one arrow key press swings the camera.
const (
	yawStep  = 5.0
	tiltStep = 5.0
)

// Window shows the scene in a desktop window, one rendered frame per refresh.
type Window struct {
	Renderer *render.Renderer
	Scene    *scene.Scene
	Title    string
	Scale    int // window pixels per rendered pixel

	mu    sync.Mutex
	frame *image.NRGBA
}

func NewWindow(r *render.Renderer, s *scene.Scene) *Window {
	return &Window{Renderer: r, Scene: s, Title: "Orrery", Scale: 1}
}

// Present renders the scene the loop has just updated.
func (w *Window) Present(ctx context.Context, _ orbit.Frame) error {
	img, err := w.Renderer.Render(ctx, w.Scene)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.frame = img
	w.mu.Unlock()
	return nil
}

// Frame returns the last rendered image, nil before the first frame.
func (w *Window) Frame() *image.NRGBA {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frame
}

// swing moves the camera by whole arrow key steps.
func (w *Window) swing(yawSteps, tiltSteps int) {
	w.Renderer.YawDeg += float64(yawSteps) * yawStep
	w.Renderer.TiltDeg += float64(tiltSteps) * tiltStep
}
