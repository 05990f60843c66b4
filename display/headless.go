package display

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/echoflaresat/orrery/orbit"
	"github.com/echoflaresat/orrery/render"
	"github.com/echoflaresat/orrery/scene"
)

// Headless writes every presented frame to Dir as frame-NNNNN.png.
type Headless struct {
	Renderer *render.Renderer
	Scene    *scene.Scene
	Dir      string
	Frames   uint64  // stop after this many files, 0 for no limit
	Rate     float64 // frames per second, 0 for as fast as possible

	loop    *orbit.Loop
	written uint64
}

// FramePath is where frame index i is written.
func (h *Headless) FramePath(i uint64) string {
	return filepath.Join(h.Dir, fmt.Sprintf("frame-%05d.png", i))
}

func (h *Headless) Present(ctx context.Context, f orbit.Frame) error {
	img, err := h.Renderer.Render(ctx, h.Scene)
	if err != nil {
		return err
	}
	path := h.FramePath(f.Index)
	if err := render.WritePNG(path, img); err != nil {
		return fmt.Errorf("frame %d: %w", f.Index, err)
	}
	slog.Debug("frame written", "path", path)

	h.written++
	if h.Frames > 0 && h.written >= h.Frames && h.loop != nil {
		h.loop.Stop()
	}
	return nil
}

// Written is the number of files produced so far.
func (h *Headless) Written() uint64 { return h.written }

// Run drives loop, which must present through h, until Frames files exist
// or ctx ends.
func (h *Headless) Run(ctx context.Context, loop *orbit.Loop) error {
	if err := os.MkdirAll(h.Dir, 0o755); err != nil {
		return err
	}
	h.loop = loop

	var sched orbit.Scheduler = orbit.ImmediateScheduler{}
	if h.Rate > 0 {
		rs, err := orbit.NewRateScheduler(h.Rate)
		if err != nil {
			return err
		}
		sched = rs
	}

	slog.Info("writing frames", "dir", h.Dir, "frames", h.Frames, "rate", h.Rate)
	return loop.Run(ctx, sched)
}
