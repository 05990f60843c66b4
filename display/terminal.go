package display

import (
	"context"
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/echoflaresat/orrery/colors"
	"github.com/echoflaresat/orrery/orbit"
	"github.com/echoflaresat/orrery/scene"
)

var glyphs = [orbit.NumBodies]rune{
	orbit.Sun:     '☉',
	orbit.Mercury: '☿',
	orbit.Venus:   '♀',
	orbit.Earth:   '⊕',
	orbit.Moon:    '☾',
	orbit.Mars:    '♂',
	orbit.Jupiter: '♃',
	orbit.Saturn:  '♄',
	orbit.Rahu:    '☊',
	orbit.Ketu:    '☋',
}

// draw order, so the Earth and Moon stay on top when they crowd the nodes
var terminalOrder = []orbit.Body{
	orbit.Rahu, orbit.Ketu, orbit.Saturn, orbit.Jupiter, orbit.Mars,
	orbit.Sun, orbit.Venus, orbit.Mercury, orbit.Moon, orbit.Earth,
}

// Terminal draws the X-Z plane seen from above, one glyph per body.
type Terminal struct {
	Scene  *scene.Scene
	Screen tcell.Screen // nil opens the real terminal in Run
	Rate   float64      // frames per second

	loop   *orbit.Loop
	extent float64
	styles [orbit.NumBodies]tcell.Style
}

func NewTerminal(s *scene.Scene, cfg orbit.Config) *Terminal {
	t := &Terminal{Scene: s, Rate: 30}
	for _, o := range cfg.Orbits {
		t.extent = math.Max(t.extent, o.Radius)
	}
	t.extent++

	for _, o := range s.Objects() {
		c := o.Color
		// keep dark bodies visible on a dark terminal
		if (c.R+c.G+c.B)/3 < 0.2 {
			c = c.BlendLab(colors.White(), 0.5)
		}
		n := c.ToNRGBA()
		t.styles[o.Body] = tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(n.R), int32(n.G), int32(n.B)))
	}
	return t
}

// cell maps a scene position to a terminal cell. Cells are about twice as
// tall as wide, so X gets twice the scale of Z.
func (t *Terminal) cell(x, z float64, w, h int) (int, int) {
	scale := math.Min(float64(w)/4, float64(h-1)/2) / t.extent
	cx := float64(w)/2 + x*scale*2
	cy := float64(h+1)/2 + z*scale
	return int(math.Round(cx)), int(math.Round(cy))
}

func (t *Terminal) Present(_ context.Context, f orbit.Frame) error {
	scr := t.Screen
	w, h := scr.Size()
	scr.Clear()

	hud := fmt.Sprintf("frame %d", f.Index)
	if t.loop != nil && t.loop.Paused() {
		hud += "  paused"
	}
	hud += "   [space] pause  [l] labels  [q] quit"
	drawText(scr, 0, 0, hud, tcell.StyleDefault.Reverse(true))

	labels := t.Scene.LabelsVisible()
	for _, b := range terminalOrder {
		p := f.Of(b).Position
		x, y := t.cell(p.X, p.Z, w, h)
		if y < 1 || y >= h || x < 0 || x >= w {
			continue
		}
		scr.SetContent(x, y, glyphs[b], nil, t.styles[b])
		if labels {
			drawText(scr, x+2, y, b.String(), t.styles[b])
		}
	}
	scr.Show()
	return nil
}

func drawText(scr tcell.Screen, x, y int, s string, style tcell.Style) {
	for _, r := range s {
		scr.SetContent(x, y, r, nil, style)
		x++
	}
}

// handleKey applies one key press and reports whether the user asked to quit.
func (t *Terminal) handleKey(ev *tcell.EventKey, loop *orbit.Loop) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case ' ':
			loop.TogglePause()
		case 'l':
			t.Scene.ToggleLabels()
		}
	}
	return false
}

// Run takes over the terminal and drives loop until q, Esc or ctx ends.
func (t *Terminal) Run(ctx context.Context, loop *orbit.Loop) error {
	if t.Screen == nil {
		scr, err := tcell.NewScreen()
		if err != nil {
			return err
		}
		t.Screen = scr
	}
	if err := t.Screen.Init(); err != nil {
		return err
	}
	defer t.Screen.Fini()
	t.loop = loop

	go func() {
		for {
			ev := t.Screen.PollEvent()
			if ev == nil {
				return // screen finalised
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if t.handleKey(ev, loop) {
					loop.Stop()
					return
				}
			case *tcell.EventResize:
				t.Screen.Sync()
			}
		}
	}()

	sched, err := orbit.NewRateScheduler(t.Rate)
	if err != nil {
		return err
	}
	return loop.Run(ctx, sched)
}
