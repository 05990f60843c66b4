package render

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// drawLabels writes each body's name centred on the body.
func (r *Renderer) drawLabels(img *image.NRGBA, cam Camera, bodies []body) {
	face := basicfont.Face7x13
	W, H := img.Bounds().Dx(), img.Bounds().Dy()

	for i := range bodies {
		b := &bodies[i]
		px, py, _, ok := cam.Project(b.obj.Position, W, H)
		if !ok {
			continue
		}
		col := r.Theme.Label.BlendLab(b.obj.Color, r.Theme.LabelTint)

		d := font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(col.ToNRGBA()),
			Face: face,
		}
		width := d.MeasureString(b.obj.Name).Round()
		x := int(px) - width/2
		y := int(py) + face.Ascent/2
		d.Dot = fixed.P(x, y)
		d.DrawString(b.obj.Name)
	}
}
