package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/echoflaresat/orrery/colors"
	"github.com/echoflaresat/orrery/scene"
	"github.com/echoflaresat/orrery/texture"
	"github.com/echoflaresat/orrery/vectors"
)

var ErrImageSize = errors.New("invalid image size")

type Theme struct {
	Background colors.Color4
	Warm       colors.Color4
	Saturation float64
	Label      colors.Color4
	LabelTint  float64 // how much of the body colour bleeds into its label
	StarGlow   float64 // peak opacity of a star's halo
}

func DefaultTheme() Theme {
	return Theme{
		Background: colors.Black(),
		Warm:       colors.New(1.02, 1.0, 0.98, 1.0),
		Saturation: 1.2,
		Label:      colors.White(),
		LabelTint:  0.25,
		StarGlow:   0.7,
	}
}

// Renderer raytraces a scene into an image. The zero value is not usable;
// set at least Width and Height.
type Renderer struct {
	Theme       Theme
	Width       int
	Height      int
	Supersample int
	Workers     int               // 0 means GOMAXPROCS
	Textures    *texture.Library // nil renders flat colours

	// YawDeg and TiltDeg swing the scene's camera around its target.
	YawDeg  float64
	TiltDeg float64
}

// Camera returns the camera the next Render of s will use.
func (r *Renderer) Camera(s *scene.Scene) Camera {
	aspect := 1.0
	if r.Height > 0 {
		aspect = float64(r.Width) / float64(r.Height)
	}
	return NewCamera(s.View, aspect).Orbit(r.YawDeg, r.TiltDeg)
}

// Render draws s as it is now. The scene must not be written while Render
// runs; the orbit loop guarantees that when Render is called from a Presenter.
func (r *Renderer) Render(ctx context.Context, s *scene.Scene) (*image.NRGBA, error) {
	W, H := r.Width, r.Height
	if W <= 0 || H <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageSize, W, H)
	}

	cam := r.Camera(s)
	bodies := r.snapshot(s)
	stars := r.starField(cam, s.Stars)

	offsets := GenerateSupersamplingOffsets(max(r.Supersample, 1))
	N := float64(len(offsets))

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	img := image.NewNRGBA(image.Rect(0, 0, W, H))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for y := 0; y < H; y++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rc := newRayContext(cam.Position, cam.Near, cam.Far, bodies)
			for x := 0; x < W; x++ {
				colorAccum := colors.Color4{}
				for _, off := range offsets {
					dir := cam.ComputeRay(float64(x)+off[0], float64(y)+off[1], W, H)
					rc.SetRayDirection(dir)
					colorAccum = colorAccum.Add(r.shade(rc, s, stars[y*W+x]))
				}

				colorOut := colorAccum.Scale(1.0 / N)
				colorOut = colorOut.Mul(r.Theme.Warm)
				colorOut = colorOut.BoostSaturation(r.Theme.Saturation)
				colorOut = colorOut.CompositeOverBlack()
				img.SetNRGBA(x, y, colorOut.ToNRGBA())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if s.LabelsVisible() {
		r.drawLabels(img, cam, bodies)
	}
	return img, nil
}

func (r *Renderer) snapshot(s *scene.Scene) []body {
	objs := s.Objects()
	out := make([]body, len(objs))
	for i, o := range objs {
		out[i] = body{obj: *o, ring: o.Ring}
		if o.Texture != "" {
			out[i].texture = r.Textures.Get(o.Texture)
		}
	}
	return out
}

// shade returns the colour seen along the ray last set on rc. star is the
// star field's brightness behind this pixel.
func (r *Renderer) shade(rc *RayContext, s *scene.Scene, star float64) colors.Color4 {
	var c colors.Color4
	if rc.Hit != nil {
		c = rc.sampleSurface().ScaleRGB(lightAt(s, rc.HitPoint, rc.SurfaceNormal))
		c.A = 1
	} else {
		c = r.Theme.Background.Add(colors.White().ScaleRGB(star)).WithAlpha(1)
	}

	if rc.RingOwner != nil {
		ring := rc.RingOwner.ring
		c = c.Mix(ring.Color.WithAlpha(1), ring.Opacity)
	}
	return c
}

// lightAt is the Lambert irradiance at p with normal n.
func lightAt(s *scene.Scene, p, n vectors.Vec3) float64 {
	total := s.Ambient
	for _, l := range s.Lights {
		L := l.Position.Sub(p).Normalize()
		total += l.Intensity * math.Max(0, n.Dot(L))
	}
	return total
}

// starField splats every visible star as a small core plus a Gaussian halo.
func (r *Renderer) starField(cam Camera, stars []scene.Star) []float64 {
	W, H := r.Width, r.Height
	field := make([]float64, W*H)

	for _, st := range stars {
		px, py, depth, ok := cam.Project(st.Position, W, H)
		if !ok || depth > cam.Far {
			continue
		}
		ppu := cam.PixelsPerUnit(depth, H)
		core := st.Radius * ppu
		// the halo spans ten star radii
		sigma := math.Max(0.5, core*2.5)
		reach := int(math.Ceil(3 * sigma))

		cx, cy := int(math.Round(px)), int(math.Round(py))
		for y := cy - reach; y <= cy+reach; y++ {
			if y < 0 || y >= H {
				continue
			}
			for x := cx - reach; x <= cx+reach; x++ {
				if x < 0 || x >= W {
					continue
				}
				d := math.Hypot(float64(x)-px, float64(y)-py)
				v := r.Theme.StarGlow*GaussianFade(d, 0, sigma) + Clip(core-d+0.5, 0, 1)
				field[y*W+x] = Clip(field[y*W+x]+v, 0, 1)
			}
		}
	}
	return field
}

// GaussianFade returns a smooth Gaussian falloff centered at `center`
// with standard deviation `width`.
func GaussianFade(x, center, width float64) float64 {
	return math.Exp(-((x - center) * (x - center)) / (2.0 * width * width))
}

// Clip clamps x into the inclusive range [min, max].
func Clip(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}

// GenerateSupersamplingOffsets returns n×n offsets in [-0.5, +0.5] for
// supersampling, as pairs (dx, dy) with pixel-center spacing.
func GenerateSupersamplingOffsets(n int) [][2]float64 {
	if n <= 0 {
		return nil
	}
	step := 1.0 / float64(n)
	out := make([][2]float64, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			dx := (float64(i)+0.5)*step - 0.5
			dy := (float64(j)+0.5)*step - 0.5
			out = append(out, [2]float64{dx, dy})
		}
	}
	return out
}
