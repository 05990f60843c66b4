// Package scene holds the objects the orbit loop moves and the renderer draws.
package scene

import (
	"fmt"
	"math"
	"math/rand"
	"sync/atomic"

	"github.com/echoflaresat/orrery/colors"
	"github.com/echoflaresat/orrery/orbit"
	"github.com/echoflaresat/orrery/vectors"
)

// Ring is a flat annulus attached to its parent body.
type Ring struct {
	Inner, Outer float64
	TiltX        float64 // radians, applied before the parent's spin
	OffsetY      float64
	Color        colors.Color4
	Opacity      float64
}

// Object is one body in the scene. Its transform is written by the orbit loop.
type Object struct {
	Body    orbit.Body
	Name    string
	Size    float64 // sphere radius
	Color   colors.Color4
	Texture string // file name under the texture root, "" for flat colour
	Ring    *Ring

	Position  vectors.Vec3
	RotationY float64
}

func (o *Object) SetPosition(p vectors.Vec3) { o.Position = p }
func (o *Object) SetRotationY(r float64)     { o.RotationY = r }

// ToLocal maps a world-space point into the object's spinning frame.
func (o *Object) ToLocal(p vectors.Vec3) vectors.Vec3 {
	return p.Sub(o.Position).RotateY(-o.RotationY)
}

// Light is a white point light.
type Light struct {
	Position  vectors.Vec3
	Intensity float64
}

type Star struct {
	Position vectors.Vec3
	Radius   float64
}

// View describes where the scene is looked at from.
type View struct {
	Position vectors.Vec3
	Target   vectors.Vec3
	FOVDeg   float64 // vertical
	Near     float64
	Far      float64
}

type Options struct {
	StarCount  int
	StarSeed   int64
	StarSpread float64 // edge of the cube stars are scattered in
	StarRadius float64
}

func DefaultOptions() Options {
	return Options{
		StarCount:  800,
		StarSeed:   1,
		StarSpread: 2000,
		StarRadius: 0.3,
	}
}

// Scene is the full set of drawable things.
type Scene struct {
	objects [orbit.NumBodies]*Object

	Ambient float64
	Lights  []Light
	Stars   []Star
	View    View

	labels atomic.Bool
}

type bodySpec struct {
	size    float64
	color   string
	texture string
}

var bodySpecs = [orbit.NumBodies]bodySpec{
	orbit.Sun:     {0.7, "#ffa500", "sunmap.jpg"},
	orbit.Mercury: {0.3, "#66ff66", "mercurybump.jpg"},
	orbit.Venus:   {0.35, "#ff99ff", "venusbump.jpg"},
	orbit.Earth:   {1, "#ffffff", "earth_texture_map_1000px.jpg"},
	orbit.Moon:    {0.3, "#ffffff", "moonmap2k.jpg"},
	orbit.Mars:    {0.4, "#ff3333", "2k_mars.jpg"},
	orbit.Jupiter: {0.7, "#ffcc00", "jupiter2_1k.jpg"},
	orbit.Saturn:  {0.6, "#9999ff", "2k_saturn.jpg"},
	orbit.Rahu:    {0.3, "#000000", ""},
	orbit.Ketu:    {0.3, "#000000", ""},
}

// New builds the ten bodies, the lights, the camera and the star field.
// Every body starts at the origin until the first frame is applied.
func New(opts Options) (*Scene, error) {
	s := &Scene{
		Ambient: 0.8,
		Lights: []Light{
			{Position: vectors.Vec3{X: 10, Y: 10, Z: 10}, Intensity: 0.6},
			{Position: vectors.Vec3{X: -10, Y: -10, Z: -10}, Intensity: 0.5},
		},
		View: View{
			Position: vectors.Vec3{Z: 15},
			FOVDeg:   75,
			Near:     0.1,
			Far:      2000,
		},
	}

	for _, b := range orbit.Bodies() {
		spec := bodySpecs[b]
		c, err := colors.FromHex(spec.color)
		if err != nil {
			return nil, fmt.Errorf("body %s: %w", b, err)
		}
		s.objects[b] = &Object{
			Body:    b,
			Name:    b.String(),
			Size:    spec.size,
			Color:   c,
			Texture: spec.texture,
		}
	}

	s.objects[orbit.Saturn].Ring = &Ring{
		Inner:   0.8,
		Outer:   1.5,
		TiltX:   math.Pi / 3,
		OffsetY: 0.04,
		Color:   colors.FromRGB24(0xe5e4e2),
		Opacity: 0.7,
	}

	s.Stars = scatterStars(opts)
	return s, nil
}

func scatterStars(opts Options) []Star {
	if opts.StarCount <= 0 {
		return nil
	}
	rng := rand.New(rand.NewSource(opts.StarSeed))
	stars := make([]Star, opts.StarCount)
	for i := range stars {
		stars[i] = Star{
			Position: vectors.Vec3{
				X: (rng.Float64() - 0.5) * opts.StarSpread,
				Y: (rng.Float64() - 0.5) * opts.StarSpread,
				Z: (rng.Float64() - 0.5) * opts.StarSpread,
			},
			Radius: opts.StarRadius,
		}
	}
	return stars
}

// Object returns the scene object for b.
func (s *Scene) Object(b orbit.Body) *Object {
	return s.objects[b]
}

// Objects returns all bodies in orbit.Bodies order.
func (s *Scene) Objects() []*Object {
	out := make([]*Object, 0, len(s.objects))
	out = append(out, s.objects[:]...)
	return out
}

// Targets hands the bodies to an orbit.Loop.
func (s *Scene) Targets() map[orbit.Body]orbit.Target {
	m := make(map[orbit.Body]orbit.Target, len(s.objects))
	for b, o := range s.objects {
		m[orbit.Body(b)] = o
	}
	return m
}

// Labels start hidden.
func (s *Scene) SetLabelsVisible(v bool) { s.labels.Store(v) }
func (s *Scene) LabelsVisible() bool     { return s.labels.Load() }

// ToggleLabels flips label visibility and returns the new value.
func (s *Scene) ToggleLabels() bool {
	for {
		old := s.labels.Load()
		if s.labels.CompareAndSwap(old, !old) {
			return !old
		}
	}
}
