package orbit

import (
	"math"

	"github.com/echoflaresat/orrery/vectors"
)

// State is the complete mutable part of the animation. Positions are a pure
// function of it, so any State can be rendered, saved or resumed.
type State struct {
	Frame uint64

	Angle     float64 // Jupiter, Saturn
	SunAngle  float64 // Sun and the inner planets
	MoonAngle float64
	NodeAngle float64 // Rahu; Ketu is NodeAngle+π

	EarthSpin  float64
	SaturnSpin float64
}

// Transform is what gets written onto a scene object each frame.
type Transform struct {
	Position  vectors.Vec3
	RotationY float64
}

// Frame is the set of transforms for one rendered instant.
type Frame struct {
	Index  uint64
	Bodies [NumBodies]Transform
}

// Of returns the transform of b.
func (f Frame) Of(b Body) Transform {
	return f.Bodies[b]
}

// Step advances every accumulator by one frame and wraps them so they stay
// bounded over arbitrarily long sessions.
func (c Config) Step(s State) State {
	s.Frame++
	s.Angle += c.AngleStep
	s.SunAngle += c.SunStep
	s.MoonAngle += c.MoonStep
	s.NodeAngle += c.NodeStep
	s.EarthSpin += c.SpinStep
	s.SaturnSpin += c.SpinStep
	return c.Wrap(s)
}

// Wrap reduces the accumulators to their natural period without changing any
// resulting position.
func (c Config) Wrap(s State) State {
	s.SunAngle = wrap(s.SunAngle, twoPi)
	s.MoonAngle = wrap(s.MoonAngle, twoPi)
	s.NodeAngle = wrap(s.NodeAngle, twoPi)
	s.EarthSpin = wrap(s.EarthSpin, twoPi)
	s.SaturnSpin = wrap(s.SaturnSpin, twoPi)
	if p := c.anglePeriod(); p > 0 {
		s.Angle = wrap(s.Angle, p)
	}
	return s
}

// Positions evaluates every body for s. It never looks at a previous frame.
func (c Config) Positions(s State) Frame {
	f := Frame{Index: s.Frame}

	f.Bodies[Sun].Position = c.circle(Sun, s.SunAngle)
	for _, b := range []Body{Mercury, Venus, Mars} {
		offset := math.Sin(s.SunAngle) * c.Orbits[b].Elongation
		f.Bodies[b].Position = c.circle(b, s.SunAngle+offset)
	}
	for _, b := range []Body{Jupiter, Saturn} {
		f.Bodies[b].Position = c.circle(b, s.Angle*c.Orbits[b].Rate)
	}

	nr := c.NodeRadius()
	f.Bodies[Rahu].Position = vectors.Vec3{
		X: math.Cos(s.NodeAngle) * nr,
		Z: math.Sin(s.NodeAngle) * nr,
	}
	f.Bodies[Ketu].Position = vectors.Vec3{
		X: math.Cos(s.NodeAngle+math.Pi) * nr,
		Z: math.Sin(s.NodeAngle+math.Pi) * nr,
	}

	mr := c.Orbits[Moon].Radius
	f.Bodies[Moon].Position = vectors.Vec3{
		X: math.Cos(s.MoonAngle) * mr,
		Y: math.Sin(c.MoonInclination) * math.Sin(s.MoonAngle) * mr,
		Z: math.Sin(s.MoonAngle) * mr,
	}

	f.Bodies[Earth].RotationY = s.EarthSpin
	f.Bodies[Saturn].RotationY = s.SaturnSpin
	return f
}

// Simulate runs n frames from the zero state.
func Simulate(c Config, n uint64) (State, Frame) {
	var s State
	for i := uint64(0); i < n; i++ {
		s = c.Step(s)
	}
	return s, c.Positions(s)
}

// circle places b on its X-Z circle, mirrored in X.
func (c Config) circle(b Body, theta float64) vectors.Vec3 {
	r := c.Orbits[b].Radius
	return vectors.Vec3{
		X: math.Cos(theta) * r * -1,
		Z: math.Sin(theta) * r,
	}
}

func wrap(a, period float64) float64 {
	if a >= 0 && a < period {
		return a
	}
	a = math.Mod(a, period)
	if a < 0 {
		a += period
	}
	return a
}
