package orbit

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// Orbit holds the fixed per-body constants.
//
// Radius is the distance from the origin. Rate scales the shared Angle
// accumulator (Jupiter, Saturn). Elongation scales sin(SunAngle) into an
// angular offset from the Sun (Mercury, Venus, Mars); it keeps the inner
// planets loosely tethered to the Sun and is artistic, not Keplerian.
type Orbit struct {
	Radius     float64
	Rate       float64
	Elongation float64
}

// Config is the complete constant table driving the animation.
type Config struct {
	Orbits [NumBodies]Orbit

	MoonInclination float64 // radians
	NodeInclination float64 // radians; nodes sit on the reference plane, kept for the table

	AngleStep float64 // per frame, shared Jupiter/Saturn accumulator
	SunStep   float64
	MoonStep  float64
	NodeStep  float64
	SpinStep  float64 // Earth and Saturn self-rotation
}

var ErrInvalidConfig = errors.New("invalid orbit config")

// DefaultConfig returns the stock table.
//
// The Moon advances by a single net step of -0.022 rad per frame.
func DefaultConfig() Config {
	var c Config
	c.Orbits[Sun] = Orbit{Radius: 7}
	c.Orbits[Mercury] = Orbit{Radius: 4, Elongation: 0.5}
	c.Orbits[Venus] = Orbit{Radius: 5.2, Elongation: 0.8}
	c.Orbits[Moon] = Orbit{Radius: 1.5}
	c.Orbits[Mars] = Orbit{Radius: 8.5, Elongation: 1.5}
	c.Orbits[Jupiter] = Orbit{Radius: 9.5, Rate: 0.8}
	c.Orbits[Saturn] = Orbit{Radius: 14.1, Rate: 0.4}

	c.MoonInclination = math.Pi / 6
	c.NodeInclination = math.Pi / 6

	c.AngleStep = 0.01
	c.SunStep = 0.01
	c.MoonStep = -0.022
	c.NodeStep = 0.007
	c.SpinStep = 0.01
	return c
}

// NodeRadius is the radius of the circle Rahu and Ketu travel on.
func (c Config) NodeRadius() float64 {
	return c.Orbits[Moon].Radius
}

// Validate rejects tables that would place a body somewhere meaningless.
func (c Config) Validate() error {
	for _, b := range Bodies() {
		o := c.Orbits[b]
		if !finite(o.Radius) || o.Radius < 0 {
			return fmt.Errorf("%w: %s radius %v", ErrInvalidConfig, b, o.Radius)
		}
		if !finite(o.Rate) || !finite(o.Elongation) {
			return fmt.Errorf("%w: %s rate/elongation not finite", ErrInvalidConfig, b)
		}
	}
	named := []struct {
		name string
		v    float64
	}{
		{"moon inclination", c.MoonInclination},
		{"node inclination", c.NodeInclination},
		{"angle step", c.AngleStep},
		{"sun step", c.SunStep},
		{"moon step", c.MoonStep},
		{"node step", c.NodeStep},
		{"spin step", c.SpinStep},
	}
	for _, n := range named {
		if !finite(n.v) {
			return fmt.Errorf("%w: %s is %v", ErrInvalidConfig, n.name, n.v)
		}
	}
	return nil
}

// periods memoizes anglePeriod per rate table; Wrap runs every frame.
var periods sync.Map // [NumBodies]float64 -> float64

// anglePeriod returns the smallest 2πk (k <= maxWrapTurns) at which every
// body driven by Angle is back at its starting point, or 0 if none exists.
func (c Config) anglePeriod() float64 {
	var rates [NumBodies]float64
	for b := range rates {
		rates[b] = c.Orbits[b].Rate
		if !finite(rates[b]) {
			return 0 // NaN keys never match, so they are not cached
		}
	}
	if p, ok := periods.Load(rates); ok {
		return p.(float64)
	}
	p := findAnglePeriod(rates)
	periods.Store(rates, p)
	return p
}

func findAnglePeriod(rates [NumBodies]float64) float64 {
	const tol = 1e-9
	for k := 1; k <= maxWrapTurns; k++ {
		ok := true
		for _, r := range rates {
			if r == 0 {
				continue
			}
			x := r * float64(k)
			if math.Abs(x-math.Round(x)) > tol {
				ok = false
				break
			}
		}
		if ok {
			return twoPi * float64(k)
		}
	}
	return 0
}

const (
	twoPi        = 2 * math.Pi
	maxWrapTurns = 1000
)

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
