package orbit

import (
	"errors"
	"math"
	"testing"

	"github.com/echoflaresat/orrery/vectors"
)

const tol = 1e-9

func TestSunAfterOneFrame(t *testing.T) {
	cfg := DefaultConfig()
	_, f := Simulate(cfg, 1)

	r := cfg.Orbits[Sun].Radius
	want := vectors.Vec3{X: -r * math.Cos(0.01), Y: 0, Z: r * math.Sin(0.01)}
	if got := f.Of(Sun).Position; !got.ApproxEqual(want, 1e-12) {
		t.Fatalf("sun after one frame = %+v, want %+v", got, want)
	}
	// cos(0.01) ≈ 0.99995, sin(0.01) ≈ 0.01
	if got := f.Of(Sun).Position; math.Abs(got.X+6.99965) > 1e-5 || math.Abs(got.Z-0.06999883) > 1e-6 {
		t.Fatalf("sun after one frame = %+v", got)
	}
	if f.Index != 1 {
		t.Fatalf("frame index = %d, want 1", f.Index)
	}
}

func TestDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	for _, n := range []uint64{0, 1, 17, 629, 5000} {
		s1, f1 := Simulate(cfg, n)
		s2, f2 := Simulate(cfg, n)
		if s1 != s2 || f1 != f2 {
			t.Fatalf("n=%d: runs differ", n)
		}
	}
}

func TestNodesDiametricallyOpposite(t *testing.T) {
	cfg := DefaultConfig()
	var s State
	for i := 0; i < 3000; i++ {
		f := cfg.Positions(s)
		rahu, ketu := f.Of(Rahu).Position, f.Of(Ketu).Position
		if math.Abs(rahu.X+ketu.X) > 1e-12 || math.Abs(rahu.Z+ketu.Z) > 1e-12 {
			t.Fatalf("frame %d: rahu %+v ketu %+v", i, rahu, ketu)
		}
		if rahu.Y != 0 || ketu.Y != 0 {
			t.Fatalf("frame %d: nodes left the reference plane", i)
		}
		if d := rahu.Norm(); math.Abs(d-cfg.NodeRadius()) > 1e-12 {
			t.Fatalf("frame %d: node radius %v", i, d)
		}
		s = cfg.Step(s)
	}
}

func TestOuterPlanetsIgnoreSun(t *testing.T) {
	cfg := DefaultConfig()
	base := State{Angle: 1.3, SunAngle: 0.2}
	want := cfg.Positions(base)

	for _, sun := range []float64{0, 0.5, 2, 4.4, -3} {
		s := base
		s.SunAngle = sun
		got := cfg.Positions(s)
		for _, b := range []Body{Jupiter, Saturn} {
			if got.Of(b) != want.Of(b) {
				t.Fatalf("%s moved when SunAngle changed to %v", b, sun)
			}
		}
	}
}

func TestSunFamilyPeriodic(t *testing.T) {
	cfg := DefaultConfig()
	for _, a := range []float64{0, 0.01, 1, 2.5, 5.9} {
		p0 := cfg.Positions(State{SunAngle: a})
		p1 := cfg.Positions(State{SunAngle: a + 2*math.Pi})
		for _, b := range []Body{Sun, Mercury, Venus, Mars} {
			if !p0.Of(b).Position.ApproxEqual(p1.Of(b).Position, tol) {
				t.Fatalf("%s at %v: %+v vs %+v", b, a, p0.Of(b).Position, p1.Of(b).Position)
			}
		}
	}
}

func TestMoonOnNodePlaneAtMultiplesOfPi(t *testing.T) {
	for _, inc := range []float64{0, math.Pi / 6, 1.2, -0.4} {
		cfg := DefaultConfig()
		cfg.MoonInclination = inc
		for k := -3; k <= 3; k++ {
			f := cfg.Positions(State{MoonAngle: float64(k) * math.Pi})
			if y := f.Of(Moon).Position.Y; math.Abs(y) > 1e-12 {
				t.Fatalf("inclination %v, k=%d: moon y = %v", inc, k, y)
			}
		}
	}

	cfg := DefaultConfig()
	f := cfg.Positions(State{MoonAngle: math.Pi / 2})
	want := cfg.Orbits[Moon].Radius * math.Sin(cfg.MoonInclination)
	if y := f.Of(Moon).Position.Y; math.Abs(y-want) > 1e-12 {
		t.Fatalf("moon peak y = %v, want %v", y, want)
	}
}

func TestInnerPlanetElongation(t *testing.T) {
	cfg := DefaultConfig()
	s := State{SunAngle: math.Pi / 2}
	f := cfg.Positions(s)

	cases := []struct {
		body   Body
		offset float64
	}{
		{Mercury, 0.5},
		{Venus, 0.8},
		{Mars, 1.5},
	}
	for _, c := range cases {
		t.Run(c.body.String(), func(t *testing.T) {
			theta := math.Pi/2 + c.offset
			r := cfg.Orbits[c.body].Radius
			want := vectors.Vec3{X: -r * math.Cos(theta), Z: r * math.Sin(theta)}
			if got := f.Of(c.body).Position; !got.ApproxEqual(want, 1e-12) {
				t.Fatalf("got %+v, want %+v", got, want)
			}
		})
	}
}

func TestSpinAdvancesEarthAndSaturn(t *testing.T) {
	cfg := DefaultConfig()
	_, f := Simulate(cfg, 3)
	for _, b := range []Body{Earth, Saturn} {
		if got := f.Of(b).RotationY; math.Abs(got-0.03) > 1e-12 {
			t.Fatalf("%s rotation = %v, want 0.03", b, got)
		}
	}
	if f.Of(Earth).Position != (vectors.Vec3{}) {
		t.Fatalf("earth left the origin: %+v", f.Of(Earth).Position)
	}
}

func TestWrapKeepsAccumulatorsBounded(t *testing.T) {
	cfg := DefaultConfig()
	s, _ := Simulate(cfg, 200000)

	if s.Frame != 200000 {
		t.Fatalf("frame = %d", s.Frame)
	}
	for name, v := range map[string]float64{
		"sun": s.SunAngle, "moon": s.MoonAngle, "node": s.NodeAngle,
		"earth spin": s.EarthSpin, "saturn spin": s.SaturnSpin,
	} {
		if v < 0 || v >= 2*math.Pi {
			t.Fatalf("%s accumulator %v outside [0, 2π)", name, v)
		}
	}
	if s.Angle < 0 || s.Angle >= 10*math.Pi {
		t.Fatalf("angle accumulator %v outside [0, 10π)", s.Angle)
	}
}

func TestWrapPreservesPositions(t *testing.T) {
	cfg := DefaultConfig()
	raw := State{Angle: 31.5, SunAngle: 7.1, MoonAngle: -4.2, NodeAngle: 13, EarthSpin: 9, SaturnSpin: -1}
	a := cfg.Positions(raw)
	b := cfg.Positions(cfg.Wrap(raw))
	for _, body := range Bodies() {
		if !a.Of(body).Position.ApproxEqual(b.Of(body).Position, tol) {
			t.Fatalf("%s: %+v vs %+v", body, a.Of(body).Position, b.Of(body).Position)
		}
	}
}

func TestAnglePeriod(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.anglePeriod(); math.Abs(got-10*math.Pi) > 1e-12 {
		t.Fatalf("anglePeriod = %v, want 10π", got)
	}

	cfg.Orbits[Jupiter].Rate = math.Sqrt2
	if got := cfg.anglePeriod(); got != 0 {
		t.Fatalf("irrational rate should disable wrapping, got %v", got)
	}
	s := cfg.Wrap(State{Angle: 1e4})
	if s.Angle != 1e4 {
		t.Fatalf("angle wrapped to %v without a period", s.Angle)
	}
}

func TestAnglePeriodMemoized(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Orbits[Saturn].Rate = math.Pi // no period within the search limit

	var rates [NumBodies]float64
	for b := range rates {
		rates[b] = cfg.Orbits[b].Rate
	}
	periods.Delete(rates)

	var s State
	for i := 0; i < 3; i++ {
		s = cfg.Step(s)
	}
	p, ok := periods.Load(rates)
	if !ok || p.(float64) != 0 {
		t.Fatalf("period cache = %v, %v after stepping", p, ok)
	}

	cfg.Orbits[Mars].Rate = math.NaN()
	if got := cfg.anglePeriod(); got != 0 {
		t.Fatalf("NaN rate period = %v", got)
	}
	n := 0
	periods.Range(func(k, _ any) bool {
		if r := k.([NumBodies]float64); math.IsNaN(r[Mars]) {
			n++
		}
		return true
	})
	if n != 0 {
		t.Fatalf("%d NaN rate tables cached", n)
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative radius", func(c *Config) { c.Orbits[Mars].Radius = -1 }},
		{"nan radius", func(c *Config) { c.Orbits[Sun].Radius = math.NaN() }},
		{"inf rate", func(c *Config) { c.Orbits[Saturn].Rate = math.Inf(1) }},
		{"nan step", func(c *Config) { c.MoonStep = math.NaN() }},
		{"inf inclination", func(c *Config) { c.MoonInclination = math.Inf(-1) }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := DefaultConfig()
			c.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Validate = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestBodyNames(t *testing.T) {
	for _, b := range Bodies() {
		got, err := ParseBody(b.String())
		if err != nil || got != b {
			t.Fatalf("ParseBody(%q) = %v, %v", b.String(), got, err)
		}
	}
	if _, err := ParseBody("Pluto"); err == nil {
		t.Fatal("expected error for unknown body")
	}
	if Body(42).Valid() {
		t.Fatal("Body(42) reported valid")
	}
}
