package orbit

import (
	"math"
	"testing"
	"time"

	"github.com/echoflaresat/orrery/vectors"
)

// direction is the X-Z bearing of p in degrees.
func direction(p vectors.Vec3) float64 {
	return math.Atan2(p.Z, p.X) * 180 / math.Pi
}

// separation is the unsigned angle between two bearings in degrees.
func separation(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	return math.Min(d, 360-d)
}

func TestStateAtEclipse(t *testing.T) {
	// Total solar eclipse of 2024-04-08: Sun and Moon share a longitude and
	// the Moon sits next to its ascending node.
	at := time.Date(2024, 4, 8, 18, 17, 0, 0, time.UTC)
	cfg := DefaultConfig()
	s := cfg.StateAt(at)

	sunDeg := s.SunAngle * 180 / math.Pi
	if math.Abs(sunDeg-19.2) > 1.5 {
		t.Fatalf("sun longitude = %.2f°, want ≈19.2°", sunDeg)
	}
	if s.Angle != s.SunAngle {
		t.Fatalf("Angle %v should start with SunAngle %v", s.Angle, s.SunAngle)
	}
	for name, v := range map[string]float64{
		"sun": s.SunAngle, "moon": s.MoonAngle, "node": s.NodeAngle, "spin": s.EarthSpin,
	} {
		if v < 0 || v >= 2*math.Pi {
			t.Fatalf("%s = %v outside [0, 2π)", name, v)
		}
	}
	if s.Frame != 0 {
		t.Fatalf("seeded state should start at frame 0, got %d", s.Frame)
	}

	f := cfg.Positions(s)
	sun := direction(f.Of(Sun).Position)
	moon := direction(f.Of(Moon).Position)
	rahu := direction(f.Of(Rahu).Position)
	ketu := direction(f.Of(Ketu).Position)

	if d := separation(sun, moon); d > 3 {
		t.Fatalf("sun at %.1f°, moon at %.1f°: %.1f° apart, want a new Moon", sun, moon, d)
	}
	if d := math.Min(separation(sun, rahu), separation(sun, ketu)); d > 10 {
		t.Fatalf("nearest node %.1f° from the sun (rahu %.1f°, ketu %.1f°)", d, rahu, ketu)
	}
}

func TestStateAtFullMoon(t *testing.T) {
	// Full Moon of 2024-04-23 23:49 UTC: the Moon is drawn opposite the Sun.
	at := time.Date(2024, 4, 23, 23, 49, 0, 0, time.UTC)
	cfg := DefaultConfig()
	f := cfg.Positions(cfg.StateAt(at))

	sun := direction(f.Of(Sun).Position)
	moon := direction(f.Of(Moon).Position)
	if d := separation(sun, moon); d < 175 {
		t.Fatalf("sun at %.1f°, moon at %.1f°: %.1f° apart, want opposition", sun, moon, d)
	}
}

func TestStateAtIgnoresLocation(t *testing.T) {
	utc := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	local := utc.In(time.FixedZone("X", 5*3600))
	cfg := DefaultConfig()
	if cfg.StateAt(utc) != cfg.StateAt(local) {
		t.Fatal("same instant in different zones seeded different states")
	}
}
