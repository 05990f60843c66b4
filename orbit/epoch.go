package orbit

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"
)

// StateAt seeds the accumulators from the real sky at t, so the animation
// starts with the Sun, the Moon and the lunar nodes roughly where an observer
// would find them. From there on the motion is the stylized loop again.
//
// The Sun's circle is mirrored in X, so ecliptic longitude λ is drawn at the
// X-Z angle π-λ. The Moon and the nodes are mapped into the same frame. Their
// directions are exact; the Moon's height is not, because the stylized orbit
// keeps its nodes on the X axis while Rahu and Ketu move.
func (c Config) StateAt(t time.Time) State {
	t = t.UTC()
	jd := julian.TimeToJD(t)

	// Apparent longitude of the Sun, true equinox of date.
	sun := solar.ApparentLongitude(base.J2000Century(jd))

	// Moon: geocentric ecliptic longitude and mean ascending node.
	moonLon, _, _ := moonposition.Position(jd)
	node := moonposition.Node(jd)

	// Earth spin follows apparent sidereal time.
	gast := sidereal.Apparent(jd)

	sunAngle := wrap(sun.Rad(), twoPi)
	return c.Wrap(State{
		Angle:     sunAngle,
		SunAngle:  sunAngle,
		MoonAngle: math.Pi - moonLon.Rad(),
		NodeAngle: math.Pi - node.Rad(),
		EarthSpin: gast.Angle().Rad(),
	})
}
