package render

import (
	"math"

	"github.com/echoflaresat/orrery/colors"
	"github.com/echoflaresat/orrery/scene"
	"github.com/echoflaresat/orrery/texture"
	"github.com/echoflaresat/orrery/vectors"
)

// body is a read-only copy of a scene object taken at the start of a frame,
// so workers never touch the live scene.
type body struct {
	obj     scene.Object
	ring    *scene.Ring
	texture *texture.Texture
}

// RayContext carries per-ray state and the frame constants the shader needs.
type RayContext struct {
	Origin       vectors.Vec3
	RayDirection vectors.Vec3
	Near, Far    float64

	T             float64 // distance to the nearest sphere, -1 on a miss
	Hit           *body
	HitPoint      vectors.Vec3
	SurfaceNormal vectors.Vec3

	RingT     float64 // distance to the ring, -1 on a miss
	RingOwner *body

	bodies []body
}

func newRayContext(origin vectors.Vec3, near, far float64, bodies []body) *RayContext {
	return &RayContext{Origin: origin, Near: near, Far: far, bodies: bodies}
}

// SetRayDirection finds what the ray from Origin along dir hits first.
func (c *RayContext) SetRayDirection(dir vectors.Vec3) {
	c.RayDirection = dir
	c.T, c.Hit = -1, nil
	c.RingT, c.RingOwner = -1, nil

	for i := range c.bodies {
		b := &c.bodies[i]
		t := intersectSphere(c.Origin.Sub(b.obj.Position), dir, b.obj.Size)
		if c.inRange(t) && (c.T < 0 || t < c.T) {
			c.T, c.Hit = t, b
		}
		if b.ring != nil {
			t := intersectRing(b, c.Origin, dir)
			if c.inRange(t) && (c.RingT < 0 || t < c.RingT) {
				c.RingT, c.RingOwner = t, b
			}
		}
	}

	if c.Hit != nil {
		c.HitPoint = c.Origin.Add(dir.Scale(c.T))
		c.SurfaceNormal = c.HitPoint.Sub(c.Hit.obj.Position).Normalize()
	}
	// a ring behind the sphere it belongs to, or any other, is hidden
	if c.RingOwner != nil && c.Hit != nil && c.RingT > c.T {
		c.RingT, c.RingOwner = -1, nil
	}
}

func (c *RayContext) inRange(t float64) bool {
	return t >= c.Near && t <= c.Far
}

// intersectSphere calculates the intersection of a ray (O + t*D) with a
// sphere of radius r centred at the origin. O is relative to the centre.
// Returns the closest positive t, or -1.0 if there is no intersection.
func intersectSphere(O, D vectors.Vec3, r float64) float64 {
	// b = 2*O·D, c = O·O - r^2, solve t^2 + b t + c = 0
	b := 2.0 * O.Dot(D)
	c := O.Dot(O) - r*r

	discriminant := b*b - 4.0*c
	if discriminant < 0 {
		return -1.0
	}

	sqrtDisc := math.Sqrt(discriminant)
	t1 := (-b - sqrtDisc) / 2.0
	t2 := (-b + sqrtDisc) / 2.0

	if t1 > 0 {
		return t1
	}
	if t2 > 0 {
		return t2
	}
	return -1.0
}

// ringFrame maps a world vector into the ring's plane frame, where the ring
// lies in z = 0. point selects whether translation applies.
func ringFrame(b *body, v vectors.Vec3, point bool) vectors.Vec3 {
	if point {
		v = b.obj.ToLocal(v).Sub(vectors.Vec3{Y: b.ring.OffsetY})
	} else {
		v = v.RotateY(-b.obj.RotationY)
	}
	return v.RotateX(-b.ring.TiltX)
}

// intersectRing returns the distance to b's ring annulus, or -1.
func intersectRing(b *body, O, D vectors.Vec3) float64 {
	o := ringFrame(b, O, true)
	d := ringFrame(b, D, false)
	if math.Abs(d.Z) < 1e-12 {
		return -1
	}
	t := -o.Z / d.Z
	if t <= 0 {
		return -1
	}
	x, y := o.X+t*d.X, o.Y+t*d.Y
	r := math.Hypot(x, y)
	if r < b.ring.Inner || r > b.ring.Outer {
		return -1
	}
	return t
}

// sampleSurface returns the unlit surface colour at the current hit.
func (c *RayContext) sampleSurface() colors.Color4 {
	base := c.Hit.obj.Color
	if c.Hit.texture == nil {
		return base
	}
	// the texture turns with the body
	local := c.SurfaceNormal.RotateY(-c.Hit.obj.RotationY)
	return base.Mul(c.Hit.texture.SampleDir(local))
}
