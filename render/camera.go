package render

import (
	"math"

	"github.com/echoflaresat/orrery/scene"
	"github.com/echoflaresat/orrery/vectors"
)

var worldUp = vectors.Vec3{Y: 1}

// Camera models a pinhole camera looking at a target.
type Camera struct {
	FOVDeg     float64 // vertical
	TanHalfFOV float64
	Aspect     float64 // width / height
	Near, Far  float64
	Position   vectors.Vec3
	Target     vectors.Vec3
	Forward    vectors.Vec3
	Right      vectors.Vec3
	Up         vectors.Vec3
}

// NewCamera builds a camera from a scene view for an image of the given aspect.
func NewCamera(v scene.View, aspect float64) Camera {
	if aspect <= 0 {
		aspect = 1
	}
	fwd := v.Target.Sub(v.Position).Normalize()
	right := fwd.Cross(worldUp)
	if right.Norm() < 1e-6 {
		right = vectors.Vec3{X: 1} // looking straight up or down
	}
	right = right.Normalize()
	up := right.Cross(fwd).Normalize()

	return Camera{
		FOVDeg:     v.FOVDeg,
		TanHalfFOV: math.Tan(v.FOVDeg * math.Pi / 360.0),
		Aspect:     aspect,
		Near:       v.Near,
		Far:        v.Far,
		Position:   v.Position,
		Target:     v.Target,
		Forward:    fwd,
		Right:      right,
		Up:         up,
	}
}

// Orbit swings the camera around its target: yaw about the camera's up axis,
// then tilt about its right axis. The distance to the target is kept.
func (c Camera) Orbit(yawDeg, tiltDeg float64) Camera {
	if yawDeg == 0 && tiltDeg == 0 {
		return c
	}
	dist := vectors.Distance(c.Position, c.Target)
	fwd, right, up := c.Forward, c.Right, c.Up
	if yawDeg != 0 {
		fwd, right, up = yawCamera(fwd, right, up, yawDeg)
	}
	if tiltDeg != 0 {
		fwd, right, up = tiltCamera(fwd, right, up, tiltDeg)
	}
	c.Forward, c.Right, c.Up = fwd, right, up
	c.Position = c.Target.Sub(fwd.Scale(dist))
	return c
}

// rotateVec applies Rodrigues’ rotation formula: rotate v around axis by (cosT, sinT).
func rotateVec(v, axis vectors.Vec3, cosT, sinT float64) vectors.Vec3 {
	// v*cos + (axis x v)*sin + axis*(axis·v)*(1-cos)
	return v.Scale(cosT).
		Add(axis.Cross(v).Scale(sinT)).
		Add(axis.Scale(axis.Dot(v) * (1.0 - cosT)))
}

// tiltCamera rotates forward/up around the Right axis by tiltDeg.
func tiltCamera(fwd, right, up vectors.Vec3, tiltDeg float64) (vectors.Vec3, vectors.Vec3, vectors.Vec3) {
	theta := tiltDeg * math.Pi / 180.0
	c, s := math.Cos(theta), math.Sin(theta)

	fwdNew := rotateVec(fwd, right, c, s).Normalize()
	upNew := rotateVec(up, right, c, s).Normalize()
	return fwdNew, right, upNew
}

// yawCamera rotates forward/right around the Up axis by yawDeg.
func yawCamera(fwd, right, up vectors.Vec3, yawDeg float64) (vectors.Vec3, vectors.Vec3, vectors.Vec3) {
	theta := yawDeg * math.Pi / 180.0
	c, s := math.Cos(theta), math.Sin(theta)

	fwdNew := rotateVec(fwd, up, c, s).Normalize()
	rightNew := rotateVec(right, up, c, s).Normalize()
	return fwdNew, rightNew, up
}

// ComputeRay returns the normalized viewing direction for pixel (i,j) of a
// width×height image. i,j can be fractional (for supersampling); the pixel
// centre is at +0.5.
func (c Camera) ComputeRay(i, j float64, width, height int) vectors.Vec3 {
	w := float64(width)
	h := float64(height)

	// NDC in [-1, +1], flip Y to make +up in screen space.
	xNDC := (i+0.5)/w*2.0 - 1.0
	yNDC := 1.0 - (j+0.5)/h*2.0

	dir := c.Right.Scale(xNDC * c.TanHalfFOV * c.Aspect).
		Add(c.Up.Scale(yNDC * c.TanHalfFOV)).
		Add(c.Forward)

	return dir.Normalize()
}

// Project maps a world point to pixel coordinates. depth is the distance
// along Forward; ok is false behind the near plane.
func (c Camera) Project(p vectors.Vec3, width, height int) (x, y, depth float64, ok bool) {
	v := p.Sub(c.Position)
	depth = v.Dot(c.Forward)
	if depth <= c.Near || depth <= 0 {
		return 0, 0, depth, false
	}
	xNDC := v.Dot(c.Right) / (depth * c.TanHalfFOV * c.Aspect)
	yNDC := v.Dot(c.Up) / (depth * c.TanHalfFOV)
	x = (xNDC+1)/2*float64(width) - 0.5
	y = (1-yNDC)/2*float64(height) - 0.5
	return x, y, depth, true
}

// PixelsPerUnit is the on-screen size of one world unit at depth.
func (c Camera) PixelsPerUnit(depth float64, height int) float64 {
	return float64(height) / (2 * depth * c.TanHalfFOV)
}
