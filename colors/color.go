package colors

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Color4 is a linear RGBA color with float64 components in [0,1].
type Color4 struct {
	R, G, B, A float64
}

func New(r, g, b, a float64) Color4 {
	return Color4{R: r, G: g, B: b, A: a}
}

// FromHex parses "#rrggbb" (or "#rgb") into an opaque color.
func FromHex(s string) (Color4, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color4{}, fmt.Errorf("color %q: %w", s, err)
	}
	return Color4{R: c.R, G: c.G, B: c.B, A: 1}, nil
}

// FromRGB24 converts a packed 0xRRGGBB value into an opaque color.
func FromRGB24(v uint32) Color4 {
	return From8BitRgb(byte(v>>16), byte(v>>8), byte(v), 255)
}

// Hex formats the RGB part as "#rrggbb".
func (c Color4) Hex() string {
	cc := c.Clamp01()
	return colorful.Color{R: cc.R, G: cc.G, B: cc.B}.Hex()
}

// BlendLab interpolates through CIE L*a*b*, which keeps tints from going muddy.
func (c Color4) BlendLab(o Color4, t float64) Color4 {
	a := colorful.Color{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B)}
	b := colorful.Color{R: clamp01(o.R), G: clamp01(o.G), B: clamp01(o.B)}
	m := a.BlendLab(b, t).Clamped()
	return Color4{R: m.R, G: m.G, B: m.B, A: lerp(c.A, o.A, t)}
}

func (c Color4) RGBA() (r, g, b, a uint32) {
	rf := clamp01(c.R)
	gf := clamp01(c.G)
	bf := clamp01(c.B)
	af := clamp01(c.A)

	// Convert to pre-multiplied 16-bit values
	return uint32(rf * af * 65535),
		uint32(gf * af * 65535),
		uint32(bf * af * 65535),
		uint32(af * 65535)
}

func FromStandardColor(c color.Color) Color4 {
	// Fast path: already a Color4
	if c4, ok := c.(Color4); ok {
		return c4
	}

	r16, g16, b16, a16 := c.RGBA()
	if a16 == 0 {
		return Color4{R: 0, G: 0, B: 0, A: 0}
	}

	// De-premultiply and normalize to [0,1]
	invA := float64(0xFFFF) / float64(a16)
	return Color4{
		R: float64(r16) * invA / 65535.0,
		G: float64(g16) * invA / 65535.0,
		B: float64(b16) * invA / 65535.0,
		A: float64(a16) / 65535.0,
	}
}

func From8BitRgb(r, g, b, a byte) Color4 {
	return Color4{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
		A: float64(a) / 255.0,
	}
}

func White() Color4 {
	return Color4{R: 1, G: 1, B: 1, A: 1}
}

func Black() Color4 {
	return Color4{R: 0, G: 0, B: 0, A: 1}
}

// Add returns c + o (component-wise).
func (c Color4) Add(o Color4) Color4 {
	return Color4{c.R + o.R, c.G + o.G, c.B + o.B, c.A + o.A}
}

// Mul returns c * o (component-wise).
func (c Color4) Mul(o Color4) Color4 {
	return Color4{c.R * o.R, c.G * o.G, c.B * o.B, c.A * o.A}
}

// Scale returns c * s (scalar).
func (c Color4) Scale(s float64) Color4 {
	return Color4{c.R * s, c.G * s, c.B * s, c.A * s}
}

// ScaleRGB scales the color channels and leaves alpha alone.
func (c Color4) ScaleRGB(s float64) Color4 {
	return Color4{c.R * s, c.G * s, c.B * s, c.A}
}

func (c Color4) BoostSaturation(factor float64) Color4 {
	avg := (c.R + c.G + c.B) / 3
	return Color4{
		R: avg + (c.R-avg)*factor,
		G: avg + (c.G-avg)*factor,
		B: avg + (c.B-avg)*factor,
		A: c.A,
	}
}

func (c Color4) CompositeOverBlack() Color4 {
	return Color4{c.R * c.A, c.G * c.A, c.B * c.A, 1.0}
}

func (c Color4) WithAlpha(a float64) Color4 {
	return Color4{
		R: c.R,
		G: c.G,
		B: c.B,
		A: a,
	}
}

// Mix returns lerp(c, o, t) = c*(1-t) + o*t.
func (c Color4) Mix(o Color4, t float64) Color4 {
	return Color4{
		R: c.R*(1-t) + o.R*t,
		G: c.G*(1-t) + o.G*t,
		B: c.B*(1-t) + o.B*t,
		A: c.A*(1-t) + o.A*t,
	}
}

// MixAlpha returns the mix of c and o with weight t,
// taking o.A (alpha) into account. If o is fully transparent,
// the result is just c. If o is fully opaque, it's a normal
// linear interpolation between c and o.
func (c Color4) MixAlpha(o Color4, t float64) Color4 {
	w := t * o.A // effective weight of o
	return Color4{
		R: c.R*(1-w) + o.R*w,
		G: c.G*(1-w) + o.G*w,
		B: c.B*(1-w) + o.B*w,
		A: c.A*(1-w) + o.A*w,
	}
}

// Clamp01 clamps each component into [0,1].
func (c Color4) Clamp01() Color4 {
	return Color4{
		R: clamp01(c.R),
		G: clamp01(c.G),
		B: clamp01(c.B),
		A: clamp01(c.A),
	}
}

// ToNRGBA returns the color as 8-bit NRGBA.
func (c Color4) ToNRGBA() color.NRGBA {
	return color.NRGBA{
		to8bit(c.R),
		to8bit(c.G),
		to8bit(c.B),
		to8bit(c.A),
	}
}

// --- helpers ---

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func to8bit(x float64) uint8 {
	return uint8(255.0*clamp01(x) + 0.5)
}

func lerp(a, b, t float64) float64 { return a*(1-t) + b*t }
