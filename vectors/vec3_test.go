package vectors

import (
	"math"
	"testing"
)

func TestRotations(t *testing.T) {
	cases := []struct {
		name string
		got  Vec3
		want Vec3
	}{
		{"y quarter turn", Vec3{1, 0, 0}.RotateY(math.Pi / 2), Vec3{0, 0, -1}},
		{"y keeps axis", Vec3{0, 2, 0}.RotateY(1.234), Vec3{0, 2, 0}},
		{"x quarter turn", Vec3{0, 1, 0}.RotateX(math.Pi / 2), Vec3{0, 0, 1}},
		{"x half turn", Vec3{0, 0, 1}.RotateX(math.Pi), Vec3{0, 0, -1}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if !c.got.ApproxEqual(c.want, 1e-12) {
				t.Fatalf("got %+v, want %+v", c.got, c.want)
			}
		})
	}
}

func TestIsFinite(t *testing.T) {
	if !(Vec3{1, 2, 3}).IsFinite() {
		t.Fatal("finite vector reported as non-finite")
	}
	if (Vec3{math.NaN(), 0, 0}).IsFinite() {
		t.Fatal("NaN not detected")
	}
	if (Vec3{0, 0, math.Inf(-1)}).IsFinite() {
		t.Fatal("-Inf not detected")
	}
}

func TestNormalizeZero(t *testing.T) {
	if got := Zero().Normalize(); got != (Vec3{}) {
		t.Fatalf("Normalize(0) = %+v", got)
	}
	if got := (Vec3{3, 0, 4}).Norm(); got != 5 {
		t.Fatalf("Norm = %v, want 5", got)
	}
}
