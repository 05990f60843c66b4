package scene

import (
	"context"
	"testing"

	"github.com/echoflaresat/orrery/orbit"
	"github.com/echoflaresat/orrery/vectors"
)

func TestNewBuildsEveryBody(t *testing.T) {
	s, err := New(DefaultOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	objs := s.Objects()
	if len(objs) != orbit.NumBodies {
		t.Fatalf("got %d objects", len(objs))
	}
	for i, o := range objs {
		if o.Body != orbit.Body(i) || o.Name != orbit.Body(i).String() {
			t.Fatalf("object %d is %s/%q", i, o.Body, o.Name)
		}
		if o.Size <= 0 {
			t.Fatalf("%s has size %v", o.Name, o.Size)
		}
	}
	if got := s.Object(orbit.Sun).Color.Hex(); got != "#ffa500" {
		t.Fatalf("sun colour = %s", got)
	}
	if s.Object(orbit.Saturn).Ring == nil {
		t.Fatal("saturn has no ring")
	}
	if s.Object(orbit.Jupiter).Ring != nil {
		t.Fatal("jupiter should not have a ring")
	}
	if s.LabelsVisible() {
		t.Fatal("labels should start hidden")
	}
}

func TestStarsAreSeeded(t *testing.T) {
	opts := DefaultOptions()
	a, _ := New(opts)
	b, _ := New(opts)
	if len(a.Stars) != 800 {
		t.Fatalf("got %d stars", len(a.Stars))
	}
	for i := range a.Stars {
		if a.Stars[i] != b.Stars[i] {
			t.Fatalf("star %d differs between identical seeds", i)
		}
		p := a.Stars[i].Position
		if p.X < -1000 || p.X > 1000 || p.Y < -1000 || p.Y > 1000 || p.Z < -1000 || p.Z > 1000 {
			t.Fatalf("star %d outside the cube: %+v", i, p)
		}
	}

	opts.StarCount = 0
	c, _ := New(opts)
	if len(c.Stars) != 0 {
		t.Fatal("StarCount 0 should give no stars")
	}
}

func TestToggleLabels(t *testing.T) {
	s, _ := New(DefaultOptions())
	if !s.ToggleLabels() || !s.LabelsVisible() {
		t.Fatal("toggle did not show labels")
	}
	if s.ToggleLabels() {
		t.Fatal("second toggle did not hide labels")
	}
	s.SetLabelsVisible(true)
	if !s.LabelsVisible() {
		t.Fatal("SetLabelsVisible(true) ignored")
	}
}

func TestDrivenByLoop(t *testing.T) {
	s, _ := New(DefaultOptions())
	cfg := orbit.DefaultConfig()
	loop, err := orbit.NewLoop(cfg, s.Targets(), nil)
	if err != nil {
		t.Fatalf("NewLoop: %v", err)
	}
	for i := 0; i < 7; i++ {
		if err := loop.AdvanceFrame(context.Background()); err != nil {
			t.Fatalf("AdvanceFrame: %v", err)
		}
	}
	_, want := orbit.Simulate(cfg, 7)
	for _, b := range orbit.Bodies() {
		if s.Object(b).Position != want.Of(b).Position {
			t.Fatalf("%s at %+v, want %+v", b, s.Object(b).Position, want.Of(b).Position)
		}
	}
	if s.Object(orbit.Earth).RotationY != want.Of(orbit.Earth).RotationY {
		t.Fatal("earth spin not applied")
	}
}

func TestToLocal(t *testing.T) {
	o := &Object{Position: vectors.Vec3{X: 2}, RotationY: 0}
	if got := o.ToLocal(vectors.Vec3{X: 3}); !got.ApproxEqual(vectors.Vec3{X: 1}, 1e-12) {
		t.Fatalf("ToLocal = %+v", got)
	}
}
