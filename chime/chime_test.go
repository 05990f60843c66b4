package chime

import (
	"context"
	"math"
	"testing"

	"github.com/echoflaresat/orrery/orbit"
)

func TestCrossing(t *testing.T) {
	cases := []struct {
		name       string
		prev, next float64
		want       bool
	}{
		{"before ascending node", -0.01, 0.01, true},
		{"past descending node", math.Pi - 0.01, math.Pi + 0.01, true},
		{"moving backwards through zero", 0.01, -0.01, true},
		{"same side", 0.5, 0.6, false},
		{"leaving the node", 0, -0.022, false},
		{"landing on the node", 0.01, 0, true},
		{"wrapped", 2*math.Pi - 0.01, 2*math.Pi + 0.01, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Crossing(c.prev, c.next); got != c.want {
				t.Fatalf("Crossing(%v, %v) = %v, want %v", c.prev, c.next, got, c.want)
			}
		})
	}
}

type countingPlayer struct{ n int }

func (p *countingPlayer) Play() { p.n++ }

func TestPresenterChimesTwicePerOrbit(t *testing.T) {
	cfg := orbit.DefaultConfig()
	p := &countingPlayer{}
	var forwarded int
	next := orbit.PresenterFunc(func(context.Context, orbit.Frame) error {
		forwarded++
		return nil
	})
	c := Wrap(next, p).(*Presenter)

	// one lunar orbit at the Moon's net rate, from just past a node
	frames := int(math.Ceil(2*math.Pi/math.Abs(cfg.MoonStep))) + 1
	var s orbit.State
	s.MoonAngle = -0.5
	for i := 0; i < frames; i++ {
		s = cfg.Step(s)
		if err := c.Present(context.Background(), cfg.Positions(s)); err != nil {
			t.Fatal(err)
		}
	}

	if p.n != 2 || c.Crossings() != 2 {
		t.Fatalf("played %d times, counted %d, want 2", p.n, c.Crossings())
	}
	if forwarded != frames {
		t.Fatalf("forwarded %d of %d frames", forwarded, frames)
	}
}

func TestWrapWithoutPlayer(t *testing.T) {
	next := orbit.PresenterFunc(func(context.Context, orbit.Frame) error { return nil })
	if _, ok := Wrap(next, nil).(*Presenter); ok {
		t.Fatal("nil player should not wrap")
	}
}
