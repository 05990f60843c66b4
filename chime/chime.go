// Package chime plays a short tone whenever the Moon crosses the node line.
package chime

import (
	"context"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/echoflaresat/orrery/orbit"
)

const sampleRate = beep.SampleRate(44100)

// Crossing reports whether the Moon passed through a node between two
// values of its angle, i.e. whether sin changed sign. Landing exactly on
// the node counts once, leaving it does not count again.
func Crossing(prev, next float64) bool {
	return signChange(math.Sin(prev), math.Sin(next))
}

func signChange(a, b float64) bool {
	return (a > 0 && b <= 0) || (a < 0 && b >= 0)
}

// Player makes the sound.
type Player interface {
	Play()
}

// Speaker plays a sine tone through the default audio device.
type Speaker struct {
	Freq     float64
	Duration time.Duration
}

// NewSpeaker opens the audio device. Callers usually carry on without sound
// when it fails.
func NewSpeaker(freq float64, d time.Duration) (*Speaker, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, err
	}
	return &Speaker{Freq: freq, Duration: d}, nil
}

func (s *Speaker) Play() {
	sine, err := generators.SineTone(sampleRate, s.Freq)
	if err != nil {
		slog.Warn("chime tone", "freq", s.Freq, "error", err)
		return
	}
	speaker.Play(beep.Take(sampleRate.N(s.Duration), sine))
}

func (s *Speaker) Close() {
	speaker.Close()
}

// Presenter forwards frames to Next and plays P on every node crossing.
type Presenter struct {
	Next orbit.Presenter
	P    Player

	count   atomic.Uint64
	started bool
	prevZ   float64
}

// Wrap decorates next. A nil player leaves next as it is.
func Wrap(next orbit.Presenter, p Player) orbit.Presenter {
	if p == nil {
		return next
	}
	return &Presenter{Next: next, P: p}
}

// Crossings is the number of chimes so far.
func (c *Presenter) Crossings() uint64 { return c.count.Load() }

func (c *Presenter) Present(ctx context.Context, f orbit.Frame) error {
	// the Moon's Z is its orbit radius times sin(MoonAngle)
	z := f.Of(orbit.Moon).Position.Z
	if c.started && signChange(c.prevZ, z) {
		c.count.Add(1)
		slog.Debug("node crossing", "frame", f.Index)
		c.P.Play()
	}
	c.started, c.prevZ = true, z

	if c.Next == nil {
		return nil
	}
	return c.Next.Present(ctx, f)
}
