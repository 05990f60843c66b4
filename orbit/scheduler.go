package orbit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Scheduler blocks until the next display refresh.
type Scheduler interface {
	Next(ctx context.Context) error
}

// RateScheduler paces ticks with a token bucket. Late ticks are not
// replayed: a slow frame just delays the next one.
type RateScheduler struct {
	limiter *rate.Limiter
}

func NewRateScheduler(hz float64) (*RateScheduler, error) {
	if hz <= 0 || !finite(hz) {
		return nil, fmt.Errorf("invalid refresh rate: %v", hz)
	}
	return &RateScheduler{limiter: rate.NewLimiter(rate.Limit(hz), 1)}, nil
}

func (s *RateScheduler) Next(ctx context.Context) error {
	return s.limiter.Wait(ctx)
}

// TickerScheduler follows a time.Ticker; missed ticks are dropped.
type TickerScheduler struct {
	t *time.Ticker
}

func NewTickerScheduler(d time.Duration) (*TickerScheduler, error) {
	if d <= 0 {
		return nil, fmt.Errorf("invalid tick period: %v", d)
	}
	return &TickerScheduler{t: time.NewTicker(d)}, nil
}

func (s *TickerScheduler) Next(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.t.C:
		return nil
	}
}

func (s *TickerScheduler) Stop() {
	s.t.Stop()
}

// ImmediateScheduler never waits; used for offline rendering.
type ImmediateScheduler struct{}

func (ImmediateScheduler) Next(ctx context.Context) error {
	return ctx.Err()
}
