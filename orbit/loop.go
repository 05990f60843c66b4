package orbit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/echoflaresat/orrery/vectors"
)

// Target is a scene object the loop positions. The loop does not own it.
type Target interface {
	SetPosition(p vectors.Vec3)
	SetRotationY(r float64)
}

// Presenter draws the scene once its transforms have been written.
type Presenter interface {
	Present(ctx context.Context, f Frame) error
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(ctx context.Context, f Frame) error

func (p PresenterFunc) Present(ctx context.Context, f Frame) error { return p(ctx, f) }

var (
	ErrMissingBody = errors.New("missing body")
	ErrDivergence  = errors.New("non-finite body position")
	ErrStopped     = errors.New("orbit loop stopped")
)

// Loop owns the animation state and applies it to the scene every tick.
// All methods are safe for concurrent use and ticks never overlap. A Presenter
// may call the pause and stop controls but not State, Frame or Restore.
type Loop struct {
	cfg       Config
	targets   [NumBodies]Target
	presenter Presenter
	logger    *slog.Logger

	mu    sync.Mutex
	state State
	frame Frame

	paused  atomic.Bool
	stopped atomic.Bool
}

// Option customises a Loop.
type Option func(*Loop)

// WithState starts the loop from s instead of the zero state.
func WithState(s State) Option {
	return func(l *Loop) { l.state = s }
}

// WithLogger replaces slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) { l.logger = logger }
}

// NewLoop checks that every body has a target before anything moves.
// presenter may be nil when nothing needs to be drawn.
func NewLoop(cfg Config, targets map[Body]Target, presenter Presenter, opts ...Option) (*Loop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l := &Loop{
		cfg:       cfg,
		presenter: presenter,
		logger:    slog.Default(),
	}
	for _, b := range Bodies() {
		t, ok := targets[b]
		if !ok || t == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingBody, b)
		}
		l.targets[b] = t
	}
	for _, opt := range opts {
		opt(l)
	}
	l.state = cfg.Wrap(l.state)
	l.frame = cfg.Positions(l.state)
	return l, nil
}

// AdvanceFrame steps the simulation (unless paused), writes every transform
// and presents the result.
func (l *Loop) AdvanceFrame(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopped.Load() {
		return ErrStopped
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	next := l.state
	if !l.paused.Load() {
		next = l.cfg.Step(l.state)
	}
	frame := l.cfg.Positions(next)
	for _, b := range Bodies() {
		tr := frame.Bodies[b]
		if !tr.Position.IsFinite() || !finite(tr.RotationY) {
			return fmt.Errorf("%w: %s at frame %d: %+v", ErrDivergence, b, next.Frame, tr.Position)
		}
	}

	l.state = next
	l.apply(frame)

	if l.presenter == nil {
		return nil
	}
	return l.presenter.Present(ctx, frame)
}

// apply writes f onto the targets. Callers hold mu.
func (l *Loop) apply(f Frame) {
	l.frame = f
	for _, b := range Bodies() {
		l.targets[b].SetPosition(f.Bodies[b].Position)
	}
	l.targets[Earth].SetRotationY(f.Bodies[Earth].RotationY)
	l.targets[Saturn].SetRotationY(f.Bodies[Saturn].RotationY)
}

// Run calls AdvanceFrame every time sched reports a display refresh, until
// Stop is called, ctx ends or a tick fails. Stop is not reported as an error.
func (l *Loop) Run(ctx context.Context, sched Scheduler) error {
	l.logger.Info("orbit loop started", "frame", l.State().Frame)
	defer func() { l.logger.Info("orbit loop finished", "frame", l.State().Frame) }()

	for {
		if err := sched.Next(ctx); err != nil {
			return err
		}
		if err := l.AdvanceFrame(ctx); err != nil {
			if errors.Is(err, ErrStopped) {
				return nil
			}
			return err
		}
	}
}

// Pause freezes the accumulators; frames keep being presented.
func (l *Loop) Pause() { l.paused.Store(true) }

// Resume lets the accumulators advance again.
func (l *Loop) Resume() { l.paused.Store(false) }

// TogglePause flips the pause flag and returns the new value.
func (l *Loop) TogglePause() bool {
	for {
		old := l.paused.Load()
		if l.paused.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Paused reports whether the accumulators are frozen.
func (l *Loop) Paused() bool { return l.paused.Load() }

// Stop ends the loop; it cannot be restarted.
func (l *Loop) Stop() { l.stopped.Store(true) }

// Stopped reports whether Stop has been called.
func (l *Loop) Stopped() bool { return l.stopped.Load() }

// State returns a copy of the current accumulators.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Frame returns the transforms last written to the scene.
func (l *Loop) Frame() Frame {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frame
}

// Restore jumps to s and writes its transforms onto the targets right away.
// Nothing is presented; the next AdvanceFrame steps on from s.
func (l *Loop) Restore(s State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = l.cfg.Wrap(s)
	l.apply(l.cfg.Positions(l.state))
}

// Config returns the table the loop was built with.
func (l *Loop) Config() Config {
	return l.cfg
}
