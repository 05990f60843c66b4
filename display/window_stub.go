//go:build !cgo

package display

import (
	"context"

	"github.com/echoflaresat/orrery/orbit"
)

func (w *Window) Run(_ context.Context, _ *orbit.Loop, _ int) error {
	return ErrNoWindow
}
