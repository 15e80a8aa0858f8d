//go:build tinygo || !cgo

package view

import (
	"context"
	"errors"

	"github.com/soypat/orbitext/scene"
)

var errNoCGo = errors.New("window rendering requires cgo")

// Window is unavailable without cgo. Use [CPURenderer] instead.
type Window struct{}

// OpenWindow always fails without cgo.
func OpenWindow(cfg WindowConfig) (*Window, error) { return nil, errNoCGo }

func (w *Window) SetHandlers(h Handlers)                         {}
func (w *Window) Size() (width, height int)                      { return 0, 0 }
func (w *Window) Resize(width, height int)                       {}
func (w *Window) Fullscreen() bool                               { return false }
func (w *Window) FullscreenSupported() bool                      { return false }
func (w *Window) SetFullscreen(on bool) error                    { return errNoCGo }
func (w *Window) NextFrame(ctx context.Context) error            { return errNoCGo }
func (w *Window) Render(s *scene.Scene, cam *scene.Camera) error { return errNoCGo }
func (w *Window) Close()                                         {}
