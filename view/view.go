// Package view renders scenes. [Window] raymarches on the GPU through
// OpenGL and [CPURenderer] produces images without a display.
package view

import (
	"log/slog"
	"time"

	"github.com/chewxy/math32"
	"github.com/soypat/orbitext/orbit"
	"github.com/soypat/orbitext/scene"
)

// Two left clicks closer than this are a double click.
const doubleClickInterval = 400 * time.Millisecond

// WindowConfig configures [OpenWindow].
type WindowConfig struct {
	Width, Height int
	Title         string
	Logger        *slog.Logger
}

func (cfg *WindowConfig) defaults() {
	if cfg.Width <= 0 {
		cfg.Width = 1280
	}
	if cfg.Height <= 0 {
		cfg.Height = 720
	}
	if cfg.Title == "" {
		cfg.Title = "orbitext"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
}

// Handlers receive window events. Nil fields ignore the event.
type Handlers struct {
	// Resize receives the new framebuffer size.
	Resize      func(width, height int)
	DoubleClick func() error
	Controls    *orbit.Controls
}

func tanHalfFOV(cam *scene.Camera) float32 {
	return math32.Tan(cam.FOV * math32.Pi / 360)
}
