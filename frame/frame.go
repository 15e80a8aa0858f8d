// Package frame drives the per-frame update of a scene: satellite group
// rotation, per-object updates and rendering, once per display refresh.
package frame

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/soypat/orbitext/scene"
)

// ErrClosed is returned by a [Scheduler] when the display has been closed.
// [Driver.Run] treats it as a normal exit.
var ErrClosed = errors.New("display closed")

// Renderer draws the scene as seen through the camera.
type Renderer interface {
	Render(s *scene.Scene, cam *scene.Camera) error
}

// Scheduler blocks until the next frame should be produced.
type Scheduler interface {
	NextFrame(ctx context.Context) error
}

// Poller is called at the start of every frame to process pending events
// such as completed asset loads.
type Poller interface {
	Poll()
}

// Controls updates the camera from user input. Called once per frame after pollers.
type Controls interface {
	Update()
}

// Driver advances and renders a scene once per frame. Angular increments
// are fixed per frame so animation speed follows the display refresh rate.
// All scene mutation happens on the goroutine calling Run or Tick.
type Driver struct {
	Scene  *scene.Scene
	Camera *scene.Camera
	// Group is rotated by Step radians on every axis each frame. May be nil.
	Group     *scene.Group
	Step      float32
	Renderer  Renderer
	Scheduler Scheduler
	Pollers   []Poller
	Controls  Controls
	Logger    *slog.Logger

	frames uint64
}

// Tick performs one frame: pollers and controls, group rotation, updates of
// top-level [scene.Updatable] objects and finally rendering.
func (d *Driver) Tick() error {
	if d.Scene == nil {
		return errors.New("nil scene")
	}
	for _, p := range d.Pollers {
		p.Poll()
	}
	if d.Controls != nil {
		d.Controls.Update()
	}
	if d.Group != nil {
		d.Group.Rotation.Add(d.Step, d.Step, d.Step)
	}
	for _, obj := range d.Scene.Children() {
		if u, ok := obj.(scene.Updatable); ok {
			u.Advance()
		}
	}
	if d.Renderer != nil {
		err := d.Renderer.Render(d.Scene, d.Camera)
		if err != nil {
			return fmt.Errorf("frame %d: %w", d.frames, err)
		}
	}
	d.frames++
	return nil
}

// Run ticks once per scheduled frame until ctx is cancelled, the scheduler
// reports [ErrClosed] or a frame fails. ErrClosed results in a nil error.
func (d *Driver) Run(ctx context.Context) error {
	if d.Scheduler == nil {
		return errors.New("nil scheduler")
	}
	start := time.Now()
	startFrames := d.frames
	defer func() {
		if d.Logger != nil {
			elapsed := time.Since(start)
			n := d.frames - startFrames
			d.Logger.Debug("frame loop done", slog.Uint64("frames", n), slog.Duration("elapsed", elapsed))
		}
	}()
	for {
		err := d.Scheduler.NextFrame(ctx)
		if errors.Is(err, ErrClosed) {
			return nil
		} else if err != nil {
			return err
		}
		err = d.Tick()
		if err != nil {
			return err
		}
	}
}

// Frames returns the number of completed frames.
func (d *Driver) Frames() uint64 { return d.frames }

// Ticker schedules frames at a fixed rate without a display.
type Ticker struct {
	// Hz is the frame rate. Zero means 60. Negative values do not wait at all.
	Hz int
	// Frames limits the number of frames. After Frames frames NextFrame returns ErrClosed. Zero is unlimited.
	Frames uint64

	n uint64
	t *time.Ticker
}

// NextFrame implements [Scheduler].
func (t *Ticker) NextFrame(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.Frames > 0 && t.n >= t.Frames {
		t.Stop()
		return ErrClosed
	}
	if t.Hz >= 0 {
		if t.t == nil {
			hz := t.Hz
			if hz == 0 {
				hz = 60
			}
			t.t = time.NewTicker(time.Second / time.Duration(hz))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.t.C:
		}
	}
	t.n++
	return nil
}

// Stop releases the underlying timer. The Ticker may be reused afterwards.
func (t *Ticker) Stop() {
	if t.t != nil {
		t.t.Stop()
		t.t = nil
	}
}
