package assemble

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"

	"github.com/soypat/orbitext"
	"github.com/soypat/orbitext/asset"
	"github.com/soypat/orbitext/forge/textsdf"
	"github.com/soypat/orbitext/scene"
)

// ErrNoFullscreen is returned by [App.HandleDoubleClick] when no fullscreen method is supported.
var ErrNoFullscreen = errors.New("fullscreen not supported")

// Fullscreener is one way of switching to and from fullscreen presentation.
type Fullscreener interface {
	// FullscreenSupported reports whether SetFullscreen can work on this platform.
	FullscreenSupported() bool
	SetFullscreen(on bool) error
}

// Display is the drawable surface the scene is presented on.
type Display interface {
	Fullscreener
	Size() (width, height int)
	// Resize resizes the output surface to width x height pixels.
	Resize(width, height int)
	Fullscreen() bool
}

// Status reports the state of the asynchronously loaded assets.
type Status struct {
	Font          asset.Status
	FontErr       error
	Background    asset.Status
	BackgroundErr error
}

// App is an assembled scene together with its event handlers.
// All methods must be called from the goroutine running the frame loop.
type App struct {
	Scene    *scene.Scene
	Group    *scene.Group
	Camera   *scene.Camera
	Lights   [3]*scene.PointLight
	Material *scene.Material
	// Text is nil until the font loads and the text mesh is attached.
	Text *TextMesh

	cfg           Config
	display       Display
	fullscreeners []Fullscreener
	bld           orbitext.Builder
	font          *asset.Future[*textsdf.Font]
	cubemap       *asset.Future[*scene.Cubemap]
	status        Status
	log           *slog.Logger
}

// Assemble builds the complete scene before the first frame: camera, lights,
// material and satellite group. Font and cubemap loads start in the background
// and are attached by [App.Poll]. fallbacks are tried after display when
// toggling fullscreen.
func Assemble(ctx context.Context, cfg Config, display Display, fallbacks ...Fullscreener) (*App, error) {
	if display == nil {
		return nil, errors.New("nil display")
	}
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	mat, err := NewMaterial(cfg.Material)
	if err != nil {
		return nil, err
	}
	w, h := display.Size()
	app := &App{
		Scene:         scene.New(),
		Group:         scene.NewGroup("satellites"),
		Camera:        NewCamera(w, h),
		Lights:        NewPointLights(),
		Material:      mat,
		cfg:           cfg,
		display:       display,
		fullscreeners: append([]Fullscreener{display}, fallbacks...),
		log:           cfg.logger(),
	}
	app.bld.NoDimensionPanic = true
	rng := rand.New(rand.NewSource(cfg.Seed))
	for _, batch := range cfg.Batches {
		meshes, err := FactoryGeometries(&app.bld, batch.Kind, batch.Quantity, batch.Range, mat, rng)
		if err != nil {
			return nil, err
		}
		app.Group.Add(meshes...)
	}
	for _, l := range app.Lights {
		app.Scene.Add(l)
	}
	app.Scene.Add(app.Group)

	if cfg.Message != "" {
		app.status.Font = asset.Pending
		app.font = asset.Go(ctx, func(ctx context.Context) (*textsdf.Font, error) {
			return asset.LoadFont(ctx, cfg.FontPath, textsdf.FontConfig{})
		})
	}
	if cfg.CubemapDir != "" {
		app.status.Background = asset.Pending
		app.cubemap = asset.Go(ctx, func(ctx context.Context) (*scene.Cubemap, error) {
			return asset.LoadCubemap(ctx, cfg.CubemapDir, cfg.CubemapFiles)
		})
	}
	app.log.Debug("scene assembled", slog.Int("satellites", app.Group.Len()), slog.Int("width", w), slog.Int("height", h))
	return app, nil
}

// Poll attaches assets whose loads have completed. A failed load is logged once
// and recorded in [App.Status]; the scene keeps running without the asset.
func (a *App) Poll() {
	if a.font != nil {
		font, st, err := a.font.Poll()
		switch st {
		case asset.Loaded:
			a.font = nil
			a.attachText(font)
		case asset.Failed:
			a.font = nil
			a.status.Font, a.status.FontErr = asset.Failed, err
			a.log.Warn("text disabled", slog.String("err", err.Error()))
		}
	}
	if a.cubemap != nil {
		cm, st, err := a.cubemap.Poll()
		switch st {
		case asset.Loaded:
			a.cubemap = nil
			a.Scene.Background = cm
			a.status.Background = asset.Loaded
			a.log.Debug("background attached", slog.Int("size", cm.Size()))
		case asset.Failed:
			a.cubemap = nil
			a.status.Background, a.status.BackgroundErr = asset.Failed, err
			a.log.Warn("background disabled", slog.String("err", err.Error()))
		}
	}
}

func (a *App) attachText(font *textsdf.Font) {
	text, err := BuildText(&a.bld, font, a.cfg.Message, a.Material, a.cfg.Text)
	if err != nil {
		a.bld.ClearErrors()
		a.status.Font = asset.Failed
		a.status.FontErr = &asset.LoadFailure{Asset: "font", Path: a.cfg.FontPath, Err: err}
		a.log.Warn("text disabled", slog.String("err", a.status.FontErr.Error()))
		return
	}
	a.Text = text
	a.Scene.Add(text)
	a.status.Font = asset.Loaded
	a.log.Debug("text attached", slog.Int("lines", countLines(a.cfg.Message)))
}

// Wait blocks until pending asset loads complete or ctx is done, then attaches them.
func (a *App) Wait(ctx context.Context) error {
	if a.font != nil {
		a.font.Wait(ctx)
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	if a.cubemap != nil {
		a.cubemap.Wait(ctx)
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	a.Poll()
	return nil
}

// Status returns the state of the asynchronously loaded assets.
func (a *App) Status() Status { return a.status }

// HandleResize updates the camera aspect ratio to width/height and resizes the display.
// Non-positive dimensions, such as those of a minimized window, are ignored.
func (a *App) HandleResize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	err := a.Camera.SetAspect(width, height)
	if err != nil {
		a.log.Error("resize", slog.String("err", err.Error()))
		return
	}
	a.display.Resize(width, height)
}

// HandleDoubleClick toggles fullscreen using the first supported method.
func (a *App) HandleDoubleClick() error {
	want := !a.display.Fullscreen()
	for _, f := range a.fullscreeners {
		if f.FullscreenSupported() {
			return f.SetFullscreen(want)
		}
	}
	return ErrNoFullscreen
}

func countLines(s string) int {
	n := 1
	for _, c := range s {
		if c == '\n' {
			n++
		}
	}
	return n
}
