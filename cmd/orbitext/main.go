// Command orbitext shows extruded text surrounded by orbiting satellites.
//
// With -headless no window is opened: the scene is animated for a number of
// frames and optionally rendered to a PNG snapshot on the CPU.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"

	"github.com/soypat/orbitext/assemble"
	"github.com/soypat/orbitext/frame"
	"github.com/soypat/orbitext/orbit"
	"github.com/soypat/orbitext/view"
)

func init() {
	// GLFW and OpenGL calls must come from the main thread.
	runtime.LockOSThread()
}

type flags struct {
	config   string
	headless bool
	hz       int
	frames   uint64
	snapshot string
	stl      string
	stlRes   float64
	outline  string
	verbose  bool

	message, font, cubemap, material string
	seed                             int64
	width, height                    int
}

func main() {
	var f flags
	flag.StringVar(&f.config, "config", "", "TOML configuration file. Flags override its values")
	flag.StringVar(&f.message, "message", "", "text to display, lines separated by \\n")
	flag.StringVar(&f.font, "font", "", "TTF font file. Empty uses the embedded Go font")
	flag.StringVar(&f.cubemap, "cubemap", "", "directory holding the six background cubemap faces")
	flag.StringVar(&f.material, "material", "", "surface material: normal or lambert")
	flag.Int64Var(&f.seed, "seed", 0, "satellite placement seed")
	flag.IntVar(&f.width, "width", 0, "initial width in pixels")
	flag.IntVar(&f.height, "height", 0, "initial height in pixels")
	flag.BoolVar(&f.headless, "headless", false, "run without a window")
	flag.IntVar(&f.hz, "hz", 60, "headless frame rate. Negative runs frames back to back")
	flag.Uint64Var(&f.frames, "frames", 0, "stop after this many frames. Zero runs until interrupted")
	flag.StringVar(&f.snapshot, "snapshot", "", "headless: write the final frame to this PNG file")
	flag.StringVar(&f.stl, "stl", "", "write the text mesh to this binary STL file and exit")
	flag.Float64Var(&f.stlRes, "stlres", 0.02, "STL meshing resolution in scene units")
	flag.StringVar(&f.outline, "outline", "", "write the flat text outline to this PNG file and exit")
	flag.BoolVar(&f.verbose, "v", false, "verbose logging")
	flag.Parse()

	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err := run(ctx, f, log)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("orbitext", slog.String("err", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, f flags, log *slog.Logger) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	cfg.Logger = log
	if f.stl != "" || f.outline != "" {
		return export(ctx, cfg, f)
	}
	if f.headless {
		return runHeadless(ctx, cfg, f)
	}
	return runWindow(ctx, cfg, f)
}

func loadConfig(f flags) (assemble.Config, error) {
	cfg := assemble.DefaultConfig()
	if f.config != "" {
		fp, err := os.Open(f.config)
		if err != nil {
			return cfg, err
		}
		cfg, err = assemble.LoadConfig(fp)
		fp.Close()
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", f.config, err)
		}
	}
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "message":
			cfg.Message = f.message
		case "font":
			cfg.FontPath = f.font
		case "cubemap":
			cfg.CubemapDir = f.cubemap
		case "material":
			cfg.Material = f.material
		case "seed":
			cfg.Seed = f.seed
		case "width":
			cfg.Width = f.width
		case "height":
			cfg.Height = f.height
		}
	})
	return cfg, cfg.Validate()
}

func runWindow(ctx context.Context, cfg assemble.Config, f flags) error {
	win, err := view.OpenWindow(view.WindowConfig{
		Width:  cfg.Width,
		Height: cfg.Height,
		Logger: cfg.Logger,
	})
	if err != nil {
		return err
	}
	defer win.Close()
	app, err := assemble.Assemble(ctx, cfg, win)
	if err != nil {
		return err
	}
	ocfg := orbit.DefaultConfig()
	ocfg.EnableZoom = cfg.Zoom
	ocfg.Damping = cfg.Damping
	ocfg.AutoRotate = cfg.AutoRotate
	controls, err := orbit.New(app.Camera, ocfg)
	if err != nil {
		return err
	}
	win.SetHandlers(view.Handlers{
		Resize:      app.HandleResize,
		DoubleClick: app.HandleDoubleClick,
		Controls:    controls,
	})
	driver := frame.Driver{
		Scene:     app.Scene,
		Camera:    app.Camera,
		Group:     app.Group,
		Step:      assemble.GroupSpin * assemble.UnitVelocity,
		Renderer:  win,
		Scheduler: limitFrames(win, f.frames),
		Pollers:   []frame.Poller{app},
		Controls:  controls,
		Logger:    cfg.Logger,
	}
	return driver.Run(ctx)
}

func runHeadless(ctx context.Context, cfg assemble.Config, f flags) error {
	display := &headlessDisplay{w: cfg.Width, h: cfg.Height}
	app, err := assemble.Assemble(ctx, cfg, display)
	if err != nil {
		return err
	}
	ticker := &frame.Ticker{Hz: f.hz, Frames: f.frames}
	defer ticker.Stop()
	driver := frame.Driver{
		Scene:     app.Scene,
		Camera:    app.Camera,
		Group:     app.Group,
		Step:      assemble.GroupSpin * assemble.UnitVelocity,
		Scheduler: ticker,
		Pollers:   []frame.Poller{app},
		Logger:    cfg.Logger,
	}
	err = driver.Run(ctx)
	interrupted := errors.Is(err, context.Canceled)
	if err != nil && !interrupted {
		return err
	}
	if f.snapshot == "" {
		return nil
	}
	// Snapshots include assets that were still loading when the loop stopped.
	// Loads started under an interrupted ctx end promptly on their own.
	wctx := ctx
	if interrupted {
		wctx = context.Background()
	}
	err = app.Wait(wctx)
	if err != nil {
		return err
	}
	r, err := view.NewCPURenderer(view.CPUConfig{Width: display.w, Height: display.h})
	if err != nil {
		return err
	}
	err = r.Render(app.Scene, app.Camera)
	if err != nil {
		return err
	}
	return writeFile(f.snapshot, r.WritePNG)
}

func export(ctx context.Context, cfg assemble.Config, f flags) error {
	if cfg.Message == "" {
		return errors.New("export requires a message")
	}
	cfg.Batches = nil
	cfg.CubemapDir = ""
	app, err := assemble.Assemble(ctx, cfg, &headlessDisplay{w: cfg.Width, h: cfg.Height})
	if err != nil {
		return err
	}
	err = app.Wait(ctx)
	if err != nil {
		return err
	} else if app.Text == nil {
		return fmt.Errorf("text unavailable: %w", app.Status().FontErr)
	}
	if f.stl != "" {
		var n int
		err = writeFile(f.stl, func(w io.Writer) (err error) {
			n, err = app.Text.WriteSTL(w, float32(f.stlRes))
			return err
		})
		if err != nil {
			return err
		}
		cfg.Logger.Info("wrote STL", slog.String("file", f.stl), slog.Int("triangles", n))
	}
	if f.outline != "" {
		err = writeFile(f.outline, func(w io.Writer) error {
			return app.Text.WriteOutlinePNG(w, 256)
		})
		if err != nil {
			return err
		}
		cfg.Logger.Info("wrote outline", slog.String("file", f.outline))
	}
	return nil
}
