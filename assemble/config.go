package assemble

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/pelletier/go-toml/v2"
)

// DefaultMessage is the text shown when none is configured.
const DefaultMessage = "Hello world!\norbitext\nSDF text in orbit"

// Batch requests Quantity satellites of Kind scattered within Range.
type Batch struct {
	Kind     string `toml:"kind"`
	Quantity int    `toml:"quantity"`
	Range    int    `toml:"range"`
}

// Config configures scene assembly. Use [DefaultConfig] for a starting point.
type Config struct {
	Message string `toml:"message"`
	// FontPath is a TrueType file. Empty uses the embedded Go Regular font.
	FontPath string `toml:"font"`
	// CubemapDir holds the background face images. Empty disables the background.
	CubemapDir string `toml:"cubemap_dir"`
	// CubemapFiles are the face file names in px, nx, py, ny, pz, nz order.
	CubemapFiles [6]string   `toml:"cubemap_files"`
	Batches      []Batch     `toml:"batches"`
	Seed         int64       `toml:"seed"`
	Width        int         `toml:"width"`
	Height       int         `toml:"height"`
	Material     string      `toml:"material"`
	Text         TextOptions `toml:"text"`
	// Orbit control switches.
	AutoRotate bool `toml:"auto_rotate"`
	Damping    bool `toml:"damping"`
	Zoom       bool `toml:"zoom"`

	// Logger receives asset load reports. If nil slog.Default is used.
	Logger *slog.Logger `toml:"-"`
}

// DefaultConfig returns the configuration of the stock scene: 150 satellites
// in each of three batches within a range of 50.
func DefaultConfig() Config {
	return Config{
		Message:      DefaultMessage,
		CubemapFiles: [6]string{"px.png", "nx.png", "py.png", "ny.png", "pz.png", "nz.png"},
		Batches: []Batch{
			{Kind: "donut", Quantity: 150, Range: 50},
			{Kind: "ring", Quantity: 150, Range: 50},
			{Kind: "ball", Quantity: 150, Range: 50},
		},
		Seed:       1,
		Width:      1280,
		Height:     720,
		Material:   "normal",
		Text:       DefaultTextOptions(),
		AutoRotate: true,
		Damping:    true,
		Zoom:       true,
	}
}

// LoadConfig reads a TOML configuration from r. Keys absent from r keep
// their [DefaultConfig] values. Unknown keys are an error.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	err := dec.Decode(&cfg)
	if err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, cfg.Validate()
}

// WriteConfig writes cfg to w as TOML.
func WriteConfig(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// Validate checks cfg for values assembly cannot work with.
func (cfg Config) Validate() error {
	var errs []error
	for i, b := range cfg.Batches {
		if b.Quantity < 0 {
			errs = append(errs, fmt.Errorf("batch %d: negative quantity", i))
		}
	}
	if cfg.Width < 0 || cfg.Height < 0 {
		errs = append(errs, errors.New("negative window dimension"))
	}
	if _, err := NewMaterial(cfg.Material); err != nil {
		errs = append(errs, err)
	}
	if cfg.Message != "" {
		if err := cfg.Text.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if cfg.CubemapDir != "" {
		for i, f := range cfg.CubemapFiles {
			if f == "" {
				errs = append(errs, fmt.Errorf("cubemap face %d has no file", i))
			}
		}
	}
	return errors.Join(errs...)
}

func (cfg Config) logger() *slog.Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	return slog.Default()
}
