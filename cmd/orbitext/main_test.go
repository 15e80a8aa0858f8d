package main

import (
	"context"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/orbitext/assemble"
	"github.com/soypat/orbitext/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countScheduler struct{ n int }

func (c *countScheduler) NextFrame(ctx context.Context) error {
	c.n++
	return nil
}

func TestLimitFrames(t *testing.T) {
	var cs countScheduler
	assert.Same(t, frame.Scheduler(&cs), limitFrames(&cs, 0))
	s := limitFrames(&cs, 3)
	for i := 0; i < 3; i++ {
		assert.NoError(t, s.NextFrame(context.Background()))
	}
	assert.ErrorIs(t, s.NextFrame(context.Background()), frame.ErrClosed)
	assert.Equal(t, 3, cs.n)
}

func TestHeadlessDisplay(t *testing.T) {
	d := &headlessDisplay{w: 10, h: 20}
	d.Resize(30, 40)
	w, h := d.Size()
	assert.Equal(t, 30, w)
	assert.Equal(t, 40, h)
	assert.False(t, d.FullscreenSupported())
	assert.Error(t, d.SetFullscreen(true))
}

func TestRunHeadlessSnapshot(t *testing.T) {
	cfg := assemble.DefaultConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg.Width, cfg.Height = 32, 24
	cfg.Batches = cfg.Batches[:1]
	cfg.Batches[0].Quantity = 5
	snap := filepath.Join(t.TempDir(), "snap.png")
	err := runHeadless(context.Background(), cfg, flags{hz: -1, frames: 3, snapshot: snap})
	require.NoError(t, err)
	fp, err := os.Open(snap)
	require.NoError(t, err)
	defer fp.Close()
	img, err := png.Decode(fp)
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 24, img.Bounds().Dy())
}

func TestRunHeadlessInterruptedSnapshot(t *testing.T) {
	cfg := assemble.DefaultConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg.Width, cfg.Height = 16, 8
	cfg.Batches = cfg.Batches[:1]
	cfg.Batches[0].Quantity = 2
	snap := filepath.Join(t.TempDir(), "snap.png")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := runHeadless(ctx, cfg, flags{hz: -1, snapshot: snap})
	require.NoError(t, err)
	fp, err := os.Open(snap)
	require.NoError(t, err)
	defer fp.Close()
	img, err := png.Decode(fp)
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
}
