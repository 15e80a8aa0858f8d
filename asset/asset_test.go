package asset

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/orbitext/forge/textsdf"
	"github.com/soypat/orbitext/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFutureTransitions(t *testing.T) {
	release := make(chan struct{})
	f := Go(context.Background(), func(ctx context.Context) (int, error) {
		<-release
		return 42, nil
	})
	_, st, err := f.Poll()
	assert.Equal(t, Pending, st)
	assert.NoError(t, err)

	close(release)
	v, err := f.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	v, st, _ = f.Poll()
	assert.Equal(t, Loaded, st)
	assert.Equal(t, 42, v)
}

func TestFutureFailureAndPanic(t *testing.T) {
	errBoom := errors.New("boom")
	f := Go(context.Background(), func(ctx context.Context) (string, error) {
		return "", errBoom
	})
	<-f.Done()
	_, st, err := f.Poll()
	assert.Equal(t, Failed, st)
	assert.ErrorIs(t, err, errBoom)

	p := Go(context.Background(), func(ctx context.Context) (*int, error) {
		panic("loader bug")
	})
	_, err = p.Wait(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loader bug")
}

func TestFutureWaitCancelled(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	f := Go(context.Background(), func(ctx context.Context) (int, error) {
		<-block
		return 0, nil
	})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := f.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestResolved(t *testing.T) {
	_, st, _ := Resolved(1, nil).Poll()
	assert.Equal(t, Loaded, st)
	_, st, _ = Resolved(1, errors.New("x")).Poll()
	assert.Equal(t, Failed, st)
	assert.Equal(t, "skipped", Skipped.String())
}

func TestLoadFont(t *testing.T) {
	f, err := LoadFont(context.Background(), "", textsdf.FontConfig{})
	require.NoError(t, err)
	_, err = f.TextLines("Hi\nThere")
	require.NoError(t, err)

	_, err = LoadFont(context.Background(), filepath.Join(t.TempDir(), "missing.ttf"), textsdf.FontConfig{})
	require.Error(t, err)
	assert.True(t, IsLoadFailure(err))
	assert.ErrorIs(t, err, os.ErrNotExist)
	var lf *LoadFailure
	require.ErrorAs(t, err, &lf)
	assert.Equal(t, "font", lf.Asset)

	bad := filepath.Join(t.TempDir(), "bad.ttf")
	require.NoError(t, os.WriteFile(bad, []byte("not a font"), 0o644))
	_, err = LoadFont(context.Background(), bad, textsdf.FontConfig{})
	assert.True(t, IsLoadFailure(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = LoadFont(ctx, "", textsdf.FontConfig{})
	assert.ErrorIs(t, err, context.Canceled)
}

func writeFace(t *testing.T, path string, size int, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	fp, err := os.Create(path)
	require.NoError(t, err)
	defer fp.Close()
	if filepath.Ext(path) == ".jpg" {
		require.NoError(t, jpeg.Encode(fp, img, &jpeg.Options{Quality: 100}))
	} else {
		require.NoError(t, png.Encode(fp, img))
	}
}

var faceNames = [6]string{"px.png", "nx.png", "py.png", "ny.jpg", "pz.png", "nz.png"}

func TestLoadCubemap(t *testing.T) {
	dir := t.TempDir()
	for i, name := range faceNames {
		size := 8
		if i == 2 {
			size = 4 // Resampled up to 8.
		}
		writeFace(t, filepath.Join(dir, name), size, color.RGBA{R: uint8(40 * i), G: 10, B: 10, A: 255})
	}
	cm, err := LoadCubemap(context.Background(), dir, faceNames)
	require.NoError(t, err)
	require.NoError(t, cm.Validate())
	assert.Equal(t, 8, cm.Size())
	assert.InDelta(t, 40*scene.FacePosY, cm.Sample(ms3.Vec{Y: 1}).R, 1)
	assert.Equal(t, uint8(0), cm.Sample(ms3.Vec{X: 1}).R)
	assert.InDelta(t, 120, cm.Sample(ms3.Vec{Y: -1}).R, 4, "jpeg is lossy")
}

func TestLoadCubemapFailure(t *testing.T) {
	dir := t.TempDir()
	writeFace(t, filepath.Join(dir, "px.png"), 4, color.RGBA{A: 255})
	_, err := LoadCubemap(context.Background(), dir, faceNames)
	require.Error(t, err)
	var lf *LoadFailure
	require.ErrorAs(t, err, &lf)
	assert.Equal(t, "cubemap", lf.Asset)
	assert.Equal(t, filepath.Join(dir, "nx.png"), lf.Path)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "nx.png"), []byte("garbage"), 0o644))
	_, err = LoadCubemap(context.Background(), dir, faceNames)
	assert.ErrorContains(t, err, "decoding")
}
