package view_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/orbitext"
	"github.com/soypat/orbitext/assemble"
	"github.com/soypat/orbitext/scene"
	"github.com/soypat/orbitext/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sphereScene(mat *scene.Material) (*scene.Scene, *scene.Camera) {
	var bld orbitext.Builder
	sc := scene.New()
	sc.Add(scene.NewMesh(bld.NewSphere(2), mat, scene.KindSphere))
	var cam scene.Camera
	cam.Defaults()
	return sc, &cam
}

func TestCPUNormalShading(t *testing.T) {
	sc, cam := sphereScene(scene.NewNormalMaterial())
	r, err := view.NewCPURenderer(view.CPUConfig{Width: 16, Height: 16})
	require.NoError(t, err)
	require.NoError(t, r.Render(sc, cam))
	img := r.Image()
	center := img.RGBAAt(8, 8)
	assert.Greater(t, center.B, uint8(230), "normal faces the camera")
	assert.Greater(t, center.B, center.R)
	assert.Greater(t, center.B, center.G)
	assert.Equal(t, sc.ClearColor, img.RGBAAt(0, 0))

	var buf bytes.Buffer
	require.NoError(t, r.WritePNG(&buf))
	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 16), decoded.Bounds())
}

func TestCPULambertShading(t *testing.T) {
	sc, cam := sphereScene(scene.NewLambertMaterial(ms3.Vec{X: 1}))
	sc.Add(scene.NewPointLight("key", ms3.Vec{Z: 100}, 1))
	r, err := view.NewCPURenderer(view.CPUConfig{Width: 16, Height: 16})
	require.NoError(t, err)
	require.NoError(t, r.Render(sc, cam))
	c := r.Image().RGBAAt(8, 8)
	assert.Greater(t, c.R, uint8(240))
	assert.Zero(t, c.G)
	assert.Zero(t, c.B)
}

func TestCPUBackground(t *testing.T) {
	var cm scene.Cubemap
	colors := []color.RGBA{
		{R: 255, A: 255}, {G: 255, A: 255}, {B: 255, A: 255},
		{R: 255, G: 255, A: 255}, {G: 255, B: 255, A: 255}, {R: 255, B: 255, A: 255},
	}
	for i, c := range colors {
		face := image.NewRGBA(image.Rect(0, 0, 2, 2))
		for j := 0; j < len(face.Pix); j += 4 {
			face.Pix[j], face.Pix[j+1], face.Pix[j+2], face.Pix[j+3] = c.R, c.G, c.B, c.A
		}
		cm.Faces[i] = face
	}
	sc := scene.New()
	sc.Background = &cm
	var cam scene.Camera
	cam.Defaults()
	r, err := view.NewCPURenderer(view.CPUConfig{Width: 8, Height: 8})
	require.NoError(t, err)
	require.NoError(t, r.Render(sc, &cam))
	// Camera looks down -Z.
	assert.Equal(t, colors[scene.FaceNegZ], r.Image().RGBAAt(4, 4))
}

func TestCPUAssembledSnapshot(t *testing.T) {
	cfg := assemble.DefaultConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg.Message = "Hi"
	cfg.Text.Scale = 6
	cfg.Batches = nil
	disp := &fixedDisplay{w: 64, h: 48}
	app, err := assemble.Assemble(context.Background(), cfg, disp)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, app.Wait(ctx))
	require.NotNil(t, app.Text)

	r, err := view.NewCPURenderer(view.CPUConfig{Width: 64, Height: 48})
	require.NoError(t, err)
	require.NoError(t, r.Render(app.Scene, app.Camera))
	img := r.Image()
	drawn := 0
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			if img.RGBAAt(x, y) != app.Scene.ClearColor {
				drawn++
			}
		}
	}
	assert.Greater(t, drawn, 10, "text must be visible")
	assert.Less(t, drawn, 64*48/2)
}

func TestCPUConfigErrors(t *testing.T) {
	_, err := view.NewCPURenderer(view.CPUConfig{Width: 0, Height: 10})
	assert.Error(t, err)
	r, err := view.NewCPURenderer(view.CPUConfig{Width: 1, Height: 1})
	require.NoError(t, err)
	assert.Error(t, r.Render(nil, nil))
}

type fixedDisplay struct{ w, h int }

func (d *fixedDisplay) Size() (int, int)          { return d.w, d.h }
func (d *fixedDisplay) Resize(w, h int)           { d.w, d.h = w, h }
func (d *fixedDisplay) Fullscreen() bool          { return false }
func (d *fixedDisplay) FullscreenSupported() bool { return false }
func (d *fixedDisplay) SetFullscreen(bool) error  { return nil }
