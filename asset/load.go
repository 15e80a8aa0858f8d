package asset

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // cubemap face formats.
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/soypat/orbitext/forge/textsdf"
	"github.com/soypat/orbitext/scene"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// LoadFont reads and parses a TrueType font. An empty path loads the embedded Go Regular font.
// Errors are of type *[LoadFailure].
func LoadFont(ctx context.Context, path string, cfg textsdf.FontConfig) (*textsdf.Font, error) {
	fail := func(err error) (*textsdf.Font, error) {
		return nil, &LoadFailure{Asset: "font", Path: path, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	ttf := textsdf.DefaultTTF()
	if path != "" {
		var err error
		ttf, err = os.ReadFile(path)
		if err != nil {
			return fail(err)
		}
	}
	var f textsdf.Font
	err := f.Configure(cfg)
	if err != nil {
		return fail(err)
	}
	err = f.LoadTTFBytes(ttf)
	if err != nil {
		return fail(err)
	}
	return &f, nil
}

// LoadCubemap decodes six face images in px, nx, py, ny, pz, nz order from dir.
// Faces are resampled to the largest face edge so all faces are square and equal.
// Errors are of type *[LoadFailure].
func LoadCubemap(ctx context.Context, dir string, files [6]string) (*scene.Cubemap, error) {
	var imgs [6]image.Image
	size := 0
	for i, name := range files {
		path := filepath.Join(dir, name)
		if err := ctx.Err(); err != nil {
			return nil, &LoadFailure{Asset: "cubemap", Path: path, Err: err}
		}
		img, err := decodeImage(path)
		if err != nil {
			return nil, &LoadFailure{Asset: "cubemap", Path: path, Err: err}
		}
		sz := img.Bounds().Size()
		size = max(size, sz.X, sz.Y)
		imgs[i] = img
	}
	var cm scene.Cubemap
	for i, img := range imgs {
		cm.Faces[i] = squareFace(img, size)
	}
	if err := cm.Validate(); err != nil {
		return nil, &LoadFailure{Asset: "cubemap", Path: dir, Err: err}
	}
	return &cm, nil
}

func decodeImage(path string) (image.Image, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	img, _, err := image.Decode(fp)
	if err != nil {
		return nil, fmt.Errorf("decoding: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("empty image")
	}
	return img, nil
}

func squareFace(img image.Image, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	if sz := img.Bounds().Size(); sz.X == size && sz.Y == size {
		draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
		return dst
	}
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
