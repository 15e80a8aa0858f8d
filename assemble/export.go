package assemble

import (
	"errors"
	"image"
	"image/png"
	"io"

	"github.com/chewxy/math32"
	"github.com/soypat/orbitext/gleval"
	"github.com/soypat/orbitext/glrender"
)

const exportEvalBuffer = 1 << 14

// WriteSTL meshes the text at resolution res, in scene units, and writes it
// to w as binary STL. It returns the number of triangles written.
func (t *TextMesh) WriteSTL(w io.Writer, res float32) (int, error) {
	sdf, err := gleval.AssertSDF3(t.Shape)
	if err != nil {
		return 0, err
	}
	oc, err := glrender.NewOctreeRenderer(sdf, res, exportEvalBuffer)
	if err != nil {
		return 0, err
	}
	vp := &gleval.VecPool{}
	tris, err := glrender.RenderAll(oc, vp)
	if err != nil {
		return 0, err
	}
	if err = vp.AssertAllFree(); err != nil {
		return 0, err
	}
	_, err = glrender.WriteBinarySTL(w, tris)
	return len(tris), err
}

// WriteOutlinePNG rasterizes the flat text outline at pixelsPerEm and encodes it as PNG.
func (t *TextMesh) WriteOutlinePNG(w io.Writer, pixelsPerEm int) error {
	if pixelsPerEm <= 0 {
		return errors.New("non-positive outline resolution")
	}
	sdf, err := gleval.AssertSDF2(t.Outline)
	if err != nil {
		return err
	}
	sz := sdf.Bounds().Size()
	width := int(math32.Ceil(sz.X * float32(pixelsPerEm)))
	height := int(math32.Ceil(sz.Y * float32(pixelsPerEm)))
	if width <= 0 || height <= 0 {
		return errors.New("empty text outline")
	}
	conv := glrender.ColorConversionInigoQuilez(math32.Hypot(sz.X, sz.Y) / 3)
	ir, err := glrender.NewImageRendererSDF2(max(width, 64), conv)
	if err != nil {
		return err
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	err = ir.Render(sdf, img, &gleval.VecPool{})
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}
