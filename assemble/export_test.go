package assemble

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/soypat/orbitext"
	"github.com/soypat/orbitext/asset"
	"github.com/soypat/orbitext/forge/textsdf"
	"github.com/soypat/orbitext/glrender"
	"github.com/soypat/orbitext/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildGo(t *testing.T) *TextMesh {
	t.Helper()
	font, err := asset.LoadFont(context.Background(), "", textsdf.FontConfig{})
	require.NoError(t, err)
	var bld orbitext.Builder
	bld.NoDimensionPanic = true
	text, err := BuildText(&bld, font, "Go", scene.NewNormalMaterial(), DefaultTextOptions())
	require.NoError(t, err)
	return text
}

func TestTextWriteSTL(t *testing.T) {
	const res = 0.05
	text := buildGo(t)
	var buf bytes.Buffer
	n, err := text.WriteSTL(&buf, res)
	require.NoError(t, err)
	require.Greater(t, n, 100)

	tris, err := glrender.ReadBinarySTL(&buf)
	require.NoError(t, err)
	require.Len(t, tris, n)
	bb := text.Shape.Bounds()
	for _, tri := range tris {
		for _, v := range tri {
			assert.True(t, v.X >= bb.Min.X-res && v.X <= bb.Max.X+res, "x out of bounds")
			assert.True(t, v.Y >= bb.Min.Y-res && v.Y <= bb.Max.Y+res, "y out of bounds")
			assert.True(t, v.Z >= bb.Min.Z-res && v.Z <= bb.Max.Z+res, "z out of bounds")
		}
	}
	_, err = text.WriteSTL(&buf, 0)
	assert.Error(t, err)
}

func TestTextWriteOutlinePNG(t *testing.T) {
	const ppem = 40
	text := buildGo(t)
	var buf bytes.Buffer
	err := text.WriteOutlinePNG(&buf, ppem)
	require.NoError(t, err)
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	sz := text.Outline.Bounds().Size()
	assert.InDelta(t, sz.X*ppem, img.Bounds().Dx(), 1)
	assert.InDelta(t, sz.Y*ppem, img.Bounds().Dy(), 1)

	assert.Error(t, text.WriteOutlinePNG(&buf, 0))
}
