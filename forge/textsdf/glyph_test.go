package textsdf

import (
	"testing"

	"github.com/soypat/glgl/math/ms2"
	"github.com/soypat/orbitext/glbuild"
	"github.com/soypat/orbitext/gleval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDefault(t *testing.T) *Font {
	t.Helper()
	var f Font
	require.NoError(t, f.LoadTTFBytes(DefaultTTF()))
	return &f
}

func eval2(t *testing.T, s glbuild.Shader2D, pos ...ms2.Vec) []float32 {
	t.Helper()
	sdf, err := gleval.AssertSDF2(s)
	require.NoError(t, err)
	var vp gleval.VecPool
	dist := make([]float32, len(pos))
	require.NoError(t, sdf.Evaluate(pos, dist, &vp))
	require.NoError(t, vp.AssertAllFree())
	return dist
}

func TestGlyphFillAndHole(t *testing.T) {
	f := loadDefault(t)
	bar, err := f.Glyph('I')
	require.NoError(t, err)
	bb := bar.Bounds()
	assert.Greater(t, bb.Size().Y, float32(0.5), "cap height should be a good fraction of an em")
	assert.Less(t, bb.Size().Y, float32(1))

	o, err := f.Glyph('o')
	require.NoError(t, err)
	far := ms2.Vec{X: 10, Y: 10}
	d := eval2(t, bar, bb.Center(), far)
	assert.Less(t, d[0], float32(0), "stem center must be filled")
	assert.Greater(t, d[1], float32(5))

	// The counter of an 'o' is carved out.
	d = eval2(t, o, o.Bounds().Center())
	assert.Greater(t, d[0], float32(0))
}

func TestGlyphCache(t *testing.T) {
	f := loadDefault(t)
	a1, err := f.Glyph('a')
	require.NoError(t, err)
	a2, err := f.Glyph('a')
	require.NoError(t, err)
	assert.Same(t, a1, a2)

	u1, err := f.Glyph('ñ')
	require.NoError(t, err)
	u2, err := f.Glyph('ñ')
	require.NoError(t, err)
	assert.Same(t, u1, u2)
}

func TestTextLine(t *testing.T) {
	f := loadDefault(t)
	one, err := f.TextLine("H")
	require.NoError(t, err)
	two, err := f.TextLine("HH")
	require.NoError(t, err)
	spaced, err := f.TextLine("H\tH")
	require.NoError(t, err)
	w1 := one.Bounds().Size().X
	w2 := two.Bounds().Size().X
	assert.InDelta(t, w1+f.AdvanceWidth('H'), w2, 0.05)
	assert.Greater(t, spaced.Bounds().Size().X, w2+3*f.AdvanceWidth(' '))

	_, err = f.TextLine("   ")
	assert.Error(t, err)
	_, err = f.TextLine("a\x00b")
	assert.Error(t, err)
}

func TestTextLines(t *testing.T) {
	f := loadDefault(t)
	single, err := f.TextLines("Hello")
	require.NoError(t, err)
	multi, err := f.TextLines("Hello\nworld\n\nGo")
	require.NoError(t, err)
	lh := f.LineHeight()
	assert.Greater(t, lh, float32(0.8))
	sb, mb := single.Bounds(), multi.Bounds()
	assert.InDelta(t, sb.Max.Y, mb.Max.Y, 1e-4, "first line stays on top")
	// Fourth line baseline sits three line heights below the first.
	assert.Less(t, mb.Min.Y, sb.Min.Y-2.5*lh)

	_, err = f.TextLines("\n \n")
	assert.Error(t, err)
}

func TestConfigure(t *testing.T) {
	var f Font
	assert.Error(t, f.Configure(FontConfig{RelativeGlyphTolerance: 1}))
	assert.Error(t, f.Configure(FontConfig{LineSpacing: -1}))
	require.NoError(t, f.Configure(FontConfig{LineSpacing: 2}))
	_, err := f.TextLine("x")
	assert.Error(t, err, "no font loaded yet")
	require.NoError(t, f.LoadTTFBytes(DefaultTTF()))
	var ref Font
	require.NoError(t, ref.LoadTTFBytes(DefaultTTF()))
	assert.InDelta(t, 2*ref.LineHeight(), f.LineHeight(), 1e-5)

	assert.Error(t, f.LoadTTFBytes([]byte("not a font")))
}
