package glrender_test

import (
	"bytes"
	"image"
	"image/color"
	"io"
	"testing"

	"github.com/chewxy/math32"
	gms3 "github.com/soypat/geometry/ms3"
	"github.com/soypat/glgl/math/ms2"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/orbitext"
	"github.com/soypat/orbitext/gleval"
	"github.com/soypat/orbitext/glrender"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vec(v gms3.Vec) ms3.Vec { return ms3.Vec{X: v.X, Y: v.Y, Z: v.Z} }

func meshSphere(t *testing.T, radius, res float32) []gms3.Triangle {
	t.Helper()
	var bld orbitext.Builder
	sdf, err := gleval.AssertSDF3(bld.NewSphere(radius))
	require.NoError(t, err)
	oc, err := glrender.NewOctreeRenderer(sdf, res, 1024)
	require.NoError(t, err)
	vp := &gleval.VecPool{}
	tris, err := glrender.RenderAll(oc, vp)
	require.NoError(t, err)
	require.NoError(t, vp.AssertAllFree())
	require.NotEmpty(t, tris)
	assert.NotZero(t, oc.TotalPruned(), "cubes far from the surface are pruned")
	return tris
}

func TestOctreeRendererSphere(t *testing.T) {
	const radius, res = 1, 0.1
	tris := meshSphere(t, radius, res)
	var area, volume float32
	for i, tri := range tris {
		a, b, c := vec(tri[0]), vec(tri[1]), vec(tri[2])
		for _, v := range [3]ms3.Vec{a, b, c} {
			assert.InDelta(t, radius, ms3.Norm(v), res/2, "vertex off surface in triangle %d", i)
		}
		n := vec(glrender.TriangleNormal(tri))
		centroid := ms3.Scale(1./3, ms3.Add(a, ms3.Add(b, c)))
		if n != (ms3.Vec{}) {
			assert.Greater(t, ms3.Dot(n, centroid), float32(0), "triangle %d faces inward", i)
		}
		ab, ac := ms3.Sub(b, a), ms3.Sub(c, a)
		cr := ms3.Vec{X: ab.Y*ac.Z - ab.Z*ac.Y, Y: ab.Z*ac.X - ab.X*ac.Z, Z: ab.X*ac.Y - ab.Y*ac.X}
		area += ms3.Norm(cr) / 2
		volume += ms3.Dot(a, ms3.Vec{X: b.Y*c.Z - b.Z*c.Y, Y: b.Z*c.X - b.X*c.Z, Z: b.X*c.Y - b.Y*c.X}) / 6
	}
	assert.InEpsilon(t, 4*math32.Pi*radius*radius, area, 0.1)
	assert.InEpsilon(t, 4./3*math32.Pi*radius*radius*radius, volume, 0.05)
}

func TestOctreeRendererErrors(t *testing.T) {
	var bld orbitext.Builder
	sdf, err := gleval.AssertSDF3(bld.NewSphere(1))
	require.NoError(t, err)
	_, err = glrender.NewOctreeRenderer(nil, 0.1, 1024)
	assert.Error(t, err)
	_, err = glrender.NewOctreeRenderer(sdf, 0, 1024)
	assert.Error(t, err)
	_, err = glrender.NewOctreeRenderer(sdf, 0.1, 8)
	assert.Error(t, err)
	_, err = glrender.NewOctreeRenderer(sdf, 10, 1024)
	assert.Error(t, err, "resolution coarser than the shape")

	oc, err := glrender.NewOctreeRenderer(sdf, 0.2, 1024)
	require.NoError(t, err)
	_, err = oc.ReadTriangles(make([]gms3.Triangle, 4), &gleval.VecPool{})
	assert.ErrorIs(t, err, io.ErrShortBuffer)
}

func TestOctreeRendererReset(t *testing.T) {
	var bld orbitext.Builder
	small, err := gleval.AssertSDF3(bld.NewSphere(0.5))
	require.NoError(t, err)
	big, err := gleval.AssertSDF3(bld.NewSphere(1))
	require.NoError(t, err)
	oc, err := glrender.NewOctreeRenderer(big, 0.1, 1024)
	require.NoError(t, err)
	first, err := glrender.RenderAll(oc, &gleval.VecPool{})
	require.NoError(t, err)
	require.NoError(t, oc.Reset(small, 0.1))
	second, err := glrender.RenderAll(oc, &gleval.VecPool{})
	require.NoError(t, err)
	require.NotEmpty(t, second)
	assert.Less(t, len(second), len(first))
	for _, tri := range second {
		assert.InDelta(t, 0.5, ms3.Norm(vec(tri[0])), 0.05)
	}
}

func TestSTLRoundTrip(t *testing.T) {
	tris := meshSphere(t, 1, 0.25)
	var buf bytes.Buffer
	n, err := glrender.WriteBinarySTL(&buf, tris)
	require.NoError(t, err)
	assert.Equal(t, 84+50*len(tris), n)
	assert.Equal(t, n, buf.Len())

	got, err := glrender.ReadBinarySTL(&buf)
	require.NoError(t, err)
	assert.Equal(t, tris, got)
}

func TestReadBinarySTLTruncated(t *testing.T) {
	tris := []gms3.Triangle{{{X: 0}, {X: 1}, {Y: 1}}, {{Z: 0}, {Z: 1}, {Y: 1}}}
	var buf bytes.Buffer
	_, err := glrender.WriteBinarySTL(&buf, tris)
	require.NoError(t, err)
	data := buf.Bytes()
	got, err := glrender.ReadBinarySTL(bytes.NewReader(data[:len(data)-10]))
	assert.Error(t, err)
	assert.Len(t, got, 1)
	_, err = glrender.ReadBinarySTL(bytes.NewReader(data[:40]))
	assert.Error(t, err)
}

func TestTriangleNormal(t *testing.T) {
	n := glrender.TriangleNormal(gms3.Triangle{{}, {X: 2}, {Y: 3}})
	assert.Equal(t, gms3.Vec{Z: 1}, n)
	assert.Equal(t, gms3.Vec{}, glrender.TriangleNormal(gms3.Triangle{{}, {X: 1}, {X: 2}}))
}

func TestImageRendererSDF2(t *testing.T) {
	var bld orbitext.Builder
	tri := bld.NewPolygon([]ms2.Vec{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 0, Y: 2}})
	require.NoError(t, bld.Err())
	sdf, err := gleval.AssertSDF2(tri)
	require.NoError(t, err)

	ir, err := glrender.NewImageRendererSDF2(256, nil)
	require.NoError(t, err)
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	err = ir.Render(sdf, img, &gleval.VecPool{})
	require.NoError(t, err)
	// The right angle sits at the bottom left of the image.
	assert.Equal(t, color.RGBAModel.Convert(color.Black), img.At(0, 31))
	assert.Equal(t, color.RGBAModel.Convert(color.White), img.At(31, 0))

	_, err = glrender.NewImageRendererSDF2(8, nil)
	assert.Error(t, err)
	small, err := glrender.NewImageRendererSDF2(64, nil)
	require.NoError(t, err)
	err = small.Render(sdf, image.NewRGBA(image.Rect(0, 0, 100, 4)), &gleval.VecPool{})
	assert.Error(t, err, "image wider than buffer")
}

func TestColorConversions(t *testing.T) {
	iq := glrender.ColorConversionInigoQuilez(1)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, iq(math32.NaN()))
	edge := iq(0).(color.RGBA)
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, edge, "zero isoline is white")
	in, out := iq(-0.5).(color.RGBA), iq(0.5).(color.RGBA)
	assert.Greater(t, in.B, in.R, "interior is blue")
	assert.Greater(t, out.R, out.B, "exterior is orange")

	fill := color.RGBA{R: 200, G: 100, B: 50, A: 255}
	outline := glrender.ColorConversionOutline(0.1, fill)
	assert.Equal(t, fill, outline(-1))
	assert.Equal(t, color.RGBA{}, outline(1))
	mid := outline(0).(color.RGBA)
	assert.InDelta(t, 127, mid.A, 1)
}
