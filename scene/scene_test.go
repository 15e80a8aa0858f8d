package scene

import (
	"image"
	"image/color"
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/orbitext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vecInDelta(t *testing.T, want, got ms3.Vec, delta float64) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, delta, "X")
	assert.InDelta(t, want.Y, got.Y, delta, "Y")
	assert.InDelta(t, want.Z, got.Z, delta, "Z")
}

func TestEulerMatrix(t *testing.T) {
	rz := Euler{Z: math32.Pi / 2}.Matrix()
	vecInDelta(t, ms3.Vec{Y: 1}, rz.Apply(ms3.Vec{X: 1}), 1e-6)
	rx := Euler{X: math32.Pi / 2}.Matrix()
	vecInDelta(t, ms3.Vec{Z: 1}, rx.Apply(ms3.Vec{Y: 1}), 1e-6)
	ry := Euler{Y: math32.Pi / 2}.Matrix()
	vecInDelta(t, ms3.Vec{X: 1}, ry.Apply(ms3.Vec{Z: 1}), 1e-6)

	// XYZ order is Rx*Ry*Rz.
	e := Euler{X: 0.3, Y: -1.1, Z: 2}
	want := Euler{X: 0.3}.Matrix().Mul(Euler{Y: -1.1}.Matrix()).Mul(Euler{Z: 2}.Matrix())
	got := e.Matrix()
	for i := range got {
		assert.InDelta(t, want[i], got[i], 1e-6)
	}
	// Rotations are orthonormal.
	id := got.Mul(got.Transpose())
	for i, v := range IdentityMat3() {
		assert.InDelta(t, v, id[i], 1e-6)
	}
}

func TestEulerAddWraps(t *testing.T) {
	var e Euler
	for i := 0; i < 100; i++ {
		e.Add(0.1, -0.1, 1)
	}
	assert.InDelta(t, math32.Mod(10, twoPi), e.X, 1e-4)
	assert.InDelta(t, -math32.Mod(10, twoPi), e.Y, 1e-4)
	assert.Less(t, e.Z, float32(twoPi))
	assert.Greater(t, e.Z, float32(-twoPi))
	// Wrapped angle describes the same orientation.
	wrapped := e.Matrix()
	unwrapped := Euler{X: 10, Y: -10, Z: 100}.Matrix()
	for i := range wrapped {
		assert.InDelta(t, unwrapped[i], wrapped[i], 1e-3)
	}
}

func TestTransform(t *testing.T) {
	parent := Node{Position: ms3.Vec{X: 1}, Rotation: Euler{Z: math32.Pi / 2}, Scale: 2}
	child := Node{Position: ms3.Vec{X: 1}}
	world := parent.Local().Mul(child.Local())
	p := world.Apply(ms3.Vec{})
	vecInDelta(t, ms3.Vec{X: 1, Y: 2}, p, 1e-5)
	vecInDelta(t, ms3.Vec{}, world.Inverse(p), 1e-5)
	q := ms3.Vec{X: 0.3, Y: -2, Z: 5}
	vecInDelta(t, q, world.Inverse(world.Apply(q)), 1e-5)
}

type spinner struct {
	*Mesh
	n int
}

func (s *spinner) Advance()         { s.n++ }
func (s *spinner) SceneMesh() *Mesh { return s.Mesh }

func TestSceneMeshes(t *testing.T) {
	var bld orbitext.Builder
	sc := New()
	g := NewGroup("satellites")
	m1 := NewMesh(bld.NewSphere(0.5), NewNormalMaterial(), KindSphere)
	m1.Position = ms3.Vec{X: 3}
	g.Add(m1, NewMesh(bld.NewBox(0.5, 0.5, 0.5, 0), NewNormalMaterial(), KindBall))
	g.Rotation.Z = math32.Pi / 2
	text := &spinner{Mesh: NewMesh(bld.NewSphere(1), NewNormalMaterial(), KindText)}
	l := NewPointLight("key", ms3.Vec{Y: 200}, 0.75)
	sc.Add(l, g, text)

	require.Len(t, sc.Children(), 3)
	assert.Equal(t, []*PointLight{l}, sc.Lights())
	placed := sc.AppendMeshes(nil)
	require.Len(t, placed, 3)
	vecInDelta(t, ms3.Vec{Y: 3}, placed[0].World.Apply(ms3.Vec{}), 1e-5)
	assert.Same(t, text.Mesh, placed[2].Mesh)

	var updatables int
	for _, obj := range sc.Children() {
		if u, ok := obj.(Updatable); ok {
			u.Advance()
			updatables++
		}
	}
	assert.Equal(t, 1, updatables)
	assert.Equal(t, 1, text.n)
	assert.Panics(t, func() { sc.Add(nil) })
}

func TestBoundingRadius(t *testing.T) {
	var bld orbitext.Builder
	m := NewMesh(bld.NewBox(2, 2, 2, 0), NewNormalMaterial(), KindBall)
	assert.InDelta(t, math32.Sqrt(3), m.BoundingRadius(), 1e-5)
	m.Scale = 0.5
	assert.InDelta(t, math32.Sqrt(3)/2, m.BoundingRadius(), 1e-5)
}

func TestPointLightAttenuation(t *testing.T) {
	l := NewPointLight("", ms3.Vec{}, 0.75)
	assert.Equal(t, float32(0.75), l.Attenuation(1e6), "zero distance means no decay")
	l.Distance = 10
	assert.Equal(t, float32(0), l.Attenuation(10))
	assert.InDelta(t, 0.75*0.25, l.Attenuation(5), 1e-6)
}

func TestCamera(t *testing.T) {
	var c Camera
	c.Defaults()
	assert.Equal(t, ms3.Vec{Z: 15}, c.Position)
	require.NoError(t, c.SetAspect(1920, 1080))
	assert.Equal(t, float32(1920)/1080, c.Aspect)
	assert.InDelta(t, 1/math32.Tan(22.5*math32.Pi/180)/c.Aspect, c.Projection[0], 1e-5)
	assert.Error(t, c.SetAspect(100, 0))
	assert.Equal(t, float32(1920)/1080, c.Aspect, "invalid size leaves aspect unchanged")

	right, up, fwd := c.Basis()
	vecInDelta(t, ms3.Vec{X: 1}, right, 1e-6)
	vecInDelta(t, ms3.Vec{Y: 1}, up, 1e-6)
	vecInDelta(t, ms3.Vec{Z: -1}, fwd, 1e-6)
	vecInDelta(t, ms3.Vec{Z: -1}, c.Ray(0, 0), 1e-6)
	top := c.Ray(0, 1)
	assert.InDelta(t, math32.Tan(22.5*math32.Pi/180), top.Y/-top.Z, 1e-5)
}

func solidFace(n int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, n, n))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestCubemapSample(t *testing.T) {
	var cm Cubemap
	assert.Error(t, cm.Validate())
	for i := range cm.Faces {
		cm.Faces[i] = solidFace(4, color.RGBA{R: uint8(i * 40), A: 255})
	}
	require.NoError(t, cm.Validate())
	assert.Equal(t, 4, cm.Size())
	dirs := [6]ms3.Vec{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {Z: 1}, {Z: -1}}
	for face, dir := range dirs {
		assert.Equal(t, uint8(face*40), cm.Sample(dir).R, "face %d", face)
	}
	cm.Faces[3] = solidFace(8, color.RGBA{})
	assert.Error(t, cm.Validate())
}
