package view

import (
	"strings"
	"testing"

	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/orbitext"
	"github.com/soypat/orbitext/glbuild"
	"github.com/soypat/orbitext/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeSet(t *testing.T) {
	var bld orbitext.Builder
	torus := bld.NewTorus(0.5, 0.25)
	box := bld.NewBox(0.5, 0.5, 0.5, 0)
	mat := scene.NewNormalMaterial()
	g := scene.NewGroup("g")
	for i := 0; i < 5; i++ {
		g.Add(scene.NewMesh(torus, mat, scene.KindDonut), scene.NewMesh(box, mat, scene.KindBall))
	}
	sc := scene.New()
	sc.Add(g)
	var ss shapeSet
	meshes := sc.AppendMeshes(nil)
	assert.True(t, ss.reset(meshes))
	assert.Equal(t, []glbuild.Shader3D{torus, box}, ss.shapes)
	assert.False(t, ss.reset(meshes), "same shapes need no rebuild")

	sc.Add(scene.NewMesh(bld.NewSphere(1), mat, scene.KindText))
	meshes = sc.AppendMeshes(meshes[:0])
	assert.True(t, ss.reset(meshes))
	assert.Len(t, ss.shapes, 3)
	assert.Equal(t, 2, ss.index[meshes[len(meshes)-1].Mesh.Shape])
}

func TestAppendInstances(t *testing.T) {
	var bld orbitext.Builder
	sphere := bld.NewSphere(0.5)
	m := scene.NewMesh(sphere, scene.NewLambertMaterial(ms3.Vec{X: 1, Y: 0.5}), scene.KindSphere)
	m.Position = ms3.Vec{X: 3, Y: -2, Z: 1}
	m.Rotation = scene.Euler{Z: 0.7}
	sc := scene.New()
	sc.Add(m)
	meshes := sc.AppendMeshes(nil)
	var ss shapeSet
	ss.reset(meshes)
	insts := appendInstances(nil, meshes, &ss)
	require.Len(t, insts, 1)
	in := insts[0]
	assert.Equal(t, [4]float32{3, -2, 1, 1}, in.PosScale)
	assert.Equal(t, float32(0), in.Row0[3])
	assert.InDelta(t, 0.5*1.7320508, in.Row1[3], 1e-5)
	assert.Equal(t, [4]float32{1, 0.5, 0, 1}, in.Color)

	// Rows map world offsets back into mesh space.
	world := ms3.Vec{X: 0.3, Y: 0.1, Z: -0.2}
	local := ms3.Vec{
		X: in.Row0[0]*world.X + in.Row0[1]*world.Y + in.Row0[2]*world.Z,
		Y: in.Row1[0]*world.X + in.Row1[1]*world.Y + in.Row1[2]*world.Z,
		Z: in.Row2[0]*world.X + in.Row2[1]*world.Y + in.Row2[2]*world.Z,
	}
	back := m.Rotation.Matrix().Apply(local)
	assert.InDelta(t, world.X, back.X, 1e-5)
	assert.InDelta(t, world.Y, back.Y, 1e-5)
	assert.InDelta(t, world.Z, back.Z, 1e-5)
}

func TestFragmentSource(t *testing.T) {
	var bld orbitext.Builder
	sphere := bld.NewSphere(0.5)
	shapes := []glbuild.Shader3D{
		bld.NewTorus(0.5, 0.25),
		bld.Translate(sphere, 1, 0, 0),
		bld.Scale(sphere, 2),
	}
	src, err := fragmentSource(glbuild.NewDefaultProgrammer(), shapes)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(src, glbuild.VersionStr))
	assert.True(t, strings.HasSuffix(src, "\x00"))
	for i, s := range shapes {
		name := string(s.AppendShaderName(nil))
		assert.Contains(t, src, "float "+name+"(vec3 p)")
		assert.Contains(t, src, "case "+string(rune('0'+i))+": return "+name+"(p);")
	}
	assert.Equal(t, 1, strings.Count(src, "float "+string(sphere.AppendShaderName(nil))+"(vec3 p)"))
	assert.Contains(t, src, "void main()")

	empty, err := fragmentSource(glbuild.NewDefaultProgrammer(), nil)
	require.NoError(t, err)
	assert.Contains(t, empty, "default:")
}
