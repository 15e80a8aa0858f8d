package orbitext

import (
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/orbitext/glbuild"
)

type sphere struct {
	r float32
}

// NewSphere creates a sphere centered at the origin of radius r.
func (bld *Builder) NewSphere(r float32) glbuild.Shader3D {
	if r <= 0 {
		bld.shapeErrorf("zero or negative sphere radius")
	}
	return &sphere{r: r}
}

func (s *sphere) ForEachChild(userData any, fn func(userData any, s *glbuild.Shader3D) error) error {
	return nil
}

func (s *sphere) AppendShaderName(b []byte) []byte {
	b = append(b, "sphere"...)
	b = glbuild.AppendFloat(b, 'n', 'p', s.r)
	return b
}

func (s *sphere) AppendShaderBody(b []byte) []byte {
	b = append(b, "return length(p)-"...)
	b = glbuild.AppendFloat(b, '-', '.', s.r)
	b = append(b, ';')
	return b
}

func (s *sphere) Bounds() ms3.Box {
	return ms3.Box{
		Min: ms3.Vec{X: -s.r, Y: -s.r, Z: -s.r},
		Max: ms3.Vec{X: s.r, Y: s.r, Z: s.r},
	}
}

// NewBox creates a box centered at the origin with x,y,z dimensions and a rounding parameter to round edges.
func (bld *Builder) NewBox(x, y, z, round float32) glbuild.Shader3D {
	if round < 0 || round > x/2 || round > y/2 || round > z/2 {
		bld.shapeErrorf("invalid box rounding value")
	}
	if x <= 0 || y <= 0 || z <= 0 {
		bld.shapeErrorf("zero or negative box dimension")
	}
	return &box{dims: ms3.Vec{X: x, Y: y, Z: z}, round: round}
}

type box struct {
	dims  ms3.Vec
	round float32
}

func (s *box) ForEachChild(userData any, fn func(userData any, s *glbuild.Shader3D) error) error {
	return nil
}

func (s *box) AppendShaderName(b []byte) []byte {
	b = append(b, "box"...)
	b = glbuild.AppendFloats(b, '_', 'n', 'p', s.dims.X, s.dims.Y, s.dims.Z)
	b = glbuild.AppendFloat(b, 'n', 'p', s.round)
	return b
}

func (s *box) AppendShaderBody(b []byte) []byte {
	b = glbuild.AppendFloatDecl(b, "r", s.round)
	b = glbuild.AppendVec3Decl(b, "d", ms3.Scale(0.5, s.dims)) // Inigo's SDF is x2 size.
	b = append(b, `vec3 q = abs(p)-d+r;
return length(max(q,0.0)) + min(max(q.x,max(q.y,q.z)),0.0)-r;`...)
	return b
}

func (s *box) Bounds() ms3.Box {
	half := ms3.Scale(0.5, s.dims)
	return ms3.Box{Min: ms3.Scale(-1, half), Max: half}
}

type torus struct {
	rLesser, rGreater float32
}

// NewTorus creates a 3D torus given 2 radii to define the radius
// across (greaterRadius) and the "solid" radius (lesserRadius).
// If the radius were cut and stretched straight to form a cylinder the lesser
// radius would be the radius of the cylinder.
// The torus' axis is in the z axis.
func (bld *Builder) NewTorus(greaterRadius, lesserRadius float32) glbuild.Shader3D {
	if greaterRadius < 2*lesserRadius {
		bld.shapeErrorf("too large torus lesser radius")
	}
	if greaterRadius <= 0 || lesserRadius <= 0 {
		bld.shapeErrorf("invalid torus parameter")
	}
	return &torus{rLesser: lesserRadius, rGreater: greaterRadius}
}

func (s *torus) ForEachChild(userData any, fn func(userData any, s *glbuild.Shader3D) error) error {
	return nil
}

func (s *torus) AppendShaderName(b []byte) []byte {
	b = append(b, "torus"...)
	b = glbuild.AppendFloat(b, 'n', 'p', s.rLesser)
	b = glbuild.AppendFloat(b, 'n', 'p', s.rGreater)
	return b
}

func (s *torus) AppendShaderBody(b []byte) []byte {
	b = glbuild.AppendFloatDecl(b, "t1", s.rGreater)
	b = glbuild.AppendFloatDecl(b, "t2", s.rLesser)
	b = append(b, `p = p.xzy;
vec2 q = vec2(length(p.xz)-t1,p.y);
return length(q)-t2;`...)
	return b
}

func (s *torus) Bounds() ms3.Box {
	R := s.rLesser + s.rGreater
	return ms3.Box{
		Min: ms3.Vec{X: -R, Y: -R, Z: -s.rLesser},
		Max: ms3.Vec{X: R, Y: R, Z: s.rLesser},
	}
}
