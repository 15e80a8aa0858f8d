package orbitext

import (

	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/orbitext/glbuild"
)

// Translate moves the SDF s in the given direction (dirX, dirY, dirZ) and returns the result.
func (bld *Builder) Translate(s glbuild.Shader3D, dirX, dirY, dirZ float32) glbuild.Shader3D {
	if s == nil {
		bld.nilsdf("Translate")
	}
	return &translate{s: s, p: ms3.Vec{X: dirX, Y: dirY, Z: dirZ}}
}

type translate struct {
	s glbuild.Shader3D
	p ms3.Vec
}

func (u *translate) Bounds() ms3.Box {
	return translateBox(u.s.Bounds(), u.p)
}

func (s *translate) ForEachChild(userData any, fn func(userData any, s *glbuild.Shader3D) error) error {
	return fn(userData, &s.s)
}

func (s *translate) AppendShaderName(b []byte) []byte {
	b = append(b, "translate"...)
	b = glbuild.AppendFloats(b, '_', 'n', 'p', s.p.X, s.p.Y, s.p.Z)
	return glbuild.AppendHashedName(b, "_", s.s)
}

func (s *translate) AppendShaderBody(b []byte) []byte {
	b = glbuild.AppendVec3Decl(b, "t", s.p)
	b = append(b, "return "...)
	b = s.s.AppendShaderName(b)
	b = append(b, "(p-t);"...)
	return b
}

// Scale scales s by scaleFactor around the origin.
func (bld *Builder) Scale(s glbuild.Shader3D, scaleFactor float32) glbuild.Shader3D {
	if s == nil {
		bld.nilsdf("Scale")
	}
	if scaleFactor < epstol {
		bld.shapeErrorf("zero or negative scale factor")
	}
	return &scale{s: s, scale: scaleFactor}
}

type scale struct {
	s     glbuild.Shader3D
	scale float32
}

func (u *scale) Bounds() ms3.Box {
	b := u.s.Bounds()
	return ms3.Box{Min: ms3.Scale(u.scale, b.Min), Max: ms3.Scale(u.scale, b.Max)}
}

func (s *scale) ForEachChild(userData any, fn func(userData any, s *glbuild.Shader3D) error) error {
	return fn(userData, &s.s)
}

func (s *scale) AppendShaderName(b []byte) []byte {
	b = append(b, "scale"...)
	b = glbuild.AppendFloat(b, 'n', 'p', s.scale)
	return glbuild.AppendHashedName(b, "_", s.s)
}

func (s *scale) AppendShaderBody(b []byte) []byte {
	b = glbuild.AppendFloatDecl(b, "s", s.scale)
	b = append(b, "return "...)
	b = s.s.AppendShaderName(b)
	b = append(b, "(p/s)*s;"...)
	return b
}

// Offset adds sdfAdd to the entire argument SDF. If sdfAdd is negative this will
// round edges and increase the dimension of flat surfaces of the SDF by the absolute magnitude.
// This is how text bevels are produced.
func (bld *Builder) Offset(s glbuild.Shader3D, sdfAdd float32) glbuild.Shader3D {
	if s == nil {
		bld.nilsdf("Offset")
	}
	return &offset{s: s, off: sdfAdd}
}

type offset struct {
	s   glbuild.Shader3D
	off float32
}

func (u *offset) Bounds() ms3.Box {
	bb := u.s.Bounds()
	a := ms3.AddScalar(-u.off, bb.Max)
	b := ms3.AddScalar(u.off, bb.Min)
	return ms3.Box{
		Min: ms3.Vec{X: minf(a.X, b.X), Y: minf(a.Y, b.Y), Z: minf(a.Z, b.Z)},
		Max: ms3.MaxElem(a, b),
	}
}

func (s *offset) ForEachChild(userData any, fn func(userData any, s *glbuild.Shader3D) error) error {
	return fn(userData, &s.s)
}

func (s *offset) AppendShaderName(b []byte) []byte {
	b = append(b, "offset"...)
	b = glbuild.AppendFloat(b, 'n', 'p', s.off)
	return glbuild.AppendHashedName(b, "_", s.s)
}

func (s *offset) AppendShaderBody(b []byte) []byte {
	b = append(b, "return "...)
	b = s.s.AppendShaderName(b)
	b = append(b, "(p)+("...)
	b = glbuild.AppendFloat(b, '-', '.', s.off)
	b = append(b, ')', ';')
	return b
}
