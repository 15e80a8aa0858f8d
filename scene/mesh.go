package scene

import (
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/orbitext/glbuild"
)

// Kind tags the geometry a mesh was built from.
type Kind uint8

const (
	KindSphere Kind = iota // sphere
	KindDonut              // torus
	KindBall               // box
	KindText               // extruded text
)

func (k Kind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindDonut:
		return "donut"
	case KindBall:
		return "ball"
	case KindText:
		return "text"
	}
	return "Kind(?)"
}

// MaterialKind selects how a surface is shaded.
type MaterialKind uint8

const (
	// MaterialNormal colors a surface by its normal direction and ignores lights.
	MaterialNormal MaterialKind = iota
	// MaterialLambert shades a diffuse surface with the scene's point lights.
	MaterialLambert
)

// Material describes how a mesh surface is shaded.
type Material struct {
	Kind MaterialKind
	// Color is the diffuse RGB color in 0..1 used by lambert shading.
	Color ms3.Vec
}

// NewNormalMaterial returns a material shaded by surface normals.
func NewNormalMaterial() *Material {
	return &Material{Kind: MaterialNormal, Color: ms3.Vec{X: 1, Y: 1, Z: 1}}
}

// NewLambertMaterial returns a diffuse material of the given color.
func NewLambertMaterial(color ms3.Vec) *Material {
	return &Material{Kind: MaterialLambert, Color: color}
}

// Mesh is a shape placed in the scene. Shape is centered at the mesh origin.
type Mesh struct {
	Node
	Shape    glbuild.Shader3D
	Material *Material
	Kind     Kind
}

// NewMesh returns a mesh of the given shape at the origin.
func NewMesh(shape glbuild.Shader3D, mat *Material, kind Kind) *Mesh {
	return &Mesh{Shape: shape, Material: mat, Kind: kind}
}

// BoundingRadius returns the radius of a sphere centered at the mesh origin
// that contains the whole shape in mesh space, scale included.
func (m *Mesh) BoundingRadius() float32 {
	bb := m.Shape.Bounds()
	r := ms3.Norm(ms3.MaxElem(ms3.AbsElem(bb.Min), ms3.AbsElem(bb.Max)))
	if m.Scale != 0 {
		r *= m.Scale
	}
	return r
}

// Group is a set of meshes rotated as a single unit.
type Group struct {
	Node
	Children []*Mesh
}

// NewGroup returns an empty group at the origin.
func NewGroup(name string) *Group {
	return &Group{Node: Node{Name: name}}
}

// Add appends meshes to the group preserving order.
func (g *Group) Add(meshes ...*Mesh) {
	g.Children = append(g.Children, meshes...)
}

// Len returns the number of meshes in the group.
func (g *Group) Len() int { return len(g.Children) }
