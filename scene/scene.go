package scene

import (
	"errors"
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

// Scene is the root of the scene graph. Objects are drawn in insertion order.
type Scene struct {
	// Background is the optional panoramic cubemap drawn where no mesh is hit.
	Background *Cubemap
	// ClearColor is used when Background is nil.
	ClearColor color.RGBA
	children   []Object
}

// New returns an empty scene with a black clear color.
func New() *Scene {
	return &Scene{ClearColor: color.RGBA{A: 255}}
}

// Add appends objects to the top level of the scene.
func (s *Scene) Add(objs ...Object) {
	for _, obj := range objs {
		if obj == nil {
			panic("nil object added to scene")
		}
	}
	s.children = append(s.children, objs...)
}

// Children returns the top-level objects. The returned slice must not be modified.
func (s *Scene) Children() []Object { return s.children }

// Lights returns the point lights at the top level of the scene.
func (s *Scene) Lights() []*PointLight {
	var lights []*PointLight
	for _, obj := range s.children {
		if l, ok := obj.(*PointLight); ok {
			lights = append(lights, l)
		}
	}
	return lights
}

// PlacedMesh is a mesh together with its mesh-to-world transform.
type PlacedMesh struct {
	Mesh  *Mesh
	World Transform
}

// AppendMeshes appends all meshes in the scene, including those inside groups,
// with their world transforms.
func (s *Scene) AppendMeshes(dst []PlacedMesh) []PlacedMesh {
	for _, obj := range s.children {
		switch v := obj.(type) {
		case *Mesh:
			dst = append(dst, PlacedMesh{Mesh: v, World: v.Local()})
		case *Group:
			gt := v.Local()
			for _, m := range v.Children {
				dst = append(dst, PlacedMesh{Mesh: m, World: gt.Mul(m.Local())})
			}
		case interface{ SceneMesh() *Mesh }:
			m := v.SceneMesh()
			dst = append(dst, PlacedMesh{Mesh: m, World: m.Local()})
		}
	}
	return dst
}

// Cubemap face order.
const (
	FacePosX = iota
	FaceNegX
	FacePosY
	FaceNegY
	FacePosZ
	FaceNegZ
)

// Cubemap is a six face panoramic texture. All faces share a square size.
type Cubemap struct {
	Faces [6]*image.RGBA
}

// Validate checks that all faces are present, square and of the same size.
func (c *Cubemap) Validate() error {
	var size image.Point
	for i, f := range c.Faces {
		if f == nil {
			return errors.New("missing cubemap face")
		}
		sz := f.Bounds().Size()
		if sz.X != sz.Y || sz.X == 0 {
			return errors.New("cubemap faces must be square and non-empty")
		}
		if i > 0 && sz != size {
			return errors.New("cubemap faces differ in size")
		}
		size = sz
	}
	return nil
}

// Size returns the edge length in pixels of each face.
func (c *Cubemap) Size() int { return c.Faces[0].Bounds().Dx() }

// Sample returns the texel seen looking in direction dir, which need not be normalized.
func (c *Cubemap) Sample(dir ms3.Vec) color.RGBA {
	ax, ay, az := math32.Abs(dir.X), math32.Abs(dir.Y), math32.Abs(dir.Z)
	var face int
	var sc, tc, ma float32
	switch {
	case ax >= ay && ax >= az:
		ma = ax
		tc = -dir.Y
		if dir.X > 0 {
			face, sc = FacePosX, -dir.Z
		} else {
			face, sc = FaceNegX, dir.Z
		}
	case ay >= az:
		ma = ay
		sc = dir.X
		if dir.Y > 0 {
			face, tc = FacePosY, dir.Z
		} else {
			face, tc = FaceNegY, -dir.Z
		}
	default:
		ma = az
		tc = -dir.Y
		if dir.Z > 0 {
			face, sc = FacePosZ, dir.X
		} else {
			face, sc = FaceNegZ, -dir.X
		}
	}
	if ma == 0 {
		return color.RGBA{A: 255}
	}
	img := c.Faces[face]
	b := img.Bounds()
	n := b.Dx()
	u := int((sc/ma + 1) / 2 * float32(n))
	v := int((tc/ma + 1) / 2 * float32(n))
	u = min(max(u, 0), n-1)
	v = min(max(v, 0), n-1)
	return img.RGBAAt(b.Min.X+u, b.Min.Y+v)
}
