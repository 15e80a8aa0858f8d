// Package scene implements the scene graph drawn by the renderers: meshes,
// groups of meshes, point lights and a perspective camera. The graph is
// owned and mutated by a single loop goroutine; it is not safe for
// concurrent use.
package scene

import (
	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

const twoPi = 2 * math32.Pi

// Euler is a rotation in radians applied in X, then Y, then Z order
// about the object's own origin.
type Euler struct {
	X, Y, Z float32
}

// Add increments each axis by the given amounts. Angles are wrapped
// into (-2π, 2π) so they keep float32 precision over long runs.
// The wrap does not change the represented orientation.
func (e *Euler) Add(dx, dy, dz float32) {
	e.X = math32.Mod(e.X+dx, twoPi)
	e.Y = math32.Mod(e.Y+dy, twoPi)
	e.Z = math32.Mod(e.Z+dz, twoPi)
}

// Matrix returns the rotation matrix for e.
func (e Euler) Matrix() Mat3 {
	a, b := math32.Cos(e.X), math32.Sin(e.X)
	c, d := math32.Cos(e.Y), math32.Sin(e.Y)
	ce, f := math32.Cos(e.Z), math32.Sin(e.Z)
	ae, af, be, bf := a*ce, a*f, b*ce, b*f
	return Mat3{
		c * ce, -c * f, d,
		af + be*d, ae - bf*d, -b * c,
		bf - ae*d, be + af*d, a * c,
	}
}

// Mat3 is a row-major 3x3 matrix.
type Mat3 [9]float32

// IdentityMat3 returns the identity matrix.
func IdentityMat3() Mat3 { return Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1} }

// Apply returns m*v.
func (m Mat3) Apply(v ms3.Vec) ms3.Vec {
	return ms3.Vec{
		X: m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		Y: m[3]*v.X + m[4]*v.Y + m[5]*v.Z,
		Z: m[6]*v.X + m[7]*v.Y + m[8]*v.Z,
	}
}

// Mul returns m*b.
func (m Mat3) Mul(b Mat3) (r Mat3) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i*3+j] = m[i*3]*b[j] + m[i*3+1]*b[3+j] + m[i*3+2]*b[6+j]
		}
	}
	return r
}

// Transpose returns the transpose of m, which is its inverse for rotations.
func (m Mat3) Transpose() Mat3 {
	return Mat3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// Transform maps points from an object's local space to its parent's space.
type Transform struct {
	Rot   Mat3
	Pos   ms3.Vec
	Scale float32
}

// Apply maps local point p to parent space.
func (t Transform) Apply(p ms3.Vec) ms3.Vec {
	return ms3.Add(t.Pos, ms3.Scale(t.Scale, t.Rot.Apply(p)))
}

// Inverse maps parent space point p into local space.
func (t Transform) Inverse(p ms3.Vec) ms3.Vec {
	return ms3.Scale(1/t.Scale, t.Rot.Transpose().Apply(ms3.Sub(p, t.Pos)))
}

// Mul composes t with a child transform so the result maps child space to t's parent space.
func (t Transform) Mul(child Transform) Transform {
	return Transform{
		Rot:   t.Rot.Mul(child.Rot),
		Pos:   t.Apply(child.Pos),
		Scale: t.Scale * child.Scale,
	}
}

// Object is implemented by everything that can be added to a [Scene].
type Object interface {
	AsNode() *Node
}

// Node holds the placement shared by all scene objects.
type Node struct {
	Name     string
	Position ms3.Vec
	Rotation Euler
	// Scale is a uniform scale factor. Zero is treated as one.
	Scale float32
}

// AsNode implements [Object].
func (n *Node) AsNode() *Node { return n }

// Local returns the transform from the node's space to its parent's space.
func (n *Node) Local() Transform {
	s := n.Scale
	if s == 0 {
		s = 1
	}
	return Transform{Rot: n.Rotation.Matrix(), Pos: n.Position, Scale: s}
}

// Updatable is implemented by scene objects that change every frame.
type Updatable interface {
	// Advance performs one per-frame update step.
	Advance()
}
