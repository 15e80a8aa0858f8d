// Package glrender converts SDFs into other representations: triangle
// meshes for export and raster images of 2D outlines.
package glrender

import (
	"io"

	"github.com/soypat/geometry/ms3"
	glms3 "github.com/soypat/glgl/math/ms3"
)

const sqrt3 = 1.73205080757

// Renderer streams the triangles of a surface.
type Renderer interface {
	ReadTriangles(dst []ms3.Triangle, userData any) (n int, err error)
}

// RenderAll reads the full contents of a Renderer and returns the slice read.
// Like [io.ReadAll] it does not return io.EOF as an error.
func RenderAll(r Renderer, userData any) ([]ms3.Triangle, error) {
	const startSize = 4096
	var err error
	var nt int
	result := make([]ms3.Triangle, 0, startSize)
	buf := make([]ms3.Triangle, startSize)
	for {
		nt, err = r.ReadTriangles(buf, userData)
		if err == nil || err == io.EOF {
			result = append(result, buf[:nt]...)
		}
		if err != nil {
			break
		}
	}
	if err == io.EOF {
		return result, nil
	}
	return result, err
}

// TriangleNormal returns the unit normal of t following the right hand rule.
// Degenerate triangles return the zero vector.
func TriangleNormal(t ms3.Triangle) ms3.Vec {
	a, b, c := toGL(t[0]), toGL(t[1]), toGL(t[2])
	n := glms3.Cross(glms3.Sub(b, a), glms3.Sub(c, a))
	l := glms3.Norm(n)
	if l == 0 {
		return ms3.Vec{}
	}
	return fromGL(glms3.Scale(1/l, n))
}

func aligndown(v, alignto int) int {
	return v &^ (alignto - 1)
}

func toGL(v ms3.Vec) glms3.Vec {
	return glms3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

func fromGL(v glms3.Vec) ms3.Vec {
	return ms3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}
