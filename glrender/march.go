package glrender

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	glms3 "github.com/soypat/glgl/math/ms3"
)

// A cube splits into six tetrahedra which emit at most two triangles each.
const maxCubeTriangles = 12

// cornerIndex maps a corner's axis bits (x | y<<1 | z<<2) to its cube corner number.
var cornerIndex = [8]int{0, 1, 3, 2, 4, 5, 7, 6}

// Six tetrahedra filling a cube, all sharing the 0-6 diagonal so neighbouring
// cubes split shared faces identically. Corners are numbered
// 0:(0,0,0) 1:(1,0,0) 2:(1,1,0) 3:(0,1,0) 4:(0,0,1) 5:(1,0,1) 6:(1,1,1) 7:(0,1,1).
var cubeTetras = [6][4]int{
	{0, 5, 1, 6}, {0, 1, 2, 6}, {0, 2, 3, 6},
	{0, 3, 7, 6}, {0, 7, 4, 6}, {0, 4, 5, 6},
}

// marchCubes consumes the corners of resolution sized cubes, 8 positions per
// cube in any order, and appends the surface crossing them to dst. It stops
// early when dst cannot hold the worst case of another cube and returns the
// triangles written and positions consumed.
func marchCubes(dst []ms3.Triangle, pos []ms3.Vec, dist []float32, res float32) (nTri, nPos int) {
	var (
		p [8]glms3.Vec
		d [8]float32
	)
	for nPos+8 <= len(pos) {
		if len(dst)-nTri < maxCubeTriangles {
			break
		}
		cpos, cdist := pos[nPos:nPos+8], dist[nPos:nPos+8]
		nPos += 8
		inside := 0
		for _, v := range cdist {
			if v < 0 {
				inside++
			}
		}
		if inside == 0 || inside == 8 {
			continue
		}
		origin := toGL(cpos[0])
		for _, c := range cpos[1:] {
			origin.X = math32.Min(origin.X, c.X)
			origin.Y = math32.Min(origin.Y, c.Y)
			origin.Z = math32.Min(origin.Z, c.Z)
		}
		half := res / 2
		for i, c := range cpos {
			bits := 0
			if c.X > origin.X+half {
				bits |= 1
			}
			if c.Y > origin.Y+half {
				bits |= 2
			}
			if c.Z > origin.Z+half {
				bits |= 4
			}
			k := cornerIndex[bits]
			p[k], d[k] = toGL(c), cdist[i]
		}
		for _, tet := range cubeTetras {
			nTri += polygonizeTetra(dst[nTri:],
				[4]glms3.Vec{p[tet[0]], p[tet[1]], p[tet[2]], p[tet[3]]},
				[4]float32{d[tet[0]], d[tet[1]], d[tet[2]], d[tet[3]]},
			)
		}
	}
	return nTri, nPos
}

// polygonizeTetra writes the surface crossing one tetrahedron to dst: nothing,
// a triangle when one corner differs in sign from the rest, or a quad when
// the corners split two and two. Returns the triangles written.
func polygonizeTetra(dst []ms3.Triangle, p [4]glms3.Vec, d [4]float32) int {
	var in, out [4]int
	nin, nout := 0, 0
	for i := range d {
		if d[i] < 0 {
			in[nin] = i
			nin++
		} else {
			out[nout] = i
			nout++
		}
	}
	edge := func(a, b int) glms3.Vec {
		t := d[a] / (d[a] - d[b])
		return glms3.Add(p[a], glms3.Scale(t, glms3.Sub(p[b], p[a])))
	}
	var inC, outC glms3.Vec
	for _, i := range in[:nin] {
		inC = glms3.Add(inC, glms3.Scale(1/float32(nin), p[i]))
	}
	for _, i := range out[:nout] {
		outC = glms3.Add(outC, glms3.Scale(1/float32(nout), p[i]))
	}
	outward := glms3.Sub(outC, inC)
	switch nin {
	case 1:
		a := in[0]
		dst[0] = oriented(outward, edge(a, out[0]), edge(a, out[1]), edge(a, out[2]))
		return 1
	case 3:
		a := out[0]
		dst[0] = oriented(outward, edge(in[0], a), edge(in[1], a), edge(in[2], a))
		return 1
	case 2:
		a, b, c, e := in[0], in[1], out[0], out[1]
		pac, pae, pbe, pbc := edge(a, c), edge(a, e), edge(b, e), edge(b, c)
		dst[0] = oriented(outward, pac, pae, pbe)
		dst[1] = oriented(outward, pac, pbe, pbc)
		return 2
	}
	return 0
}

// oriented returns the triangle abc wound counter-clockwise seen from outward.
func oriented(outward, a, b, c glms3.Vec) ms3.Triangle {
	n := glms3.Cross(glms3.Sub(b, a), glms3.Sub(c, a))
	if glms3.Dot(n, outward) < 0 {
		b, c = c, b
	}
	return ms3.Triangle{fromGL(a), fromGL(b), fromGL(c)}
}
