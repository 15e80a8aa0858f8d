package orbitext

import (
	"errors"
	"math"
	"strconv"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms2"
	"github.com/soypat/orbitext/glbuild"
)

type poly2D struct {
	vert []ms2.Vec
}

// NewPolygon creates a polygon from a set of vertices. The polygon can be self-intersecting.
// A closing vertex equal to the first one is discarded.
func (bld *Builder) NewPolygon(vertices []ms2.Vec) glbuild.Shader2D {
	vertices, err := validatePolygon(vertices)
	if err != nil {
		bld.shapeErrorf(err.Error())
	}
	return &poly2D{vert: vertices}
}

func validatePolygon(vertices []ms2.Vec) ([]ms2.Vec, error) {
	if len(vertices) == 0 {
		return vertices, errors.New("polygon needs at least 3 distinct vertices")
	}
	prevIdx := len(vertices) - 1
	if vertices[0] == vertices[prevIdx] {
		vertices = vertices[:prevIdx] // Polygon closes automatically.
		prevIdx--
	}
	if len(vertices) < 3 {
		return vertices, errors.New("polygon needs at least 3 distinct vertices")
	}
	for i := range vertices {
		if math32.IsNaN(vertices[i].X) || math32.IsNaN(vertices[i].Y) {
			return vertices, errors.New("NaN value in vertices")
		}
		if vertices[i] == vertices[prevIdx] {
			return vertices, errors.New("found two consecutive equal vertices in polygon")
		}
		prevIdx = i
	}
	return vertices, nil
}

func (c *poly2D) Bounds() ms2.Box {
	min := ms2.Vec{X: largenum, Y: largenum}
	max := ms2.Vec{X: -largenum, Y: -largenum}
	for _, v := range c.vert {
		min = ms2.MinElem(min, v)
		max = ms2.MaxElem(max, v)
	}
	return ms2.Box{Min: min, Max: max}
}

func (c *poly2D) AppendShaderName(b []byte) []byte {
	var hash uint64 = 0xfafa0fa_c0feebeef
	for i, v := range c.vert {
		// Rotate per vertex so permuted outlines do not collide.
		hash = hash<<7 | hash>>57
		hash ^= uint64(math.Float32bits(v.X)) + uint64(i)
		hash ^= uint64(math.Float32bits(v.Y)) << 32
	}
	b = append(b, "poly2D"...)
	b = strconv.AppendUint(b, hash, 32)
	return b
}

const polyShader = `const int num = v.length();
float d = dot(p-v[0],p-v[0]);
float s = 1.0;
for( int i=0, j=num-1; i<num; j=i, i++ )
{
	vec2 e = v[j] - v[i];
	vec2 w = p - v[i];
	vec2 b = w - e*clamp( dot(w,e)/dot(e,e), 0.0, 1.0 );
	d = min( d, dot(b,b) );
	bvec3 cond = bvec3( p.y>=v[i].y,
						p.y <v[j].y,
						e.x*w.y>e.y*w.x );
	if( all(cond) || all(not(cond)) ) s=-s;
}
return s*sqrt(d);
`

func (c *poly2D) AppendShaderBody(b []byte) []byte {
	b = glbuild.AppendVec2SliceDecl(b, "v", c.vert)
	b = append(b, polyShader...)
	return b
}

func (c *poly2D) ForEach2DChild(userData any, fn func(userData any, s *glbuild.Shader2D) error) error {
	return nil
}
