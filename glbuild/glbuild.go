package glbuild

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/soypat/glgl/math/ms2"
	"github.com/soypat/glgl/math/ms3"
)

// VersionStr is the GLSL version directive prepended to generated programs.
const VersionStr = "#version 460\n"

// Shader stores information for automatically generating SDF shader
// functions that can be raymarched on a GPU.
type Shader interface {
	// AppendShaderName appends the name of the GL shader function
	// to the buffer and returns the result. It should be unique to that shader.
	AppendShaderName(b []byte) []byte
	// AppendShaderBody appends the body of the shader function to the
	// buffer and returns the result.
	AppendShaderBody(b []byte) []byte
}

// Shader3D can create SDF shader source code for an arbitrary 3D shape.
type Shader3D interface {
	Shader
	// ForEachChild iterates over the Shader3D's direct Shader3D children.
	// Unary operations have one child i.e: Translate, Scale.
	// Binary operations have two children i.e: Difference.
	ForEachChild(userData any, fn func(userData any, s *Shader3D) error) error
	// Bounds returns the Shader3D's bounding box where the SDF is negative.
	Bounds() ms3.Box
}

// Shader2D can create SDF shader source code for an arbitrary 2D shape.
type Shader2D interface {
	Shader
	// ForEach2DChild iterates over the Shader2D's direct Shader2D children.
	ForEach2DChild(userData any, fn func(userData any, s *Shader2D) error) error
	// Bounds returns the Shader2D's bounding box where the SDF is negative.
	Bounds() ms2.Box
}

// shader3D2D is implemented by 3D shapes built from 2D shapes, such as extrusions.
type shader3D2D interface {
	Shader3D
	ForEach2DChild(userData any, fn func(userData any, s *Shader2D) error) error
}

// Programmer implements shader generation logic for Shader type.
type Programmer struct {
	scratchNodes []Shader
	scratch      []byte
	// names maps shader name hashes to body hashes for checking duplicates.
	names map[uint64]uint64
}

// NewDefaultProgrammer returns a Programmer with reasonable default buffer sizes.
func NewDefaultProgrammer() *Programmer {
	return &Programmer{
		scratchNodes: make([]Shader, 64),
		scratch:      make([]byte, 1024),
		names:        make(map[uint64]uint64),
	}
}

// WriteSDFDecl writes the SDF shader function declarations of s and all its
// descendants and returns the top-level SDF function name. Declarations are
// written dependencies first so the result compiles as-is.
func (p *Programmer) WriteSDFDecl(w io.Writer, s Shader) (baseName string, n int, err error) {
	clear(p.names)
	return p.writeDecl(w, s)
}

// WriteSDFDecls writes the declarations of several root shaders into one program
// and returns their function names in argument order. Declarations shared
// between roots, such as a sphere used by two unions, are written once.
func (p *Programmer) WriteSDFDecls(w io.Writer, roots ...Shader) (names []string, n int, err error) {
	clear(p.names)
	for i, s := range roots {
		name, ngot, err := p.writeDecl(w, s)
		n += ngot
		if err != nil {
			return names, n, fmt.Errorf("root %d: %w", i, err)
		}
		names = append(names, name)
	}
	return names, n, nil
}

func (p *Programmer) writeDecl(w io.Writer, s Shader) (baseName string, n int, err error) {
	baseName, nodes, err := ParseAppendNodes(p.scratchNodes[:0], s)
	if err != nil {
		return "", 0, err
	}
	p.scratchNodes = nodes[:0]
	for i := len(nodes) - 1; i >= 0; i-- {
		var name, body []byte
		p.scratch, name, body = AppendShaderSource(p.scratch[:0], nodes[i])
		nameHash := hash(name, 0)
		bodyHash := hash(body, nameHash)
		gotBody, seen := p.names[nameHash]
		if seen {
			if gotBody != bodyHash {
				return baseName, n, fmt.Errorf("duplicate shader name %q with different bodies", name)
			}
			continue // Identical declaration already written.
		}
		p.names[nameHash] = bodyHash
		ngot, err := w.Write(p.scratch)
		n += ngot
		if err != nil {
			return baseName, n, err
		}
	}
	return baseName, n, nil
}

// ParseAppendNodes parses the shader object tree and appends all nodes in breadth first order
// to the dst Shader argument buffer and returns the result.
func ParseAppendNodes(dst []Shader, root Shader) (baseName string, nodes []Shader, err error) {
	if root == nil {
		return "", nil, errors.New("nil shader object")
	}
	baseName = string(root.AppendShaderName([]byte{}))
	if baseName == "" {
		return "", nil, errors.New("empty shader name")
	}
	dst, err = AppendAllNodes(dst, root)
	if err != nil {
		return "", nil, err
	}
	return baseName, dst, nil
}

// AppendAllNodes BFS iterates over all of root's descendants and appends all nodes
// found to dst.
//
// To generate shaders one must iterate over nodes in reverse order to ensure
// the first iterated nodes are the nodes with no dependencies on other nodes.
func AppendAllNodes(dst []Shader, root Shader) ([]Shader, error) {
	var userData any
	nilChild := errors.New("got nil child in AppendAllNodes")
	start := len(dst)
	dst = append(dst, root)
	for next := start; next < len(dst); next++ {
		obj := dst[next]
		obj3, ok3 := obj.(Shader3D)
		obj2, ok2 := obj.(Shader2D)
		if !ok2 && !ok3 {
			return nil, fmt.Errorf("found shader %T that does not implement Shader3D nor Shader2D", obj)
		}
		var err error
		if ok3 {
			err = obj3.ForEachChild(userData, func(userData any, s *Shader3D) error {
				if s == nil || *s == nil {
					return nilChild
				}
				dst = append(dst, *s)
				return nil
			})
			if obj32, ok32 := obj.(shader3D2D); ok32 && err == nil {
				// Extrusions contain 2D children.
				err = obj32.ForEach2DChild(userData, func(userData any, s *Shader2D) error {
					if s == nil || *s == nil {
						return nilChild
					}
					dst = append(dst, *s)
					return nil
				})
			}
		} else {
			err = obj2.ForEach2DChild(userData, func(userData any, s *Shader2D) error {
				if s == nil || *s == nil {
					return nilChild
				}
				dst = append(dst, *s)
				return nil
			})
		}
		if err != nil {
			return nil, err
		}
	}
	return dst, nil
}

// AppendShaderSource appends the GL code of a single shader to the dst byte buffer.
// name and body byte slices pointing to the result buffer are also returned for convenience.
func AppendShaderSource(dst []byte, s Shader) (result, name, body []byte) {
	dst = append(dst, "float "...)
	nameStart := len(dst)
	dst = s.AppendShaderName(dst)
	nameEnd := len(dst)
	if _, is3D := s.(Shader3D); is3D {
		dst = append(dst, "(vec3 p){\n"...)
	} else {
		dst = append(dst, "(vec2 p){\n"...)
	}
	bodyStart := len(dst)
	dst = s.AppendShaderBody(dst)
	bodyEnd := len(dst)
	dst = append(dst, "\n}\n"...)
	return dst, dst[nameStart:nameEnd], dst[bodyStart:bodyEnd]
}

// AppendHashedName appends prefix followed by a hash of the children's names.
// Used by operations with many children so function names stay short.
func AppendHashedName(b []byte, prefix string, children ...Shader) []byte {
	var scratch [256]byte
	var h uint64 = 0xc0ffee
	for _, child := range children {
		h = hash(child.AppendShaderName(scratch[:0]), h)
	}
	b = append(b, prefix...)
	b = strconv.AppendUint(b, h, 32)
	return b
}

// AppendDistanceDecl appends a float declaration assigning the result of calling s
// with the sdfPositionArgInput argument.
func AppendDistanceDecl(b []byte, floatVarname, sdfPositionArgInput string, s Shader) []byte {
	b = append(b, "float "...)
	b = append(b, floatVarname...)
	b = append(b, '=')
	b = s.AppendShaderName(b)
	b = append(b, '(')
	b = append(b, sdfPositionArgInput...)
	b = append(b, ");\n"...)
	return b
}

func AppendVec3Decl(b []byte, vec3Varname string, v ms3.Vec) []byte {
	b = append(b, "vec3 "...)
	b = append(b, vec3Varname...)
	b = append(b, "=vec3("...)
	b = AppendFloats(b, ',', '-', '.', v.X, v.Y, v.Z)
	b = append(b, ')', ';', '\n')
	return b
}

func AppendVec2Decl(b []byte, vec2Varname string, v ms2.Vec) []byte {
	b = append(b, "vec2 "...)
	b = append(b, vec2Varname...)
	b = append(b, "=vec2("...)
	b = AppendFloats(b, ',', '-', '.', v.X, v.Y)
	b = append(b, ')', ';', '\n')
	return b
}

func AppendFloatDecl(b []byte, floatVarname string, v float32) []byte {
	b = append(b, "float "...)
	b = append(b, floatVarname...)
	b = append(b, '=')
	b = AppendFloat(b, '-', '.', v)
	b = append(b, ';', '\n')
	return b
}

const decimalDigits = 9

// AppendFloat appends v to b replacing the negative sign and decimal point
// with neg and decimal. Useful for embedding numbers in GLSL identifiers.
func AppendFloat(b []byte, neg, decimal byte, v float32) []byte {
	start := len(b)
	b = strconv.AppendFloat(b, float64(v), 'f', decimalDigits, 32)
	idx := bytes.IndexByte(b[start:], '.')
	if decimal != '.' && idx >= 0 {
		b[start+idx] = decimal
	}
	if b[start] == '-' {
		b[start] = neg
	}
	// Finally trim zeroes.
	end := len(b)
	for i := len(b) - 1; idx >= 0 && i > idx+start && b[i] == '0'; i-- {
		end--
	}
	return b[:end]
}

func AppendFloats(b []byte, sep, neg, decimal byte, s ...float32) []byte {
	for i, v := range s {
		b = AppendFloat(b, neg, decimal, v)
		if sep != 0 && i != len(s)-1 {
			b = append(b, sep)
		}
	}
	return b
}

const maxLineLim = 500

func AppendVec2SliceDecl(b []byte, vec2Varname string, vecs []ms2.Vec) []byte {
	lineStart := len(b)
	b = append(b, "vec2["...)
	b = strconv.AppendInt(b, int64(len(vecs)), 10)
	b = append(b, "] "...)
	b = append(b, vec2Varname...)
	b = append(b, "=vec2["...)
	b = strconv.AppendInt(b, int64(len(vecs)), 10)
	b = append(b, "]("...)
	for i, v := range vecs {
		b = append(b, "vec2("...)
		b = AppendFloats(b, ',', '-', '.', v.X, v.Y)
		b = append(b, ')')
		if i != len(vecs)-1 {
			b = append(b, ',')
			if len(b)-lineStart > maxLineLim {
				b = append(b, '\n') // Break up line for VERY long polygon vertex lists.
				lineStart = len(b)
			}
		}
	}
	b = append(b, ");\n"...)
	return b
}

func hash(b []byte, in uint64) uint64 {
	x := in
	for len(b) >= 8 {
		x ^= binary.LittleEndian.Uint64(b)
		x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
		x = (x ^ (x >> 27)) * 0x94d049bb133111eb
		x ^= x >> 31
		b = b[8:]
	}
	if len(b) > 0 {
		var buf [8]byte
		copy(buf[:], b)
		x ^= binary.LittleEndian.Uint64(buf[:])
		x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
		x = (x ^ (x >> 27)) * 0x94d049bb133111eb
		x ^= x >> 31
	}
	return x
}
