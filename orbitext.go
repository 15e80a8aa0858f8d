// Package orbitext builds the signed distance field (SDF) shapes that make up
// the orbiting text scene: satellite primitives (torus, box, sphere) and
// extruded, bevelled glyph outlines. Every shape can be evaluated on the CPU
// via [gleval.SDF3] and emitted as GLSL via [glbuild.Shader3D].
package orbitext

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms2"
	"github.com/soypat/glgl/math/ms3"
)

const (
	largenum = 1e20
	// epstol is used to check for badly conditioned denominators
	// such as lengths used for normalization or scaling.
	epstol = 6e-7
)

// Builder wraps all SDF primitive and operation logic generation.
// Provides error handling strategies with panics or error accumulation during shape generation.
type Builder struct {
	// NoDimensionPanic accumulates invalid dimension errors instead of panicking.
	// Accumulated errors are returned by Err.
	NoDimensionPanic bool
	accumErrs        []error
}

// Err returns all errors accumulated during shape generation joined. Returns nil if no errors occurred.
func (bld *Builder) Err() error {
	if len(bld.accumErrs) == 0 {
		return nil
	}
	return errors.Join(bld.accumErrs...)
}

// ClearErrors discards accumulated errors.
func (bld *Builder) ClearErrors() {
	bld.accumErrs = bld.accumErrs[:0]
}

func (bld *Builder) shapeErrorf(msg string, args ...any) {
	if !bld.NoDimensionPanic {
		panic(fmt.Sprintf(msg, args...))
	}
	bld.accumErrs = append(bld.accumErrs, fmt.Errorf(msg, args...))
}

func (*Builder) nilsdf(msg string) {
	panic("nil SDF argument: " + msg)
}

// These interfaces are implemented by all SDF interfaces such as SDF3/2 and Shader3D/2D.
type (
	bounder2 = interface{ Bounds() ms2.Box }
	bounder3 = interface{ Bounds() ms3.Box }
)

func minf(a, b float32) float32 {
	return math32.Min(a, b)
}

func maxf(a, b float32) float32 {
	return math32.Max(a, b)
}

func hypotf(a, b float32) float32 {
	return math32.Hypot(a, b)
}

func absf(a float32) float32 {
	return math32.Abs(a)
}

func translateBox(bb ms3.Box, p ms3.Vec) ms3.Box {
	return ms3.Box{Min: ms3.Add(bb.Min, p), Max: ms3.Add(bb.Max, p)}
}

func translateBox2(bb ms2.Box, p ms2.Vec) ms2.Box {
	return ms2.Box{Min: ms2.Add(bb.Min, p), Max: ms2.Add(bb.Max, p)}
}
