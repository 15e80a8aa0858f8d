package assemble

import (
	"errors"
	"fmt"

	"github.com/soypat/orbitext"
	"github.com/soypat/orbitext/forge/textsdf"
	"github.com/soypat/orbitext/glbuild"
	"github.com/soypat/orbitext/scene"
)

// TextOptions controls the geometry of the extruded text. Lengths are in em units.
type TextOptions struct {
	// Height is the extrusion depth.
	Height float32 `toml:"height"`
	// BevelThickness is how far the bevel extends the text depth on each face.
	BevelThickness float32 `toml:"bevel_thickness"`
	// BevelSize is how far the bevel grows the outline. Also the rounding radius.
	BevelSize float32 `toml:"bevel_size"`
	// Scale is applied after extrusion.
	Scale float32 `toml:"scale"`
}

// DefaultTextOptions returns the text geometry used by the default scene.
func DefaultTextOptions() TextOptions {
	return TextOptions{
		Height:         1,
		BevelThickness: 0.03,
		BevelSize:      0.02,
		Scale:          0.8,
	}
}

// Validate checks the options describe a buildable shape.
func (opts TextOptions) Validate() error {
	switch {
	case opts.Height <= 0:
		return errors.New("text height must be positive")
	case opts.Scale <= 0:
		return errors.New("text scale must be positive")
	case opts.BevelSize < 0 || opts.BevelThickness < 0:
		return errors.New("negative text bevel")
	case opts.Height+2*(opts.BevelThickness-opts.BevelSize) < 0:
		return errors.New("text bevel size too large for height")
	}
	return nil
}

// TextMesh is the extruded text node. It rotates backwards on every axis each frame.
type TextMesh struct {
	*scene.Mesh
	// Step is the per-axis angle subtracted on every Advance.
	Step float32
	// Outline is the unextruded 2D text in em units.
	Outline glbuild.Shader2D
}

// Advance implements [scene.Updatable].
func (t *TextMesh) Advance() {
	t.Rotation.Add(-t.Step, -t.Step, -t.Step)
}

// SceneMesh returns the underlying mesh for renderers.
func (t *TextMesh) SceneMesh() *scene.Mesh { return t.Mesh }

// BuildText lays out message, which may contain line breaks, extrudes and bevels it,
// scales it and recenters it on its own bounding box so it rotates about its middle.
func BuildText(bld *orbitext.Builder, font *textsdf.Font, message string, mat *scene.Material, opts TextOptions) (*TextMesh, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	outline, err := font.TextLines(message)
	if err != nil {
		return nil, fmt.Errorf("laying out text: %w", err)
	}
	// Extrude shorter and grow everything by the bevel size so the final depth
	// is Height plus twice the bevel thickness with rounded edges.
	solid := bld.Extrude(outline, opts.Height+2*(opts.BevelThickness-opts.BevelSize))
	if opts.BevelSize > 0 {
		solid = bld.Offset(solid, -opts.BevelSize)
	}
	solid = bld.Scale(solid, opts.Scale)
	center := solid.Bounds().Center()
	solid = bld.Translate(solid, -center.X, -center.Y, -center.Z)
	if err := bld.Err(); err != nil {
		return nil, err
	}
	mesh := scene.NewMesh(solid, mat, scene.KindText)
	mesh.Name = "text"
	return &TextMesh{Mesh: mesh, Step: TextSpin * UnitVelocity, Outline: outline}, nil
}
