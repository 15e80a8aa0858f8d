// Package assemble composes the orbiting text scene: a group of satellite
// shapes scattered around the origin, three point lights, a perspective
// camera and, once the font finishes loading, an extruded text mesh.
package assemble

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/orbitext"
	"github.com/soypat/orbitext/glbuild"
	"github.com/soypat/orbitext/scene"
)

const (
	CameraFOV  = 45 // Vertical field of view in degrees.
	CameraNear = 0.1
	CameraFar  = 1000
	CameraDist = 15

	LightIntensity = 0.75
	// UnitVelocity is the base angular increment in radians per frame.
	UnitVelocity = 0.0001
	// GroupSpin multiplies UnitVelocity for the satellite group rotation.
	GroupSpin = 5.5
	// TextSpin multiplies UnitVelocity for the text rotation, which runs backwards.
	TextSpin = 4

	// SatelliteRadius sizes every satellite shape.
	SatelliteRadius = 0.5
	// DefaultRange is used by RandomCoordinate for non-positive ranges.
	DefaultRange = 40
)

// ParseKind maps a satellite kind name to its geometry. "donut" is a torus and
// "ball" is a box. Any other name, "ring" included, falls back to a sphere.
func ParseKind(s string) scene.Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "donut":
		return scene.KindDonut
	case "ball":
		return scene.KindBall
	}
	return scene.KindSphere
}

// NewSatelliteShape returns the shape of a satellite of the given kind.
func NewSatelliteShape(bld *orbitext.Builder, kind scene.Kind) glbuild.Shader3D {
	const r = SatelliteRadius
	switch kind {
	case scene.KindDonut:
		return bld.NewTorus(r, r/2)
	case scene.KindBall:
		return bld.NewBox(r, r, r, 0)
	}
	return bld.NewSphere(r)
}

// RandomCoordinate returns an integer valued coordinate in [-h, h] where
// h is rangeRandom/2 rounded down. Non-positive ranges use DefaultRange.
func RandomCoordinate(rng *rand.Rand, rangeRandom int) float32 {
	if rangeRandom <= 0 {
		rangeRandom = DefaultRange
	}
	c := math32.Ceil((rng.Float32() - 0.5) * float32(rangeRandom))
	return math32.Min(c, float32(rangeRandom/2))
}

// FactoryGeometries returns quantity satellites of the named kind, each placed at
// an independent random coordinate per axis within rangeRandom. All meshes share one shape.
func FactoryGeometries(bld *orbitext.Builder, kind string, quantity, rangeRandom int, mat *scene.Material, rng *rand.Rand) ([]*scene.Mesh, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("negative satellite quantity %d", quantity)
	} else if quantity == 0 {
		return nil, nil
	}
	k := ParseKind(kind)
	shape := NewSatelliteShape(bld, k)
	if err := bld.Err(); err != nil {
		return nil, err
	}
	meshes := make([]*scene.Mesh, quantity)
	for i := range meshes {
		m := scene.NewMesh(shape, mat, k)
		m.Name = kind
		m.Position = ms3.Vec{
			X: RandomCoordinate(rng, rangeRandom),
			Y: RandomCoordinate(rng, rangeRandom),
			Z: RandomCoordinate(rng, rangeRandom),
		}
		meshes[i] = m
	}
	return meshes, nil
}

// NewPointLights returns the three scene lights: white, intensity LightIntensity, no decay and no shadows.
func NewPointLights() [3]*scene.PointLight {
	return [3]*scene.PointLight{
		scene.NewPointLight("light0", ms3.Vec{X: 0, Y: 200, Z: 0}, LightIntensity),
		scene.NewPointLight("light1", ms3.Vec{X: 100, Y: 200, Z: 10}, LightIntensity),
		scene.NewPointLight("light2", ms3.Vec{X: -100, Y: -200, Z: -100}, LightIntensity),
	}
}

// NewCamera returns a perspective camera at (0,0,CameraDist) looking at the origin.
// Non-positive dimensions leave the aspect ratio at 1.
func NewCamera(width, height int) *scene.Camera {
	c := &scene.Camera{
		FOV:      CameraFOV,
		Aspect:   1,
		Near:     CameraNear,
		Far:      CameraFar,
		Position: ms3.Vec{Z: CameraDist},
	}
	if width > 0 && height > 0 {
		c.Aspect = float32(width) / float32(height)
	}
	c.LookAt(ms3.Vec{})
	return c
}

// NewMaterial returns the material named by name: "normal" or "lambert".
func NewMaterial(name string) (*scene.Material, error) {
	switch name {
	case "", "normal":
		return scene.NewNormalMaterial(), nil
	case "lambert":
		return scene.NewLambertMaterial(ms3.Vec{X: 0.9, Y: 0.9, Z: 0.9}), nil
	}
	return nil, fmt.Errorf("unknown material %q", name)
}
