package scene

import "github.com/soypat/glgl/math/ms3"

// PointLight is an omnidirectional light with a position in world coordinates.
type PointLight struct {
	Node
	// Color is the RGB color of the light at full intensity in 0..1.
	Color ms3.Vec
	// Intensity multiplies Color.
	Intensity float32
	// Distance is the range of the light. Zero means no decay with distance.
	Distance float32
	// CastShadow is carried for completeness. Renderers do not draw shadows.
	CastShadow bool
}

// NewPointLight returns a white light at pos.
func NewPointLight(name string, pos ms3.Vec, intensity float32) *PointLight {
	return &PointLight{
		Node:      Node{Name: name, Position: pos},
		Color:     ms3.Vec{X: 1, Y: 1, Z: 1},
		Intensity: intensity,
	}
}

// Attenuation returns the light's intensity factor at distance d from the light.
func (l *PointLight) Attenuation(d float32) float32 {
	if l.Distance <= 0 {
		return l.Intensity
	}
	if d >= l.Distance {
		return 0
	}
	f := 1 - d/l.Distance
	return l.Intensity * f * f
}
