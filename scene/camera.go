package scene

import (
	"errors"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

// Camera is a perspective camera looking at Target.
type Camera struct {
	Position ms3.Vec
	Target   ms3.Vec
	Up       ms3.Vec
	// FOV is the vertical field of view in degrees.
	FOV    float32
	Aspect float32
	Near   float32
	Far    float32
	// Projection is the column-major perspective matrix, refreshed by UpdateProjection.
	Projection [16]float32
}

// Defaults sets a 45 degree camera at (0,0,15) looking at the origin.
func (c *Camera) Defaults() {
	c.FOV = 45
	c.Aspect = 1
	c.Near = 0.1
	c.Far = 1000
	c.Position = ms3.Vec{Z: 15}
	c.LookAt(ms3.Vec{})
}

// LookAt points the camera at target keeping positive Y up.
func (c *Camera) LookAt(target ms3.Vec) {
	c.Target = target
	c.Up = ms3.Vec{Y: 1}
	c.UpdateProjection()
}

// SetAspect sets the aspect ratio to width/height and refreshes the projection.
func (c *Camera) SetAspect(width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.New("non-positive camera viewport dimension")
	}
	c.Aspect = float32(width) / float32(height)
	c.UpdateProjection()
	return nil
}

// UpdateProjection recomputes Projection from FOV, Aspect, Near and Far.
func (c *Camera) UpdateProjection() {
	f := 1 / math32.Tan(c.FOV*math32.Pi/360)
	nf := 1 / (c.Near - c.Far)
	c.Projection = [16]float32{
		f / c.Aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (c.Far + c.Near) * nf, -1,
		0, 0, 2 * c.Far * c.Near * nf, 0,
	}
}

// Basis returns the camera's right, up and forward unit vectors in world space.
func (c *Camera) Basis() (right, up, forward ms3.Vec) {
	forward = ms3.Unit(ms3.Sub(c.Target, c.Position))
	right = ms3.Unit(ms3.Cross(forward, c.Up))
	up = ms3.Cross(right, forward)
	return right, up, forward
}

// Ray returns the world space direction through normalized device
// coordinates (ndcX, ndcY), each in -1..1 with +Y up.
func (c *Camera) Ray(ndcX, ndcY float32) ms3.Vec {
	right, up, forward := c.Basis()
	h := math32.Tan(c.FOV * math32.Pi / 360)
	dir := ms3.Add(forward, ms3.Add(ms3.Scale(ndcX*h*c.Aspect, right), ms3.Scale(ndcY*h, up)))
	return ms3.Unit(dir)
}
