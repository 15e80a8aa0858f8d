// Package orbit implements camera controls that orbit a target point:
// dragging rotates, scrolling zooms and an optional auto-rotation spins the
// camera when the user is idle. Motion can be damped for an inertial feel.
package orbit

import (
	"errors"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms1"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/orbitext/scene"
)

// Keeps the camera off the poles where the up vector degenerates.
const polarEps = 1e-4

// Config configures [Controls]. Use [DefaultConfig] as a starting point.
type Config struct {
	// RotateSpeed is the rotation in radians per pixel of drag.
	RotateSpeed float32
	// ZoomSpeed is the exponent of the per-scroll-step zoom factor 0.95.
	ZoomSpeed   float32
	MinDistance float32
	MaxDistance float32
	EnableZoom  bool
	// Damping smooths motion: each update applies DampingFactor of the pending
	// rotation and keeps the rest for subsequent updates.
	Damping       bool
	DampingFactor float32
	// AutoRotate orbits around the target while not dragging. AutoRotateSpeed 2 is
	// one orbit every 30 seconds at 60 updates per second.
	AutoRotate      bool
	AutoRotateSpeed float32
}

// DefaultConfig returns controls with zoom enabled, no damping and no auto-rotation.
func DefaultConfig() Config {
	return Config{
		RotateSpeed:     0.005,
		ZoomSpeed:       1,
		MinDistance:     1,
		MaxDistance:     500,
		EnableZoom:      true,
		DampingFactor:   0.05,
		AutoRotateSpeed: 2,
	}
}

func (cfg Config) validate() error {
	switch {
	case cfg.RotateSpeed < 0 || cfg.ZoomSpeed < 0:
		return errors.New("negative control speed")
	case cfg.MinDistance <= 0 || cfg.MaxDistance < cfg.MinDistance:
		return errors.New("invalid distance limits")
	case cfg.Damping && (cfg.DampingFactor <= 0 || cfg.DampingFactor > 1):
		return errors.New("damping factor must be in (0,1]")
	}
	return nil
}

// Controls moves a camera on a sphere around its target.
// Input methods only record motion; [Controls.Update] applies it.
type Controls struct {
	cam *scene.Camera
	cfg Config

	// Spherical coordinates of the camera relative to the target.
	// theta is the azimuth around +Y measured from +Z, phi the polar angle from +Y.
	radius, theta, phi float32

	dTheta, dPhi float32
	scale        float32

	dragging     bool
	lastX, lastY float64
}

// New returns controls for cam using its current position and target.
func New(cam *scene.Camera, cfg Config) (*Controls, error) {
	if cam == nil {
		return nil, errors.New("nil camera")
	}
	err := cfg.validate()
	if err != nil {
		return nil, err
	}
	c := &Controls{cam: cam, cfg: cfg, scale: 1}
	off := ms3.Sub(cam.Position, cam.Target)
	c.radius = ms3.Norm(off)
	if c.radius == 0 {
		return nil, errors.New("camera at its target")
	}
	c.theta = math32.Atan2(off.X, off.Z)
	c.phi = math32.Acos(ms1.Clamp(off.Y/c.radius, -1, 1))
	c.radius = ms1.Clamp(c.radius, cfg.MinDistance, cfg.MaxDistance)
	return c, nil
}

// Press starts a drag at cursor position (x, y) in pixels.
func (c *Controls) Press(x, y float64) {
	c.dragging = true
	c.lastX, c.lastY = x, y
}

// Release ends a drag.
func (c *Controls) Release() { c.dragging = false }

// Dragging reports whether a drag is in progress.
func (c *Controls) Dragging() bool { return c.dragging }

// Move records cursor motion. It only has effect while dragging.
func (c *Controls) Move(x, y float64) {
	if !c.dragging {
		return
	}
	dx := float32(x - c.lastX)
	dy := float32(y - c.lastY)
	c.lastX, c.lastY = x, y
	c.dTheta -= dx * c.cfg.RotateSpeed
	c.dPhi -= dy * c.cfg.RotateSpeed
}

// Scroll records scroll wheel motion. Positive steps zoom in.
func (c *Controls) Scroll(steps float64) {
	if !c.cfg.EnableZoom || steps == 0 {
		return
	}
	c.scale *= math32.Pow(math32.Pow(0.95, c.cfg.ZoomSpeed), float32(steps))
}

// Update applies recorded motion, auto-rotation and damping, then moves
// the camera. It must be called once per frame.
func (c *Controls) Update() {
	if c.cfg.AutoRotate && !c.dragging {
		c.dTheta -= 2 * math32.Pi / 60 / 60 * c.cfg.AutoRotateSpeed
	}
	if c.cfg.Damping {
		f := c.cfg.DampingFactor
		c.theta += c.dTheta * f
		c.phi += c.dPhi * f
		c.dTheta *= 1 - f
		c.dPhi *= 1 - f
	} else {
		c.theta += c.dTheta
		c.phi += c.dPhi
		c.dTheta, c.dPhi = 0, 0
	}
	c.theta = math32.Mod(c.theta, 2*math32.Pi)
	c.phi = ms1.Clamp(c.phi, polarEps, math32.Pi-polarEps)
	c.radius = ms1.Clamp(c.radius*c.scale, c.cfg.MinDistance, c.cfg.MaxDistance)
	c.scale = 1

	sinPhi := math32.Sin(c.phi)
	off := ms3.Vec{
		X: c.radius * sinPhi * math32.Sin(c.theta),
		Y: c.radius * math32.Cos(c.phi),
		Z: c.radius * sinPhi * math32.Cos(c.theta),
	}
	c.cam.Position = ms3.Add(c.cam.Target, off)
	c.cam.LookAt(c.cam.Target)
}

// Distance returns the distance from the camera to the target.
func (c *Controls) Distance() float32 { return c.radius }

// Angles returns the azimuth and polar angle of the camera around the target in radians.
func (c *Controls) Angles() (azimuth, polar float32) { return c.theta, c.phi }
