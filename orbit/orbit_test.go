package orbit

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/orbitext/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCam() *scene.Camera {
	var cam scene.Camera
	cam.Defaults()
	return &cam
}

func TestNewFromCamera(t *testing.T) {
	cam := newCam()
	c, err := New(cam, DefaultConfig())
	require.NoError(t, err)
	assert.InDelta(t, 15, c.Distance(), 1e-5)
	az, polar := c.Angles()
	assert.InDelta(t, 0, az, 1e-6)
	assert.InDelta(t, math32.Pi/2, polar, 1e-6)

	// No input leaves the camera in place.
	c.Update()
	assert.InDelta(t, 0, cam.Position.X, 1e-4)
	assert.InDelta(t, 0, cam.Position.Y, 1e-4)
	assert.InDelta(t, 15, cam.Position.Z, 1e-4)

	_, err = New(nil, DefaultConfig())
	assert.Error(t, err)
	bad := DefaultConfig()
	bad.MaxDistance = 0
	_, err = New(cam, bad)
	assert.Error(t, err)
	cam.Position = cam.Target
	_, err = New(cam, DefaultConfig())
	assert.Error(t, err)
}

func TestDragRotatesKeepingDistance(t *testing.T) {
	cam := newCam()
	c, err := New(cam, DefaultConfig())
	require.NoError(t, err)
	c.Move(100, 0) // Not dragging.
	c.Update()
	assert.InDelta(t, 15, cam.Position.Z, 1e-4)

	c.Press(0, 0)
	c.Move(100, 40)
	c.Release()
	c.Update()
	assert.NotEqual(t, float32(0), cam.Position.X)
	assert.InDelta(t, 15, ms3.Norm(cam.Position), 1e-3)
	assert.Equal(t, ms3.Vec{}, cam.Target)
	assert.False(t, c.Dragging())
}

func TestPolarClamp(t *testing.T) {
	cam := newCam()
	c, err := New(cam, DefaultConfig())
	require.NoError(t, err)
	c.Press(0, 0)
	c.Move(0, -1e5)
	c.Update()
	_, polar := c.Angles()
	assert.Greater(t, polar, float32(0))
	assert.Less(t, cam.Position.X*cam.Position.X+cam.Position.Z*cam.Position.Z, float32(1e-3))
	right, _, _ := cam.Basis()
	assert.False(t, math32.IsNaN(right.X))
}

func TestZoomClamp(t *testing.T) {
	cam := newCam()
	cfg := DefaultConfig()
	cfg.MinDistance, cfg.MaxDistance = 5, 20
	c, err := New(cam, cfg)
	require.NoError(t, err)
	c.Scroll(1)
	c.Update()
	assert.InDelta(t, 15*0.95, c.Distance(), 1e-4)
	c.Scroll(1000)
	c.Update()
	assert.Equal(t, float32(5), c.Distance())
	c.Scroll(-1000)
	c.Update()
	assert.Equal(t, float32(20), c.Distance())
	assert.InDelta(t, 20, ms3.Norm(cam.Position), 1e-3)

	cfg.EnableZoom = false
	c, err = New(newCam(), cfg)
	require.NoError(t, err)
	c.Scroll(5)
	c.Update()
	assert.InDelta(t, 15, c.Distance(), 1e-5)
}

func TestDampingDecays(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Damping = true
	c, err := New(newCam(), cfg)
	require.NoError(t, err)
	c.Press(0, 0)
	c.Move(200, 0)
	c.Release()

	var steps []float32
	prev, _ := c.Angles()
	for i := 0; i < 50; i++ {
		c.Update()
		az, _ := c.Angles()
		steps = append(steps, math32.Abs(az-prev))
		prev = az
	}
	assert.InDelta(t, 200*cfg.RotateSpeed*cfg.DampingFactor, steps[0], 1e-5)
	for i := 1; i < len(steps); i++ {
		assert.Less(t, steps[i], steps[i-1])
	}
	total, _ := c.Angles()
	// Geometric series converges on the full drag rotation.
	assert.InDelta(t, -200*cfg.RotateSpeed*(1-math32.Pow(1-cfg.DampingFactor, 50)), total, 1e-4)
}

func TestAutoRotate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AutoRotate = true
	c, err := New(newCam(), cfg)
	require.NoError(t, err)
	for i := 0; i < 60; i++ {
		c.Update()
	}
	az, _ := c.Angles()
	// 2 * 2pi/3600 per update.
	assert.InDelta(t, -60*2*2*math32.Pi/3600, az, 1e-4)

	c.Press(0, 0)
	before, _ := c.Angles()
	c.Update()
	after, _ := c.Angles()
	assert.Equal(t, before, after, "no auto-rotation while dragging")
}
