//go:build !tinygo && cgo

package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/soypat/glgl/v4.6-core/glgl"
	"github.com/soypat/orbitext/frame"
	"github.com/soypat/orbitext/glbuild"
	"github.com/soypat/orbitext/scene"
)

// Window is an OpenGL window that raymarches the scene in a fragment shader.
// It serves as display, frame scheduler and renderer. All methods must be
// called from the main OS thread.
type Window struct {
	win        *glfw.Window
	log        *slog.Logger
	prog       glgl.Program
	progOK     bool
	programmer *glbuild.Programmer
	vao, vbo   uint32
	ssbo       uint32
	cubeTex    uint32
	cubeSrc    *scene.Cubemap
	u          uniforms
	shapes     shapeSet
	meshes     []scene.PlacedMesh
	instances  []instance
	handlers   Handlers
	fullscreen bool
	// Window placement to restore when leaving fullscreen.
	windowed  [4]int
	lastClick time.Time
	terminate func()
}

type uniforms struct {
	count, res, camPos, camRight, camUp, camFwd      int32
	tanHalfFov, far, tol, ambient                    int32
	lightCount, lightPos, lightIntensity, lightRange int32
	clearColor, hasBackground, background            int32
}

// OpenWindow creates the window and OpenGL context.
func OpenWindow(cfg WindowConfig) (*Window, error) {
	cfg.defaults()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("initializing GLFW: %w", err)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 6)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("creating window: %w", err)
	}
	win.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}
	glfw.SwapInterval(1)
	w := &Window{
		win:        win,
		log:        cfg.Logger,
		programmer: glbuild.NewDefaultProgrammer(),
		terminate:  glfw.Terminate,
	}
	// A quad covering the screen.
	gl.GenVertexArrays(1, &w.vao)
	gl.BindVertexArray(w.vao)
	gl.GenBuffers(1, &w.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, w.vbo)
	vertices := []float32{
		-1.0, -1.0,
		1.0, -1.0,
		-1.0, 1.0,
		-1.0, 1.0,
		1.0, -1.0,
		1.0, 1.0,
	}
	gl.BufferData(gl.ARRAY_BUFFER, 4*len(vertices), gl.Ptr(vertices), gl.STATIC_DRAW)
	gl.GenBuffers(1, &w.ssbo)

	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		if w.handlers.Resize != nil {
			w.handlers.Resize(width, height)
		}
	})
	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft {
			return
		}
		ctl := w.handlers.Controls
		switch action {
		case glfw.Press:
			now := time.Now()
			if now.Sub(w.lastClick) < doubleClickInterval {
				w.lastClick = time.Time{}
				w.doubleClick()
			} else {
				w.lastClick = now
			}
			if ctl != nil {
				ctl.Press(w.win.GetCursorPos())
			}
		case glfw.Release:
			if ctl != nil {
				ctl.Release()
			}
		}
	})
	win.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		if w.handlers.Controls != nil {
			w.handlers.Controls.Move(xpos, ypos)
		}
	})
	win.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		if w.handlers.Controls != nil {
			w.handlers.Controls.Scroll(yoff)
		}
	})
	return w, nil
}

// SetHandlers sets the functions that receive window events.
func (w *Window) SetHandlers(h Handlers) { w.handlers = h }

func (w *Window) doubleClick() {
	if w.handlers.DoubleClick == nil {
		return
	}
	err := w.handlers.DoubleClick()
	if err != nil {
		w.log.Warn("fullscreen toggle", slog.String("err", err.Error()))
	}
}

// Size returns the framebuffer size in pixels.
func (w *Window) Size() (width, height int) { return w.win.GetFramebufferSize() }

// Resize sets the drawing viewport to width x height pixels.
func (w *Window) Resize(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

// Fullscreen reports whether the window covers the primary monitor.
func (w *Window) Fullscreen() bool { return w.fullscreen }

// FullscreenSupported reports whether a monitor is available to go fullscreen on.
func (w *Window) FullscreenSupported() bool { return glfw.GetPrimaryMonitor() != nil }

// SetFullscreen moves the window to the primary monitor or back to its windowed placement.
// The resulting framebuffer size change is delivered to the resize handler.
func (w *Window) SetFullscreen(on bool) error {
	if on == w.fullscreen {
		return nil
	}
	if on {
		mon := glfw.GetPrimaryMonitor()
		if mon == nil {
			return errors.New("no primary monitor")
		}
		mode := mon.GetVideoMode()
		x, y := w.win.GetPos()
		width, height := w.win.GetSize()
		w.windowed = [4]int{x, y, width, height}
		w.win.SetMonitor(mon, 0, 0, mode.Width, mode.Height, mode.RefreshRate)
	} else {
		p := w.windowed
		w.win.SetMonitor(nil, p[0], p[1], p[2], p[3], glfw.DontCare)
	}
	w.fullscreen = on
	return nil
}

// NextFrame implements the frame scheduler. Buffer swaps wait on the display
// refresh so frames are produced at the monitor rate.
func (w *Window) NextFrame(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	glfw.PollEvents()
	if w.win.ShouldClose() {
		return frame.ErrClosed
	}
	return nil
}

// Render draws the scene and presents it.
func (w *Window) Render(s *scene.Scene, cam *scene.Camera) error {
	w.meshes = s.AppendMeshes(w.meshes[:0])
	if w.shapes.reset(w.meshes) || !w.progOK {
		err := w.buildProgram()
		if err != nil {
			return err
		}
	}
	w.instances = appendInstances(w.instances[:0], w.meshes, &w.shapes)
	count := len(w.instances)
	if count == 0 {
		w.instances = append(w.instances, instance{}) // Buffers may not be empty.
	}
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, w.ssbo)
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, len(w.instances)*int(unsafe.Sizeof(instance{})), unsafe.Pointer(&w.instances[0]), gl.DYNAMIC_DRAW)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, 0, w.ssbo)

	if s.Background != w.cubeSrc {
		w.uploadCubemap(s.Background)
	}
	width, height := w.Size()
	right, up, fwd := cam.Basis()
	w.prog.Bind()
	gl.Uniform1i(w.u.count, int32(count))
	gl.Uniform2f(w.u.res, float32(width), float32(height))
	gl.Uniform3f(w.u.camPos, cam.Position.X, cam.Position.Y, cam.Position.Z)
	gl.Uniform3f(w.u.camRight, right.X, right.Y, right.Z)
	gl.Uniform3f(w.u.camUp, up.X, up.Y, up.Z)
	gl.Uniform3f(w.u.camFwd, fwd.X, fwd.Y, fwd.Z)
	gl.Uniform1f(w.u.tanHalfFov, tanHalfFOV(cam))
	gl.Uniform1f(w.u.far, cam.Far)
	gl.Uniform1f(w.u.tol, 1e-3)
	gl.Uniform1f(w.u.ambient, 0.1)
	w.setLights(s.Lights())
	cc := s.ClearColor
	gl.Uniform3f(w.u.clearColor, float32(cc.R)/255, float32(cc.G)/255, float32(cc.B)/255)
	if w.cubeTex != 0 {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_CUBE_MAP, w.cubeTex)
		gl.Uniform1i(w.u.background, 0)
		gl.Uniform1i(w.u.hasBackground, 1)
	} else {
		gl.Uniform1i(w.u.hasBackground, 0)
	}

	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.BindVertexArray(w.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	w.win.SwapBuffers()
	return glgl.Err()
}

func (w *Window) setLights(lights []*scene.PointLight) {
	var (
		pos       [3 * maxLights]float32
		intensity [maxLights]float32
		rng       [maxLights]float32
	)
	n := min(len(lights), maxLights)
	for i, l := range lights[:n] {
		c := (l.Color.X + l.Color.Y + l.Color.Z) / 3
		pos[3*i], pos[3*i+1], pos[3*i+2] = l.Position.X, l.Position.Y, l.Position.Z
		intensity[i] = l.Intensity * c
		rng[i] = l.Distance
	}
	gl.Uniform1i(w.u.lightCount, int32(n))
	gl.Uniform3fv(w.u.lightPos, maxLights, &pos[0])
	gl.Uniform1fv(w.u.lightIntensity, maxLights, &intensity[0])
	gl.Uniform1fv(w.u.lightRange, maxLights, &rng[0])
}

func (w *Window) buildProgram() error {
	start := time.Now()
	frag, err := fragmentSource(w.programmer, w.shapes.shapes)
	if err != nil {
		return err
	}
	prog, err := glgl.CompileProgram(glgl.ShaderSource{
		Vertex:   vertexSource,
		Fragment: frag,
	})
	if err != nil {
		return fmt.Errorf("compiling scene program: %w", err)
	}
	if w.progOK {
		w.prog.Delete()
	}
	w.prog = prog
	w.progOK = true
	prog.Bind()
	locs := []struct {
		dst  *int32
		name string
	}{
		{&w.u.count, "uCount\x00"},
		{&w.u.res, "uResolution\x00"},
		{&w.u.camPos, "uCamPos\x00"},
		{&w.u.camRight, "uCamRight\x00"},
		{&w.u.camUp, "uCamUp\x00"},
		{&w.u.camFwd, "uCamFwd\x00"},
		{&w.u.tanHalfFov, "uTanHalfFov\x00"},
		{&w.u.far, "uFar\x00"},
		{&w.u.tol, "uTol\x00"},
		{&w.u.ambient, "uAmbient\x00"},
		{&w.u.lightCount, "uLightCount\x00"},
		{&w.u.lightPos, "uLightPos\x00"},
		{&w.u.lightIntensity, "uLightIntensity\x00"},
		{&w.u.lightRange, "uLightRange\x00"},
		{&w.u.clearColor, "uClearColor\x00"},
		{&w.u.hasBackground, "uHasBackground\x00"},
		{&w.u.background, "uBackground\x00"},
	}
	for _, loc := range locs {
		*loc.dst, err = prog.UniformLocation(loc.name)
		if err != nil {
			return err
		}
	}
	posAttrib, err := prog.AttribLocation("aPos\x00")
	if err != nil {
		return err
	}
	gl.BindVertexArray(w.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, w.vbo)
	gl.EnableVertexAttribArray(posAttrib)
	gl.VertexAttribPointer(posAttrib, 2, gl.FLOAT, false, 0, gl.PtrOffset(0))
	w.log.Debug("scene program built", slog.Int("shapes", len(w.shapes.shapes)), slog.Int("bytes", len(frag)), slog.Duration("elapsed", time.Since(start)))
	return nil
}

func (w *Window) uploadCubemap(cm *scene.Cubemap) {
	if w.cubeTex != 0 {
		gl.DeleteTextures(1, &w.cubeTex)
		w.cubeTex = 0
	}
	w.cubeSrc = cm
	if cm == nil || cm.Validate() != nil {
		return
	}
	gl.GenTextures(1, &w.cubeTex)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, w.cubeTex)
	for i, face := range cm.Faces {
		sz := int32(face.Bounds().Dx())
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i), 0, gl.RGBA8, sz, sz, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(face.Pix))
	}
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
}

// Close releases GL resources and terminates GLFW.
func (w *Window) Close() {
	if w.progOK {
		w.prog.Delete()
		w.progOK = false
	}
	gl.DeleteBuffers(1, &w.vbo)
	gl.DeleteBuffers(1, &w.ssbo)
	gl.DeleteVertexArrays(1, &w.vao)
	if w.cubeTex != 0 {
		gl.DeleteTextures(1, &w.cubeTex)
	}
	w.win.Destroy()
	w.terminate()
}
