package view

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms1"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/orbitext/gleval"
	"github.com/soypat/orbitext/scene"
)

// CPUConfig configures a [CPURenderer].
type CPUConfig struct {
	Width, Height int
	// MaxSteps limits raymarching iterations per pixel. Zero means 160.
	MaxSteps int
	// Tolerance is the surface hit distance. Zero means 1e-3.
	Tolerance float32
	// Ambient light added to lambert shading. Zero means 0.1.
	Ambient float32
}

// CPURenderer raymarches a scene on the CPU into an RGBA image. It is slow
// compared to the OpenGL window but needs no display, which suits snapshots
// and headless runs.
type CPURenderer struct {
	cfg    CPUConfig
	img    *image.RGBA
	vp     gleval.VecPool
	items  []marchItem
	cand   []candidate
	pos    [1]ms3.Vec
	dist   [1]float32
	norm   [1]ms3.Vec
	lights []*scene.PointLight
}

type marchItem struct {
	mesh   scene.PlacedMesh
	sdf    gleval.SDF3
	center ms3.Vec
	radius float32
}

type candidate struct {
	idx         int
	tNear, tFar float32
}

// NewCPURenderer returns a renderer drawing width x height images.
func NewCPURenderer(cfg CPUConfig) (*CPURenderer, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.New("non-positive image dimension")
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = 160
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = 1e-3
	}
	if cfg.Ambient <= 0 {
		cfg.Ambient = 0.1
	}
	return &CPURenderer{
		cfg: cfg,
		img: image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height)),
	}, nil
}

// Image returns the last rendered frame. It is overwritten by the next Render call.
func (r *CPURenderer) Image() *image.RGBA { return r.img }

// WritePNG encodes the last rendered frame as PNG.
func (r *CPURenderer) WritePNG(w io.Writer) error {
	return png.Encode(w, r.img)
}

// Render implements the frame renderer interface.
func (r *CPURenderer) Render(s *scene.Scene, cam *scene.Camera) error {
	if s == nil || cam == nil {
		return errors.New("nil scene or camera")
	}
	var placed []scene.PlacedMesh
	placed = s.AppendMeshes(placed)
	r.items = r.items[:0]
	for _, pm := range placed {
		sdf, err := gleval.AssertSDF3(pm.Mesh.Shape)
		if err != nil {
			return fmt.Errorf("mesh %q: %w", pm.Mesh.Name, err)
		}
		bb := pm.Mesh.Shape.Bounds()
		rad := ms3.Norm(ms3.MaxElem(ms3.AbsElem(bb.Min), ms3.AbsElem(bb.Max)))
		r.items = append(r.items, marchItem{
			mesh:   pm,
			sdf:    sdf,
			center: pm.World.Pos,
			radius: rad * pm.World.Scale,
		})
	}
	r.lights = s.Lights()
	w, h := r.cfg.Width, r.cfg.Height
	for j := 0; j < h; j++ {
		ndcY := 1 - 2*(float32(j)+0.5)/float32(h)
		for i := 0; i < w; i++ {
			ndcX := 2*(float32(i)+0.5)/float32(w) - 1
			c, err := r.shadePixel(s, cam, cam.Ray(ndcX, ndcY))
			if err != nil {
				return err
			}
			r.img.SetRGBA(i, j, c)
		}
	}
	return r.vp.AssertAllFree()
}

func (r *CPURenderer) shadePixel(s *scene.Scene, cam *scene.Camera, rd ms3.Vec) (color.RGBA, error) {
	ro := cam.Position
	r.cand = r.cand[:0]
	tMin, tMax := math32.Inf(1), float32(0)
	for i := range r.items {
		it := &r.items[i]
		oc := ms3.Sub(it.center, ro)
		tca := ms3.Dot(oc, rd)
		d2 := ms3.Dot(oc, oc) - tca*tca
		r2 := it.radius * it.radius
		if d2 > r2 {
			continue
		}
		thc := math32.Sqrt(r2 - d2)
		tNear, tFar := tca-thc, tca+thc
		if tFar < 0 {
			continue
		}
		tNear = math32.Max(tNear, 0)
		r.cand = append(r.cand, candidate{idx: i, tNear: tNear, tFar: tFar})
		tMin = math32.Min(tMin, tNear)
		tMax = math32.Max(tMax, tFar)
	}
	if len(r.cand) == 0 {
		return r.background(s, rd), nil
	}
	tMax = math32.Min(tMax, cam.Far)
	t := tMin
	for step := 0; step < r.cfg.MaxSteps && t <= tMax; step++ {
		p := ms3.Add(ro, ms3.Scale(t, rd))
		d, hit, err := r.sceneDist(p, t)
		if err != nil {
			return color.RGBA{}, err
		}
		if hit >= 0 && d < r.cfg.Tolerance {
			return r.shadeHit(&r.items[hit], p)
		}
		t += math32.Max(d, r.cfg.Tolerance/2)
	}
	return r.background(s, rd), nil
}

// sceneDist returns the distance to the closest candidate and its index.
// Candidates whose bounding sphere does not contain p contribute the distance
// to that sphere, a lower bound that avoids evaluating their shape.
func (r *CPURenderer) sceneDist(p ms3.Vec, t float32) (float32, int, error) {
	best := math32.Inf(1)
	hit := -1
	for _, c := range r.cand {
		if t > c.tFar {
			continue
		}
		it := &r.items[c.idx]
		bound := ms3.Norm(ms3.Sub(p, it.center)) - it.radius
		if bound > r.cfg.Tolerance {
			best = math32.Min(best, bound)
			continue
		}
		r.pos[0] = it.mesh.World.Inverse(p)
		err := it.sdf.Evaluate(r.pos[:], r.dist[:], &r.vp)
		if err != nil {
			return 0, -1, err
		}
		d := r.dist[0] * it.mesh.World.Scale
		if d < best {
			best = d
			hit = c.idx
		}
	}
	return best, hit, nil
}

func (r *CPURenderer) shadeHit(it *marchItem, p ms3.Vec) (color.RGBA, error) {
	r.pos[0] = it.mesh.World.Inverse(p)
	err := gleval.NormalsCentralDiff(it.sdf, r.pos[:], r.norm[:], r.cfg.Tolerance, &r.vp)
	if err != nil {
		return color.RGBA{}, err
	}
	n := ms3.Unit(it.mesh.World.Rot.Apply(r.norm[0]))
	mat := it.mesh.Mesh.Material
	var c ms3.Vec
	if mat == nil || mat.Kind == scene.MaterialNormal {
		c = ms3.AddScalar(0.5, ms3.Scale(0.5, n))
	} else {
		light := r.cfg.Ambient
		for _, l := range r.lights {
			toLight := ms3.Sub(l.Position, p)
			dist := ms3.Norm(toLight)
			diff := ms3.Dot(n, ms3.Scale(1/dist, toLight))
			light += math32.Max(diff, 0) * l.Attenuation(dist)
		}
		c = ms3.Scale(light, mat.Color)
	}
	return vecToRGBA(c), nil
}

func (r *CPURenderer) background(s *scene.Scene, rd ms3.Vec) color.RGBA {
	if s.Background != nil {
		return s.Background.Sample(rd)
	}
	return s.ClearColor
}

func vecToRGBA(c ms3.Vec) color.RGBA {
	return color.RGBA{
		R: uint8(ms1.Clamp(c.X, 0, 1) * 255),
		G: uint8(ms1.Clamp(c.Y, 0, 1) * 255),
		B: uint8(ms1.Clamp(c.Z, 0, 1) * 255),
		A: 255,
	}
}
