package orbitext

import (
	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms1"
	"github.com/soypat/glgl/math/ms2"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/orbitext/gleval"
)

// minReduce takes element-wise minimum of arguments and stores to first argument.
func minReduce(d1AndDst, d2 []float32) {
	for i := range d1AndDst {
		d1AndDst[i] = math32.Min(d1AndDst[i], d2[i])
	}
}

func (u *sphere) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	r := u.r
	for i, p := range pos {
		dist[i] = ms3.Norm(p) - r
	}
	return nil
}

func (b *box) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	d := ms3.Scale(0.5, b.dims)
	r := b.round
	for i, p := range pos {
		q := ms3.AddScalar(r, ms3.Sub(ms3.AbsElem(p), d))
		dist[i] = ms3.Norm(ms3.MaxElem(q, ms3.Vec{})) + minf(maxf(q.X, maxf(q.Y, q.Z)), 0.0) - r
	}
	return nil
}

func (t *torus) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	t1 := t.rGreater
	t2 := t.rLesser
	for i, p := range pos {
		q := ms2.Vec{X: hypotf(p.X, p.Y) - t1, Y: p.Z}
		dist[i] = ms2.Norm(q) - t2
	}
	return nil
}

func evaluateSDF3(obj bounder3, pos []ms3.Vec, dist []float32, userData any) error {
	sdf, err := gleval.AssertSDF3(obj)
	if err != nil {
		return err
	}
	return sdf.Evaluate(pos, dist, userData)
}

func evaluateSDF2(obj bounder2, pos []ms2.Vec, dist []float32, userData any) error {
	sdf, err := gleval.AssertSDF2(obj)
	if err != nil {
		return err
	}
	return sdf.Evaluate(pos, dist, userData)
}

func (t *translate) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	vp, err := gleval.GetVecPool(userData)
	if err != nil {
		return err
	}
	transPos := vp.V3.Acquire(len(pos))
	defer vp.V3.Release(transPos)
	p := t.p
	for i := range pos {
		transPos[i] = ms3.Sub(pos[i], p)
	}
	return evaluateSDF3(t.s, transPos, dist, userData)
}

func (s *scale) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	vp, err := gleval.GetVecPool(userData)
	if err != nil {
		return err
	}
	scaled := vp.V3.Acquire(len(pos))
	defer vp.V3.Release(scaled)
	factor := s.scale
	factorInv := 1. / s.scale
	for i, p := range pos {
		scaled[i] = ms3.Scale(factorInv, p)
	}
	err = evaluateSDF3(s.s, scaled, dist, userData)
	if err != nil {
		return err
	}
	for i := range dist {
		dist[i] *= factor
	}
	return nil
}

func (r *offset) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	err := evaluateSDF3(r.s, pos, dist, userData)
	if err != nil {
		return err
	}
	for i := range dist {
		dist[i] += r.off
	}
	return nil
}

func (e *extrusion) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	vp, err := gleval.GetVecPool(userData)
	if err != nil {
		return err
	}
	pos2 := vp.V2.Acquire(len(pos))
	defer vp.V2.Release(pos2)
	for i, p := range pos {
		pos2[i] = ms2.Vec{X: p.X, Y: p.Y}
	}
	err = evaluateSDF2(e.s, pos2, dist, userData)
	if err != nil {
		return err
	}
	h := e.h / 2
	for i, d := range dist {
		w := ms2.Vec{X: d, Y: absf(pos[i].Z) - h}
		dist[i] = minf(maxf(w.X, w.Y), 0) + ms2.Norm(ms2.MaxElem(w, ms2.Vec{}))
	}
	return nil
}

func (p *poly2D) Evaluate(pos []ms2.Vec, dist []float32, userData any) error {
	verts := p.vert
	for i, p := range pos {
		d0 := ms2.Sub(p, verts[0])
		d := ms2.Dot(d0, d0)
		s := float32(1.0)
		jv := len(verts) - 1
		for iv, v1 := range verts {
			v2 := verts[jv]
			e := ms2.Sub(v2, v1)
			w := ms2.Sub(p, v1)
			b := ms2.Sub(w, ms2.Scale(ms1.Clamp(ms2.Dot(w, e)/ms2.Dot(e, e), 0, 1), e))
			d = math32.Min(d, ms2.Dot(b, b))
			// Winding number crossing test.
			b1 := p.Y >= v1.Y
			b2 := p.Y < v2.Y
			b3 := e.X*w.Y > e.Y*w.X
			if (b1 && b2 && b3) || (!b1 && !b2 && !b3) {
				s = -s
			}
			jv = iv
		}
		dist[i] = s * math32.Sqrt(d)
	}
	return nil
}

// Evaluate implements [gleval.SDF2].
func (u *OpUnion2D) Evaluate(pos []ms2.Vec, dist []float32, userData any) error {
	u.mustValidate()
	vp, err := gleval.GetVecPool(userData)
	if err != nil {
		return err
	}
	auxDist := vp.Float.Acquire(len(dist))
	defer vp.Float.Release(auxDist)
	err = evaluateSDF2(u.joined[0], pos, dist, userData)
	if err != nil {
		return err
	}
	for i := range u.joined[1:] {
		err = evaluateSDF2(u.joined[i+1], pos, auxDist, userData)
		if err != nil {
			return err
		}
		minReduce(dist, auxDist)
	}
	return nil
}

func (u *diff2D) Evaluate(pos []ms2.Vec, dist []float32, userData any) error {
	vp, err := gleval.GetVecPool(userData)
	if err != nil {
		return err
	}
	d2 := vp.Float.Acquire(len(dist))
	defer vp.Float.Release(d2)
	err = evaluateSDF2(u.s1, pos, dist, userData)
	if err != nil {
		return err
	}
	err = evaluateSDF2(u.s2, pos, d2, userData)
	if err != nil {
		return err
	}
	for i := range dist {
		dist[i] = maxf(dist[i], -d2[i])
	}
	return nil
}

func (t *translate2D) Evaluate(pos []ms2.Vec, dist []float32, userData any) error {
	vp, err := gleval.GetVecPool(userData)
	if err != nil {
		return err
	}
	transPos := vp.V2.Acquire(len(pos))
	defer vp.V2.Release(transPos)
	p := t.p
	for i := range pos {
		transPos[i] = ms2.Sub(pos[i], p)
	}
	return evaluateSDF2(t.s, transPos, dist, userData)
}
