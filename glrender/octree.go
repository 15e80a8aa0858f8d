package glrender

import (
	"errors"
	"io"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/i3"
	"github.com/soypat/geometry/ms3"
	glms3 "github.com/soypat/glgl/math/ms3"
	"github.com/soypat/orbitext/gleval"
)

// Cubes below this level are never pruned, they are marched directly.
const minPrunableLvl = 3

// Octree meshes the zero isosurface of an SDF by descending an octree of cubes,
// pruning branches the surface cannot cross and marching the resolution sized
// cubes that remain.
type Octree struct {
	s   gleval.SDF3
	oct ms3.Octree

	bounds ms3.Box
	// cubes holds the depth first descent. Its capacity is enough to decompose
	// one branch down to the smallest cube level.
	cubes []i3.Cube
	// markedToPrune counts cubes in cubes that were handed over to prunecubes
	// and left behind with level zero.
	markedToPrune int
	// prunecubes holds cubes awaiting a breadth first prune.
	prunecubes []i3.Cube

	// posbuf accumulates cube corners waiting to be evaluated and marched.
	// It may hold positions between ReadTriangles calls.
	posbuf []ms3.Vec
	// evalbuf and distbuf are the SDF evaluation buffers. Both have the capacity of posbuf.
	evalbuf []glms3.Vec
	distbuf []float32
	// pruned counts resolution sized cubes skipped by pruning.
	pruned uint64
}

// NewOctreeRenderer returns an [Octree] that meshes s with cubes of edge
// cubeResolution, evaluating at most evalBufferSize positions per SDF call.
func NewOctreeRenderer(s gleval.SDF3, cubeResolution float32, evalBufferSize int) (*Octree, error) {
	if s == nil {
		return nil, errors.New("nil SDF")
	} else if evalBufferSize < 64 {
		return nil, errors.New("bad octree eval buffer size")
	}
	_, _, err := makeICube(boundsOf(s), cubeResolution) // Fail before allocating.
	if err != nil {
		return nil, err
	}
	var oc Octree
	oc.posbuf = make([]ms3.Vec, evalBufferSize)[:0]
	oc.evalbuf = make([]glms3.Vec, evalBufferSize)
	oc.distbuf = make([]float32, evalBufferSize)
	err = oc.Reset(s, cubeResolution)
	if err != nil {
		return nil, err
	}
	return &oc, nil
}

// TotalPruned returns the number of resolution sized cubes pruned since the last Reset.
func (oc *Octree) TotalPruned() uint64 {
	return oc.pruned
}

// Reset switches to a new SDF and resolution, reusing buffers where possible.
func (oc *Octree) Reset(s gleval.SDF3, cubeResolution float32) error {
	if cubeResolution <= 0 {
		return errors.New("invalid renderer cube resolution")
	}
	// Grow the box so its faces do not lie on the surface.
	bb := boundsOf(s).ScaleCentered(ms3.Vec{X: 1.01, Y: 1.01, Z: 1.01})
	topCube, origin, err := makeICube(bb, cubeResolution)
	if err != nil {
		return err
	}
	levels := topCube.Level

	// A full level of cubes is the most that can be pruned at once.
	var tblPruneSize = [...]int{
		minPrunableLvl + 1: 8,
		minPrunableLvl + 2: 8 + 8*8,
		minPrunableLvl + 3: 8 + 8*8 + 8*8*8,
		minPrunableLvl + 4: 8 + 8*8 + 8*8*8 + 8*8*8*8,
	}
	pruneSize := tblPruneSize[min(levels, len(tblPruneSize)-1)]
	pruneSize = min(pruneSize, aligndown(len(oc.distbuf), 8))
	if cap(oc.prunecubes) < pruneSize {
		oc.prunecubes = make([]i3.Cube, pruneSize)
	}
	// A depth first descent keeps at most 8 cubes per level.
	minCubesSize := levels * 8
	if cap(oc.cubes) < minCubesSize {
		oc.cubes = make([]i3.Cube, minCubesSize)
	}

	*oc = Octree{
		s:          s,
		oct:        ms3.Octree{Resolution: cubeResolution, Origin: origin},
		bounds:     bb,
		cubes:      oc.cubes[:1],
		prunecubes: oc.prunecubes[:0],
		posbuf:     oc.posbuf[:0],
		evalbuf:    oc.evalbuf,
		distbuf:    oc.distbuf,
	}
	oc.cubes[0] = topCube
	return nil
}

// ReadTriangles implements [Renderer]. It returns io.EOF once the whole
// surface has been read. dst must fit at least 12 triangles.
func (oc *Octree) ReadTriangles(dst []ms3.Triangle, userData any) (n int, err error) {
	if len(dst) < maxCubeTriangles {
		return 0, io.ErrShortBuffer
	}
	upi := oc.nextUnpruned()
	if upi >= 0 && len(oc.prunecubes) == 0 {
		prunable := oc.cubes[upi]
		var ok bool
		oc.prunecubes, ok = oc.oct.DecomposeBFS(oc.prunecubes, prunable, minPrunableLvl)
		if ok {
			oc.cubes[upi].Level = 0 // Now owned by the prune buffer.
			oc.markedToPrune++
		}
	}
	if len(oc.prunecubes) > 0 {
		err = oc.prune(userData)
		if err != nil {
			return 0, err
		}
		oc.refillCubesWithUnpruned()
	}

	for len(dst)-n >= maxCubeTriangles {
		if oc.done() {
			return n, io.EOF
		}
		if len(oc.cubes) == 0 {
			oc.refillCubesWithUnpruned()
		}
		oc.posbuf, oc.cubes = oc.oct.DecomposeDFS(oc.posbuf, oc.cubes)

		// Evaluate no more than this call can march.
		lim := min(8*(len(dst)-n), aligndown(len(oc.posbuf), 8))
		if lim == 0 {
			return n, errors.New("octree descent produced no cubes")
		}
		for i, p := range oc.posbuf[:lim] {
			oc.evalbuf[i] = toGL(p)
		}
		err = oc.s.Evaluate(oc.evalbuf[:lim], oc.distbuf[:lim], userData)
		if err != nil {
			return n, err
		}
		nt, k := marchCubes(dst[n:], oc.posbuf[:lim], oc.distbuf[:lim], oc.oct.Resolution)
		n += nt
		k = copy(oc.posbuf, oc.posbuf[k:])
		oc.posbuf = oc.posbuf[:k]
	}
	return n, nil
}

func (oc *Octree) prune(userData any) error {
	// Pruned cubes must not contain surface within their circumscribed sphere.
	const szDistMult = sqrt3 / 2
	// Pending corners live in posbuf so the evaluation buffers are free here.
	unpruned, smallestPruned, err := octreePrune(oc.s, oc.prunecubes, oc.oct, oc.evalbuf, oc.distbuf, userData, szDistMult)
	oc.prunecubes = unpruned
	oc.pruned += smallestPruned
	return err
}

// refillCubesWithUnpruned moves cubes that survived pruning back into the descent buffer.
func (oc *Octree) refillCubesWithUnpruned() {
	if len(oc.prunecubes) == 0 {
		return
	}
	oc.cubes, oc.prunecubes, oc.markedToPrune = oc.oct.SafeSpread(oc.cubes, oc.prunecubes, oc.markedToPrune)
	if len(oc.cubes) == 0 {
		oc.cubes, oc.prunecubes = oc.oct.SafeMove(oc.cubes, oc.prunecubes)
	}
}

func (oc *Octree) nextUnpruned() int {
	if cap(oc.prunecubes) == 0 {
		return -1 // Pruning disabled.
	}
	for i := 0; i < len(oc.cubes); i++ {
		if oc.cubes[i].Level >= minPrunableLvl {
			return i
		}
	}
	return -1
}

func (oc *Octree) done() bool {
	return len(oc.cubes) == 0 && len(oc.posbuf) == 0 && len(oc.prunecubes) == 0
}

func boundsOf(s gleval.SDF3) ms3.Box {
	bb := s.Bounds()
	return ms3.Box{Min: fromGL(bb.Min), Max: fromGL(bb.Max)}
}

// makeICube returns the smallest top level cube whose resolution sized
// children cover bb, anchored at bb.Min.
func makeICube(bb ms3.Box, minResolution float32) (topCube i3.Cube, origin ms3.Vec, err error) {
	if minResolution <= 0 || math32.IsNaN(minResolution) || math32.IsInf(minResolution, 0) {
		return i3.Cube{}, ms3.Vec{}, errors.New("invalid renderer cube resolution")
	}
	longAxis := bb.Size().Max()
	levels := int(math32.Ceil(math32.Log2(longAxis/minResolution))) + 1
	if levels <= 1 {
		return i3.Cube{}, ms3.Vec{}, errors.New("resolution not fine enough for marching cubes")
	}
	return i3.Cube{Level: levels}, bb.Min, nil
}

// octreePrune discards cubes whose centre lies further than the cube size times
// szMultMaxDist from the surface. It returns the cubes left and the number of
// resolution sized cubes discarded.
func octreePrune(s gleval.SDF3, toPrune []i3.Cube, oct ms3.Octree, evalPos []glms3.Vec, distbuf []float32, userData any, szMultMaxDist float32) (unpruned []i3.Cube, smallestPruned uint64, err error) {
	if len(toPrune) == 0 {
		return toPrune, 0, nil
	} else if len(evalPos) < len(toPrune) {
		return toPrune, 0, errors.New("positional buffer length must be greater than prune cubes length")
	} else if len(evalPos) != len(distbuf) {
		return toPrune, 0, errors.New("positional buffer must match distance buffer length")
	}
	evalPos = evalPos[:len(toPrune)]
	distbuf = distbuf[:len(toPrune)]
	for i, c := range toPrune {
		evalPos[i] = toGL(oct.CubeCenter(c, oct.CubeSize(c)))
	}
	err = s.Evaluate(evalPos, distbuf, userData)
	if err != nil {
		return toPrune, 0, err
	}
	kept := 0
	for i, c := range toPrune {
		maxDist := oct.CubeSize(c) * szMultMaxDist
		if math32.Abs(distbuf[i]) < maxDist {
			toPrune[kept] = c
			kept++
		} else {
			smallestPruned += c.DecomposesTo(1)
		}
	}
	return toPrune[:kept], smallestPruned, nil
}
