package gleval

import (
	"errors"
	"fmt"

	"github.com/soypat/glgl/math/ms2"
	"github.com/soypat/glgl/math/ms3"
)

// VecPool holds scratch buffers shared by SDF evaluators so that nested
// operations such as translations and unions do not allocate on every call.
// A VecPool is not safe for concurrent use.
type VecPool struct {
	V3    bufPool[ms3.Vec]
	V2    bufPool[ms2.Vec]
	Float bufPool[float32]
}

// GetVecPool extracts a [VecPool] from userData. userData may be a *VecPool
// or implement a VecPool() *VecPool method.
func GetVecPool(userData any) (*VecPool, error) {
	switch v := userData.(type) {
	case *VecPool:
		if v == nil {
			return nil, errors.New("nil VecPool")
		}
		return v, nil
	case interface{ VecPool() *VecPool }:
		vp := v.VecPool()
		if vp == nil {
			return nil, errors.New("nil VecPool")
		}
		return vp, nil
	}
	return nil, fmt.Errorf("want *gleval.VecPool userData, got %T", userData)
}

// AssertAllFree returns an error if any buffer was acquired and not released.
func (vp *VecPool) AssertAllFree() error {
	if vp.V3.acquired != 0 || vp.V2.acquired != 0 || vp.Float.acquired != 0 {
		return fmt.Errorf("unreleased buffers: v3=%d v2=%d float=%d", vp.V3.acquired, vp.V2.acquired, vp.Float.acquired)
	}
	return nil
}

type bufPool[T any] struct {
	free     [][]T
	acquired int
}

// Acquire returns a buffer of length n. The buffer contents are not zeroed.
func (bp *bufPool[T]) Acquire(n int) []T {
	bp.acquired++
	for i, buf := range bp.free {
		if cap(buf) >= n {
			last := len(bp.free) - 1
			bp.free[i] = bp.free[last]
			bp.free = bp.free[:last]
			return buf[:n]
		}
	}
	return make([]T, n)
}

// Release returns buf to the pool.
func (bp *bufPool[T]) Release(buf []T) {
	if bp.acquired <= 0 {
		panic("release of buffer not acquired from pool")
	}
	bp.acquired--
	bp.free = append(bp.free, buf[:0])
}
