// Package asset loads fonts and cubemap textures off the render loop.
// Loads run on their own goroutine and publish into a [Future] which
// the loop polls once per frame.
package asset

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Status is the observable state of an asynchronous load.
type Status uint8

const (
	// Skipped means the asset was not requested.
	Skipped Status = iota
	Pending
	Loaded
	Failed
)

func (s Status) String() string {
	switch s {
	case Skipped:
		return "skipped"
	case Pending:
		return "pending"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// Future holds the eventual result of a load. The zero value is not usable; see [Go].
type Future[T any] struct {
	mu     sync.Mutex
	done   chan struct{}
	status Status
	val    T
	err    error
}

// Go starts fn on a new goroutine and returns a Future for its result.
// A panic in fn is recovered and reported as a failure.
func Go[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), status: Pending}
	go func() {
		var (
			v   T
			err error
		)
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("asset loader panic: %v", r)
			}
			f.resolve(v, err)
		}()
		v, err = fn(ctx)
	}()
	return f
}

// Resolved returns a Future that has already completed with v and err.
func Resolved[T any](v T, err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	f.resolve(v, err)
	return f
}

func (f *Future[T]) resolve(v T, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.status = Failed
		f.err = err
	} else {
		f.status = Loaded
		f.val = v
	}
	close(f.done)
}

// Poll returns the current status without blocking. The value and error
// are only meaningful once the status is Loaded or Failed respectively.
func (f *Future[T]) Poll() (T, Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.val, f.status, f.err
}

// Done returns a channel closed when the load completes.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Wait blocks until the load completes or ctx is done.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		v, _, err := f.Poll()
		return v, err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// LoadFailure is returned when an asset cannot be loaded. The scene keeps
// running without the asset.
type LoadFailure struct {
	// Asset names the kind of asset, i.e: "font" or "cubemap".
	Asset string
	Path  string
	Err   error
}

func (lf *LoadFailure) Error() string {
	if lf.Path == "" {
		return fmt.Sprintf("load %s: %v", lf.Asset, lf.Err)
	}
	return fmt.Sprintf("load %s %q: %v", lf.Asset, lf.Path, lf.Err)
}

func (lf *LoadFailure) Unwrap() error { return lf.Err }

// IsLoadFailure reports whether err is or wraps a [LoadFailure].
func IsLoadFailure(err error) bool {
	var lf *LoadFailure
	return errors.As(err, &lf)
}
