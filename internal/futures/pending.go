// Package futures provides a resolve-once promise used to hand out results of
// in-flight asynchronous operations.
package futures

import (
	"context"
	"sync"
)

// Pending is a single-assignment container for the result of an asynchronous
// operation. It resolves or rejects exactly once; later settlements are
// ignored.
type Pending[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

func New[T any]() *Pending[T] {
	return &Pending[T]{done: make(chan struct{})}
}

// Resolve settles the pending value. It reports whether this settlement won;
// false means the operation was already settled and value was discarded, so
// the caller still owns any resource it carries.
func (p *Pending[T]) Resolve(value T) bool {
	won := false
	p.once.Do(func() {
		p.value = value
		won = true
		close(p.done)
	})
	return won
}

// Reject settles the pending operation with an error. It reports whether this
// settlement won.
func (p *Pending[T]) Reject(err error) bool {
	won := false
	p.once.Do(func() {
		p.err = err
		won = true
		close(p.done)
	})
	return won
}

// Await blocks until the operation settles or the context is cancelled.
func (p *Pending[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// TryGet returns the resolved value without blocking. It reports false while
// the operation is still in flight or if it was rejected.
func (p *Pending[T]) TryGet() (T, bool) {
	select {
	case <-p.done:
		if p.err != nil {
			var zero T
			return zero, false
		}
		return p.value, true
	default:
		var zero T
		return zero, false
	}
}
