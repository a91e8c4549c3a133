// Package pool provides lease/release buffer pools for the spatial index.
//
// Both pool types wrap sync.Pool so leased buffers keep their grown
// capacity across uses. A pool can be permanently retired with Close:
// afterwards Release discards buffers instead of retaining them, so a
// closed pool holds no memory. Pools are owned per grid instance — closing
// one index never starves another.
package pool

import "sync"

// ListPool lends reusable slices. The *[]T pointer returned by Lease is
// also the handle passed back to Release.
type ListPool[T any] struct {
	p      sync.Pool
	closed bool
}

func NewListPool[T any]() *ListPool[T] {
	lp := &ListPool[T]{}
	lp.p.New = func() any {
		s := make([]T, 0, 16)
		return &s
	}
	return lp
}

// Lease returns a zero-length slice, reusing retained capacity when
// available. Always valid to call, even after Close.
func (lp *ListPool[T]) Lease() *[]T {
	if lp.closed {
		s := make([]T, 0, 16)
		return &s
	}
	s := lp.p.Get().(*[]T)
	*s = (*s)[:0]
	return s
}

// Release returns a leased slice to the pool. Element values are cleared
// so the pool does not pin caller objects.
func (lp *ListPool[T]) Release(s *[]T) {
	if s == nil {
		return
	}
	clear(*s)
	*s = (*s)[:0]
	if lp.closed {
		return
	}
	lp.p.Put(s)
}

// Close permanently retires the pool. Idempotent.
func (lp *ListPool[T]) Close() {
	lp.closed = true
}

// SetPool lends reusable hash-sets keyed by the item's natural equality.
type SetPool[T comparable] struct {
	p      sync.Pool
	closed bool
}

func NewSetPool[T comparable]() *SetPool[T] {
	sp := &SetPool[T]{}
	sp.p.New = func() any {
		return make(map[T]struct{}, 16)
	}
	return sp
}

// Lease returns an empty set.
func (sp *SetPool[T]) Lease() map[T]struct{} {
	if sp.closed {
		return make(map[T]struct{}, 16)
	}
	m := sp.p.Get().(map[T]struct{})
	clear(m)
	return m
}

// Release returns a leased set to the pool.
func (sp *SetPool[T]) Release(m map[T]struct{}) {
	if m == nil || sp.closed {
		return
	}
	clear(m)
	sp.p.Put(m)
}

// Close permanently retires the pool. Idempotent.
func (sp *SetPool[T]) Close() {
	sp.closed = true
}
