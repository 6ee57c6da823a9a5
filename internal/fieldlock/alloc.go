package fieldlock

import "sync"

// Allocator supplies and reclaims backing storage for slice payloads.
// An allocation's storage is returned through Free exactly once, by
// whichever handle release empties the refcount.
type Allocator[T any] interface {
	Alloc(n int) []T
	Free(s []T)
}

// HeapAllocator allocates from the Go heap and leaves reclamation to
// the collector.
type HeapAllocator[T any] struct{}

func (HeapAllocator[T]) Alloc(n int) []T { return make([]T, n) }

func (HeapAllocator[T]) Free([]T) {}

// PoolAllocator recycles buffers of one fixed size through a
// sync.Pool. Requests for other sizes fall through to the heap and
// are dropped on Free.
type PoolAllocator[T any] struct {
	size int
	pool sync.Pool
}

func NewPoolAllocator[T any](size int) *PoolAllocator[T] {
	p := &PoolAllocator[T]{size: size}
	p.pool.New = func() any { return make([]T, size) }
	return p
}

func (p *PoolAllocator[T]) Alloc(n int) []T {
	if n != p.size {
		return make([]T, n)
	}
	return p.pool.Get().([]T)
}

func (p *PoolAllocator[T]) Free(s []T) {
	if cap(s) < p.size {
		return
	}
	s = s[:p.size]
	var zero T
	for i := range s {
		s[i] = zero
	}
	p.pool.Put(s)
}
