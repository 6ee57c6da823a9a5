package fieldlock

import "iter"

// Shared is a cloneable owning wrapper. Each Shared accounts one unit
// in the shared half of the refcount; Release drops that unit and,
// when it was the last unit in either half, finalizes the allocation.
type Shared[S, P any] struct {
	h        Handle[S, P]
	released bool
}

// Handle returns the mapped view this owner carries. The view must
// not outlive the owner.
func (s *Shared[S, P]) Handle() *Handle[S, P] { return &s.h }

// Clone returns a second owner over the same subfield.
func (s *Shared[S, P]) Clone() *Shared[S, P] {
	if s.released {
		fatal("clone of a released handle")
	}
	s.h.inner.refs.incShared()
	return &Shared[S, P]{h: s.h}
}

// Release drops this owner's shared unit. The release that empties
// the refcount runs the payload finalizer and returns the backing
// storage to its allocator; by then no other handle can exist, so no
// further synchronization is needed. Release must be called exactly
// once.
func (s *Shared[S, P]) Release() {
	if s.released {
		fatal("shared handle released twice")
	}
	s.released = true
	s.h.inner.releaseShared()
}

// Unique is an owning wrapper that cannot be duplicated through its
// own API. Unique and Shared owners may coexist over one allocation;
// the refcount tracks the two categories in separate halves.
type Unique[S, P any] struct {
	h        Handle[S, P]
	released bool
}

func (u *Unique[S, P]) Handle() *Handle[S, P] { return &u.h }

// Downgrade consumes this owner and returns a shared-category owner
// over the same subfield. The shared half is bumped before the unique
// unit is dropped so the allocation can never appear empty in
// between.
func (u *Unique[S, P]) Downgrade() *Shared[S, P] {
	if u.released {
		fatal("downgrade of a released handle")
	}
	u.released = true
	u.h.inner.refs.incShared()
	u.h.inner.releaseUnique()
	return &Shared[S, P]{h: u.h}
}

// Release drops this owner's unique unit, with the same emptying
// semantics as Shared.Release.
func (u *Unique[S, P]) Release() {
	if u.released {
		fatal("unique handle released twice")
	}
	u.released = true
	u.h.inner.releaseUnique()
}

// Handle shapes used throughout the simulation layer: an element view
// into a slice payload, and a whole-slice view of the same payload.
type (
	ElementHandle[T any] = Handle[T, []T]
	SliceHandle[T any]   = Handle[[]T, []T]

	UniqueSlice[T any] = Unique[[]T, []T]
	SharedSlice[T any] = Shared[[]T, []T]
)

// NewValue builds a unique owner over a single payload value; the
// subfield is the whole payload. drop, if non-nil, runs exactly once
// when the last handle releases.
func NewValue[P any](payload P, drop func(*P)) *Unique[P, P] {
	h := newHeader(payload, drop, nil)
	h.refs.word.Store(uniqueOne)
	return &Unique[P, P]{h: Handle[P, P]{inner: h, sub: &h.data}}
}

// NewSharedValue is NewValue with the first owner in the shared
// category.
func NewSharedValue[P any](payload P, drop func(*P)) *Shared[P, P] {
	h := newHeader(payload, drop, nil)
	h.refs.word.Store(sharedOne)
	return &Shared[P, P]{h: Handle[P, P]{inner: h, sub: &h.data}}
}

// NewSlice draws storage for n elements from alloc, fills it, and
// returns a unique owner over the whole slice. The storage goes back
// to alloc on the last release, after drop (if any) has run.
func NewSlice[T any](alloc Allocator[T], n int, fill func(i int) T, drop func(*[]T)) *Unique[[]T, []T] {
	buf := alloc.Alloc(n)
	if fill != nil {
		for i := range buf {
			buf[i] = fill(i)
		}
	}
	h := newHeader(buf, drop, func() { alloc.Free(buf) })
	h.refs.word.Store(uniqueOne)
	return &Unique[[]T, []T]{h: Handle[[]T, []T]{inner: h, sub: &h.data}}
}

// NewSliceSeq builds the slice payload from an iterator of values,
// taking at most n of them. The payload is trimmed to the values
// actually produced; Free still sees the full buffer.
func NewSliceSeq[T any](alloc Allocator[T], n int, seq iter.Seq[T], drop func(*[]T)) *Unique[[]T, []T] {
	buf := alloc.Alloc(n)
	i := 0
	for v := range seq {
		if i == n {
			break
		}
		buf[i] = v
		i++
	}
	h := newHeader(buf[:i], drop, func() { alloc.Free(buf) })
	h.refs.word.Store(uniqueOne)
	return &Unique[[]T, []T]{h: Handle[[]T, []T]{inner: h, sub: &h.data}}
}
