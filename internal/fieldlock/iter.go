package fieldlock

// Elems peels per-element owners off a slice allocation, front or
// back. Elements obtained this way are shared-category: each Next
// bumps the shared half and the yielded owner supports Clone. The
// iterator keeps the unique unit of the owner it consumed and gives
// it back on Close, whether or not every element was yielded.
type Elems[T any] struct {
	h      Handle[[]T, []T]
	lo, hi int
	closed bool
}

// Split consumes a unique slice owner and returns its element
// iterator. Each yielded element aliases a distinct slot of the
// payload, so the yielded subfields are pairwise disjoint and their
// union is the original slice.
func Split[T any](u *Unique[[]T, []T]) *Elems[T] {
	if u.released {
		fatal("split of a released handle")
	}
	u.released = true
	return &Elems[T]{h: u.h, hi: len(*u.h.sub)}
}

// Next yields an owner over the front-most remaining element.
func (it *Elems[T]) Next() (*Shared[T, []T], bool) {
	if it.lo == it.hi {
		return nil, false
	}
	i := it.lo
	it.lo++
	return it.yield(i), true
}

// NextBack yields an owner over the back-most remaining element.
func (it *Elems[T]) NextBack() (*Shared[T, []T], bool) {
	if it.lo == it.hi {
		return nil, false
	}
	it.hi--
	return it.yield(it.hi), true
}

func (it *Elems[T]) yield(i int) *Shared[T, []T] {
	it.h.inner.refs.incShared()
	return &Shared[T, []T]{h: Handle[T, []T]{inner: it.h.inner, sub: &(*it.h.sub)[i]}}
}

// Remaining reports how many elements have not been yielded yet.
func (it *Elems[T]) Remaining() int { return it.hi - it.lo }

// Close releases the unique unit covering the unyielded remainder.
// Owners already yielded are unaffected. Close must be called exactly
// once.
func (it *Elems[T]) Close() {
	if it.closed {
		fatal("element iterator closed twice")
	}
	it.closed = true
	it.h.inner.releaseUnique()
}

// ElemsMut is the exclusive-mutation flavor of Elems: each yielded
// element is a fresh unique-category owner, preserving per-element
// split ownership.
type ElemsMut[T any] struct {
	h      Handle[[]T, []T]
	lo, hi int
	closed bool
}

// SplitMut consumes a unique slice owner and returns its mutable
// element iterator. The disjointness of the yielded subfields is what
// makes concurrent Write calls across elements safe without further
// coordination.
func SplitMut[T any](u *Unique[[]T, []T]) *ElemsMut[T] {
	if u.released {
		fatal("split of a released handle")
	}
	u.released = true
	return &ElemsMut[T]{h: u.h, hi: len(*u.h.sub)}
}

func (it *ElemsMut[T]) Next() (*Unique[T, []T], bool) {
	if it.lo == it.hi {
		return nil, false
	}
	i := it.lo
	it.lo++
	return it.yield(i), true
}

func (it *ElemsMut[T]) NextBack() (*Unique[T, []T], bool) {
	if it.lo == it.hi {
		return nil, false
	}
	it.hi--
	return it.yield(it.hi), true
}

func (it *ElemsMut[T]) yield(i int) *Unique[T, []T] {
	it.h.inner.refs.incUnique()
	return &Unique[T, []T]{h: Handle[T, []T]{inner: it.h.inner, sub: &(*it.h.sub)[i]}}
}

func (it *ElemsMut[T]) Remaining() int { return it.hi - it.lo }

// Close releases the unique unit covering the unyielded remainder.
func (it *ElemsMut[T]) Close() {
	if it.closed {
		fatal("element iterator closed twice")
	}
	it.closed = true
	it.h.inner.releaseUnique()
}
