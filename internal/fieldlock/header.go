package fieldlock

import "golang.org/x/sys/cpu"

// header is the backing allocation behind every handle: the refcount
// word, then the poisonable lock word, then the payload. Handles keep
// a pointer to the whole header, so whole-payload operations and
// refcounting never need to reconstruct it from a subfield address.
// The pads keep the two hot words and the payload off a shared cache
// line.
type header[P any] struct {
	refs refCount
	_    cpu.CacheLinePad
	lock poisonLock
	_    cpu.CacheLinePad
	data P

	// drop runs over the payload exactly once, on the emptying
	// release; free then returns the payload's backing storage to
	// its allocator. Either may be nil.
	drop func(*P)
	free func()
}

func newHeader[P any](payload P, drop func(*P), free func()) *header[P] {
	h := &header[P]{data: payload, drop: drop, free: free}
	h.lock.word.init()
	return h
}

func (h *header[P]) releaseShared() {
	if h.refs.decShared() {
		h.finalize()
	}
}

func (h *header[P]) releaseUnique() {
	if h.refs.decUnique() {
		h.finalize()
	}
}

// finalize is reached by exactly one goroutine: the refcount hit zero,
// so no other handle to this allocation can exist.
func (h *header[P]) finalize() {
	if h.drop != nil {
		h.drop(&h.data)
	}
	if h.free != nil {
		h.free()
	}
}
