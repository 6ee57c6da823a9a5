package fieldlock

import "sync/atomic"

// Refcount layout: one 64-bit word split into two saturating halves.
// The low half counts shared-category handles (cloneable ones), the
// high half unique-category handles (split ownership). The word is
// the exact sum of all live handles over the allocation; it reaches
// zero exactly once, on the release that frees the allocation.
const (
	sharedOne uint64 = 1
	uniqueOne uint64 = 1 << 32
	sharedMax uint64 = 1<<32 - 1
	uniqueMax uint64 = sharedMax << 32
)

type refCount struct {
	word atomic.Uint64
}

// incShared registers one more shared-category handle. Hitting the
// half's ceiling aborts: an increment that carries into the unique
// half would silently corrupt both counters.
func (c *refCount) incShared() {
	if (c.word.Add(sharedOne)-sharedOne)&sharedMax == sharedMax {
		fatal("shared handle count overflow")
	}
}

// incUnique registers one more unique-category handle.
func (c *refCount) incUnique() {
	if (c.word.Add(uniqueOne)-uniqueOne)&uniqueMax == uniqueMax {
		fatal("unique handle count overflow")
	}
}

// decShared drops one shared-category handle and reports whether this
// release emptied the whole word. The new value is zero exactly when
// the pre-decrement word was a lone shared unit, meaning the unique
// half was already empty.
func (c *refCount) decShared() bool {
	return c.word.Add(^(sharedOne - 1)) == 0
}

// decUnique drops one unique-category handle, reporting emptiness as
// decShared does.
func (c *refCount) decUnique() bool {
	return c.word.Add(^(uniqueOne - 1)) == 0
}

// load returns the two halves, for tests and diagnostics.
func (c *refCount) load() (shared, unique uint32) {
	w := c.word.Load()
	return uint32(w & sharedMax), uint32(w >> 32)
}
