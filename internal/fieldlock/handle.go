package fieldlock

import "errors"

var (
	// ErrWouldBlock is returned by TryWrite and TryReadWhole when the
	// lock is held in the opposing mode. The caller decides whether
	// to retry or fall back to the blocking path.
	ErrWouldBlock = errors.New("fieldlock: lock held in opposing mode")

	// ErrPoisoned is returned by ReadWhole and TryReadWhole when a
	// writer faulted while holding its guard. It is advisory: the
	// returned guard is valid and readable, and the condition can be
	// dismissed with ClearPoison.
	ErrPoisoned = errors.New("fieldlock: writer faulted while holding the lock")
)

// Handle is a mapped view of one allocation. It addresses the whole
// payload for whole-reads and a caller-chosen subfield for direct
// access. Any two live handles that write concurrently must target
// disjoint subfields; the partitioning iterators establish that
// invariant, the lock itself only arbitrates between the write mode
// and the whole-read mode.
//
// Handles are cheap pair-of-pointer values, but they do not own a
// refcount unit; their lifetime is bounded by the owning wrapper or
// iterator that produced them.
type Handle[S, P any] struct {
	inner *header[P]
	sub   *S
}

// Read returns the subfield without synchronization. It is safe
// because no other live handle may write this subfield, and the
// caller cannot race Read against its own Write guard.
func (h *Handle[S, P]) Read() *S { return h.sub }

// Write blocks until no whole-readers remain, then returns an
// exclusive guard over the subfield.
func (h *Handle[S, P]) Write() *WriteGuard[S] {
	h.inner.lock.word.acquireWrite()
	return &WriteGuard[S]{lock: &h.inner.lock, sub: h.sub}
}

// TryWrite is Write without the blocking path; it returns
// ErrWouldBlock while whole-readers hold the allocation.
func (h *Handle[S, P]) TryWrite() (*WriteGuard[S], error) {
	if !h.inner.lock.word.tryAcquireWrite() {
		return nil, ErrWouldBlock
	}
	return &WriteGuard[S]{lock: &h.inner.lock, sub: h.sub}, nil
}

// WithWrite runs fn with exclusive access to the subfield. If fn
// panics, the writer slot is released, the lock is poisoned, and the
// panic resumes; otherwise the slot is released cleanly.
func (h *Handle[S, P]) WithWrite(fn func(*S)) {
	g := h.Write()
	defer func() {
		if r := recover(); r != nil {
			g.UnlockFault()
			panic(r)
		}
	}()
	fn(g.Get())
	g.Unlock()
}

// ReadWhole blocks until no subfield writers remain, then returns a
// shared guard over the entire payload. The guard is valid even when
// the error is ErrPoisoned.
func (h *Handle[S, P]) ReadWhole() (*ReadGuard[P], error) {
	h.inner.lock.word.acquireReadWhole()
	g := &ReadGuard[P]{word: &h.inner.lock.word, data: &h.inner.data}
	if h.inner.lock.isPoisoned() {
		return g, ErrPoisoned
	}
	return g, nil
}

// TryReadWhole is ReadWhole without the blocking path. A nil guard
// comes only with ErrWouldBlock; with ErrPoisoned the guard is held
// and usable.
func (h *Handle[S, P]) TryReadWhole() (*ReadGuard[P], error) {
	if !h.inner.lock.word.tryAcquireReadWhole() {
		return nil, ErrWouldBlock
	}
	g := &ReadGuard[P]{word: &h.inner.lock.word, data: &h.inner.data}
	if h.inner.lock.isPoisoned() {
		return g, ErrPoisoned
	}
	return g, nil
}

// IsPoisoned reports whether a writer has faulted while holding this
// allocation's lock.
func (h *Handle[S, P]) IsPoisoned() bool { return h.inner.lock.isPoisoned() }

// ClearPoison dismisses a previous writer fault.
func (h *Handle[S, P]) ClearPoison() { h.inner.lock.clearPoison() }

// WriteGuard is exclusive access to one subfield. Release it with
// Unlock, or with UnlockFault when the critical section did not
// complete normally.
type WriteGuard[S any] struct {
	lock *poisonLock
	sub  *S
	done bool
}

func (g *WriteGuard[S]) Get() *S { return g.sub }

func (g *WriteGuard[S]) Unlock() {
	if g.done {
		fatal("write guard released twice")
	}
	g.done = true
	g.lock.word.releaseWriter()
}

// UnlockFault releases the writer slot and then poisons the lock,
// recording for later whole-readers that this subfield may hold a
// half-applied update.
func (g *WriteGuard[S]) UnlockFault() {
	if g.done {
		fatal("write guard released twice")
	}
	g.done = true
	g.lock.word.releaseWriter()
	g.lock.setPoison()
}

// ReadGuard is shared access to the entire payload.
type ReadGuard[P any] struct {
	word *lockWord
	data *P
	done bool
}

func (g *ReadGuard[P]) Get() *P { return g.data }

func (g *ReadGuard[P]) Unlock() {
	if g.done {
		fatal("read guard released twice")
	}
	g.done = true
	g.word.releaseReader()
}
