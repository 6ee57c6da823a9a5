package fieldlock

import "sync/atomic"

// poisonLock pairs the lock word with its poison flag. The flag is
// set when a writer's critical section ends abnormally, consulted
// only by the whole-read acquisition paths, and cleared only by an
// explicit request. Subfield-write acquisition ignores it: a faulted
// element does not invalidate the disjoint elements of other writers.
type poisonLock struct {
	word   lockWord
	poison atomic.Bool
}

func (l *poisonLock) isPoisoned() bool { return l.poison.Load() }

func (l *poisonLock) setPoison() { l.poison.Store(true) }

func (l *poisonLock) clearPoison() { l.poison.Store(false) }
