package fieldlock

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
)

// Lock word layout: bit 0 is the write-mode flag, the remaining bits
// hold the holder count. A zero word is idle. A nonzero word with the
// flag set carries N concurrent subfield writers; with the flag clear,
// N concurrent whole-payload readers. The two modes never coexist.
const (
	writeFlag  = 1
	countShift = 1
	countOne   = 1 << countShift
	countMax   = (1<<32 - 1) >> countShift

	// CAS failures spin this many rounds before yielding the processor.
	spinBudget = 16
)

// lockWord arbitrates between two mutually exclusive access modes:
// any number of concurrent subfield writers, or any number of
// concurrent whole-payload readers. Writers never exclude each other
// because callers guarantee their subfields are pairwise disjoint;
// the word only enforces the alternation between the two modes.
//
// Blocked acquirers park on the cond and re-enter the CAS loop on
// wake, so spurious wakeups are harmless. Every transition back to
// idle broadcasts.
type lockWord struct {
	state atomic.Uint32
	mu    sync.Mutex
	cond  sync.Cond
}

func (w *lockWord) init() {
	w.cond.L = &w.mu
}

// acquireWrite blocks until no whole-readers remain, then registers
// one more subfield writer.
func (w *lockWord) acquireWrite() {
	spins := 0
	s := w.state.Load()
	for {
		switch {
		case s == 0:
			if w.state.CompareAndSwap(0, writeFlag|countOne) {
				return
			}
		case s&writeFlag != 0:
			if s>>countShift == countMax {
				fatal("subfield writer count overflow")
			}
			if w.state.CompareAndSwap(s, s+countOne) {
				return
			}
		default:
			w.sleep(s)
		}
		s = w.reload(&spins)
	}
}

// tryAcquireWrite is acquireWrite without the blocking path. It
// reports false when whole-readers hold the word.
func (w *lockWord) tryAcquireWrite() bool {
	spins := 0
	s := w.state.Load()
	for {
		switch {
		case s == 0:
			if w.state.CompareAndSwap(0, writeFlag|countOne) {
				return true
			}
		case s&writeFlag != 0:
			if s>>countShift == countMax {
				fatal("subfield writer count overflow")
			}
			if w.state.CompareAndSwap(s, s+countOne) {
				return true
			}
		default:
			return false
		}
		s = w.reload(&spins)
	}
}

// acquireReadWhole blocks until no subfield writers remain, then
// registers one more whole-payload reader.
func (w *lockWord) acquireReadWhole() {
	spins := 0
	s := w.state.Load()
	for {
		switch {
		case s == 0:
			if w.state.CompareAndSwap(0, countOne) {
				return
			}
		case s&writeFlag == 0:
			if s>>countShift == countMax {
				fatal("whole reader count overflow")
			}
			if w.state.CompareAndSwap(s, s+countOne) {
				return
			}
		default:
			w.sleep(s)
		}
		s = w.reload(&spins)
	}
}

// tryAcquireReadWhole is acquireReadWhole without the blocking path.
func (w *lockWord) tryAcquireReadWhole() bool {
	spins := 0
	s := w.state.Load()
	for {
		switch {
		case s == 0:
			if w.state.CompareAndSwap(0, countOne) {
				return true
			}
		case s&writeFlag == 0:
			if s>>countShift == countMax {
				fatal("whole reader count overflow")
			}
			if w.state.CompareAndSwap(s, s+countOne) {
				return true
			}
		default:
			return false
		}
		s = w.reload(&spins)
	}
}

// releaseWriter drops one writer. The last writer out clears the mode
// flag and wakes every parked acquirer.
func (w *lockWord) releaseWriter() {
	spins := 0
	s := w.state.Load()
	for {
		n := s >> countShift
		switch {
		case n == 0 || s&writeFlag == 0:
			fatal("release of an unheld write lock")
		case n == 1:
			if w.state.CompareAndSwap(s, 0) {
				w.wakeAll()
				return
			}
		default:
			if w.state.CompareAndSwap(s, s-countOne) {
				return
			}
		}
		s = w.reload(&spins)
	}
}

// releaseReader drops one whole-reader. The last reader out empties
// the word in a single subtract and wakes every parked acquirer.
func (w *lockWord) releaseReader() {
	s := w.state.Load()
	if s&writeFlag != 0 || s>>countShift == 0 {
		fatal("release of an unheld whole-read lock")
	}
	if w.state.Add(^uint32(countOne-1)) == 0 {
		w.wakeAll()
	}
}

func (w *lockWord) reload(spins *int) uint32 {
	*spins++
	if *spins%spinBudget == 0 {
		runtime.Gosched()
	}
	return w.state.Load()
}

// sleep parks the caller until the word moves away from seen. The
// atomic state is re-checked under mu so a release that lands between
// the caller's last load and the park cannot strand it.
func (w *lockWord) sleep(seen uint32) {
	w.mu.Lock()
	for w.state.Load() == seen {
		w.cond.Wait()
	}
	w.mu.Unlock()
}

func (w *lockWord) wakeAll() {
	w.mu.Lock()
	w.cond.Broadcast()
	w.mu.Unlock()
}

// fatal reports an unrecoverable misuse of the primitive and
// terminates the process. Counter overflow means far more holders
// than the caller contract allows; continuing would corrupt the
// state word, so this is deliberately not an error return.
func fatal(msg string) {
	fmt.Fprintln(os.Stderr, "fieldlock: "+msg)
	os.Exit(2)
}
