package fieldlock

import (
	"runtime"
	"sync"
	"testing"
)

func newTestWord() *lockWord {
	w := &lockWord{}
	w.init()
	return w
}

func TestLockWordIdle(t *testing.T) {
	w := newTestWord()
	if s := w.state.Load(); s != 0 {
		t.Fatalf("fresh lock word not idle: %#x", s)
	}
}

func TestLockWordWriteMode(t *testing.T) {
	w := newTestWord()
	w.acquireWrite()
	if s := w.state.Load(); s&writeFlag == 0 || s>>countShift != 1 {
		t.Fatalf("after one writer: %#x", s)
	}
	w.acquireWrite()
	if s := w.state.Load(); s>>countShift != 2 {
		t.Fatalf("after two writers: %#x", s)
	}
	if w.tryAcquireReadWhole() {
		t.Fatal("reader admitted while writers hold the word")
	}
	w.releaseWriter()
	if s := w.state.Load(); s>>countShift != 1 {
		t.Fatalf("after releasing one of two writers: %#x", s)
	}
	w.releaseWriter()
	if s := w.state.Load(); s != 0 {
		t.Fatalf("after releasing last writer: %#x", s)
	}
}

func TestLockWordReadMode(t *testing.T) {
	w := newTestWord()
	w.acquireReadWhole()
	w.acquireReadWhole()
	if s := w.state.Load(); s&writeFlag != 0 || s>>countShift != 2 {
		t.Fatalf("after two readers: %#x", s)
	}
	if w.tryAcquireWrite() {
		t.Fatal("writer admitted while readers hold the word")
	}
	w.releaseReader()
	w.releaseReader()
	if s := w.state.Load(); s != 0 {
		t.Fatalf("after releasing all readers: %#x", s)
	}
}

// Mode flags are never mixed: with a nonzero count, the word is in
// exactly one mode, and the opposing try-path always fails.
func TestLockWordNoModeMixing(t *testing.T) {
	w := newTestWord()
	const holders = 64

	var wg sync.WaitGroup
	hold := make(chan struct{})
	for i := 0; i < holders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.acquireWrite()
			<-hold
			w.releaseWriter()
		}()
	}

	for w.state.Load()>>countShift != holders {
		runtime.Gosched()
	}
	if w.tryAcquireReadWhole() {
		t.Error("reader admitted alongside writers")
	}
	close(hold)
	wg.Wait()

	if s := w.state.Load(); s != 0 {
		t.Fatalf("word not idle after all writers released: %#x", s)
	}
}

// Writers targeting disjoint subfields stack freely: every try-acquire
// succeeds while all previous holders are still in.
func TestLockWordWriterFanOut(t *testing.T) {
	w := newTestWord()
	const n = 128
	for i := 0; i < n; i++ {
		if !w.tryAcquireWrite() {
			t.Fatalf("writer %d refused with %d writers in", i, i)
		}
	}
	for i := 0; i < n; i++ {
		w.releaseWriter()
	}
	if s := w.state.Load(); s != 0 {
		t.Fatalf("word not idle: %#x", s)
	}
}

func TestLockWordReaderFanOut(t *testing.T) {
	w := newTestWord()
	const n = 128
	for i := 0; i < n; i++ {
		if !w.tryAcquireReadWhole() {
			t.Fatalf("reader %d refused with %d readers in", i, i)
		}
	}
	for i := 0; i < n; i++ {
		w.releaseReader()
	}
	if s := w.state.Load(); s != 0 {
		t.Fatalf("word not idle: %#x", s)
	}
}

// A blocked acquirer is woken by the release that empties the word.
func TestLockWordBlockedWriterWakes(t *testing.T) {
	w := newTestWord()
	w.acquireReadWhole()

	acquired := make(chan struct{})
	go func() {
		w.acquireWrite()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("writer got in while a reader held the word")
	default:
	}

	w.releaseReader()
	<-acquired
	w.releaseWriter()
}

func TestLockWordBlockedReaderWakes(t *testing.T) {
	w := newTestWord()
	w.acquireWrite()

	acquired := make(chan struct{})
	go func() {
		w.acquireReadWhole()
		close(acquired)
	}()

	w.releaseWriter()
	<-acquired
	w.releaseReader()
}

// Hammer the word from both sides and check it always ends idle.
func TestLockWordStress(t *testing.T) {
	if testing.Short() {
		t.Skip("stress test")
	}
	w := newTestWord()
	const (
		goroutines = 16
		rounds     = 2000
	)
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				if id%2 == 0 {
					w.acquireWrite()
					w.releaseWriter()
				} else {
					w.acquireReadWhole()
					w.releaseReader()
				}
			}
		}(g)
	}
	wg.Wait()
	if s := w.state.Load(); s != 0 {
		t.Fatalf("word not idle after stress: %#x", s)
	}
}
