package sim

import "sync"

// cyclicBarrier synchronizes the replica workers between step phases.
// Each wait carries a stop vote; the verdict for a generation is the
// OR of all votes in it, so once any worker asks to stop the whole
// crew agrees within the same generation and leaves the loop
// together.
type cyclicBarrier struct {
	mu      sync.Mutex
	parties int
	waiting int
	gen     *generation
}

type generation struct {
	ch   chan struct{}
	stop bool
}

func newBarrier(parties int) *cyclicBarrier {
	return &cyclicBarrier{
		parties: parties,
		gen:     &generation{ch: make(chan struct{})},
	}
}

// wait blocks until all parties arrive and reports the generation's
// stop verdict.
func (b *cyclicBarrier) wait(stop bool) bool {
	b.mu.Lock()
	g := b.gen
	if stop {
		g.stop = true
	}
	b.waiting++
	if b.waiting == b.parties {
		b.waiting = 0
		b.gen = &generation{ch: make(chan struct{})}
		b.mu.Unlock()
		close(g.ch)
		return g.stop
	}
	b.mu.Unlock()
	<-g.ch
	return g.stop
}
