// Package fieldlock provides a reference-counted lock that lets many
// goroutines hold disjoint mutable "subfield" views of one shared
// payload while still allowing occasional consistent whole-payload
// reads.
//
// One allocation carries one refcount word, one lock word, and the
// payload. The lock word alternates between two internally unbounded
// modes: any number of concurrent subfield writers, or any number of
// concurrent whole-payload readers. Writers do not exclude each other
// because the partitioning layer guarantees their subfields are
// pairwise disjoint; see [Split] and [SplitMut].
//
// A typical use partitions a slice across workers:
//
//	owner := fieldlock.NewSlice(fieldlock.HeapAllocator[float64]{}, 4, nil, nil)
//	it := fieldlock.SplitMut(owner)
//	for {
//	    elem, ok := it.Next()
//	    if !ok {
//	        break
//	    }
//	    go func() {
//	        g := elem.Handle().Write()
//	        *g.Get() = 1
//	        g.Unlock()
//	        elem.Release()
//	    }()
//	}
//	it.Close()
//
// Whole-payload readers observe a consistent ring: ReadWhole blocks
// until every writer has released, and reports (advisorily) whether
// any writer faulted while holding its guard.
//
// The primitive offers no timeouts, no fairness between the two
// modes, and no disjointness checking. Holder-count overflow is a
// caller contract violation and terminates the process.
package fieldlock
