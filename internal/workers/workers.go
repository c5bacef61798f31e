// Package workers runs CPU-bound loops over an index range [0, n) on a
// fixed set of goroutines.
//
// The range is split into contiguous blocks, one per worker, so a worker's
// share depends only on (n, k). Callers that reduce per-worker partials in
// worker-index order therefore get the same result for the same (n, k).
package workers

import (
	"runtime"
	"sync"
)

// Count resolves the number of workers for n items.
// requested <= 0 means "one per GOMAXPROCS". The result is clamped to [1, n]
// (or 1 when n <= 0).
func Count(requested, n int) int {
	k := requested
	if k <= 0 {
		k = runtime.GOMAXPROCS(-1)
	}
	if k > n {
		k = n
	}
	if k < 1 {
		k = 1
	}

	return k
}

// Block returns the half-open range [lo, hi) owned by worker w of k over n items.
// The first n%k workers take one extra item.
func Block(n, k, w int) (lo, hi int) {
	size, rem := n/k, n%k
	lo = w*size + min(w, rem)
	hi = lo + size
	if w < rem {
		hi++
	}

	return lo, hi
}

// Run calls fn(w, lo, hi) once per block and blocks until all have returned.
// With k == 1 fn runs on the calling goroutine.
func Run(n, k int, fn func(w, lo, hi int)) {
	if n <= 0 {
		return
	}
	k = Count(k, n)
	if k == 1 {
		fn(0, 0, n)
		return
	}

	var wg sync.WaitGroup
	wg.Add(k)
	for w := 0; w < k; w++ {
		lo, hi := Block(n, k, w)
		go func(w, lo, hi int) {
			defer wg.Done()
			fn(w, lo, hi)
		}(w, lo, hi)
	}
	wg.Wait()
}
