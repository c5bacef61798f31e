package workers_test

import (
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/katalvlaran/odcalib/internal/workers"
	"github.com/stretchr/testify/require"
)

// TestCount covers defaulting and clamping of the worker count.
func TestCount(t *testing.T) {
	cases := []struct {
		name      string
		requested int
		n         int
		want      int
	}{
		{"explicit", 4, 100, 4},
		{"clamped to n", 8, 3, 3},
		{"empty range", 4, 0, 1},
		{"default", 0, 1 << 20, runtime.GOMAXPROCS(-1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, workers.Count(tc.requested, tc.n))
		})
	}
}

// TestBlockCoversRange checks that blocks are contiguous, disjoint and exhaustive.
func TestBlockCoversRange(t *testing.T) {
	for _, n := range []int{1, 7, 10, 33} {
		for k := 1; k <= n; k++ {
			next := 0
			for w := 0; w < k; w++ {
				lo, hi := workers.Block(n, k, w)
				require.Equal(t, next, lo, "n=%d k=%d w=%d", n, k, w)
				require.GreaterOrEqual(t, hi, lo)
				next = hi
			}
			require.Equal(t, n, next, "n=%d k=%d", n, k)
		}
	}
}

// TestRunVisitsEveryIndexOnce runs with several worker counts and counts visits.
func TestRunVisitsEveryIndexOnce(t *testing.T) {
	const n = 1000
	for _, k := range []int{1, 2, 3, 16} {
		var hits [n]int32
		workers.Run(n, k, func(_, lo, hi int) {
			for i := lo; i < hi; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i := range hits {
			require.Equal(t, int32(1), hits[i], "k=%d index=%d", k, i)
		}
	}
}
