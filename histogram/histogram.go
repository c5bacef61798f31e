// SPDX-License-Identifier: MIT

package histogram

import (
	"math"

	"github.com/katalvlaran/odcalib/internal/workers"
	"github.com/katalvlaran/odcalib/matrix"
	"gonum.org/v1/gonum/floats"
)

// DefaultCoordinateFactor converts coordinate metres to kilometres.
const DefaultCoordinateFactor = 0.001

// Option configures Build.
type Option func(*config)

type config struct {
	workers int
}

// WithWorkers sets the number of goroutines origins are fanned out to.
// n <= 0 selects one per GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

// Validate checks a bin configuration and coordinate factor without touching
// any matrix. Build calls it first; callers can call it at configuration time.
//
// Errors:
//   - ErrNoBins, ErrBadFactor.
func Validate(bins *RangeSet, factor float64) error {
	if bins.Len() == 0 {
		return histogramErrorf("Validate", ErrNoBins)
	}
	if math.IsNaN(factor) || math.IsInf(factor, 0) || factor <= 0 {
		return histogramErrorf("Validate", ErrBadFactor)
	}

	return nil
}

// Build accumulates trip volume per (distance bin, category).
//
// Implementation:
//   - Stage 1: validate bins and factor, then the distance matrix against the stack.
//   - Stage 2: split origins into contiguous blocks; each worker owns a private
//     (bins+1)×C table. For each (i, j) the scaled distance is truncated to an
//     integer, binned once, and every category's volume is added to that bin.
//   - Stage 3: sum the private tables into the result in worker order.
//
// Behavior highlights:
//   - Distances that are NaN, ±Inf or beyond the int range fall in the overflow bin.
//   - An empty stack yields a table with zero categories.
//
// Errors:
//   - ErrNoBins, ErrBadFactor.
//   - matrix.ErrNilMatrix, matrix.ErrNonSquare, matrix.ErrDimensionMismatch.
//
// Complexity:
//   - Time O(Z²·(C + log B)), Space O(k·B·C) for k workers.
func Build(stack *matrix.Stack, distances *matrix.Dense, bins *RangeSet, factor float64, opts ...Option) (*Table, error) {
	if err := Validate(bins, factor); err != nil {
		return nil, err
	}
	if err := matrix.ValidateSquareNonNil(distances); err != nil {
		return nil, histogramErrorf("Build: distances", err)
	}
	cats := stack.Len()
	if cats > 0 && stack.Size() != distances.Rows() {
		return nil, histogramErrorf("Build", matrix.ErrDimensionMismatch)
	}

	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	nBins := bins.Len() + 1
	table := newTable(bins.Labels(), cats)
	if cats == 0 {
		return table, nil
	}

	zones := distances.Rows()
	k := workers.Count(cfg.workers, zones)
	partials := make([][]float64, k)
	workers.Run(zones, k, func(w, lo, hi int) {
		local := make([]float64, nBins*cats) // [bin*cats + c]
		rows := make([][]float64, 0, cats)
		for i := lo; i < hi; i++ {
			rows = stack.Rows(i, rows)
			for j, d := range distances.Row(i) {
				base := binOf(bins, d, factor) * cats
				for c, row := range rows {
					local[base+c] += row[j]
				}
			}
		}
		partials[w] = local
	})

	flat := table.flat
	for _, p := range partials {
		floats.Add(flat, p)
	}

	return table, nil
}

// binOf scales d, truncates toward zero and returns its bin (overflow included).
func binOf(bins *RangeSet, d, factor float64) int {
	scaled := d * factor
	if math.IsNaN(scaled) || scaled >= math.MaxInt || scaled <= math.MinInt {
		return bins.Len()
	}

	return bins.Bin(int(scaled))
}
