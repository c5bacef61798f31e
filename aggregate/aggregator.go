// SPDX-License-Identifier: MIT

package aggregate

import (
	"github.com/katalvlaran/odcalib/internal/workers"
	"github.com/katalvlaran/odcalib/matrix"
)

// Operation name constants for unified error wrapping.
const (
	opNew       = "New"
	opAggregate = "Aggregate"
	opCollapse  = "AggregateMatrix"
)

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithWorkers sets the number of goroutines used for the category collapse.
// n <= 0 selects one per GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(a *Aggregator) { a.workers = n }
}

// Aggregator owns the reusable Z×Z and P×P buffers.
// It is single-writer: Aggregate must not be called concurrently on the
// same Aggregator.
type Aggregator struct {
	zones    int
	workers  int
	zonal    *matrix.Dense // Z×Z category total
	district *matrix.Dense // P×P, allocated on first PD call; replaced when P changes
	rows     [][]float64   // scratch for Stack.Rows in the sequential path
}

// New allocates an Aggregator for a zone system of the given size.
//
// Errors:
//   - ErrInvalidZones when zones <= 0.
//
// Complexity: O(Z²) for the zonal buffer.
func New(zones int, opts ...Option) (*Aggregator, error) {
	if zones <= 0 {
		return nil, aggregateErrorf(opNew, ErrInvalidZones)
	}
	buf, err := matrix.NewSquare(zones)
	if err != nil {
		return nil, aggregateErrorf(opNew, err)
	}
	a := &Aggregator{zones: zones, zonal: buf}
	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// Zones returns Z.
func (a *Aggregator) Zones() int { return a.zones }

// Aggregate sums the category matrices cell-wise and, when pd is non-nil,
// collapses the Z×Z total into a P×P district matrix.
//
// Implementation:
//   - Stage 1: validate stack size and pd length against Z.
//   - Stage 2: row-parallel category collapse; each row is overwritten by
//     category 0 and then accumulated with AddRow for categories 1..C-1.
//     An empty stack zeroes the row.
//   - Stage 3 (pd != nil): zero the P×P buffer, then scatter-add every zonal
//     cell into [pd(i)][pd(j)] on the calling goroutine.
//
// Behavior highlights:
//   - The result aliases an internal buffer valid until the next call.
//   - Every cell of the result is rewritten on every call.
//
// Errors:
//   - matrix.ErrDimensionMismatch when stack.Size() != Z (non-empty stacks).
//   - ErrPDMapLength when pd.Zones() != Z.
//
// Complexity:
//   - Time O(C·Z² + Z²), Space O(P²) on first PD call.
func (a *Aggregator) Aggregate(stack *matrix.Stack, pd *PDMap) (*matrix.Dense, error) {
	if stack.Len() > 0 && stack.Size() != a.zones {
		return nil, aggregateErrorf(opAggregate, matrix.ErrDimensionMismatch)
	}
	if pd != nil && pd.Zones() != a.zones {
		return nil, aggregateErrorf(opAggregate, ErrPDMapLength)
	}

	a.collapseCategories(stack)
	if pd == nil {
		return a.zonal, nil
	}

	out, err := a.districtBuffer(pd.Districts())
	if err != nil {
		return nil, aggregateErrorf(opAggregate, err)
	}
	scatter(out, a.zonal, pd)

	return out, nil
}

// collapseCategories writes Σ_c stack[c] into a.zonal, row-parallel.
func (a *Aggregator) collapseCategories(stack *matrix.Stack) {
	n := stack.Len()
	if n == 0 {
		a.zonal.Zero()
		return
	}

	k := workers.Count(a.workers, a.zones)
	if k == 1 {
		a.rows = collapseRows(a.zonal, stack, 0, a.zones, a.rows)
		return
	}
	workers.Run(a.zones, k, func(_, lo, hi int) {
		collapseRows(a.zonal, stack, lo, hi, nil)
	})
}

// collapseRows handles rows [lo, hi). scratch is reused for per-row category slices.
func collapseRows(dst *matrix.Dense, stack *matrix.Stack, lo, hi int, scratch [][]float64) [][]float64 {
	var i, c int
	for i = lo; i < hi; i++ {
		scratch = stack.Rows(i, scratch)
		row := dst.Row(i)
		copy(row, scratch[0]) // overwrite, never accumulate onto the previous call
		for c = 1; c < len(scratch); c++ {
			matrix.AddRow(row, scratch[c])
		}
	}

	return scratch
}

// districtBuffer returns the P×P buffer, reallocating only when P changes.
func (a *Aggregator) districtBuffer(pds int) (*matrix.Dense, error) {
	if a.district != nil && a.district.Rows() == pds {
		return a.district, nil
	}
	buf, err := matrix.NewSquare(pds)
	if err != nil {
		return nil, err
	}
	a.district = buf

	return buf, nil
}

// scatter zeroes out and adds every cell of src into out[pd(i)][pd(j)].
// Many origins share one district row, so this stays sequential.
func scatter(out, src *matrix.Dense, pd *PDMap) {
	out.Zero()
	z := src.Rows()
	var i, j int
	for i = 0; i < z; i++ {
		srcRow := src.Row(i)
		dstRow := out.Row(pd.Of(i))
		for j = 0; j < z; j++ {
			dstRow[pd.zoneToPD[j]] += srcRow[j]
		}
	}
}

// AggregateMatrix collapses a single Z×Z matrix to districts into a fresh
// P×P matrix. It is used once per truth load, so it does not reuse buffers.
//
// Errors:
//   - matrix.ErrNilMatrix, matrix.ErrNonSquare, ErrPDMapLength.
//
// Complexity: O(Z² + P²).
func AggregateMatrix(m *matrix.Dense, pd *PDMap) (*matrix.Dense, error) {
	if err := matrix.ValidateSquareNonNil(m); err != nil {
		return nil, aggregateErrorf(opCollapse, err)
	}
	if pd == nil || pd.Zones() != m.Rows() {
		return nil, aggregateErrorf(opCollapse, ErrPDMapLength)
	}
	out, err := matrix.NewSquare(pd.Districts())
	if err != nil {
		return nil, aggregateErrorf(opCollapse, err)
	}
	scatter(out, m, pd)

	return out, nil
}
