// SPDX-License-Identifier: MIT

package evaluate

import (
	"github.com/katalvlaran/odcalib/matrix"
	"gonum.org/v1/gonum/floats"
)

// Truth is the observed OD matrix together with its derived per-origin row
// sums and grand total. The derived values are computed when the matrix is
// (re)loaded and never otherwise, so they cannot go stale.
//
// Truth is read-only during evaluation and may be shared by concurrent
// Evaluate calls as long as nobody calls Reload at the same time.
type Truth struct {
	m        *matrix.Dense
	rowSums  []float64
	total    float64
	invTotal float64
}

// NewTruth wraps m and computes its derived values.
//
// Errors:
//   - matrix.ErrNilMatrix, matrix.ErrNonSquare.
//
// Complexity: O(Z²).
func NewTruth(m *matrix.Dense) (*Truth, error) {
	t := &Truth{}
	if err := t.Reload(m); err != nil {
		return nil, err
	}

	return t, nil
}

// Reload replaces the truth matrix and recomputes row sums and the grand total.
// On error the previous state is kept. When the size is unchanged the row-sum
// buffer is reused, so a slice obtained from RowSums sees the new values.
//
// A zero grand total yields InverseTotal() == 0; every row then has a zero
// sum (for non-negative demand) and contributes nothing.
//
// Complexity: O(Z²).
func (t *Truth) Reload(m *matrix.Dense) error {
	if err := matrix.ValidateSquareNonNil(m); err != nil {
		return evaluateErrorf("Truth.Reload", err)
	}
	rowSums := t.rowSums
	if len(rowSums) == m.Rows() {
		if err := m.RowSumsInto(rowSums); err != nil {
			return evaluateErrorf("Truth.Reload", err)
		}
	} else {
		rowSums = m.RowSums()
	}
	total := floats.Sum(rowSums)

	t.m = m
	t.rowSums = rowSums
	t.total = total
	t.invTotal = 0
	if total != 0 {
		t.invTotal = 1 / total
	}

	return nil
}

// Matrix returns the truth matrix (shared, not copied).
func (t *Truth) Matrix() *matrix.Dense { return t.m }

// RowSums returns the cached per-origin sums (shared, not copied).
func (t *Truth) RowSums() []float64 { return t.rowSums }

// Total returns the cached grand total.
func (t *Truth) Total() float64 { return t.total }

// InverseTotal returns 1/Total(), or 0 when Total() == 0.
func (t *Truth) InverseTotal() float64 { return t.invTotal }

// Size returns the matrix dimension (Z or P).
func (t *Truth) Size() int {
	if t == nil || t.m == nil {
		return 0
	}

	return t.m.Rows()
}
