// SPDX-License-Identifier: MIT

// Package matrix - Dense storage (row-major) & safe accessors.
//
// Purpose:
//   - Provide a cache-friendly row-major buffer with the explicit index formula i*cols + j.
//   - Guarantee safety at the public surface: At/Set return errors instead of panicking.
//   - Expose whole rows as no-copy slices so hot OD loops run over contiguous memory.
//
// AI-Hints:
//   - Prefer Row(i) in kernels; keep At/Set for sparse pokes and tests.
//   - Zero() is the only sanctioned way to reset a reused buffer.
//
// Complexity quicksheet:
//   - NewDense: O(r*c) zero-init; At/Set/Row: O(1); Clone/Zero/Sum: O(r*c).

package matrix

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// ---------- error context tags ----------

const (
	ctxAt      = "At"        // method tag used in error wrappers
	ctxSet     = "Set"       // method tag used in error wrappers
	ctxFrom    = "NewDenseFrom"
	ctxCopy    = "CopyFrom"
	ctxRowSums = "RowSums"
)

// ---------- Formatting literals  ----------
const (
	_fmtRowOpen  = "["
	_fmtRowClose = "]\n"
	_fmtSep      = ", "
)

// denseErrorf wraps an error with a uniform Dense context and callsite indices.
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// Dense is a concrete row-major matrix.
//   - r,c hold dimensions (rows, cols).
//   - data is a flat buffer of length r*c in row-major order (offset = i*c + j).
type Dense struct {
	r, c int       // row and column counts (>0)
	data []float64 // contiguous row-major storage (len == r*c)
}

// Compile-time assertion for fmt.Stringer conformance.
var _ fmt.Stringer = (*Dense)(nil)

// NewDense creates an r×c zero matrix using row-major storage.
// Implementation:
//   - Stage 1: validate rows>0 && cols>0; else ErrInvalidDimensions.
//   - Stage 2: allocate zero-filled buffer.
//
// Errors:
//   - ErrInvalidDimensions (shape contract violation).
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func NewDense(rows, cols int) (*Dense, error) {
	// Validate shape.
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}

	// make() zero-fills deterministically.
	return &Dense{r: rows, c: cols, data: make([]float64, rows*cols)}, nil
}

// NewSquare is NewDense(n, n); OD matrices are always square.
func NewSquare(n int) (*Dense, error) { return NewDense(n, n) }

// NewDenseFrom copies a rectangular [][]float64 into a new Dense.
// Implementation:
//   - Stage 1: require at least one non-empty row.
//   - Stage 2: require every row to have len(rows[0]) entries.
//   - Stage 3: copy row by row, rejecting NaN/±Inf.
//
// Errors:
//   - ErrInvalidDimensions for empty input, ErrDimensionMismatch for ragged rows,
//     ErrNaNInf for non-finite cells.
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func NewDenseFrom(rows [][]float64) (*Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, matrixErrorf(ctxFrom, ErrInvalidDimensions)
	}
	m, err := NewDense(len(rows), len(rows[0]))
	if err != nil {
		return nil, matrixErrorf(ctxFrom, err)
	}

	var i, j int
	for i = 0; i < m.r; i++ { // fixed row order
		if len(rows[i]) != m.c {
			return nil, matrixErrorf(ctxFrom, ErrDimensionMismatch)
		}
		for j = 0; j < m.c; j++ {
			v := rows[i][j]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, denseErrorf(ctxFrom, i, j, ErrNaNInf)
			}
			m.data[i*m.c+j] = v
		}
	}

	return m, nil
}

// Rows returns the row count. No side effects.
func (m *Dense) Rows() int { return m.r }

// Cols returns the column count. No side effects.
func (m *Dense) Cols() int { return m.c }

// Shape packs Rows() and Cols() into a single call for convenience.
func (m *Dense) Shape() (rows, cols int) { return m.r, m.c }

// IsSquare reports whether Rows() == Cols().
func (m *Dense) IsSquare() bool { return m.r == m.c }

// indexOf computes the row-major offset or returns ErrOutOfRange.
func (m *Dense) indexOf(row, col int) (int, error) {
	if row < 0 || row >= m.r {
		return 0, ErrOutOfRange
	}
	if col < 0 || col >= m.c {
		return 0, ErrOutOfRange
	}

	// Row-major offset: i*c + j.
	return row*m.c + col, nil
}

// At returns the value at (row, col) or ErrOutOfRange.
// Complexity: O(1).
func (m *Dense) At(row, col int) (float64, error) {
	off, err := m.indexOf(row, col)
	if err != nil {
		return 0, denseErrorf(ctxAt, row, col, err) // wrap with context
	}

	return m.data[off], nil
}

// Set stores v at (row, col) or returns an error (bounds or numeric policy).
// Non-finite values are rejected with ErrNaNInf; demand volumes are always finite.
// Complexity: O(1).
func (m *Dense) Set(row, col int, v float64) error {
	off, err := m.indexOf(row, col)
	if err != nil {
		return denseErrorf(ctxSet, row, col, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return denseErrorf(ctxSet, row, col, ErrNaNInf)
	}
	m.data[off] = v // direct flat write

	return nil
}

// Row returns row i as a slice aliasing the backing buffer.
// Writes through the slice mutate the matrix. The caller guarantees 0 ≤ i < Rows();
// an invalid index panics like any slice expression.
// Complexity: O(1).
//
// AI-Hints:
//   - This is the hot-path accessor used by aggregation, evaluation and binning.
func (m *Dense) Row(i int) []float64 {
	base := i * m.c

	return m.data[base : base+m.c : base+m.c]
}

// Raw returns the full row-major backing slice (no copy).
func (m *Dense) Raw() []float64 { return m.data }

// Zero overwrites every cell with 0.
// Reused accumulation buffers call this before every pass so no value from
// a previous pass can leak into the next one.
// Complexity: O(r*c).
func (m *Dense) Zero() {
	clear(m.data)
}

// CopyFrom overwrites m with the contents of src (same shape required).
// Complexity: O(r*c).
func (m *Dense) CopyFrom(src *Dense) error {
	if err := ValidateBinarySameShape(m, src); err != nil {
		return matrixErrorf(ctxCopy, err)
	}
	copy(m.data, src.data)

	return nil
}

// Clone returns a deep copy (new buffer).
// Complexity: O(r*c).
func (m *Dense) Clone() *Dense {
	cp := make([]float64, len(m.data)) // allocate same length
	copy(cp, m.data)                   // deep copy

	return &Dense{r: m.r, c: m.c, data: cp}
}

// Sum returns the sum of every cell.
// Complexity: O(r*c).
func (m *Dense) Sum() float64 {
	return floats.Sum(m.data)
}

// RowSums returns r[i] = Σ_j m[i,j] as a freshly allocated vector.
// Complexity: O(r*c), Space O(r).
func (m *Dense) RowSums() []float64 {
	out := make([]float64, m.r)
	for i := 0; i < m.r; i++ { // deterministic row order
		out[i] = floats.Sum(m.Row(i))
	}

	return out
}

// RowSumsInto writes row sums into dst (len(dst) must equal Rows()).
// Complexity: O(r*c), Space O(1).
func (m *Dense) RowSumsInto(dst []float64) error {
	if err := ValidateVecLen(dst, m.r); err != nil {
		return matrixErrorf(ctxRowSums, err)
	}
	for i := 0; i < m.r; i++ {
		dst[i] = floats.Sum(m.Row(i))
	}

	return nil
}

// String HUMAN-READABLE dump of rows for diagnostics.
// Not for hot paths; intended for logs, examples and debugging.
// Complexity: O(r*c).
func (m *Dense) String() string {
	var b strings.Builder
	var i, j, base int
	for i = 0; i < m.r; i++ { // iterate rows deterministically
		b.WriteString(_fmtRowOpen) // open row
		base = i * m.c
		for j = 0; j < m.c; j++ { // iterate cols
			b.WriteString(fmt.Sprintf("%g", m.data[base+j]))
			if j+1 < m.c {
				b.WriteString(_fmtSep) // separate values with comma + space
			}
		}
		b.WriteString(_fmtRowClose) // close row
	}

	return b.String()
}
