// SPDX-License-Identifier: MIT

package matrix

import "gonum.org/v1/gonum/floats"

// Stack is an ordered set of square Z×Z category matrices, indexed
// [category][origin][destination]. A Stack never mutates its members; the
// caller owns their lifetime.
//
// The zero-length Stack is valid and has Size() == 0 until it is bound to a
// zone count with NewStackOfSize.
type Stack struct {
	zones int      // Z; every member is Z×Z
	cats  []*Dense // category matrices in caller order
}

// NewStack validates that every member is non-nil, square and of the same size.
// Implementation:
//   - Stage 1: first member fixes Z.
//   - Stage 2: every other member must be Z×Z.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare, ErrDimensionMismatch.
//
// Complexity: O(len(ms)).
func NewStack(ms ...*Dense) (*Stack, error) {
	if len(ms) == 0 {
		return &Stack{}, nil
	}
	if err := ValidateSquareNonNil(ms[0]); err != nil {
		return nil, matrixErrorf("NewStack", err)
	}
	z := ms[0].r
	for c := 1; c < len(ms); c++ {
		if err := ValidateSize(ms[c], z); err != nil {
			return nil, matrixErrorf("NewStack", err)
		}
	}
	cats := make([]*Dense, len(ms))
	copy(cats, ms)

	return &Stack{zones: z, cats: cats}, nil
}

// NewStackOfSize is NewStack with an explicit zone count, so that an empty
// stack still knows Z.
func NewStackOfSize(zones int, ms ...*Dense) (*Stack, error) {
	if zones <= 0 {
		return nil, matrixErrorf("NewStackOfSize", ErrInvalidDimensions)
	}
	s, err := NewStack(ms...)
	if err != nil {
		return nil, err
	}
	if len(ms) > 0 && s.zones != zones {
		return nil, matrixErrorf("NewStackOfSize", ErrDimensionMismatch)
	}
	s.zones = zones

	return s, nil
}

// Len returns the number of categories. A nil Stack has no categories.
func (s *Stack) Len() int {
	if s == nil {
		return 0
	}

	return len(s.cats)
}

// Size returns Z, the common zone count (0 for an unsized empty stack).
func (s *Stack) Size() int {
	if s == nil {
		return 0
	}

	return s.zones
}

// At returns category c. The caller guarantees 0 ≤ c < Len().
func (s *Stack) At(c int) *Dense { return s.cats[c] }

// Rows fills dst[c] with row i of every category and returns dst[:Len()].
// dst is reused when it has enough capacity.
func (s *Stack) Rows(i int, dst [][]float64) [][]float64 {
	dst = dst[:0]
	for _, m := range s.cats {
		dst = append(dst, m.Row(i))
	}

	return dst
}

// Total returns Σ over c,i,j of every category cell.
// Complexity: O(C·Z²).
func (s *Stack) Total() float64 {
	var total float64
	for _, m := range s.Categories() {
		total += floats.Sum(m.data)
	}

	return total
}

// Categories returns the members (shared, not copied).
func (s *Stack) Categories() []*Dense {
	if s == nil {
		return nil
	}

	return s.cats
}
