package matrix_test

import (
	"testing"

	"github.com/katalvlaran/odcalib/matrix"
	"github.com/stretchr/testify/require"
)

func square(t *testing.T, n int, fill float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewSquare(n)
	require.NoError(t, err)
	raw := m.Raw()
	for i := range raw {
		raw[i] = fill
	}

	return m
}

// TestNewStack validates membership and reports Len/Size/Total.
func TestNewStack(t *testing.T) {
	t.Parallel()

	s, err := matrix.NewStack(square(t, 3, 1), square(t, 3, 2))
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
	require.Equal(t, 3, s.Size())
	require.Equal(t, 27.0, s.Total())
	require.Equal(t, 2.0, s.At(1).Raw()[0])

	rows := s.Rows(0, nil)
	require.Len(t, rows, 2)
	require.Equal(t, []float64{1, 1, 1}, rows[0])
	require.Equal(t, []float64{2, 2, 2}, rows[1])

	rect, _ := matrix.NewDense(2, 3)
	_, err = matrix.NewStack(rect)
	require.ErrorIs(t, err, matrix.ErrNonSquare)
	_, err = matrix.NewStack(square(t, 3, 0), square(t, 2, 0))
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = matrix.NewStack(square(t, 3, 0), nil)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

// TestStack_Empty: the empty stack is valid and nil-safe.
func TestStack_Empty(t *testing.T) {
	t.Parallel()

	s, err := matrix.NewStack()
	require.NoError(t, err)
	require.Zero(t, s.Len())
	require.Zero(t, s.Size())
	require.Zero(t, s.Total())

	var nilStack *matrix.Stack
	require.Zero(t, nilStack.Len())
	require.Nil(t, nilStack.Categories())

	sized, err := matrix.NewStackOfSize(4)
	require.NoError(t, err)
	require.Equal(t, 4, sized.Size())
	require.Zero(t, sized.Len())

	_, err = matrix.NewStackOfSize(0)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)
	_, err = matrix.NewStackOfSize(4, square(t, 3, 0))
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

// TestStack_DoesNotCopyMembers: a stack observes later writes to its members.
func TestStack_DoesNotCopyMembers(t *testing.T) {
	t.Parallel()

	m := square(t, 2, 1)
	s, err := matrix.NewStack(m)
	require.NoError(t, err)
	require.NoError(t, m.Set(0, 0, 10))
	require.Equal(t, 13.0, s.Total())
}
