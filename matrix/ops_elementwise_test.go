package matrix_test

import (
	"testing"

	"github.com/katalvlaran/odcalib/matrix"
	"github.com/stretchr/testify/require"
)

func TestAddRow(t *testing.T) {
	t.Parallel()

	dst := []float64{1, 2, 3}
	matrix.AddRow(dst, []float64{0.5, -2, 10})
	require.Equal(t, []float64{1.5, 0, 13}, dst)
}

func TestSquaredDiff(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0.0, matrix.SquaredDiff(nil, nil))
	require.Equal(t, 1.0+4.0+9.0, matrix.SquaredDiff([]float64{1, 2, 3}, []float64{0, 4, 0}))
	// Longer b is truncated to len(a).
	require.Equal(t, 4.0, matrix.SquaredDiff([]float64{2}, []float64{0, 100}))
}
