// Package matrix provides the dense numeric storage shared by the OD
// calibration packages.
//
// The matrix package provides:
//
//   - Dense, a row-major float64 matrix over a single flat slice, with
//     bounds-checked At/Set and no-copy Row(i) access for hot loops.
//   - Stack, an ordered set of equal-size square category matrices
//     ([category][origin][destination]).
//   - Centralized validators and sentinel errors (ErrDimensionMismatch,
//     ErrNonSquare, ErrNilMatrix, ...) matched with errors.Is.
//   - Row kernels (AddRow, SquaredDiff) backed by gonum/floats.
//
// OD matrices are square Z×Z (zones) or P×P (planning districts); the
// package itself is agnostic to which.
package matrix
