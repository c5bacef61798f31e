// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Provide small row kernels over contiguous []float64 so aggregation and
//     evaluation never go through At/Set in their inner loops.
//
// Determinism & Performance:
//   - Fixed loop order (flat 0..n-1).
//   - AddRow delegates to gonum's floats.Add, which dispatches to an
//     assembly (SIMD) implementation on supported targets.

package matrix

import "gonum.org/v1/gonum/floats"

// AddRow computes dst[j] += src[j] for every j.
// The caller guarantees len(dst) == len(src); floats.Add panics otherwise.
// Time: O(n). Space: O(1).
func AddRow(dst, src []float64) {
	floats.Add(dst, src)
}

// SquaredDiff returns Σ_j (a[j] − b[j])².
// The sum is kept in float64 regardless of input scale.
// The caller guarantees len(a) == len(b).
// Time: O(n). Space: O(1).
func SquaredDiff(a, b []float64) float64 {
	var sum, d float64
	b = b[:len(a)] // hoist the bounds check out of the loop
	for j, av := range a {
		d = av - b[j]
		sum += d * d
	}

	return sum
}
