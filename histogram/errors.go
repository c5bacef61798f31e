// SPDX-License-Identifier: MIT

package histogram

import (
	"errors"
	"fmt"
)

// Configuration errors are reported before any matrix is read.
var (
	// ErrNoBins indicates a bin configuration with zero ranges.
	ErrNoBins = errors.New("histogram: bins must define at least one range")

	// ErrMalformedRange indicates a range that does not parse or has Start >= Stop.
	ErrMalformedRange = errors.New("histogram: malformed range")

	// ErrOverlappingRanges indicates ranges that are not ascending and disjoint.
	ErrOverlappingRanges = errors.New("histogram: ranges must be ascending and non-overlapping")

	// ErrBadFactor indicates a coordinate-to-length factor that is not finite and > 0.
	ErrBadFactor = errors.New("histogram: coordinate factor must be finite and > 0")
)

// histogramErrorf wraps err with an operation tag, preserving errors.Is.
func histogramErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
