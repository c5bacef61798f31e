// SPDX-License-Identifier: MIT

package aggregate

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidZones indicates a non-positive zone count.
	ErrInvalidZones = errors.New("aggregate: zone count must be > 0")

	// ErrEmptyPDMap indicates a zone→district map with no zones.
	ErrEmptyPDMap = errors.New("aggregate: planning district map is empty")

	// ErrPDOutOfRange indicates a zone mapped to a district index outside [0, P).
	ErrPDOutOfRange = errors.New("aggregate: planning district index out of range")

	// ErrPDNotSurjective indicates a district index in [0, P) that no zone maps to.
	ErrPDNotSurjective = errors.New("aggregate: planning district has no zones")

	// ErrPDMapLength indicates a map whose zone count disagrees with the matrices.
	ErrPDMapLength = errors.New("aggregate: planning district map does not match zone count")
)

// aggregateErrorf wraps err with an operation tag, preserving errors.Is.
func aggregateErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
