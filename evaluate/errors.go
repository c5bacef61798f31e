// SPDX-License-Identifier: MIT

package evaluate

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownMetric indicates a Metric value (or name) outside {RMSE, LogLikelihood}.
	ErrUnknownMetric = errors.New("evaluate: unknown error metric")

	// ErrBadEpsilon indicates a log-likelihood epsilon that is not finite and > 0.
	ErrBadEpsilon = errors.New("evaluate: epsilon must be finite and > 0")

	// ErrBadInverseTotal indicates an inverse grand total that is negative or not finite.
	ErrBadInverseTotal = errors.New("evaluate: inverse grand total must be finite and >= 0")

	// ErrNoTruth indicates an Evaluate call with a nil or unloaded Truth.
	ErrNoTruth = errors.New("evaluate: truth is not loaded")
)

// evaluateErrorf wraps err with an operation tag, preserving errors.Is.
func evaluateErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
