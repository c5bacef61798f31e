// SPDX-License-Identifier: MIT

package evaluate

import "strings"

// Metric selects how model and truth are compared. It is fixed for the
// lifetime of an Evaluator.
type Metric int

const (
	// RMSE is the unnormalized sum of squared cell differences (smaller is better, no fixed scale).
	RMSE Metric = iota

	// LogLikelihood is the clamped, asymmetric log-likelihood of the model
	// against truth probabilities (0 is a perfect match, more negative is worse).
	LogLikelihood
)

// String returns the canonical metric name.
func (m Metric) String() string {
	switch m {
	case RMSE:
		return "rmse"
	case LogLikelihood:
		return "loglike"
	default:
		return "unknown"
	}
}

// Valid reports whether m is a known metric.
func (m Metric) Valid() bool { return m == RMSE || m == LogLikelihood }

// ParseMetric accepts "rmse" or "loglike" (also "loglikelihood", case-insensitive).
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rmse":
		return RMSE, nil
	case "loglike", "loglikelihood", "log-likelihood":
		return LogLikelihood, nil
	default:
		return 0, evaluateErrorf("ParseMetric: "+s, ErrUnknownMetric)
	}
}
