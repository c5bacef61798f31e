// SPDX-License-Identifier: MIT

package evaluate

import (
	"math"

	"github.com/katalvlaran/odcalib/internal/workers"
	"github.com/katalvlaran/odcalib/matrix"
	"gonum.org/v1/gonum/floats"
)

// DefaultEpsilon is the floor added to both sides of the log-likelihood
// ratio. It keeps the log argument strictly positive and is applied as
// ε·pTruth in the numerator and (1+ε)·pTruth in the denominator.
const DefaultEpsilon = 0.00015

// Operation name constants for unified error wrapping.
const (
	opEvaluate     = "Evaluate"
	opNewEvaluator = "NewEvaluator"
)

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithWorkers sets the number of goroutines rows are fanned out to.
// n <= 0 selects one per GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(e *Evaluator) { e.workers = n }
}

// WithEpsilon overrides DefaultEpsilon for the log-likelihood metric.
// Validated by NewEvaluator.
func WithEpsilon(eps float64) Option {
	return func(e *Evaluator) { e.eps = eps }
}

// Evaluator scores a model matrix against truth with one fixed Metric.
// An Evaluator holds no per-call state and is safe for concurrent use.
type Evaluator struct {
	metric  Metric
	eps     float64
	workers int
}

// NewEvaluator validates the metric and options.
//
// Errors:
//   - ErrUnknownMetric, ErrBadEpsilon.
func NewEvaluator(metric Metric, opts ...Option) (*Evaluator, error) {
	e := &Evaluator{metric: metric, eps: DefaultEpsilon}
	for _, opt := range opts {
		opt(e)
	}
	if !metric.Valid() {
		return nil, evaluateErrorf(opNewEvaluator, ErrUnknownMetric)
	}
	if math.IsNaN(e.eps) || math.IsInf(e.eps, 0) || e.eps <= 0 {
		return nil, evaluateErrorf(opNewEvaluator, ErrBadEpsilon)
	}

	return e, nil
}

// Metric returns the metric fixed at construction.
func (e *Evaluator) Metric() Metric { return e.metric }

// Epsilon returns the log-likelihood epsilon.
func (e *Evaluator) Epsilon() float64 { return e.eps }

// Evaluate scores model against a loaded Truth.
func (e *Evaluator) Evaluate(t *Truth, model *matrix.Dense) (float64, error) {
	if t == nil || t.m == nil {
		return 0, evaluateErrorf(opEvaluate, ErrNoTruth)
	}

	return e.evaluate(t.m, t.rowSums, t.invTotal, model)
}

// Evaluate is the free-standing form of the contract: it scores model against
// truth using the given row sums and inverse grand total, with DefaultEpsilon
// and one worker per GOMAXPROCS.
//
// Errors:
//   - ErrUnknownMetric, ErrBadInverseTotal.
//   - matrix.ErrNilMatrix, matrix.ErrNonSquare, matrix.ErrDimensionMismatch
//     when shapes or the row-sum length disagree.
func Evaluate(truth *matrix.Dense, truthRowSums []float64, inverseGrandTotal float64, model *matrix.Dense, metric Metric) (float64, error) {
	e, err := NewEvaluator(metric)
	if err != nil {
		return 0, err
	}

	return e.evaluate(truth, truthRowSums, inverseGrandTotal, model)
}

// evaluate validates inputs and runs the fork–join row reduction.
//
// Implementation:
//   - Stage 1: validate shapes, row-sum length and inverse total.
//   - Stage 2: split rows into contiguous blocks; each worker sums its own
//     rows into a local accumulator and stores it in partials[w].
//   - Stage 3: after all workers return, sum partials in worker order.
//
// Behavior highlights:
//   - Rows with truthRowSums[i] == 0 are skipped and contribute exactly 0.
//   - No lock is taken; the only shared write is one slot per worker.
//   - For a fixed worker count the result is bit-for-bit reproducible.
//
// Complexity:
//   - Time O(Z²/k) wall clock with k workers, Space O(k).
func (e *Evaluator) evaluate(truth *matrix.Dense, rowSums []float64, inv float64, model *matrix.Dense) (float64, error) {
	if err := matrix.ValidateSquareNonNil(truth); err != nil {
		return 0, evaluateErrorf(opEvaluate, err)
	}
	if err := matrix.ValidateBinarySameShape(truth, model); err != nil {
		return 0, evaluateErrorf(opEvaluate, err)
	}
	n := truth.Rows()
	if err := matrix.ValidateVecLen(rowSums, n); err != nil {
		return 0, evaluateErrorf(opEvaluate, err)
	}
	if math.IsNaN(inv) || math.IsInf(inv, 0) || inv < 0 {
		return 0, evaluateErrorf(opEvaluate, ErrBadInverseTotal)
	}

	k := workers.Count(e.workers, n)
	partials := make([]float64, k)
	workers.Run(n, k, func(w, lo, hi int) {
		var local float64
		for i := lo; i < hi; i++ {
			if rowSums[i] == 0 {
				continue // no observed trips from this origin
			}
			local += e.row(truth.Row(i), model.Row(i), inv)
		}
		partials[w] = local
	})

	return floats.Sum(partials), nil
}

// row dispatches to the metric's per-row kernel.
func (e *Evaluator) row(truthRow, modelRow []float64, inv float64) float64 {
	if e.metric == RMSE {
		return matrix.SquaredDiff(modelRow, truthRow)
	}

	return rowLogLikelihood(truthRow, modelRow, inv, e.eps)
}

// rowLogLikelihood sums cellLogLikelihood over destinations with pTruth > 0.
func rowLogLikelihood(truthRow, modelRow []float64, inv, eps float64) float64 {
	var sum float64
	modelRow = modelRow[:len(truthRow)]
	for j, tv := range truthRow {
		pTruth := tv * inv
		if !(pTruth > 0) {
			continue // zero truth probability is irrelevant to the likelihood
		}
		sum += cellLogLikelihood(pTruth, modelRow[j]*inv, eps)
	}

	return sum
}

// cellLogLikelihood returns pTruth·ln(min(num/(pTruth·(1+ε)), 1)) where
//
//	num = max(2·pTruth − pModel, 0) + ε·pTruth   when pModel > pTruth (over-prediction)
//	num = pModel + ε·pTruth                        otherwise (under-prediction)
//
// Over-prediction is mirrored around pTruth, so overshooting by δ costs the
// same as undershooting by δ until the mirror image reaches 0. The min keeps
// the result ≤ 0 and the ε term keeps the log argument > 0.
// pTruth must be > 0. Negative model cells are treated as 0.
func cellLogLikelihood(pTruth, pModel, eps float64) float64 {
	var num float64
	if pModel > pTruth {
		num = math.Max(pTruth+pTruth-pModel, 0) + pTruth*eps
	} else {
		num = math.Max(pModel, 0) + pTruth*eps
	}

	return pTruth * math.Log(math.Min(num/(pTruth*(1+eps)), 1))
}
