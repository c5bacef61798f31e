// SPDX-License-Identifier: MIT

package estimation

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/katalvlaran/odcalib/aggregate"
	"github.com/katalvlaran/odcalib/evaluate"
	"github.com/katalvlaran/odcalib/histogram"
	"github.com/katalvlaran/odcalib/matrix"
)

var (
	// ErrNoTruthSource indicates New was given a nil TruthSource.
	ErrNoTruthSource = errors.New("estimation: truth source is nil")

	// ErrTruthSize indicates the truth source returned a matrix of the wrong size.
	ErrTruthSize = errors.New("estimation: truth matrix does not match zone count")

	// ErrConfig indicates an invalid Engine option.
	ErrConfig = errors.New("estimation: invalid configuration")
)

// TruthSource loads the observed Z×Z matrix. It is called on the first Run
// and, with WithReloadTruth(true), on every Run.
type TruthSource func() (*matrix.Dense, error)

// Result is the outcome of one Run.
type Result struct {
	RunID     uuid.UUID
	Iteration int
	Metric    evaluate.Metric
	Error     float64
	Histogram *histogram.Table // nil unless enabled and distances were given
	Elapsed   time.Duration
}

// Engine scores successive model stacks against a cached truth matrix.
// It is single-writer: Run must not be called concurrently.
type Engine struct {
	opts   Options
	zones  int
	runID  uuid.UUID
	log    *slog.Logger
	source TruthSource

	agg   *aggregate.Aggregator
	eval  *evaluate.Evaluator
	truth *evaluate.Truth // zone or district level, matching the comparison

	loaded    bool
	iteration int
	last      *matrix.Dense
}

// New validates the configuration and allocates the reusable buffers.
//
// Errors:
//   - ErrNoTruthSource.
//   - ErrConfig wrapping evaluate.ErrUnknownMetric, evaluate.ErrBadEpsilon,
//     histogram.ErrNoBins, histogram.ErrBadFactor or aggregate.ErrPDMapLength.
func New(zones int, source TruthSource, opts ...Option) (*Engine, error) {
	if source == nil {
		return nil, ErrNoTruthSource
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	if o.districts != nil && o.districts.Zones() != zones {
		return nil, configErrorf(aggregate.ErrPDMapLength)
	}
	if o.bins != nil {
		if err := histogram.Validate(o.bins, o.factor); err != nil {
			return nil, configErrorf(err)
		}
	}
	eval, err := evaluate.NewEvaluator(o.metric,
		evaluate.WithEpsilon(o.epsilon),
		evaluate.WithWorkers(o.workers),
	)
	if err != nil {
		return nil, configErrorf(err)
	}
	agg, err := aggregate.New(zones, aggregate.WithWorkers(o.workers))
	if err != nil {
		return nil, configErrorf(err)
	}

	id := uuid.New()
	e := &Engine{
		opts:   o,
		zones:  zones,
		runID:  id,
		log:    o.logger.With("run", id.String()),
		source: source,
		agg:    agg,
		eval:   eval,
	}
	e.log.Info("estimation engine ready",
		"zones", zones,
		"metric", o.metric.String(),
		"districts", e.districtCount(),
		"reload_truth", o.reloadTruth,
		"histogram", o.bins != nil,
	)

	return e, nil
}

func configErrorf(err error) error {
	return fmt.Errorf("%w: %w", ErrConfig, err)
}

// Run performs one estimation iteration:
//  1. load truth on the first call (or every call in reload mode), collapsing
//     it to districts when district mode is on;
//  2. aggregate the model stack (zonal or district);
//  3. evaluate the error against truth;
//  4. build the distance histogram when enabled and distances != nil.
//
// Iteration and Aggregated advance only when every step succeeds. Inputs are
// validated before the aggregation buffer is touched, so a rejected Run leaves
// the previous aggregated matrix intact.
func (e *Engine) Run(model *matrix.Stack, distances *matrix.Dense) (Result, error) {
	start := time.Now()
	withHistogram := e.opts.bins != nil && distances != nil
	if withHistogram {
		if err := matrix.ValidateSize(distances, e.zones); err != nil {
			return Result{}, fmt.Errorf("estimation: distances: %w", err)
		}
	}
	if err := e.ensureTruth(); err != nil {
		return Result{}, err
	}

	aggregated, err := e.agg.Aggregate(model, e.opts.districts)
	if err != nil {
		return Result{}, fmt.Errorf("estimation: aggregate model: %w", err)
	}

	score, err := e.eval.Evaluate(e.truth, aggregated)
	if err != nil {
		e.last = nil // buffer already overwritten
		return Result{}, fmt.Errorf("estimation: evaluate: %w", err)
	}

	var table *histogram.Table
	if withHistogram {
		table, err = histogram.Build(model, distances, e.opts.bins, e.opts.factor,
			histogram.WithWorkers(e.opts.workers))
		if err != nil {
			e.last = nil
			return Result{}, fmt.Errorf("estimation: histogram: %w", err)
		}
	}

	e.last = aggregated
	e.iteration++
	res := Result{
		RunID:     e.runID,
		Iteration: e.iteration,
		Metric:    e.opts.metric,
		Error:     score,
		Histogram: table,
	}
	if table != nil {
		e.log.Info("distance histogram built",
			"iteration", e.iteration,
			"bins", table.Bins(),
			"categories", table.Categories(),
			"total", table.Total(),
		)
	}

	res.Elapsed = time.Since(start)
	e.log.Debug("iteration scored",
		"iteration", res.Iteration,
		"metric", res.Metric.String(),
		"error", res.Error,
		"elapsed", res.Elapsed,
	)

	return res, nil
}

// ensureTruth loads truth when it has never been loaded or reload mode is on.
func (e *Engine) ensureTruth() error {
	if e.loaded && !e.opts.reloadTruth {
		return nil
	}
	raw, err := e.source()
	if err != nil {
		return fmt.Errorf("estimation: load truth: %w", err)
	}
	if err := matrix.ValidateSize(raw, e.zones); err != nil {
		return fmt.Errorf("%w: %w", ErrTruthSize, err)
	}

	compare := raw
	if pd := e.opts.districts; pd != nil {
		if compare, err = aggregate.AggregateMatrix(raw, pd); err != nil {
			return fmt.Errorf("estimation: collapse truth: %w", err)
		}
	}

	if e.truth == nil {
		e.truth, err = evaluate.NewTruth(compare)
	} else {
		err = e.truth.Reload(compare)
	}
	if err != nil {
		return fmt.Errorf("estimation: truth: %w", err)
	}
	e.loaded = true
	e.log.Info("truth loaded",
		"size", e.truth.Size(),
		"total", e.truth.Total(),
	)

	return nil
}

// RunID identifies this Engine in logs and results.
func (e *Engine) RunID() uuid.UUID { return e.runID }

// Iteration returns the number of successful Runs.
func (e *Engine) Iteration() int { return e.iteration }

// Metric returns the metric fixed at construction.
func (e *Engine) Metric() evaluate.Metric { return e.opts.metric }

// Truth returns the cached comparison truth, or nil before the first Run.
func (e *Engine) Truth() *evaluate.Truth { return e.truth }

// Aggregated returns the aggregated model matrix of the last successful Run
// (nil if a Run failed after aggregating). It aliases an internal buffer that
// the next Run overwrites; Clone it to keep it.
func (e *Engine) Aggregated() *matrix.Dense { return e.last }

func (e *Engine) districtCount() int {
	if e.opts.districts == nil {
		return 0
	}

	return e.opts.districts.Districts()
}
