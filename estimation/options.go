// SPDX-License-Identifier: MIT

// Package estimation: functional configuration for Engine.
//
// Design goals:
//   - Deterministic behavior: no global state.
//   - Every option is validated in New, before any matrix is touched.
//   - Panic only on nonsensical programmer values (negative worker count).
package estimation

import (
	"log/slog"

	"github.com/katalvlaran/odcalib/aggregate"
	"github.com/katalvlaran/odcalib/evaluate"
	"github.com/katalvlaran/odcalib/histogram"
)

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultMetric is the log-likelihood metric.
	DefaultMetric = evaluate.LogLikelihood

	// DefaultReloadTruth keeps truth cached for the whole run.
	DefaultReloadTruth = false

	// DefaultWorkers selects one worker per GOMAXPROCS.
	DefaultWorkers = 0
)

const panicWorkersNegative = "estimation: WithWorkers: n must be >= 0"

// Option mutates Options. Safe to apply repeatedly.
type Option func(*Options)

// Options is the effective Engine configuration.
type Options struct {
	metric      evaluate.Metric
	epsilon     float64
	districts   *aggregate.PDMap // nil ⇒ compare at zone level
	reloadTruth bool
	workers     int
	logger      *slog.Logger
	bins        *histogram.RangeSet // nil ⇒ no histogram
	factor      float64
}

func defaultOptions() Options {
	return Options{
		metric:      DefaultMetric,
		epsilon:     evaluate.DefaultEpsilon,
		reloadTruth: DefaultReloadTruth,
		workers:     DefaultWorkers,
		factor:      histogram.DefaultCoordinateFactor,
	}
}

// WithMetric selects RMSE or LogLikelihood for the Engine's lifetime.
func WithMetric(m evaluate.Metric) Option {
	return func(o *Options) { o.metric = m }
}

// WithEpsilon overrides the log-likelihood epsilon.
func WithEpsilon(eps float64) Option {
	return func(o *Options) { o.epsilon = eps }
}

// WithPlanningDistricts compares model and truth at planning-district level.
func WithPlanningDistricts(pd *aggregate.PDMap) Option {
	return func(o *Options) { o.districts = pd }
}

// WithReloadTruth reloads truth from its source on every Run (batch runs
// where the observed matrix changes between iterations).
func WithReloadTruth(reload bool) Option {
	return func(o *Options) { o.reloadTruth = reload }
}

// WithWorkers sets the worker count for aggregation, evaluation and binning.
// 0 selects one per GOMAXPROCS. Panics on n < 0.
func WithWorkers(n int) Option {
	if n < 0 {
		panic(panicWorkersNegative)
	}

	return func(o *Options) { o.workers = n }
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.logger = l }
}

// WithHistogram enables the distance histogram on every Run that is given a
// distance matrix. factor converts coordinate units to length units.
func WithHistogram(bins *histogram.RangeSet, factor float64) Option {
	return func(o *Options) {
		o.bins = bins
		o.factor = factor
	}
}
