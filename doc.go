// Package odcalib is the error engine of an origin–destination (OD) demand
// calibration loop: it scores how far a model's trip matrices are from the
// observed ones, quickly enough to run thousands of times per calibration.
//
// 🚀 What is in the box?
//
//	matrix/       row-major Dense OD matrices and per-category Stacks
//	aggregate/    collapse categories, optionally roll zones up to planning districts
//	evaluate/     RMSE and the clamped asymmetric log-likelihood against truth
//	histogram/    trip-length distribution per category, CSV export
//	estimation/   per-iteration Engine: truth caching, aggregation, scoring, histogram
//	synth/        reproducible gravity-model scenarios for demos and benchmarks
//	cmd/odcalib   command-line driver over a synthetic scenario
//
// ✨ Guarantees
//
//   - Row-parallel kernels with per-worker partials and no locks.
//   - For a fixed worker count every result is bit-for-bit reproducible.
//   - Reused buffers: no per-iteration Z×Z allocation after warm-up.
//
// Quick start:
//
//	go install github.com/katalvlaran/odcalib/cmd/odcalib@latest
//	odcalib -width 40 -height 40 -pd -histogram-out tld.csv
package odcalib
