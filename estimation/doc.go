// SPDX-License-Identifier: MIT

// Package estimation drives one calibration run: it owns the observed (truth)
// matrix, aggregates each candidate model stack, scores it and optionally
// builds the trip-length distribution.
//
// An Engine is configured once with functional options and then called once
// per iteration of the outer calibration loop:
//
//	eng, err := estimation.New(zones, loadTruth,
//		estimation.WithMetric(evaluate.LogLikelihood),
//		estimation.WithPlanningDistricts(pd),
//		estimation.WithHistogram(bins, histogram.DefaultCoordinateFactor),
//	)
//	for iter := 0; iter < n; iter++ {
//		res, err := eng.Run(model, distances)
//		...
//	}
//
// Truth is loaded lazily on the first Run and cached; WithReloadTruth(true)
// reloads it on every Run. In planning-district mode truth is collapsed to
// districts once per load, so both sides of the comparison are P×P.
//
// Concurrency: Run fans work out to the configured number of workers but an
// Engine itself must not be shared between goroutines.
package estimation
