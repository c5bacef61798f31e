// SPDX-License-Identifier: MIT

// Command odcalib scores a sequence of synthetic model stacks against a
// synthetic observed OD matrix, the way an outer calibration loop would,
// and exports the trip-length distribution and the aggregated model.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/katalvlaran/odcalib/estimation"
	"github.com/katalvlaran/odcalib/evaluate"
	"github.com/katalvlaran/odcalib/histogram"
	"github.com/katalvlaran/odcalib/matrix"
	"github.com/katalvlaran/odcalib/synth"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	scenario     synth.Config
	metric       string
	pd           bool
	bins         string
	factor       float64
	workers      int
	iterations   int
	histogramOut string
	matrixOut    string
	categoryName string
	logLevel     string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	def := synth.DefaultConfig()
	o := options{scenario: def}

	fs := flag.NewFlagSet("odcalib", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&o.scenario.Width, "width", def.Width, "zone grid width")
	fs.IntVar(&o.scenario.Height, "height", def.Height, "zone grid height")
	fs.IntVar(&o.scenario.DistrictSize, "district", def.DistrictSize, "planning district edge, in zones")
	fs.IntVar(&o.scenario.Categories, "categories", def.Categories, "worker categories per model stack")
	fs.Int64Var(&o.scenario.Seed, "seed", envInt64OrDefault("ODCALIB_SEED", 1), "rng seed (0 = random)")
	fs.Float64Var(&o.scenario.Beta, "beta", def.Beta, "gravity distance decay per kilometre")
	fs.Float64Var(&o.scenario.Noise, "noise", def.Noise, "relative model perturbation in [0,1)")
	fs.StringVar(&o.metric, "metric", evaluate.LogLikelihood.String(), "error metric: rmse|loglike")
	fs.BoolVar(&o.pd, "pd", false, "compare at planning-district level")
	fs.StringVar(&o.bins, "bins", histogram.DefaultBins, "distance bins, e.g. 0-5;5-10;10-15")
	fs.Float64Var(&o.factor, "factor", histogram.DefaultCoordinateFactor, "coordinate-to-bin unit factor")
	fs.IntVar(&o.workers, "workers", 0, "worker goroutines (0 = GOMAXPROCS)")
	fs.IntVar(&o.iterations, "iterations", 10, "estimation iterations to run")
	fs.StringVar(&o.histogramOut, "histogram-out", "", "write the final distance histogram CSV here")
	fs.StringVar(&o.matrixOut, "matrix-out", "", "write the final aggregated matrix CSV here")
	fs.StringVar(&o.categoryName, "category-names", "", "comma-separated histogram column names")
	fs.StringVar(&o.logLevel, "log-level", envOrDefault("ODCALIB_LOG_LEVEL", "info"), "debug|info|warn|error")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if o.iterations <= 0 {
		return options{}, fmt.Errorf("-iterations must be > 0, got %d", o.iterations)
	}
	if o.workers < 0 {
		return options{}, fmt.Errorf("-workers must be >= 0, got %d", o.workers)
	}

	return o, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(o.logLevel)); err != nil {
		return fmt.Errorf("-log-level: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	metric, err := evaluate.ParseMetric(o.metric)
	if err != nil {
		return err
	}
	bins, err := histogram.ParseRangeSet(o.bins)
	if err != nil {
		return err
	}

	scen, err := synth.Generate(o.scenario)
	if err != nil {
		return err
	}
	logger.Info("scenario generated",
		"seed", scen.Seed,
		"zones", scen.Zones,
		"districts", scen.Districts.Districts(),
		"categories", len(scen.Shares),
		"trips", scen.Truth.Sum(),
	)

	engOpts := []estimation.Option{
		estimation.WithMetric(metric),
		estimation.WithWorkers(o.workers),
		estimation.WithLogger(logger),
	}
	if o.pd {
		engOpts = append(engOpts, estimation.WithPlanningDistricts(scen.Districts))
	}
	if o.histogramOut != "" {
		engOpts = append(engOpts, estimation.WithHistogram(bins, o.factor))
	}
	truth := func() (*matrix.Dense, error) { return scen.Truth, nil }
	eng, err := estimation.New(scen.Zones, truth, engOpts...)
	if err != nil {
		return err
	}

	best := math.Inf(-1)
	if metric == evaluate.RMSE {
		best = math.Inf(1)
	}
	var (
		last      estimation.Result
		bestModel *matrix.Dense // snapshot of the best iteration's aggregated matrix
		bestIter  int
	)
	for iter := 0; iter < o.iterations; iter++ {
		model, err := scen.Model(iter)
		if err != nil {
			return err
		}
		// The histogram is only needed for the final model.
		var dist *matrix.Dense
		if iter == o.iterations-1 {
			dist = scen.Distances
		}
		if last, err = eng.Run(model, dist); err != nil {
			return fmt.Errorf("iteration %d: %w", iter+1, err)
		}
		if better(metric, last.Error, best) {
			best, bestIter = last.Error, last.Iteration
			if bestModel == nil {
				bestModel = eng.Aggregated().Clone()
			} else if err := bestModel.CopyFrom(eng.Aggregated()); err != nil {
				return err
			}
		}
		logger.Info("iteration", "n", last.Iteration, "error", last.Error, "elapsed", last.Elapsed)
	}

	if last.Histogram != nil {
		if err := writeFile(o.histogramOut, func(w io.Writer) error {
			return last.Histogram.WriteCSV(w, splitNames(o.categoryName)...)
		}); err != nil {
			return err
		}
		logger.Info("histogram written", "path", o.histogramOut)
	}
	if o.matrixOut != "" && bestModel != nil {
		labels := matrixLabels(scen, o.pd)
		if err := writeFile(o.matrixOut, func(w io.Writer) error {
			return bestModel.WriteCSV(w, labels...)
		}); err != nil {
			return err
		}
		logger.Info("aggregated matrix written", "path", o.matrixOut, "iteration", bestIter)
	}

	fmt.Fprintf(stdout, "run=%s metric=%s iterations=%d best=%.6g last=%.6g\n",
		eng.RunID(), metric, eng.Iteration(), best, last.Error)

	return nil
}

// matrixLabels names matrix rows by external district ID in district mode and
// by flat zone index otherwise.
func matrixLabels(scen *synth.Scenario, districts bool) []string {
	if !districts {
		labels := make([]string, scen.Zones)
		for z := range labels {
			labels[z] = strconv.Itoa(z)
		}
		return labels
	}
	pd := scen.Districts
	labels := make([]string, pd.Districts())
	for d := range labels {
		labels[d] = strconv.Itoa(pd.DistrictID(d))
	}

	return labels
}

// better reports whether v improves on best: RMSE is minimized, log-likelihood maximized.
func better(m evaluate.Metric, v, best float64) bool {
	if m == evaluate.RMSE {
		return v < best
	}

	return v > best
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}

	return f.Close()
}

func splitNames(s string) []string {
	if s == "" {
		return nil
	}
	names := strings.Split(s, ",")
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}

	return names
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt64OrDefault(key string, defaultVal int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return defaultVal
}
