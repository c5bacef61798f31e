package estimation_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/katalvlaran/odcalib/aggregate"
	"github.com/katalvlaran/odcalib/estimation"
	"github.com/katalvlaran/odcalib/evaluate"
	"github.com/katalvlaran/odcalib/histogram"
	"github.com/katalvlaran/odcalib/matrix"
	"github.com/stretchr/testify/require"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func mustDense(t *testing.T, rows [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseFrom(rows)
	require.NoError(t, err)

	return m
}

// scaled returns f·m as a fresh matrix.
func scaled(t *testing.T, m *matrix.Dense, f float64) *matrix.Dense {
	t.Helper()
	out := m.Clone()
	raw := out.Raw()
	for i := range raw {
		raw[i] *= f
	}

	return out
}

func truth4(t *testing.T) *matrix.Dense {
	return mustDense(t, [][]float64{
		{4, 8, 0, 4},
		{0, 0, 0, 0},
		{12, 4, 8, 16},
		{4, 0, 4, 8},
	})
}

// countingSource serves successive matrices and counts calls.
type countingSource struct {
	calls int
	seq   []*matrix.Dense
	err   error
}

func (s *countingSource) load() (*matrix.Dense, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	m := s.seq[min(s.calls-1, len(s.seq)-1)]

	return m, nil
}

func TestNew_Validation(t *testing.T) {
	src := &countingSource{}

	_, err := estimation.New(4, nil)
	require.ErrorIs(t, err, estimation.ErrNoTruthSource)

	_, err = estimation.New(4, src.load, estimation.WithMetric(evaluate.Metric(9)), estimation.WithLogger(quiet))
	require.ErrorIs(t, err, estimation.ErrConfig)
	require.ErrorIs(t, err, evaluate.ErrUnknownMetric)

	_, err = estimation.New(4, src.load, estimation.WithEpsilon(-1), estimation.WithLogger(quiet))
	require.ErrorIs(t, err, evaluate.ErrBadEpsilon)

	pd, _ := aggregate.NewPDMap([]int{0, 1, 1})
	_, err = estimation.New(4, src.load, estimation.WithPlanningDistricts(pd), estimation.WithLogger(quiet))
	require.ErrorIs(t, err, aggregate.ErrPDMapLength)

	bins, _ := histogram.ParseRangeSet(histogram.DefaultBins)
	_, err = estimation.New(4, src.load, estimation.WithHistogram(bins, 0), estimation.WithLogger(quiet))
	require.ErrorIs(t, err, histogram.ErrBadFactor)
	_, err = estimation.New(4, src.load, estimation.WithHistogram(&histogram.RangeSet{}, 1), estimation.WithLogger(quiet))
	require.ErrorIs(t, err, histogram.ErrNoBins)

	_, err = estimation.New(0, src.load, estimation.WithLogger(quiet))
	require.ErrorIs(t, err, estimation.ErrConfig)

	require.Panics(t, func() { estimation.WithWorkers(-1) })
	require.Zero(t, src.calls, "New must not load truth")
}

// TestRun_TruthCached: truth is loaded once and reused across iterations.
func TestRun_TruthCached(t *testing.T) {
	truth := truth4(t)
	src := &countingSource{seq: []*matrix.Dense{truth}}
	eng, err := estimation.New(4, src.load,
		estimation.WithMetric(evaluate.RMSE),
		estimation.WithLogger(quiet),
	)
	require.NoError(t, err)
	require.Nil(t, eng.Truth())

	a := scaled(t, truth, 0.25)
	b := scaled(t, truth, 0.75)
	stack, err := matrix.NewStack(a, b)
	require.NoError(t, err)

	for iter := 1; iter <= 3; iter++ {
		res, err := eng.Run(stack, nil)
		require.NoError(t, err)
		require.Equal(t, iter, res.Iteration)
		require.Equal(t, eng.RunID(), res.RunID)
		require.Equal(t, evaluate.RMSE, res.Metric)
		require.InDelta(t, 0, res.Error, 1e-12)
		require.Nil(t, res.Histogram)
	}
	require.Equal(t, 1, src.calls)
	require.Equal(t, 3, eng.Iteration())
	require.InDelta(t, truth.Sum(), eng.Aggregated().Sum(), 1e-9)
	require.Equal(t, 4, eng.Truth().Size())
}

// TestRun_ReloadTruth: the source is consulted on every Run and the new truth is used.
func TestRun_ReloadTruth(t *testing.T) {
	first := truth4(t)
	second := scaled(t, first, 2)
	src := &countingSource{seq: []*matrix.Dense{first, second}}
	eng, err := estimation.New(4, src.load,
		estimation.WithMetric(evaluate.RMSE),
		estimation.WithReloadTruth(true),
		estimation.WithLogger(quiet),
	)
	require.NoError(t, err)

	stack, _ := matrix.NewStack(first)
	res, err := eng.Run(stack, nil)
	require.NoError(t, err)
	require.Zero(t, res.Error)

	res, err = eng.Run(stack, nil)
	require.NoError(t, err)
	require.Equal(t, 2, src.calls)
	// Σ (x - 2x)² over rows with observed trips.
	require.InDelta(t, matrix.SquaredDiff(first.Raw(), second.Raw()), res.Error, 1e-9)
	require.InDelta(t, second.Sum(), eng.Truth().Total(), 1e-9)
}

// TestRun_PlanningDistricts: truth is collapsed once and compared at P×P.
func TestRun_PlanningDistricts(t *testing.T) {
	truth := truth4(t)
	src := &countingSource{seq: []*matrix.Dense{truth}}
	pd, err := aggregate.PDMapFromAttributes([]int{100, 100, 200, 200})
	require.NoError(t, err)

	eng, err := estimation.New(4, src.load,
		estimation.WithPlanningDistricts(pd),
		estimation.WithLogger(quiet),
	)
	require.NoError(t, err)
	require.Equal(t, evaluate.LogLikelihood, eng.Metric())

	stack, _ := matrix.NewStack(scaled(t, truth, 0.5), scaled(t, truth, 0.5))
	res, err := eng.Run(stack, nil)
	require.NoError(t, err)
	require.InDelta(t, 0, res.Error, 1e-12)
	require.LessOrEqual(t, res.Error, 0.0)

	require.Equal(t, 2, eng.Truth().Size())
	require.Equal(t, []float64{16, 56}, eng.Truth().RowSums())
	require.Equal(t, 2, eng.Aggregated().Rows())
	require.InDelta(t, truth.Sum(), eng.Aggregated().Sum(), 1e-9)

	// Moving mass inside a district does not change the district-level score.
	moved := truth.Clone()
	require.NoError(t, moved.Set(0, 0, 0))
	require.NoError(t, moved.Set(0, 1, 12))
	stack, _ = matrix.NewStack(moved)
	res, err = eng.Run(stack, nil)
	require.NoError(t, err)
	require.InDelta(t, 0, res.Error, 1e-12)
}

// TestRun_Histogram is built only when enabled and distances are supplied.
func TestRun_Histogram(t *testing.T) {
	truth := truth4(t)
	src := &countingSource{seq: []*matrix.Dense{truth}}
	bins, _ := histogram.ParseRangeSet("0-5;5-10")
	eng, err := estimation.New(4, src.load,
		estimation.WithHistogram(bins, 1),
		estimation.WithWorkers(2),
		estimation.WithLogger(quiet),
	)
	require.NoError(t, err)

	dist := mustDense(t, [][]float64{
		{0, 3, 6, 12},
		{3, 0, 3, 6},
		{6, 3, 0, 3},
		{12, 6, 3, 0},
	})
	stack, _ := matrix.NewStack(truth)

	res, err := eng.Run(stack, dist)
	require.NoError(t, err)
	require.NotNil(t, res.Histogram)
	require.Equal(t, []string{"0-5", "5-10", "10+"}, res.Histogram.Labels())
	require.InDelta(t, truth.Sum(), res.Histogram.Total(), 1e-9)
	require.Equal(t, 4.0+4.0, res.Histogram.Count(2, 0)) // the two 12-unit pairs

	res, err = eng.Run(stack, nil)
	require.NoError(t, err)
	require.Nil(t, res.Histogram)
}

// TestRun_TruthErrors: load failures propagate and leave the Engine retryable.
func TestRun_TruthErrors(t *testing.T) {
	boom := errors.New("disk on fire")
	src := &countingSource{err: boom}
	eng, err := estimation.New(4, src.load, estimation.WithLogger(quiet))
	require.NoError(t, err)

	stack, _ := matrix.NewStack(truth4(t))
	_, err = eng.Run(stack, nil)
	require.ErrorIs(t, err, boom)
	require.Zero(t, eng.Iteration())

	small, _ := matrix.NewSquare(3)
	src.err = nil
	src.seq = []*matrix.Dense{small}
	_, err = eng.Run(stack, nil)
	require.ErrorIs(t, err, estimation.ErrTruthSize)

	src.seq = []*matrix.Dense{truth4(t)}
	_, err = eng.Run(stack, nil)
	require.NoError(t, err)
	require.Equal(t, 1, eng.Iteration())
}

// TestRun_ModelMismatch: a model stack of the wrong size fails the iteration.
func TestRun_ModelMismatch(t *testing.T) {
	src := &countingSource{seq: []*matrix.Dense{truth4(t)}}
	eng, err := estimation.New(4, src.load, estimation.WithLogger(quiet))
	require.NoError(t, err)

	m, _ := matrix.NewSquare(3)
	stack, _ := matrix.NewStack(m)
	_, err = eng.Run(stack, nil)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	require.Zero(t, eng.Iteration())
}

// TestRun_BadDistancesDoNotAdvance: a rejected Run keeps the iteration count
// and the previous aggregated matrix.
func TestRun_BadDistancesDoNotAdvance(t *testing.T) {
	truth := truth4(t)
	src := &countingSource{seq: []*matrix.Dense{truth}}
	bins, _ := histogram.ParseRangeSet("0-5")
	eng, err := estimation.New(4, src.load,
		estimation.WithHistogram(bins, 1),
		estimation.WithLogger(quiet),
	)
	require.NoError(t, err)

	good, _ := matrix.NewStack(truth)
	_, err = eng.Run(good, nil)
	require.NoError(t, err)
	require.Equal(t, 1, eng.Iteration())
	before := eng.Aggregated().Clone()

	wrong, _ := matrix.NewSquare(3)
	other, _ := matrix.NewStack(scaled(t, truth, 3))
	_, err = eng.Run(other, wrong)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	require.Equal(t, 1, eng.Iteration())
	require.NotNil(t, eng.Aggregated())
	require.Equal(t, before.Raw(), eng.Aggregated().Raw())

	rect, _ := matrix.NewDense(4, 3)
	_, err = eng.Run(other, rect)
	require.ErrorIs(t, err, matrix.ErrNonSquare)
	require.Equal(t, 1, eng.Iteration())
}
