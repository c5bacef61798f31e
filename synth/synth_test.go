package synth_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/odcalib/synth"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Shape(t *testing.T) {
	cfg := synth.SmallConfig()
	s, err := synth.Generate(cfg)
	require.NoError(t, err)

	require.Equal(t, int64(42), s.Seed)
	require.Equal(t, 24, s.Zones)
	require.Len(t, s.X, 24)
	require.Len(t, s.DistrictIDs, 24)
	require.Equal(t, 6, s.Districts.Districts()) // 3×2 blocks of 2×2 zones
	counts := make([]int, s.Districts.Districts())
	for z := 0; z < s.Zones; z++ {
		counts[s.Districts.Of(z)]++
	}
	require.Equal(t, []int{4, 4, 4, 4, 4, 4}, counts)
	require.Equal(t, s.Districts.Of(0), s.Districts.Of(7)) // (0,0) and (1,1) share a block
	require.NotEqual(t, s.Districts.Of(0), s.Districts.Of(2))

	r, c := s.Distances.Shape()
	require.Equal(t, [2]int{24, 24}, [2]int{r, c})
	require.Equal(t, 24, s.Truth.Rows())

	var shareSum float64
	for _, v := range s.Shares {
		require.Greater(t, v, 0.0)
		shareSum += v
	}
	require.Len(t, s.Shares, cfg.Categories)
	require.InDelta(t, 1, shareSum, 1e-12)
}

func TestGenerate_Distances(t *testing.T) {
	s, err := synth.Generate(synth.SmallConfig())
	require.NoError(t, err)

	for i := 0; i < s.Zones; i++ {
		d, _ := s.Distances.At(i, i)
		require.Equal(t, 750.0, d, "intrazonal distance is half the spacing")
		for j := 0; j < s.Zones; j++ {
			a, _ := s.Distances.At(i, j)
			b, _ := s.Distances.At(j, i)
			require.Equal(t, a, b)
		}
	}
	d, _ := s.Distances.At(0, 1)
	require.Equal(t, 1500.0, d)
	d, _ = s.Distances.At(0, 7) // one step right, one down
	require.InDelta(t, 1500*math.Sqrt2, d, 1e-9)
}

func TestGenerate_Truth(t *testing.T) {
	s, err := synth.Generate(synth.SmallConfig())
	require.NoError(t, err)

	require.Greater(t, s.Truth.Sum(), 0.0)
	for _, v := range s.Truth.Raw() {
		require.GreaterOrEqual(t, v, 0.0)
		require.False(t, math.IsNaN(v))
	}

	again, err := synth.Generate(synth.SmallConfig())
	require.NoError(t, err)
	require.Equal(t, s.Truth.Raw(), again.Truth.Raw())
}

func TestModel_Deterministic(t *testing.T) {
	s, err := synth.Generate(synth.SmallConfig())
	require.NoError(t, err)

	a, err := s.Model(3)
	require.NoError(t, err)
	b, err := s.Model(3)
	require.NoError(t, err)
	c, err := s.Model(4)
	require.NoError(t, err)

	require.Equal(t, len(s.Shares), a.Len())
	require.Equal(t, s.Zones, a.Size())
	for k := 0; k < a.Len(); k++ {
		require.Equal(t, a.At(k).Raw(), b.At(k).Raw())
	}
	require.NotEqual(t, a.At(0).Raw(), c.At(0).Raw())
}

func TestPerturb_ZeroAmplitude(t *testing.T) {
	s, err := synth.Generate(synth.SmallConfig())
	require.NoError(t, err)

	stack, err := s.Perturb(1, 0)
	require.NoError(t, err)
	require.InEpsilon(t, s.Truth.Sum(), stack.Total(), 1e-9)

	// Cells without observed trips stay empty in every category.
	truth := s.Truth.Raw()
	for _, m := range stack.Categories() {
		for k, v := range m.Raw() {
			if truth[k] == 0 {
				require.Zero(t, v)
			}
		}
	}

	_, err = s.Perturb(1, 1)
	require.ErrorIs(t, err, synth.ErrBadConfig)
}

func TestGenerate_BadConfig(t *testing.T) {
	mutate := []func(*synth.Config){
		func(c *synth.Config) { c.Width = 0 },
		func(c *synth.Config) { c.Height = -1 },
		func(c *synth.Config) { c.DistrictSize = 0 },
		func(c *synth.Config) { c.Categories = 0 },
		func(c *synth.Config) { c.Spacing = 0 },
		func(c *synth.Config) { c.Beta = math.NaN() },
		func(c *synth.Config) { c.Noise = 1 },
	}
	for i, m := range mutate {
		cfg := synth.SmallConfig()
		m(&cfg)
		_, err := synth.Generate(cfg)
		require.ErrorIs(t, err, synth.ErrBadConfig, "case %d", i)
	}
}
