// SPDX-License-Identifier: MIT

// Package synth generates reproducible calibration scenarios: a grid of
// zones with coordinates and planning districts, a gravity-model truth
// matrix and a stream of perturbed per-category model stacks.
//
// Production and attraction fields are layered simplex noise, so
// neighbouring zones look alike and some zones produce no trips at all.
package synth

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/katalvlaran/odcalib/aggregate"
	"github.com/katalvlaran/odcalib/matrix"
)

// ErrBadConfig indicates a Config field outside its valid range.
var ErrBadConfig = errors.New("synth: invalid config")

const (
	// productionFloor zeroes production below this noise level, leaving
	// some origins without observed trips.
	productionFloor = 0.35

	// tripScale converts the unitless gravity product into trips.
	tripScale = 1000.0

	// districtIDBase offsets external district IDs so they are not indices.
	districtIDBase = 1000
)

// Config holds scenario parameters.
type Config struct {
	Width, Height int     // zone grid
	DistrictSize  int     // planning district edge, in zones
	Categories    int     // worker categories in the model stack
	Seed          int64   // random seed (0 = random)
	Spacing       float64 // metres between neighbouring zone centroids
	Beta          float64 // distance decay per kilometre
	Noise         float64 // relative model perturbation, in [0, 1)
}

// DefaultConfig returns a mid-sized scenario (900 zones, 36 districts).
func DefaultConfig() Config {
	return Config{
		Width:        30,
		Height:       30,
		DistrictSize: 5,
		Categories:   5,
		Seed:         0,
		Spacing:      1000,
		Beta:         0.12,
		Noise:        0.2,
	}
}

// SmallConfig returns a tiny scenario for tests and examples.
func SmallConfig() Config {
	return Config{
		Width:        6,
		Height:       4,
		DistrictSize: 2,
		Categories:   3,
		Seed:         42,
		Spacing:      1500,
		Beta:         0.1,
		Noise:        0.1,
	}
}

func (c Config) validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: grid %dx%d", ErrBadConfig, c.Width, c.Height)
	case c.DistrictSize <= 0:
		return fmt.Errorf("%w: district size %d", ErrBadConfig, c.DistrictSize)
	case c.Categories <= 0:
		return fmt.Errorf("%w: categories %d", ErrBadConfig, c.Categories)
	case !(c.Spacing > 0) || math.IsInf(c.Spacing, 0):
		return fmt.Errorf("%w: spacing %v", ErrBadConfig, c.Spacing)
	case !(c.Beta >= 0) || math.IsInf(c.Beta, 0):
		return fmt.Errorf("%w: beta %v", ErrBadConfig, c.Beta)
	case !(c.Noise >= 0 && c.Noise < 1):
		return fmt.Errorf("%w: noise %v", ErrBadConfig, c.Noise)
	}

	return nil
}

// Scenario is a generated zone system with its observed demand.
type Scenario struct {
	Seed        int64     // resolved seed
	Zones       int       // Width·Height
	X, Y        []float64 // centroid coordinates, metres
	DistrictIDs []int     // external planning district ID per zone
	Districts   *aggregate.PDMap
	Distances   *matrix.Dense // Z×Z centroid distances, metres
	Truth       *matrix.Dense // Z×Z observed trips
	Shares      []float64     // category share of demand, sums to 1

	noise float64
}

// Generate builds a Scenario from cfg. Equal seeds give equal scenarios.
func Generate(cfg Config) (*Scenario, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	s := &Scenario{
		Seed:  seed,
		Zones: cfg.Width * cfg.Height,
		noise: cfg.Noise,
	}
	s.layout(cfg)

	pd, err := aggregate.PDMapFromAttributes(s.DistrictIDs)
	if err != nil {
		return nil, fmt.Errorf("synth: districts: %w", err)
	}
	s.Districts = pd

	if s.Distances, err = distances(s.X, s.Y, cfg.Spacing); err != nil {
		return nil, err
	}
	prod, attr := fields(cfg, seed)
	if s.Truth, err = gravity(prod, attr, s.Distances, cfg.Beta); err != nil {
		return nil, err
	}
	s.Shares = shares(cfg.Categories, seed)

	return s, nil
}

// layout places zones row-major on the grid and assigns block districts.
func (s *Scenario) layout(cfg Config) {
	s.X = make([]float64, s.Zones)
	s.Y = make([]float64, s.Zones)
	s.DistrictIDs = make([]int, s.Zones)
	blocksPerRow := (cfg.Width + cfg.DistrictSize - 1) / cfg.DistrictSize
	for r := 0; r < cfg.Height; r++ {
		for c := 0; c < cfg.Width; c++ {
			z := r*cfg.Width + c
			s.X[z] = float64(c) * cfg.Spacing
			s.Y[z] = float64(r) * cfg.Spacing
			block := (r/cfg.DistrictSize)*blocksPerRow + c/cfg.DistrictSize
			s.DistrictIDs[z] = districtIDBase + block
		}
	}
}

// distances returns centroid distances; intrazonal trips use half the spacing.
func distances(x, y []float64, spacing float64) (*matrix.Dense, error) {
	n := len(x)
	d, err := matrix.NewSquare(n)
	if err != nil {
		return nil, fmt.Errorf("synth: distances: %w", err)
	}
	for i := 0; i < n; i++ {
		row := d.Row(i)
		for j := range row {
			if i == j {
				row[j] = spacing / 2
				continue
			}
			row[j] = math.Hypot(x[i]-x[j], y[i]-y[j])
		}
	}

	return d, nil
}

// fields samples production and attraction from two independent noise layers.
func fields(cfg Config, seed int64) (prod, attr []float64) {
	prodNoise := opensimplex.NewNormalized(seed)
	attrNoise := opensimplex.NewNormalized(seed + 1)

	n := cfg.Width * cfg.Height
	prod = make([]float64, n)
	attr = make([]float64, n)
	var observed bool
	for r := 0; r < cfg.Height; r++ {
		for c := 0; c < cfg.Width; c++ {
			z := r*cfg.Width + c
			x, y := float64(c), float64(r)
			p := octaveNoise(prodNoise, x, y, 4, 0.15, 0.5)
			if p > productionFloor {
				prod[z] = p - productionFloor
				observed = true
			}
			attr[z] = 0.2 + octaveNoise(attrNoise, x, y, 3, 0.1, 0.5)
		}
	}
	if !observed {
		prod[0] = 1 // keep at least one observed origin
	}

	return prod, attr
}

// gravity returns T[i][j] = scale·prod[i]·attr[j]·exp(-β·d[i][j]/1000).
func gravity(prod, attr []float64, dist *matrix.Dense, beta float64) (*matrix.Dense, error) {
	n := len(prod)
	t, err := matrix.NewSquare(n)
	if err != nil {
		return nil, fmt.Errorf("synth: truth: %w", err)
	}
	for i := 0; i < n; i++ {
		if prod[i] == 0 {
			continue
		}
		row, drow := t.Row(i), dist.Row(i)
		for j := range row {
			row[j] = tripScale * prod[i] * attr[j] * math.Exp(-beta*drow[j]/1000)
		}
	}

	return t, nil
}

// shares draws random category weights normalized to 1.
func shares(cats int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, cats)
	var sum float64
	for c := range out {
		out[c] = 0.5 + rng.Float64()
		sum += out[c]
	}
	for c := range out {
		out[c] /= sum
	}

	return out
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
