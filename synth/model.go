// SPDX-License-Identifier: MIT

package synth

import (
	"fmt"
	"math/rand"

	"github.com/katalvlaran/odcalib/matrix"
)

// Model returns the model stack for one iteration: truth split by category
// share with every cell scaled by an independent factor in
// [1-Noise, 1+Noise]. The same (Seed, iteration) always yields the same stack.
func (s *Scenario) Model(iteration int) (*matrix.Stack, error) {
	return s.Perturb(s.Seed+int64(iteration)*7919, s.noise)
}

// Perturb is Model with an explicit seed and amplitude in [0, 1).
func (s *Scenario) Perturb(seed int64, amplitude float64) (*matrix.Stack, error) {
	if !(amplitude >= 0 && amplitude < 1) {
		return nil, fmt.Errorf("%w: amplitude %v", ErrBadConfig, amplitude)
	}
	rng := rand.New(rand.NewSource(seed))
	truth := s.Truth.Raw()

	cats := make([]*matrix.Dense, len(s.Shares))
	for c, share := range s.Shares {
		m, err := matrix.NewSquare(s.Zones)
		if err != nil {
			return nil, fmt.Errorf("synth: model: %w", err)
		}
		raw := m.Raw()
		for k, v := range truth {
			if v == 0 {
				continue
			}
			raw[k] = v * share * (1 + amplitude*(2*rng.Float64()-1))
		}
		cats[c] = m
	}

	stack, err := matrix.NewStack(cats...)
	if err != nil {
		return nil, fmt.Errorf("synth: model: %w", err)
	}

	return stack, nil
}
