// SPDX-License-Identifier: MIT

package aggregate

import (
	"slices"
)

// PDMap is a total, surjective map from flat zone index [0, Z) to flat
// planning-district index [0, P). It is immutable once built.
type PDMap struct {
	zoneToPD []int // len Z, values in [0, P)
	ids      []int // external district ID per flat PD index (nil when built from flat indices)
	pds      int   // P
}

// NewPDMap builds a map from already-flat district indices.
// Implementation:
//   - Stage 1: reject an empty map.
//   - Stage 2: P = max+1; every entry must lie in [0, Z), since P ≤ Z.
//   - Stage 3: every district in [0, P) must receive at least one zone.
//
// Errors:
//   - ErrEmptyPDMap, ErrPDOutOfRange, ErrPDNotSurjective.
//
// Complexity: O(Z).
func NewPDMap(zoneToPD []int) (*PDMap, error) {
	if len(zoneToPD) == 0 {
		return nil, aggregateErrorf("NewPDMap", ErrEmptyPDMap)
	}
	pds := 0
	for _, p := range zoneToPD {
		if p < 0 || p >= len(zoneToPD) {
			return nil, aggregateErrorf("NewPDMap", ErrPDOutOfRange)
		}
		if p+1 > pds {
			pds = p + 1
		}
	}
	seen := make([]bool, pds)
	for _, p := range zoneToPD {
		seen[p] = true
	}
	for _, ok := range seen {
		if !ok {
			return nil, aggregateErrorf("NewPDMap", ErrPDNotSurjective)
		}
	}

	return &PDMap{zoneToPD: slices.Clone(zoneToPD), pds: pds}, nil
}

// PDMapFromAttributes builds the flat map from each zone's external
// planning-district attribute (e.g. 1, 4, 4, 17, ...).
// Distinct IDs are sorted ascending and numbered 0..P-1, so the flat index
// of an ID does not depend on zone order. The map is surjective by construction.
//
// Errors:
//   - ErrEmptyPDMap.
//
// Complexity: O(Z log Z).
func PDMapFromAttributes(districtIDs []int) (*PDMap, error) {
	if len(districtIDs) == 0 {
		return nil, aggregateErrorf("PDMapFromAttributes", ErrEmptyPDMap)
	}
	ids := slices.Clone(districtIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	flat := make([]int, len(districtIDs))
	for z, id := range districtIDs {
		flat[z], _ = slices.BinarySearch(ids, id) // always found
	}

	return &PDMap{zoneToPD: flat, ids: ids, pds: len(ids)}, nil
}

// Zones returns Z.
func (p *PDMap) Zones() int { return len(p.zoneToPD) }

// Districts returns P.
func (p *PDMap) Districts() int { return p.pds }

// Of returns the flat district index of zone z. The caller guarantees 0 ≤ z < Zones().
func (p *PDMap) Of(z int) int { return p.zoneToPD[z] }

// DistrictID returns the external ID of flat district d, or d itself when the
// map was built from flat indices.
func (p *PDMap) DistrictID(d int) int {
	if p.ids == nil {
		return d
	}

	return p.ids[d]
}
