// Package aggregate collapses per-category OD matrices into one total
// matrix and, optionally, collapses zone-level totals into planning
// districts (PDs).
//
// ⚙️ Usage:
//
//	pd, _ := aggregate.PDMapFromAttributes(zoneDistrictIDs)
//	agg, _ := aggregate.New(zones)
//	total, err := agg.Aggregate(stack, pd) // P×P; pass nil for Z×Z
//
// Buffer lifetime:
//
//	The matrix returned by Aggregate is owned by the Aggregator and is
//	overwritten by the next call. Clone it to keep it.
//
// Performance:
//
//   - Category collapse: O(C·Z²), row-parallel, SIMD row adds.
//   - District collapse: O(Z²) sequential scatter-add into a zeroed P×P buffer.
package aggregate
