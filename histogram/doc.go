// Package histogram buckets OD trip volume by trip length for diagnostic
// reporting. It does not feed the calibration error.
//
// Bins are half-open integer ranges [Start, Stop) in length units, written
// as "0-5;5-10;10-15;15-20;20-30;". Raw zone-pair distances are multiplied
// by a coordinate factor (0.001 turns metres into km) and truncated before
// binning. Anything outside every range lands in a final overflow bin
// labelled "<last Stop>+".
//
//	bins, _ := histogram.ParseRangeSet(histogram.DefaultBins)
//	table, err := histogram.Build(stack, distances, bins, histogram.DefaultCoordinateFactor)
//	_ = table.WriteCSV(w)
package histogram
