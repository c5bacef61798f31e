// SPDX-License-Identifier: MIT

package histogram

import (
	"encoding/csv"
	"io"
	"strconv"

	"gonum.org/v1/gonum/floats"
)

// Table holds trip volume per (bin, category). Row k < Bins()-1 belongs to
// range k; the last row is the overflow bin.
type Table struct {
	labels []string
	cats   int
	flat   []float64 // [bin*cats + c]
}

func newTable(labels []string, cats int) *Table {
	return &Table{labels: labels, cats: cats, flat: make([]float64, len(labels)*cats)}
}

// Bins returns the number of rows, overflow included.
func (t *Table) Bins() int { return len(t.labels) }

// Categories returns the number of columns.
func (t *Table) Categories() int { return t.cats }

// Label returns the label of bin k ("0-5", ..., "30+").
func (t *Table) Label(k int) string { return t.labels[k] }

// Labels returns every bin label (shared, not copied).
func (t *Table) Labels() []string { return t.labels }

// Count returns the volume in (bin k, category c).
func (t *Table) Count(k, c int) float64 { return t.flat[k*t.cats+c] }

// Row returns bin k's per-category volumes (shared, not copied).
func (t *Table) Row(k int) []float64 { return t.flat[k*t.cats : (k+1)*t.cats] }

// Total returns the volume over every cell.
func (t *Table) Total() float64 { return floats.Sum(t.flat) }

// WriteCSV writes a "Distance,<cat>,..." header and one line per bin.
// Column names default to "WCAT <c>" when names is shorter than Categories().
func (t *Table) WriteCSV(w io.Writer, names ...string) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, t.cats+1)
	header = append(header, "Distance")
	for c := 0; c < t.cats; c++ {
		if c < len(names) {
			header = append(header, names[c])
		} else {
			header = append(header, "WCAT "+strconv.Itoa(c))
		}
	}
	if err := cw.Write(header); err != nil {
		return histogramErrorf("WriteCSV", err)
	}

	record := make([]string, t.cats+1)
	for k, label := range t.labels {
		record[0] = label
		for c, v := range t.Row(k) {
			record[c+1] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return histogramErrorf("WriteCSV", err)
		}
	}
	cw.Flush()

	return cw.Error()
}
