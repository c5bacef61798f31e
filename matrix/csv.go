// SPDX-License-Identifier: MIT

package matrix

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteCSV writes one line per row, cells formatted with the shortest
// representation that round-trips.
//
// With labels (square matrices only, one per zone or district) a header line
// ",<label>,..." is written first and every row starts with its label.
//
// Errors:
//   - ErrNilMatrix.
//   - ErrDimensionMismatch when labels are given but do not match both sides.
func (m *Dense) WriteCSV(w io.Writer, labels ...string) error {
	if m == nil {
		return matrixErrorf("WriteCSV", ErrNilMatrix)
	}
	labelled := len(labels) > 0
	if labelled && (len(labels) != m.r || m.r != m.c) {
		return matrixErrorf("WriteCSV", ErrDimensionMismatch)
	}

	cw := csv.NewWriter(w)
	offset := 0
	if labelled {
		offset = 1
		header := append([]string{""}, labels...)
		if err := cw.Write(header); err != nil {
			return matrixErrorf("WriteCSV", err)
		}
	}
	record := make([]string, m.c+offset)
	for i := 0; i < m.r; i++ {
		if labelled {
			record[0] = labels[i]
		}
		for j, v := range m.Row(i) {
			record[j+offset] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return matrixErrorf("WriteCSV", err)
		}
	}
	cw.Flush()

	return cw.Error()
}
