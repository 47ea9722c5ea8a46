package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/ChrisMcGann/cleavemap/pkg/position"
)

// WriteMatrix writes the positions with data as a tab-separated table: one row
// per position label, one column per sample. It returns the number of rows written.
func WriteMatrix(w io.Writer, m *position.Matrix, labels []string) (int, error) {
	data, rowLabels := m.Rows()
	_, samples := m.Data.Dims()
	if len(labels) != samples {
		return 0, fmt.Errorf("got %d sample labels for %d samples", len(labels), samples)
	}

	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := cw.Write(append([]string{"Position"}, labels...)); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	for i, label := range rowLabels {
		record := make([]string, 0, samples+1)
		record = append(record, label)
		for _, v := range data.RawRowView(i) {
			record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := cw.Write(record); err != nil {
			return i, fmt.Errorf("failed to write %s: %w", label, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return len(rowLabels), fmt.Errorf("failed to flush matrix: %w", err)
	}
	return len(rowLabels), nil
}
