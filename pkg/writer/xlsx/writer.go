// Package xlsx writes processed cleavage panels into Excel workbooks
package xlsx

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ChrisMcGann/cleavemap/pkg/analysis"
	"github.com/ChrisMcGann/cleavemap/pkg/formula"
)

// Writer writes processed worksheets into a workbook
type Writer struct {
	file *excelize.File
}

// NewWriter creates a writer over an open workbook. The writer does not own the file.
func NewWriter(f *excelize.File) *Writer {
	return &Writer{file: f}
}

// DefaultLabels returns "Sample_1".."Sample_n"
func DefaultLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("Sample_%d", i+1)
	}
	return labels
}

// WriteResult creates or clears the named sheet and writes both panels and the
// summary formulas of res
func (w *Writer) WriteResult(sheet string, res *analysis.Result, labels []string) error {
	if len(labels) == 0 {
		labels = DefaultLabels(res.Columns.Samples)
	}
	if len(labels) != res.Columns.Samples {
		return fmt.Errorf("got %d sample labels for %d samples", len(labels), res.Columns.Samples)
	}

	if err := w.resetSheet(sheet); err != nil {
		return err
	}

	if err := w.writeHeaders(sheet, res.Columns, labels); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	cols := res.Columns

	// Left panel
	for _, b := range res.NTerm.Buckets {
		for _, a := range b.Rows {
			f := &res.Fragments[a.Fragment]
			if err := w.setRow(sheet, a.Row, cols.Number, f.Index, f.Clean, f.Intensities); err != nil {
				return err
			}
			if err := w.set(sheet, cols.Cleavage, a.Row, b.Key()); err != nil {
				return err
			}
		}
	}

	// Right panel
	for _, b := range res.CTerm.Buckets {
		for _, a := range b.Rows {
			f := &res.Fragments[a.Fragment]
			if err := w.setRow(sheet, a.Row, cols.RightNumber, f.Index, f.Clean, f.Intensities); err != nil {
				return err
			}
		}
	}

	return w.writeCells(sheet, res.Cells)
}

// resetSheet deletes an existing sheet of that name and creates an empty one
func (w *Writer) resetSheet(sheet string) error {
	if idx, err := w.file.GetSheetIndex(sheet); err == nil && idx >= 0 {
		// DeleteSheet ignores the last sheet of a workbook
		if len(w.file.GetSheetList()) == 1 {
			return w.replaceOnlySheet(sheet)
		}
		if err := w.file.DeleteSheet(sheet); err != nil {
			return fmt.Errorf("failed to clear sheet %q: %w", sheet, err)
		}
	}
	if _, err := w.file.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
	}
	return nil
}

// replaceOnlySheet recreates the single sheet of the workbook through a
// placeholder sheet
func (w *Writer) replaceOnlySheet(sheet string) error {
	placeholder := "reset"
	for n := 1; ; n++ {
		if idx, err := w.file.GetSheetIndex(placeholder); err != nil || idx < 0 {
			break
		}
		placeholder = fmt.Sprintf("reset%d", n)
	}

	if _, err := w.file.NewSheet(placeholder); err != nil {
		return fmt.Errorf("failed to clear sheet %q: %w", sheet, err)
	}
	if err := w.file.DeleteSheet(sheet); err != nil {
		return fmt.Errorf("failed to clear sheet %q: %w", sheet, err)
	}
	idx, err := w.file.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
	}
	w.file.SetActiveSheet(idx)
	if err := w.file.DeleteSheet(placeholder); err != nil {
		return fmt.Errorf("failed to clear sheet %q: %w", sheet, err)
	}
	return nil
}

// writeHeaders writes the header row of both panels
func (w *Writer) writeHeaders(sheet string, cols formula.Columns, labels []string) error {
	headers := map[int]string{
		cols.Number:        "#",
		cols.Sequence:      "Sequence",
		cols.Cleavage:      "left",
		cols.OwnSum:        "left sum",
		cols.LinkedSum:     "right sum",
		cols.Total:         "sum",
		cols.Percentage:    "percentage",
		cols.RightNumber:   "#",
		cols.RightSequence: "Sequence",
	}
	for i, label := range labels {
		headers[cols.Intensity+i] = label
		headers[cols.RightIntensity+i] = label
	}

	for col, text := range headers {
		if err := w.set(sheet, col, 1, text); err != nil {
			return err
		}
	}
	return nil
}

// setRow writes number, sequence and intensities starting at column col
func (w *Writer) setRow(sheet string, row, col, number int, seq string, intensities []float64) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	values := make([]interface{}, 0, len(intensities)+2)
	values = append(values, number, seq)
	for _, v := range intensities {
		values = append(values, v)
	}
	if err := w.file.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

// writeCells writes generated formulas and literal values
func (w *Writer) writeCells(sheet string, cells []formula.Cell) error {
	for _, c := range cells {
		ref, err := excelize.CoordinatesToCellName(c.Col, c.Row)
		if err != nil {
			return err
		}
		if c.Formula == "" {
			err = w.file.SetCellValue(sheet, ref, c.Value)
		} else {
			err = w.file.SetCellFormula(sheet, ref, strings.TrimPrefix(c.Formula, "="))
		}
		if err != nil {
			return fmt.Errorf("failed to write cell %s: %w", ref, err)
		}
	}
	return nil
}

func (w *Writer) set(sheet string, col, row int, value interface{}) error {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := w.file.SetCellValue(sheet, ref, value); err != nil {
		return fmt.Errorf("failed to write cell %s: %w", ref, err)
	}
	return nil
}

// SaveAs writes the workbook to path
func (w *Writer) SaveAs(path string) error {
	if err := w.file.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
