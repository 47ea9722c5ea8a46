// Package xlsx provides worksheet access to Excel workbooks holding raw cleavage data
package xlsx

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ChrisMcGann/cleavemap/pkg/analysis"
	"github.com/ChrisMcGann/cleavemap/pkg/core"
)

// Workbook wraps an open excelize file
type Workbook struct {
	file *excelize.File
}

// Open opens a workbook from disk
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	return &Workbook{file: f}, nil
}

// File returns the underlying excelize file, shared with the writer
func (w *Workbook) File() *excelize.File {
	return w.file
}

// SheetNames returns the worksheet names in workbook order
func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// HasSheet reports whether a worksheet exists
func (w *Workbook) HasSheet(name string) bool {
	idx, err := w.file.GetSheetIndex(name)
	return err == nil && idx >= 0
}

// Grid loads the raw (unformatted) cell values of a worksheet
func (w *Workbook) Grid(name string) (core.SliceGrid, error) {
	if !w.HasSheet(name) {
		return nil, fmt.Errorf("worksheet %q not found", name)
	}
	rows, err := w.file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %q: %w", name, err)
	}
	return core.SliceGrid(rows), nil
}

// Sheets loads the named worksheets for a batch run. Missing worksheets are
// returned separately so the caller can report them without stopping.
func (w *Workbook) Sheets(names []string) (sheets []analysis.Sheet, missing []string, err error) {
	for _, name := range names {
		if !w.HasSheet(name) {
			missing = append(missing, name)
			continue
		}
		g, err := w.Grid(name)
		if err != nil {
			return nil, nil, err
		}
		sheets = append(sheets, analysis.Sheet{Name: name, Grid: g})
	}
	return sheets, missing, nil
}

// InputSheets returns every worksheet that is not itself a processed output,
// i.e. whose name does not end with suffix
func (w *Workbook) InputSheets(suffix string) []string {
	var names []string
	for _, name := range w.SheetNames() {
		if suffix != "" && strings.HasSuffix(name, suffix) {
			continue
		}
		names = append(names, name)
	}
	return names
}

// Close releases the workbook
func (w *Workbook) Close() error {
	return w.file.Close()
}
