package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Grid provides read access to the cells of one worksheet.
// Rows and columns are 1-based; cells outside the used range read as "".
type Grid interface {
	Cell(row, col int) string
	MaxRow() int
}

// InputLayout describes where the reference and the fragment records live in a raw sheet.
type InputLayout struct {
	ReferenceRow   int // Row of the reference sequence cell
	ReferenceCol   int // Column of the reference sequence cell
	FirstRecordRow int // First row holding a fragment record
	NumberCol      int // Fragment number ('#') column
	SequenceCol    int // Annotated sequence column
	IntensityCol   int // First intensity column
	Samples        int // Number of contiguous intensity columns
}

// DefaultInputLayout returns the layout of the standard raw worksheet:
// reference in B4, records from row 5 with '#' in A, sequence in B and
// intensities starting at C.
func DefaultInputLayout(samples int) InputLayout {
	return InputLayout{
		ReferenceRow:   4,
		ReferenceCol:   2,
		FirstRecordRow: 5,
		NumberCol:      1,
		SequenceCol:    2,
		IntensityCol:   3,
		Samples:        samples,
	}
}

// Validate checks that all coordinates are usable.
func (l InputLayout) Validate() error {
	var errs []string

	if l.ReferenceRow <= 0 || l.ReferenceCol <= 0 {
		errs = append(errs, "reference cell must be positive")
	}
	if l.FirstRecordRow <= 0 {
		errs = append(errs, "first record row must be positive")
	}
	if l.SequenceCol <= 0 {
		errs = append(errs, "sequence column must be positive")
	}
	if l.IntensityCol <= 0 {
		errs = append(errs, "intensity column must be positive")
	}
	if l.Samples <= 0 {
		errs = append(errs, "at least one sample is required")
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   "InputLayout",
			Message: strings.Join(errs, "; "),
		}
	}
	return nil
}

// Worksheet holds the parsed contents of one raw worksheet.
type Worksheet struct {
	Name      string
	Reference Reference
	Fragments []Fragment
	Skipped   int // Non-empty rows dropped for lack of positive intensity
}

// ParseWorksheet reads the reference and every retained fragment record of a sheet.
func ParseWorksheet(name string, g Grid, in InputLayout) (*Worksheet, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	ref, err := NewReference(g.Cell(in.ReferenceRow, in.ReferenceCol))
	if err != nil {
		return nil, &SheetError{
			Sheet: name,
			Err:   fmt.Errorf("row %d: %w", in.ReferenceRow, err),
		}
	}

	ws := &Worksheet{Name: name, Reference: ref}
	cells := make([]string, in.Samples)

	for row := in.FirstRecordRow; row <= g.MaxRow(); row++ {
		raw := g.Cell(row, in.SequenceCol)
		if strings.TrimSpace(raw) == "" {
			continue
		}

		for i := range cells {
			cells[i] = g.Cell(row, in.IntensityCol+i)
		}

		f, ok := ParseRecord(raw, cells)
		if !ok {
			ws.Skipped++
			continue
		}

		f.Row = row
		f.Index = len(ws.Fragments) + 1
		if in.NumberCol > 0 {
			if n, err := strconv.Atoi(strings.TrimSpace(g.Cell(row, in.NumberCol))); err == nil {
				f.Index = n
			}
		}

		ws.Fragments = append(ws.Fragments, f)
	}

	return ws, nil
}

// SliceGrid is an in-memory Grid backed by rows of cell strings.
type SliceGrid [][]string

// Cell returns the value at the 1-based coordinates, or "" when out of range.
func (g SliceGrid) Cell(row, col int) string {
	if row < 1 || row > len(g) {
		return ""
	}
	r := g[row-1]
	if col < 1 || col > len(r) {
		return ""
	}
	return r[col-1]
}

// MaxRow returns the number of rows.
func (g SliceGrid) MaxRow() int {
	return len(g)
}
