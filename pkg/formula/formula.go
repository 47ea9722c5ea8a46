// Package formula generates the summary cell expressions of a processed worksheet.
package formula

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ChrisMcGann/cleavemap/pkg/core"
	"github.com/ChrisMcGann/cleavemap/pkg/layout"
)

// Columns holds the 1-based column positions of both panels.
type Columns struct {
	Samples int

	// Left (N-terminal) panel
	Number     int
	Sequence   int
	Intensity  int // first sample column
	Cleavage   int
	OwnSum     int
	LinkedSum  int
	Total      int
	Percentage int

	// Right (C-terminal) panel
	RightNumber    int
	RightSequence  int
	RightIntensity int
}

// NewColumns derives the worksheet columns for the given sample count.
// With seven samples intensities span C:I, the summary block L:P and
// the right panel R:Z.
func NewColumns(samples int) Columns {
	c := Columns{
		Samples:   samples,
		Number:    1,
		Sequence:  2,
		Intensity: 3,
	}
	c.Cleavage = c.Intensity + samples + 2
	c.OwnSum = c.Cleavage + 1
	c.LinkedSum = c.Cleavage + 2
	c.Total = c.Cleavage + 3
	c.Percentage = c.Cleavage + 4
	c.RightNumber = c.Percentage + 2
	c.RightSequence = c.RightNumber + 1
	c.RightIntensity = c.RightSequence + 1
	return c
}

// Cell is one generated worksheet cell: a formula, or a literal number when
// Formula is empty.
type Cell struct {
	Row     int
	Col     int
	Formula string
	Value   float64
}

// Ref returns the A1-style reference of the cell.
func (c Cell) Ref() string {
	ref, err := excelize.CoordinatesToCellName(c.Col, c.Row)
	if err != nil {
		return ""
	}
	return ref
}

// Summary describes the rows of one generated block.
type Summary struct {
	Rows     []int // summary row per bucket, in bucket order
	TotalRow int
}

// Generate emits the per-bucket summary formulas and the grand-total row.
// Each bucket's summary sits on the row after its last member; the grand total
// sits on the row after the last summary row. An empty layout yields
// core.ErrEmptyGroupSet.
func Generate(cols Columns, nterm layout.Layout, link layout.Linkage) ([]Cell, Summary, error) {
	if nterm.Empty() {
		return nil, Summary{}, core.ErrEmptyGroupSet
	}
	if err := cols.Validate(); err != nil {
		return nil, Summary{}, err
	}

	last := nterm.Buckets[len(nterm.Buckets)-1]
	sum := Summary{TotalRow: last.RowEnd + 2}

	own := ColumnName(cols.OwnSum)
	linked := ColumnName(cols.LinkedSum)
	total := ColumnName(cols.Total)
	leftFirst, leftLast := ColumnName(cols.Intensity), ColumnName(cols.Intensity+cols.Samples-1)
	rightFirst, rightLast := ColumnName(cols.RightIntensity), ColumnName(cols.RightIntensity+cols.Samples-1)

	var cells []Cell
	for _, b := range nterm.Buckets {
		r := b.RowEnd + 1
		sum.Rows = append(sum.Rows, r)

		cells = append(cells, Cell{
			Row: r, Col: cols.OwnSum,
			Formula: fmt.Sprintf("=SUM(%s%d:%s%d)", leftFirst, b.RowStart, leftLast, b.RowEnd),
		})

		if rr, ok := link[b.RowStart]; ok {
			cells = append(cells, Cell{
				Row: r, Col: cols.LinkedSum,
				Formula: fmt.Sprintf("=SUM(%s%d:%s%d)", rightFirst, rr.Min, rightLast, rr.Max),
			})
		} else {
			cells = append(cells, Cell{Row: r, Col: cols.LinkedSum, Value: 0})
		}

		cells = append(cells,
			Cell{Row: r, Col: cols.Total, Formula: fmt.Sprintf("=%s%d+%s%d", own, r, linked, r)},
			Cell{Row: r, Col: cols.Percentage, Formula: fmt.Sprintf("=(%s%d/$%s$%d)*100", total, r, total, sum.TotalRow)},
		)
	}

	first, lastRow := sum.Rows[0], sum.Rows[len(sum.Rows)-1]
	for _, col := range []int{cols.OwnSum, cols.LinkedSum, cols.Total} {
		name := ColumnName(col)
		cells = append(cells, Cell{
			Row: sum.TotalRow, Col: col,
			Formula: fmt.Sprintf("=SUM(%s%d:%s%d)", name, first, name, lastRow),
		})
	}
	cells = append(cells, Cell{Row: sum.TotalRow, Col: cols.Percentage, Value: 100})

	return cells, sum, nil
}

// Validate checks that every panel column fits in a worksheet.
func (c Columns) Validate() error {
	if c.Samples <= 0 {
		return &core.ValidationError{Field: "Columns", Message: "at least one sample is required"}
	}
	if last := c.RightIntensity + c.Samples - 1; last > excelize.MaxColumns {
		return &core.ValidationError{
			Field:   "Columns",
			Message: fmt.Sprintf("right panel ends at column %d, beyond the worksheet limit %d", last, excelize.MaxColumns),
		}
	}
	return nil
}

// ColumnName converts a 1-based column number to its letter name (1 -> A, 27 -> AA).
// Columns outside the worksheet range yield "".
func ColumnName(col int) string {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return ""
	}
	return name
}
