// Package analysis runs the cleavage mapping pipeline over parsed worksheets.
package analysis

import (
	"errors"
	"fmt"
	"io"

	"github.com/ChrisMcGann/cleavemap/pkg/core"
	"github.com/ChrisMcGann/cleavemap/pkg/formula"
	"github.com/ChrisMcGann/cleavemap/pkg/layout"
	"github.com/ChrisMcGann/cleavemap/pkg/position"
)

// Options controls one pipeline run.
type Options struct {
	Samples  int // Number of intensity columns
	FirstRow int // First data row of both output panels
}

// DefaultFirstRow is the first data row of the processed panels.
const DefaultFirstRow = 3

// Validate checks the options.
func (o Options) Validate() error {
	if o.Samples <= 0 {
		return &core.ValidationError{Field: "Options", Message: "at least one sample is required"}
	}
	if o.FirstRow <= 1 {
		return &core.ValidationError{Field: "Options", Message: "first row must leave room for the header"}
	}
	return nil
}

// Result holds every structure derived from one worksheet.
type Result struct {
	Sheet     string
	Reference core.Reference
	Fragments []core.Fragment // arena referenced by index from the layouts
	Unaligned []int           // arena indices not found in the reference

	Columns formula.Columns
	NTerm   layout.Layout
	CTerm   layout.Layout
	Linkage layout.Linkage
	Cells   []formula.Cell
	Summary formula.Summary
	Empty   bool // no fragment carried a left cleavage residue

	Matrix *position.Matrix
}

// Analyze aligns, groups, links and aggregates the fragments of one worksheet.
// The worksheet is not modified; the result owns a copy of its fragments.
func Analyze(ws *core.Worksheet, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	fragments := make([]core.Fragment, len(ws.Fragments))
	copy(fragments, ws.Fragments)

	res := &Result{
		Sheet:     ws.Name,
		Reference: ws.Reference,
		Fragments: fragments,
		Columns:   formula.NewColumns(opts.Samples),
	}

	res.Unaligned = core.AlignAll(ws.Reference, fragments)

	res.NTerm = layout.BuildNTerminal(fragments, opts.FirstRow)
	res.CTerm = layout.BuildCTerminal(fragments, opts.FirstRow)
	if err := res.NTerm.Validate(); err != nil {
		return nil, fmt.Errorf("N-terminal layout: %w", err)
	}
	if err := res.CTerm.Validate(); err != nil {
		return nil, fmt.Errorf("C-terminal layout: %w", err)
	}

	if res.NTerm.Empty() {
		res.Empty = true
	} else {
		res.Linkage = layout.Link(fragments, res.NTerm, res.CTerm)

		cells, sum, err := formula.Generate(res.Columns, res.NTerm, res.Linkage)
		if err != nil {
			return nil, fmt.Errorf("failed to generate formulas: %w", err)
		}
		res.Cells = cells
		res.Summary = sum
	}

	m, err := position.Aggregate(ws.Reference, fragments, opts.Samples)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate positions: %w", err)
	}
	res.Matrix = m

	return res, nil
}

// Sheet is one named input of a batch.
type Sheet struct {
	Name string
	Grid core.Grid
}

// Batch is the outcome of a multi-sheet run.
type Batch struct {
	Results []*Result
	Errors  []error // one *core.SheetError per failed sheet
}

// RunBatch parses and analyzes every sheet in order. A failing sheet is recorded
// in Errors and does not stop the remaining sheets. Progress lines are written to
// progress when it is not nil.
func RunBatch(sheets []Sheet, in core.InputLayout, opts Options, progress io.Writer) *Batch {
	if progress == nil {
		progress = io.Discard
	}

	b := &Batch{}
	for _, s := range sheets {
		fmt.Fprintf(progress, "Processing: %s\n", s.Name)

		res, err := analyzeSheet(s, in, opts)
		if err != nil {
			var sheetErr *core.SheetError
			if !errors.As(err, &sheetErr) {
				err = &core.SheetError{Sheet: s.Name, Err: err}
			}
			b.Errors = append(b.Errors, err)
			fmt.Fprintf(progress, "  Error: %v\n", err)
			continue
		}

		fmt.Fprintf(progress, "  Reference: %s\n", truncate(res.Reference.String(), 50))
		fmt.Fprintf(progress, "  Sequences: %d\n", len(res.Fragments))
		if len(res.Unaligned) > 0 {
			fmt.Fprintf(progress, "  Unaligned: %d\n", len(res.Unaligned))
		}
		if res.Empty {
			fmt.Fprintf(progress, "  No cleavage groups, formulas skipped\n")
		} else {
			fmt.Fprintf(progress, "  Groups: %d N-terminal, %d C-terminal\n", len(res.NTerm.Buckets), len(res.CTerm.Buckets))
		}

		b.Results = append(b.Results, res)
	}
	return b
}

func analyzeSheet(s Sheet, in core.InputLayout, opts Options) (*Result, error) {
	ws, err := core.ParseWorksheet(s.Name, s.Grid, in)
	if err != nil {
		return nil, err
	}
	return Analyze(ws, opts)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
