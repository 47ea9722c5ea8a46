package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/ChrisMcGann/cleavemap/pkg/analysis"
	"github.com/ChrisMcGann/cleavemap/pkg/core"
	"github.com/ChrisMcGann/cleavemap/pkg/reader/tsv"
	xlsxwriter "github.com/ChrisMcGann/cleavemap/pkg/writer/xlsx"
)

func processTSV(cmd *cobra.Command) error {
	if outputFile == "" {
		return fmt.Errorf("--out is required for tsv input")
	}

	res, labels, err := analyzeTSV(cmd, inputFile, reference, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	// Write the processed sheet into a new workbook
	f := excelize.NewFile()
	defer f.Close()

	writer := xlsxwriter.NewWriter(f)
	name := cfg.OutputSheet(res.Sheet)
	if err := writer.WriteResult(name, res, labels); err != nil {
		return fmt.Errorf("failed to write worksheet %s: %w", name, err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default worksheet: %w", err)
	}
	if err := writer.SaveAs(outputFile); err != nil {
		return err
	}

	results := []*analysis.Result{res}
	if err := writeDatabase(results, res.Columns.Samples); err != nil {
		return err
	}
	if err := writeReport(results, labels); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nProcessing complete!\n")
	fmt.Fprintf(out, "Processed: %d sequences\n", len(res.Fragments))
	fmt.Fprintf(out, "Output: %s\n", outputFile)
	if dbFile != "" {
		fmt.Fprintf(out, "Database: %s\n", dbFile)
	}
	if reportFile != "" {
		fmt.Fprintf(out, "Report: %s\n", reportFile)
	}

	return nil
}

// analyzeTSV reads a tab-separated fragment table and analyzes it against ref.
// The sample count follows the intensity columns of the header; configured
// labels replace the header titles when their count matches.
func analyzeTSV(cmd *cobra.Command, path, ref string, out io.Writer) (*analysis.Result, []string, error) {
	if ref == "" {
		return nil, nil, fmt.Errorf("--reference is required for tsv input")
	}

	ws, labels, err := readTSV(path, ref)
	if err != nil {
		return nil, nil, err
	}

	if len(cfg.Labels) > 0 {
		if len(cfg.Labels) == len(labels) {
			labels = cfg.Labels
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %d labels configured for %d intensity columns, using header titles\n", len(cfg.Labels), len(labels))
		}
	}

	opts := cfg.AnalysisOptions()
	opts.Samples = len(labels)

	fmt.Fprintf(out, "Samples: %d (%s)\n\n", opts.Samples, strings.Join(labels, ", "))
	fmt.Fprintf(out, "Processing: %s\n", ws.Name)

	res, err := analysis.Analyze(ws, opts)
	if err != nil {
		return nil, nil, &core.SheetError{Sheet: ws.Name, Err: err}
	}

	fmt.Fprintf(out, "  Sequences: %d\n", len(res.Fragments))
	if ws.Skipped > 0 {
		fmt.Fprintf(out, "  Skipped: %d (no positive intensity)\n", ws.Skipped)
	}
	if len(res.Unaligned) > 0 {
		fmt.Fprintf(out, "  Unaligned: %d\n", len(res.Unaligned))
	}
	if res.Empty {
		fmt.Fprintf(out, "  No cleavage groups, formulas skipped\n")
	}

	return res, labels, nil
}

// readTSV parses a tab-separated file into a worksheet named after the file
func readTSV(path, ref string) (*core.Worksheet, []string, error) {
	seq, err := core.NewReference(ref)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	r := tsv.NewReader(f)
	fragments, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("error reading input file: %w", err)
	}
	if len(r.Labels()) == 0 {
		return nil, nil, fmt.Errorf("input file %s has no header", path)
	}

	ws := &core.Worksheet{
		Name:      strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Reference: seq,
		Fragments: fragments,
		Skipped:   r.Skipped(),
	}
	return ws, r.Labels(), nil
}
