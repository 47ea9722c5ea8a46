package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/cleavemap/pkg/analysis"
	"github.com/ChrisMcGann/cleavemap/pkg/reader/xlsx"
	"github.com/ChrisMcGann/cleavemap/pkg/report"
	"github.com/ChrisMcGann/cleavemap/pkg/writer/sqlite"
	xlsxwriter "github.com/ChrisMcGann/cleavemap/pkg/writer/xlsx"
)

func runProcess(cmd *cobra.Command, args []string) error {
	// Validate input file exists
	if _, err := os.Stat(inputFile); os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", inputFile)
	}

	format, err := detectFormat(inputFile, inputFormat)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Processing %s...\n", inputFile)
	fmt.Fprintf(out, "Format: %s\n", format)

	switch format {
	case "xlsx":
		return processXLSX(cmd)
	case "tsv":
		return processTSV(cmd)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func processXLSX(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Samples: %d\n\n", cfg.Samples)

	wb, err := xlsx.Open(inputFile)
	if err != nil {
		return err
	}
	defer wb.Close()

	batch, err := runWorkbook(cmd, wb, sheetNames, out)
	if err != nil {
		return err
	}
	reportSheetErrors(cmd.ErrOrStderr(), batch)
	if len(batch.Results) == 0 {
		return fmt.Errorf("no worksheet could be processed")
	}

	// Write processed sheets into the same workbook
	writer := xlsxwriter.NewWriter(wb.File())
	for _, res := range batch.Results {
		name := cfg.OutputSheet(res.Sheet)
		if err := writer.WriteResult(name, res, cfg.Labels); err != nil {
			return fmt.Errorf("failed to write worksheet %s: %w", name, err)
		}
	}

	target := outputFile
	if target == "" {
		target = inputFile
	}
	if err := writer.SaveAs(target); err != nil {
		return err
	}

	if err := writeDatabase(batch.Results, cfg.Samples); err != nil {
		return err
	}
	if err := writeReport(batch.Results, cfg.Labels); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nProcessing complete!\n")
	fmt.Fprintf(out, "Processed: %d worksheets\n", len(batch.Results))
	if len(batch.Errors) > 0 {
		fmt.Fprintf(out, "Failed: %d worksheets\n", len(batch.Errors))
	}
	fmt.Fprintf(out, "Output: %s\n", target)
	if dbFile != "" {
		fmt.Fprintf(out, "Database: %s\n", dbFile)
	}
	if reportFile != "" {
		fmt.Fprintf(out, "Report: %s\n", reportFile)
	}

	return nil
}

// runWorkbook loads the requested worksheets, or every raw worksheet when none
// are named, and analyzes them. Missing worksheets are reported as warnings.
func runWorkbook(cmd *cobra.Command, wb *xlsx.Workbook, names []string, progress io.Writer) (*analysis.Batch, error) {
	if len(names) == 0 {
		names = wb.InputSheets(cfg.OutputSuffix)
	}

	sheets, missing, err := wb.Sheets(names)
	if err != nil {
		return nil, err
	}
	for _, name := range missing {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: worksheet %q not found, skipping\n", name)
	}
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no worksheets to process")
	}

	return analysis.RunBatch(sheets, cfg.InputLayout(), cfg.AnalysisOptions(), progress), nil
}

func reportSheetErrors(w io.Writer, batch *analysis.Batch) {
	for _, err := range batch.Errors {
		fmt.Fprintf(w, "Warning: %v\n", err)
	}
}

// writeDatabase stores every result in the --db database when one was given
func writeDatabase(results []*analysis.Result, samples int) error {
	if dbFile == "" {
		return nil
	}

	writer, err := sqlite.NewWriter(dbFile)
	if err != nil {
		return fmt.Errorf("failed to create output database: %w", err)
	}
	defer writer.Close()

	for _, res := range results {
		if err := writer.WriteResult(res); err != nil {
			return fmt.Errorf("failed to write worksheet %s: %w", res.Sheet, err)
		}
	}

	if err := writer.Finalize(samples, inputFile); err != nil {
		return fmt.Errorf("failed to finalize database: %w", err)
	}
	return nil
}

// writeReport writes the YAML comparison to the --report file when one was given
func writeReport(results []*analysis.Result, labels []string) error {
	if reportFile == "" {
		return nil
	}

	f, err := os.Create(reportFile)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	r := report.Compare(results, labels, cfg.Filter())
	if err := r.WriteYAML(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
