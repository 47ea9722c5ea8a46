package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/cleavemap/pkg/analysis"
	"github.com/ChrisMcGann/cleavemap/pkg/reader/xlsx"
	"github.com/ChrisMcGann/cleavemap/pkg/report"
)

func runReport(cmd *cobra.Command, args []string) error {
	results, labels, err := loadResults(cmd, sheetNames)
	if err != nil {
		return err
	}

	r := report.Compare(results, labels, cfg.Filter())

	if outputFile == "" {
		return r.WriteYAML(cmd.OutOrStdout())
	}

	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if err := r.WriteYAML(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close report: %w", err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Report: %s (%d conditions)\n", outputFile, len(r.Conditions))
	return nil
}

// loadResults analyzes the --in file without modifying it. Progress goes to
// stderr so that stdout can carry the command output.
func loadResults(cmd *cobra.Command, names []string) ([]*analysis.Result, []string, error) {
	if _, err := os.Stat(inputFile); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("input file does not exist: %s", inputFile)
	}

	format, err := detectFormat(inputFile, inputFormat)
	if err != nil {
		return nil, nil, err
	}

	// Keep stdout for the command output
	progress := cmd.ErrOrStderr()

	if format == "tsv" {
		res, labels, err := analyzeTSV(cmd, inputFile, reference, progress)
		if err != nil {
			return nil, nil, err
		}
		return []*analysis.Result{res}, labels, nil
	}

	wb, err := xlsx.Open(inputFile)
	if err != nil {
		return nil, nil, err
	}
	defer wb.Close()

	batch, err := runWorkbook(cmd, wb, names, progress)
	if err != nil {
		return nil, nil, err
	}
	reportSheetErrors(cmd.ErrOrStderr(), batch)
	if len(batch.Results) == 0 {
		return nil, nil, fmt.Errorf("no worksheet could be analyzed")
	}

	return batch.Results, cfg.Labels, nil
}
