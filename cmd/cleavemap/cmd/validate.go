package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/cleavemap/pkg/analysis"
	"github.com/ChrisMcGann/cleavemap/pkg/core"
	"github.com/ChrisMcGann/cleavemap/pkg/reader/xlsx"
)

func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]
	format, err := detectFormat(path, "")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validating %s...\n", path)

	if format == "tsv" {
		return validateTSV(cmd, path)
	}

	wb, err := xlsx.Open(path)
	if err != nil {
		return err
	}
	defer wb.Close()

	names := wb.InputSheets(cfg.OutputSuffix)
	if len(names) == 0 {
		return fmt.Errorf("workbook has no raw worksheets")
	}

	failed := 0
	for _, name := range names {
		grid, err := wb.Grid(name)
		if err != nil {
			return err
		}

		ws, err := core.ParseWorksheet(name, grid, cfg.InputLayout())
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
			failed++
			continue
		}

		res, err := analysis.Analyze(ws, cfg.AnalysisOptions())
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", &core.SheetError{Sheet: name, Err: err})
			failed++
			continue
		}

		printValidation(cmd, ws, res)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d worksheets failed validation", failed, len(names))
	}
	fmt.Fprintf(out, "All %d worksheets valid\n", len(names))
	return nil
}

func validateTSV(cmd *cobra.Command, path string) error {
	if reference == "" {
		return fmt.Errorf("--reference is required for tsv input")
	}

	ws, labels, err := readTSV(path, reference)
	if err != nil {
		return err
	}

	opts := cfg.AnalysisOptions()
	opts.Samples = len(labels)
	res, err := analysis.Analyze(ws, opts)
	if err != nil {
		return &core.SheetError{Sheet: ws.Name, Err: err}
	}

	printValidation(cmd, ws, res)
	return nil
}

func printValidation(cmd *cobra.Command, ws *core.Worksheet, res *analysis.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "  %s: %d sequences", ws.Name, len(res.Fragments))
	if ws.Skipped > 0 {
		fmt.Fprintf(out, ", %d skipped", ws.Skipped)
	}
	fmt.Fprintf(out, ", %d unaligned, %d/%d positions with data\n",
		len(res.Unaligned), res.Matrix.Covered(), res.Reference.Len())
	if res.Empty {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s has no N-terminal cleavage groups\n", ws.Name)
	}
}
