package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/cleavemap/pkg/report"
	xlsxwriter "github.com/ChrisMcGann/cleavemap/pkg/writer/xlsx"
)

func runMatrix(cmd *cobra.Command, args []string) error {
	var names []string
	if matrixSheet != "" {
		names = []string{matrixSheet}
	}

	results, labels, err := loadResults(cmd, names)
	if err != nil {
		return err
	}
	if len(results) != 1 {
		return fmt.Errorf("found %d worksheets, choose one with --sheet", len(results))
	}

	res := results[0]
	if len(labels) == 0 {
		labels = xlsxwriter.DefaultLabels(res.Columns.Samples)
	}

	if outputFile == "" {
		_, err := report.WriteMatrix(cmd.OutOrStdout(), res.Matrix, labels)
		return err
	}

	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	n, err := report.WriteMatrix(f, res.Matrix, labels)
	if err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d of %d positions from %s to %s\n", n, res.Reference.Len(), res.Sheet, outputFile)
	return nil
}
