// Package cmd provides CLI command implementations
package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ChrisMcGann/cleavemap/pkg/config"
)

var (
	// Global flags
	configFile    string
	samples       int
	sampleLabels  []string
	topN          int
	cutoffPercent float64
	outputSuffix  string

	// Flags for process, report and matrix commands
	inputFile   string
	inputFormat string
	outputFile  string
	sheetNames  []string
	dbFile      string
	reportFile  string
	reference   string
	matrixSheet string

	// Loaded before every command runs
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "cleavemap",
	Short: "CleaveMap - Peptide cleavage mapping tool",
	Long: `CleaveMap maps annotated peptide fragments onto a reference protein sequence,
groups them by cleavage site and writes processed worksheets with live summary formulas.

Supports:
- Excel workbooks with one raw worksheet per condition
- Tab-separated fragment tables with a reference given on the command line
- Per-position intensity matrices
- SQLite result databases and YAML comparison reports`,
	Version:           "1.0.0",
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(matrixCmd)
	rootCmd.AddCommand(validateCmd)

	// Global flags, also settable from the config file and CLEAVEMAP_* variables
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (yaml, toml or json)")
	rootCmd.PersistentFlags().IntVar(&samples, "samples", config.DefaultSamples, "Number of intensity columns per record")
	rootCmd.PersistentFlags().StringSliceVar(&sampleLabels, "labels", nil, "Comma-separated sample column titles")
	rootCmd.PersistentFlags().IntVar(&topN, "top-n", 10, "Peptides listed per condition in reports (0 = all)")
	rootCmd.PersistentFlags().Float64Var(&cutoffPercent, "cutoff", 0, "Report cutoff as % of the most intense peptide (0 = no cutoff)")
	rootCmd.PersistentFlags().StringVar(&outputSuffix, "suffix", config.DefaultOutputSuffix, "Suffix appended to processed sheet names")

	// Process command flags
	processCmd.Flags().StringVarP(&inputFile, "in", "i", "", "Input file path (required)")
	processCmd.Flags().StringVarP(&inputFormat, "from", "f", "", "Input format: xlsx, tsv (auto-detect if not specified)")
	processCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Output workbook (default: overwrite the input workbook; required for tsv)")
	processCmd.Flags().StringSliceVar(&sheetNames, "sheets", nil, "Comma-separated worksheets to process (default: every raw worksheet)")
	processCmd.Flags().StringVar(&dbFile, "db", "", "Also write results to this SQLite database")
	processCmd.Flags().StringVar(&reportFile, "report", "", "Also write a YAML comparison report to this file")
	processCmd.Flags().StringVar(&reference, "reference", "", "Reference sequence (tsv input)")
	processCmd.MarkFlagRequired("in")

	// Report command flags
	reportCmd.Flags().StringVarP(&inputFile, "in", "i", "", "Input file path (required)")
	reportCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Output YAML file (default: stdout)")
	reportCmd.Flags().StringSliceVar(&sheetNames, "sheets", nil, "Comma-separated worksheets to compare (default: every raw worksheet)")
	reportCmd.Flags().StringVarP(&inputFormat, "from", "f", "", "Input format: xlsx, tsv (auto-detect if not specified)")
	reportCmd.Flags().StringVar(&reference, "reference", "", "Reference sequence (tsv input)")
	reportCmd.MarkFlagRequired("in")

	// Matrix command flags
	matrixCmd.Flags().StringVarP(&inputFile, "in", "i", "", "Input file path (required)")
	matrixCmd.Flags().StringVarP(&inputFormat, "from", "f", "", "Input format: xlsx, tsv (auto-detect if not specified)")
	matrixCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Output TSV file (default: stdout)")
	matrixCmd.Flags().StringVar(&matrixSheet, "sheet", "", "Worksheet to export (xlsx input with several raw worksheets)")
	matrixCmd.Flags().StringVar(&reference, "reference", "", "Reference sequence (tsv input)")
	matrixCmd.MarkFlagRequired("in")

	// Validate command flags
	validateCmd.Flags().StringVar(&reference, "reference", "", "Reference sequence (tsv input)")
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Write processed cleavage worksheets",
	Long: `Parse raw worksheets, align every fragment to the reference, group fragments by
N-terminal cleavage residue and by length, and write a processed worksheet next to each
raw one with summary formulas linking both panels.

Examples:
  # Process every raw worksheet in place
  cleavemap process --in glucose.xlsx

  # Process two conditions into a new workbook and keep a result database
  cleavemap process --in glucose.xlsx --out processed.xlsx --sheets "100 mgd glucose,500 mgd glucose" --db glucose.db

  # Process a tab-separated export
  cleavemap process --in fxn.tsv --reference MKTAYIAKQRQISFVK --samples 3 --out fxn.xlsx`,
	RunE: runProcess,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compare conditions in a YAML report",
	Long: `Summarize every raw worksheet (sequence count, intensity statistics, positions with
data, cleavage totals per residue and the most intense peptides) without modifying the workbook.`,
	RunE: runReport,
}

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Export the per-position intensity matrix",
	Long:  `Write the intensity of every reference position that received data, one column per sample, as tab-separated text.`,
	RunE:  runMatrix,
}

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate input file format and contents",
	Long:  `Validate that every raw worksheet has a reference sequence and parseable fragment records.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

// loadConfig merges defaults, the config file, environment and flags
func loadConfig(cmd *cobra.Command, args []string) error {
	v := viper.New()

	bindings := map[string]string{
		config.KeySamples:      "samples",
		config.KeyLabels:       "labels",
		config.KeyTopN:         "top-n",
		config.KeyCutoff:       "cutoff",
		config.KeyOutputSuffix: "suffix",
	}
	for key, name := range bindings {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	c, err := config.Load(v, configFile)
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

// detectFormat resolves the input format from the flag or the file extension
func detectFormat(path, format string) (string, error) {
	if format == "" {
		ext := strings.ToLower(filepath.Ext(path))
		switch ext {
		case ".xlsx", ".xlsm":
			format = "xlsx"
		case ".tsv", ".txt":
			format = "tsv"
		default:
			return "", fmt.Errorf("cannot auto-detect format from extension '%s', please specify --from", ext)
		}
	}

	format = strings.ToLower(format)
	if format != "xlsx" && format != "tsv" {
		return "", fmt.Errorf("invalid input format '%s', must be xlsx or tsv", format)
	}
	return format, nil
}
