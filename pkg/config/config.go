// Package config loads run settings from defaults, an optional config file,
// CLEAVEMAP_* environment variables and bound command-line flags.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/ChrisMcGann/cleavemap/pkg/analysis"
	"github.com/ChrisMcGann/cleavemap/pkg/core"
	"github.com/ChrisMcGann/cleavemap/pkg/filter"
)

// EnvPrefix is the prefix of environment variables read by Load
const EnvPrefix = "CLEAVEMAP"

// Setting keys
const (
	KeySamples        = "samples"
	KeyLabels         = "labels"
	KeyFirstOutputRow = "first_output_row"
	KeyReferenceRow   = "reference_row"
	KeyReferenceCol   = "reference_col"
	KeyFirstRecordRow = "first_record_row"
	KeyNumberCol      = "number_col"
	KeySequenceCol    = "sequence_col"
	KeyIntensityCol   = "intensity_col"
	KeyOutputSuffix   = "output_suffix"
	KeyTopN           = "top_n"
	KeyCutoff         = "cutoff"
)

// DefaultSamples is the number of fractions in the standard raw worksheet
const DefaultSamples = 7

// DefaultOutputSuffix is appended to an input sheet name to form its output sheet
const DefaultOutputSuffix = " PROCESSED"

// Config holds every setting of one run
type Config struct {
	Samples        int      `mapstructure:"samples"`
	Labels         []string `mapstructure:"labels"`
	FirstOutputRow int      `mapstructure:"first_output_row"`
	ReferenceRow   int      `mapstructure:"reference_row"`
	ReferenceCol   int      `mapstructure:"reference_col"`
	FirstRecordRow int      `mapstructure:"first_record_row"`
	NumberCol      int      `mapstructure:"number_col"`
	SequenceCol    int      `mapstructure:"sequence_col"`
	IntensityCol   int      `mapstructure:"intensity_col"`
	OutputSuffix   string   `mapstructure:"output_suffix"`
	TopN           int      `mapstructure:"top_n"`
	Cutoff         float64  `mapstructure:"cutoff"`
}

// SetDefaults registers the default value of every key on v
func SetDefaults(v *viper.Viper) {
	in := core.DefaultInputLayout(DefaultSamples)

	v.SetDefault(KeySamples, DefaultSamples)
	v.SetDefault(KeyLabels, []string{})
	v.SetDefault(KeyFirstOutputRow, analysis.DefaultFirstRow)
	v.SetDefault(KeyReferenceRow, in.ReferenceRow)
	v.SetDefault(KeyReferenceCol, in.ReferenceCol)
	v.SetDefault(KeyFirstRecordRow, in.FirstRecordRow)
	v.SetDefault(KeyNumberCol, in.NumberCol)
	v.SetDefault(KeySequenceCol, in.SequenceCol)
	v.SetDefault(KeyIntensityCol, in.IntensityCol)
	v.SetDefault(KeyOutputSuffix, DefaultOutputSuffix)
	v.SetDefault(KeyTopN, 10)
	v.SetDefault(KeyCutoff, 0.0)
}

// Load reads the settings held by v. When path is not empty the file is read
// first; its format follows the file extension.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the settings against each other
func (c *Config) Validate() error {
	if err := c.InputLayout().Validate(); err != nil {
		return err
	}
	if err := c.AnalysisOptions().Validate(); err != nil {
		return err
	}
	if len(c.Labels) > 0 && len(c.Labels) != c.Samples {
		return &core.ValidationError{
			Field:   KeyLabels,
			Message: fmt.Sprintf("%d labels given for %d samples", len(c.Labels), c.Samples),
		}
	}
	if c.OutputSuffix == "" {
		return &core.ValidationError{Field: KeyOutputSuffix, Message: "must not be empty"}
	}
	if c.TopN < 0 {
		return &core.ValidationError{Field: KeyTopN, Message: "must not be negative"}
	}
	if c.Cutoff < 0 || c.Cutoff > 100 {
		return &core.ValidationError{Field: KeyCutoff, Message: "must be between 0 and 100"}
	}
	return nil
}

// InputLayout returns the raw worksheet coordinates
func (c *Config) InputLayout() core.InputLayout {
	return core.InputLayout{
		ReferenceRow:   c.ReferenceRow,
		ReferenceCol:   c.ReferenceCol,
		FirstRecordRow: c.FirstRecordRow,
		NumberCol:      c.NumberCol,
		SequenceCol:    c.SequenceCol,
		IntensityCol:   c.IntensityCol,
		Samples:        c.Samples,
	}
}

// AnalysisOptions returns the pipeline options
func (c *Config) AnalysisOptions() analysis.Options {
	return analysis.Options{
		Samples:  c.Samples,
		FirstRow: c.FirstOutputRow,
	}
}

// Filter returns the fragment selection used by reports
func (c *Config) Filter() filter.Config {
	return filter.Config{
		TopN:            c.TopN,
		IntensityCutoff: c.Cutoff,
	}
}

// OutputSheet returns the processed sheet name for an input sheet
func (c *Config) OutputSheet(input string) string {
	return input + c.OutputSuffix
}
