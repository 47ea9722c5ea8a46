// Package report summarizes analyzed conditions and compares them side by side.
package report

import (
	"fmt"
	"io"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/ChrisMcGann/cleavemap/pkg/analysis"
	"github.com/ChrisMcGann/cleavemap/pkg/core"
	"github.com/ChrisMcGann/cleavemap/pkg/filter"
)

// CleavageTotals holds the summed intensity of fragments per cleavage residue
type CleavageTotals struct {
	NTerminal map[string]float64 `yaml:"n_terminal,omitempty"`
	CTerminal map[string]float64 `yaml:"c_terminal,omitempty"`
}

// Peptide is one row of the most intense fragments table
type Peptide struct {
	Number   int     `yaml:"number"`
	Sequence string  `yaml:"sequence"`
	Left     string  `yaml:"left,omitempty"`
	Right    string  `yaml:"right,omitempty"`
	Start    int     `yaml:"start,omitempty"` // 1-based, 0 when unaligned
	End      int     `yaml:"end,omitempty"`   // 1-based inclusive
	Total    float64 `yaml:"total"`
	Share    float64 `yaml:"share"` // percent of the condition total
}

// Summary describes one analyzed condition
type Summary struct {
	Condition         string         `yaml:"condition"`
	ReferenceLength   int            `yaml:"reference_length"`
	Sequences         int            `yaml:"sequences"`
	Unaligned         int            `yaml:"unaligned"`
	NTerminalGroups   int            `yaml:"n_terminal_groups"`
	CTerminalGroups   int            `yaml:"c_terminal_groups"`
	MaxIntensity      float64        `yaml:"max_intensity"`
	MeanIntensity     float64        `yaml:"mean_intensity"`
	TotalIntensity    float64        `yaml:"total_intensity"`
	SampleTotals      []float64      `yaml:"sample_totals"`
	PositionsWithData int            `yaml:"positions_with_data"`
	Coverage          float64        `yaml:"coverage"` // percent of reference positions with data
	Cleavage          CleavageTotals `yaml:"cleavage"`
	TopPeptides       []Peptide      `yaml:"top_peptides,omitempty"`
}

// Report compares every analyzed condition of a run
type Report struct {
	Samples    int       `yaml:"samples"`
	Labels     []string  `yaml:"labels,omitempty"`
	Residues   []string  `yaml:"n_terminal_residues"` // union over conditions, sorted
	Conditions []Summary `yaml:"conditions"`
}

// Cleavage sums fragment intensity by left and by right cleavage residue
func Cleavage(fragments []core.Fragment) CleavageTotals {
	t := CleavageTotals{
		NTerminal: make(map[string]float64),
		CTerminal: make(map[string]float64),
	}
	for i := range fragments {
		f := &fragments[i]
		if f.Left != 0 {
			t.NTerminal[f.LeftResidue()] += f.TotalIntensity()
		}
		if f.Right != 0 {
			t.CTerminal[f.RightResidue()] += f.TotalIntensity()
		}
	}
	return t
}

// Summarize builds the summary of one result. sel chooses the fragments listed
// in TopPeptides; a zero TopN lists every fragment that passes the cutoff.
func Summarize(res *analysis.Result, sel filter.Config) Summary {
	s := Summary{
		Condition:       res.Sheet,
		ReferenceLength: res.Reference.Len(),
		Sequences:       len(res.Fragments),
		Unaligned:       len(res.Unaligned),
		NTerminalGroups: len(res.NTerm.Buckets),
		CTerminalGroups: len(res.CTerm.Buckets),
		SampleTotals:    make([]float64, res.Columns.Samples),
		Cleavage:        Cleavage(res.Fragments),
	}

	var positive []float64
	for i := range res.Fragments {
		f := &res.Fragments[i]
		s.TotalIntensity += f.TotalIntensity()
		if len(f.Intensities) == len(s.SampleTotals) {
			floats.Add(s.SampleTotals, f.Intensities)
		}
		for _, v := range f.Intensities {
			if v > 0 {
				positive = append(positive, v)
			}
		}
	}
	if len(positive) > 0 {
		s.MaxIntensity = floats.Max(positive)
		s.MeanIntensity = stat.Mean(positive, nil)
	}

	if res.Matrix != nil {
		s.PositionsWithData = res.Matrix.Covered()
	}
	if s.ReferenceLength > 0 {
		s.Coverage = core.RoundFloat(100*float64(s.PositionsWithData)/float64(s.ReferenceLength), 2)
	}

	for _, i := range sel.Apply(res.Fragments) {
		s.TopPeptides = append(s.TopPeptides, peptide(&res.Fragments[i], s.TotalIntensity))
	}

	return s
}

func peptide(f *core.Fragment, total float64) Peptide {
	p := Peptide{
		Number:   f.Index,
		Sequence: f.Clean,
		Left:     f.LeftResidue(),
		Right:    f.RightResidue(),
		Total:    f.TotalIntensity(),
	}
	if f.Aligned() {
		p.Start = f.Start + 1
		p.End = f.End
	}
	if total > 0 {
		p.Share = core.RoundFloat(100*p.Total/total, 2)
	}
	return p
}

// Compare summarizes every result in order
func Compare(results []*analysis.Result, labels []string, sel filter.Config) *Report {
	r := &Report{Labels: labels}
	seen := make(map[string]bool)

	for _, res := range results {
		r.Samples = max(r.Samples, res.Columns.Samples)
		s := Summarize(res, sel)
		for residue := range s.Cleavage.NTerminal {
			if !seen[residue] {
				seen[residue] = true
				r.Residues = append(r.Residues, residue)
			}
		}
		r.Conditions = append(r.Conditions, s)
	}
	sort.Strings(r.Residues)

	return r
}

// WriteYAML encodes the report as YAML
func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}

// ReadYAML decodes a report written by WriteYAML
func ReadYAML(rd io.Reader) (*Report, error) {
	var r Report
	if err := yaml.NewDecoder(rd).Decode(&r); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &r, nil
}
