// Package core provides the fragment record model, record parsing and reference
// alignment used by CleaveMap.
package core

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// cleavagePattern matches a single uppercase residue enclosed in parentheses.
var cleavagePattern = regexp.MustCompile(`\(([A-Z])\)`)

// Fragment represents one annotated peptide fragment and its per-sample intensities.
type Fragment struct {
	Index    int    // Fragment number (the '#' column, or ordinal when absent)
	Row      int    // Source row in the raw worksheet
	Original string // Annotated text, e.g. "(A)PEPTIDE(K)"
	Clean    string // Original with parentheses removed, residues kept

	// Cleavage residues; zero means no marker was found
	Left  byte
	Right byte

	Intensities []float64 // One value per sample

	// Alignment against the reference, set by AlignAll
	Start   int
	End     int
	aligned bool
}

// ParseRecord builds a Fragment from a raw sequence cell and its intensity cells.
// The second return value is false when the record must be skipped: an empty
// sequence cell, or no strictly positive intensity.
func ParseRecord(raw string, cells []string) (Fragment, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Fragment{}, false
	}

	f := Fragment{
		Original:    raw,
		Clean:       CleanSequence(raw),
		Intensities: make([]float64, len(cells)),
	}

	matches := cleavagePattern.FindAllStringSubmatch(raw, 2)
	if len(matches) > 0 {
		f.Left = matches[0][1][0]
	}
	if len(matches) > 1 {
		f.Right = matches[1][1][0]
	}

	for i, cell := range cells {
		f.Intensities[i] = ParseIntensity(cell)
	}

	if !f.HasIntensity() {
		return Fragment{}, false
	}
	return f, true
}

// CleanSequence removes every parenthesis character from an annotated sequence.
// The residue letters inside the markers are retained.
func CleanSequence(annotated string) string {
	return strings.NewReplacer("(", "", ")", "").Replace(annotated)
}

// ParseIntensity converts an intensity cell to a number. Empty, unparsable or
// non-finite cells ("NaN", "Inf") yield zero.
func ParseIntensity(cell string) float64 {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// HasIntensity reports whether at least one intensity is strictly positive.
func (f *Fragment) HasIntensity() bool {
	for _, v := range f.Intensities {
		if v > 0 {
			return true
		}
	}
	return false
}

// TotalIntensity returns the sum of all intensities.
func (f *Fragment) TotalIntensity() float64 {
	total := 0.0
	for _, v := range f.Intensities {
		total += v
	}
	return total
}

// Aligned reports whether Start and End were resolved against a reference.
func (f *Fragment) Aligned() bool {
	return f.aligned
}

// LeftResidue returns the left cleavage residue as a string, or "" when absent.
func (f *Fragment) LeftResidue() string {
	return residueString(f.Left)
}

// RightResidue returns the right cleavage residue as a string, or "" when absent.
func (f *Fragment) RightResidue() string {
	return residueString(f.Right)
}

// Name returns the fragment name in format "Index:Clean"
func (f *Fragment) Name() string {
	return fmt.Sprintf("%d:%s", f.Index, f.Clean)
}

func residueString(r byte) string {
	if r == 0 {
		return ""
	}
	return string(r)
}
