// Package filter provides fragment filtering for intensity tables and reports
package filter

import (
	"sort"

	"github.com/ChrisMcGann/cleavemap/pkg/core"
)

// Config holds filtering configuration
type Config struct {
	TopN            int     // Keep only top N fragments by total intensity (0 = no limit)
	IntensityCutoff float64 // Keep only fragments above this % of the most intense one (0 = no cutoff)
	RequireLeft     bool    // Keep only fragments with a left cleavage residue
	RequireAligned  bool    // Keep only fragments found in the reference
}

// Apply returns the arena indices of the fragments that pass every configured
// filter, most intense first. The fragments themselves are not modified.
func (c *Config) Apply(fragments []core.Fragment) []int {
	idx := RemoveZeroIntensity(fragments)

	if c.RequireLeft {
		idx = keep(idx, func(i int) bool { return fragments[i].Left != 0 })
	}
	if c.RequireAligned {
		idx = keep(idx, func(i int) bool { return fragments[i].Aligned() })
	}

	sortByIntensity(fragments, idx)

	// Apply intensity filters
	if c.IntensityCutoff > 0 {
		idx = c.filterByIntensity(fragments, idx)
	}

	// Apply top-N filter
	if c.TopN > 0 && len(idx) > c.TopN {
		idx = idx[:c.TopN]
	}

	return idx
}

// filterByIntensity removes fragments below the cutoff percentage of the most
// intense fragment. idx must already be sorted by descending intensity.
func (c *Config) filterByIntensity(fragments []core.Fragment, idx []int) []int {
	if len(idx) == 0 {
		return idx
	}

	threshold := (c.IntensityCutoff / 100.0) * fragments[idx[0]].TotalIntensity()
	return keep(idx, func(i int) bool { return fragments[i].TotalIntensity() >= threshold })
}

// sortByIntensity orders indices by descending total intensity, ties in arena order.
func sortByIntensity(fragments []core.Fragment, idx []int) {
	sort.SliceStable(idx, func(a, b int) bool {
		return fragments[idx[a]].TotalIntensity() > fragments[idx[b]].TotalIntensity()
	})
}

// RemoveZeroIntensity returns the indices of fragments with any positive intensity
func RemoveZeroIntensity(fragments []core.Fragment) []int {
	var idx []int
	for i := range fragments {
		if fragments[i].HasIntensity() {
			idx = append(idx, i)
		}
	}
	return idx
}

func keep(idx []int, ok func(int) bool) []int {
	out := idx[:0]
	for _, i := range idx {
		if ok(i) {
			out = append(out, i)
		}
	}
	return out
}
