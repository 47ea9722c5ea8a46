// Package position accumulates fragment intensities onto reference positions.
package position

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/ChrisMcGann/cleavemap/pkg/core"
)

// Matrix is the reference-length × sample-count intensity grid of one worksheet.
type Matrix struct {
	Data    *mat.Dense
	HasData []bool   // per position: row sum > 0
	Labels  []string // per position: residue + 1-based index
}

// Aggregate builds the position matrix. Every aligned fragment adds each strictly
// positive sample intensity to every position it covers; overlaps accumulate.
func Aggregate(ref core.Reference, fragments []core.Fragment, samples int) (*Matrix, error) {
	if ref.Len() == 0 {
		return nil, core.ErrMissingReference
	}
	if samples <= 0 {
		return nil, &core.ValidationError{Field: "samples", Message: "at least one sample is required"}
	}

	data := mat.NewDense(ref.Len(), samples, nil)

	for i := range fragments {
		f := &fragments[i]
		if !f.Aligned() {
			continue
		}
		if f.End > ref.Len() {
			return nil, fmt.Errorf("fragment %s ends at %d beyond reference length %d", f.Name(), f.End, ref.Len())
		}
		for s, v := range f.Intensities {
			if s >= samples || !(v > 0) || math.IsInf(v, 1) {
				continue
			}
			for pos := f.Start; pos < f.End; pos++ {
				data.Set(pos, s, data.At(pos, s)+v)
			}
		}
	}

	m := &Matrix{
		Data:    data,
		HasData: make([]bool, ref.Len()),
		Labels:  make([]string, ref.Len()),
	}
	for pos := 0; pos < ref.Len(); pos++ {
		m.HasData[pos] = floats.Sum(data.RawRowView(pos)) > 0
		m.Labels[pos] = ref.Label(pos)
	}
	return m, nil
}

// Positions returns the 0-based positions that received any intensity.
func (m *Matrix) Positions() []int {
	var out []int
	for pos, ok := range m.HasData {
		if ok {
			out = append(out, pos)
		}
	}
	return out
}

// Covered returns the number of positions with data.
func (m *Matrix) Covered() int {
	n := 0
	for _, ok := range m.HasData {
		if ok {
			n++
		}
	}
	return n
}

// Rows returns the sub-matrix of positions with data and their labels.
// The matrix is nil when no position has data.
func (m *Matrix) Rows() (*mat.Dense, []string) {
	positions := m.Positions()
	if len(positions) == 0 {
		return nil, nil
	}

	_, cols := m.Data.Dims()
	out := mat.NewDense(len(positions), cols, nil)
	labels := make([]string, len(positions))
	for i, pos := range positions {
		out.SetRow(i, m.Data.RawRowView(pos))
		labels[i] = m.Labels[pos]
	}
	return out, labels
}

// Total returns the sum of all cells.
func (m *Matrix) Total() float64 {
	return mat.Sum(m.Data)
}
