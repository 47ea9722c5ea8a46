package layout

import "github.com/ChrisMcGann/cleavemap/pkg/core"

// RowRange is an inclusive range of worksheet rows.
type RowRange struct {
	Min int
	Max int
}

// Linkage maps an N-terminal bucket's first row to the C-terminal rows holding
// the same fragments. Buckets without a match have no entry.
type Linkage map[int]RowRange

// Link matches every N-terminal bucket to C-terminal rows by exact clean
// sequence equality. Fragments sharing a clean sequence are interchangeable.
func Link(fragments []core.Fragment, nterm, cterm Layout) Linkage {
	link := make(Linkage)

	for _, nb := range nterm.Buckets {
		seqs := make(map[string]struct{}, len(nb.Rows))
		for _, a := range nb.Rows {
			seqs[fragments[a.Fragment].Clean] = struct{}{}
		}

		found := false
		var rr RowRange
		for _, cb := range cterm.Buckets {
			for _, a := range cb.Rows {
				if _, ok := seqs[fragments[a.Fragment].Clean]; !ok {
					continue
				}
				if !found {
					rr = RowRange{Min: a.Row, Max: a.Row}
					found = true
					continue
				}
				rr.Min = min(rr.Min, a.Row)
				rr.Max = max(rr.Max, a.Row)
			}
		}

		if found {
			link[nb.RowStart] = rr
		}
	}

	return link
}
