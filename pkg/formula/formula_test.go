package formula

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ChrisMcGann/cleavemap/pkg/core"
	"github.com/ChrisMcGann/cleavemap/pkg/layout"
)

func TestNewColumnsSevenSamples(t *testing.T) {
	c := NewColumns(7)

	got := map[string]int{
		"C": c.Intensity,
		"L": c.Cleavage,
		"M": c.OwnSum,
		"N": c.LinkedSum,
		"O": c.Total,
		"P": c.Percentage,
		"R": c.RightNumber,
		"S": c.RightSequence,
		"T": c.RightIntensity,
	}
	for name, col := range got {
		if ColumnName(col) != name {
			t.Errorf("column %d = %s, want %s", col, ColumnName(col), name)
		}
	}
}

func TestColumnName(t *testing.T) {
	tests := []struct {
		col  int
		want string
	}{
		{1, "A"},
		{26, "Z"},
		{27, "AA"},
		{52, "AZ"},
		{0, ""},
	}
	for _, tt := range tests {
		if got := ColumnName(tt.col); got != tt.want {
			t.Errorf("ColumnName(%d) = %q, want %q", tt.col, got, tt.want)
		}
	}
}

func TestGenerateExample(t *testing.T) {
	fragments := []core.Fragment{
		{Clean: "AB", Left: 'A'},
		{Clean: "ABC", Left: 'A'},
		{Clean: "BCD", Left: 'B'},
	}
	nterm := layout.BuildNTerminal(fragments, 3)
	link := layout.Linkage{3: {Min: 4, Max: 5}}

	cells, sum, err := Generate(NewColumns(7), nterm, link)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if diff := cmp.Diff(Summary{Rows: []int{5, 7}, TotalRow: 8}, sum); diff != "" {
		t.Errorf("Summary mismatch (-want +got):\n%s", diff)
	}

	got := make(map[string]Cell)
	for _, c := range cells {
		got[c.Ref()] = c
	}

	wantFormulas := map[string]string{
		"M5": "=SUM(C3:I4)",
		"N5": "=SUM(T4:Z5)",
		"O5": "=M5+N5",
		"P5": "=(O5/$O$8)*100",
		"M7": "=SUM(C6:I6)",
		"O7": "=M7+N7",
		"P7": "=(O7/$O$8)*100",
		"M8": "=SUM(M5:M7)",
		"N8": "=SUM(N5:N7)",
		"O8": "=SUM(O5:O7)",
	}
	for ref, want := range wantFormulas {
		c, ok := got[ref]
		if !ok {
			t.Errorf("missing cell %s", ref)
			continue
		}
		if c.Formula != want {
			t.Errorf("%s = %q, want %q", ref, c.Formula, want)
		}
	}

	// Unlinked bucket gets a literal zero
	if c := got["N7"]; c.Formula != "" || c.Value != 0 {
		t.Errorf("N7 = %+v, want literal 0", c)
	}
	if c := got["P8"]; c.Formula != "" || c.Value != 100 {
		t.Errorf("P8 = %+v, want literal 100", c)
	}
	if len(cells) != 12 {
		t.Errorf("expected 12 cells, got %d", len(cells))
	}
}

func TestGenerateThreeSamples(t *testing.T) {
	nterm := layout.Layout{Separated: true, Buckets: []layout.Bucket{
		{Residue: 'D', RowStart: 3, RowEnd: 3, Rows: []layout.Assignment{{Row: 3, Fragment: 0}}},
	}}
	cells, _, err := Generate(NewColumns(3), nterm, layout.Linkage{3: {Min: 3, Max: 3}})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	// 3 samples: intensities C:E, cleavage H, own I, linked J, total K, pct L; right intensities P:R
	want := map[string]string{
		"I4": "=SUM(C3:E3)",
		"J4": "=SUM(P3:R3)",
		"K4": "=I4+J4",
		"L4": "=(K4/$K$5)*100",
	}
	for _, c := range cells {
		if w, ok := want[c.Ref()]; ok && c.Formula != w {
			t.Errorf("%s = %q, want %q", c.Ref(), c.Formula, w)
		}
	}
}

func TestGenerateEmpty(t *testing.T) {
	_, _, err := Generate(NewColumns(7), layout.Layout{}, nil)
	if !errors.Is(err, core.ErrEmptyGroupSet) {
		t.Errorf("Generate() error = %v, want ErrEmptyGroupSet", err)
	}
}

func TestColumnsValidate(t *testing.T) {
	if err := NewColumns(0).Validate(); err == nil {
		t.Error("expected error for zero samples")
	}
	if err := NewColumns(9000).Validate(); err == nil {
		t.Error("expected error for columns beyond the worksheet limit")
	}
	if err := NewColumns(7).Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}
