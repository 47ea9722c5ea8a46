package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ChrisMcGann/cleavemap/pkg/core"
)

func frag(clean string, left, right byte) core.Fragment {
	return core.Fragment{Clean: clean, Left: left, Right: right, Intensities: []float64{1}}
}

func TestBuildNTerminalExample(t *testing.T) {
	fragments := []core.Fragment{
		frag("BCDE", 'B', 0),
		frag("ABCD", 'A', 0),
		frag("AB", 'A', 0),
	}

	l := BuildNTerminal(fragments, 3)

	want := []Bucket{
		{Residue: 'A', RowStart: 3, RowEnd: 4, Rows: []Assignment{{Row: 3, Fragment: 2}, {Row: 4, Fragment: 1}}},
		{Residue: 'B', RowStart: 6, RowEnd: 6, Rows: []Assignment{{Row: 6, Fragment: 0}}},
	}
	if diff := cmp.Diff(want, l.Buckets); diff != "" {
		t.Errorf("BuildNTerminal() mismatch (-want +got):\n%s", diff)
	}
	if err := l.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestBuildNTerminalOrdering(t *testing.T) {
	fragments := []core.Fragment{
		frag("KLMNO", 'K', 0),
		frag("NOLEFT", 0, 'R'),
		frag("KLM", 'K', 0),
		frag("KLN", 'K', 0), // same length as KLM, later in arena
		frag("DEF", 'D', 0),
	}

	l := BuildNTerminal(fragments, 1)

	if len(l.Buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(l.Buckets))
	}
	if l.Buckets[0].Key() != "D" || l.Buckets[1].Key() != "K" {
		t.Errorf("bucket order = %s,%s; want D,K", l.Buckets[0].Key(), l.Buckets[1].Key())
	}
	var members []int
	for _, a := range l.Buckets[1].Rows {
		members = append(members, a.Fragment)
	}
	if diff := cmp.Diff([]int{2, 3, 0}, members); diff != "" {
		t.Errorf("K members mismatch (-want +got):\n%s", diff)
	}
	if l.Len() != 4 {
		t.Errorf("Len() = %d, want 4 (fragment without left residue excluded)", l.Len())
	}
}

func TestBuildCTerminal(t *testing.T) {
	fragments := []core.Fragment{
		frag("ABC", 'A', 0),
		frag("ABCDE", 0, 0),
		frag("XYZ", 'X', 'K'),
		frag("ABCD", 'A', 0),
	}

	l := BuildCTerminal(fragments, 3)

	want := []Bucket{
		{Length: 5, RowStart: 3, RowEnd: 3, Rows: []Assignment{{Row: 3, Fragment: 1}}},
		{Length: 4, RowStart: 4, RowEnd: 4, Rows: []Assignment{{Row: 4, Fragment: 3}}},
		{Length: 3, RowStart: 5, RowEnd: 6, Rows: []Assignment{{Row: 5, Fragment: 0}, {Row: 6, Fragment: 2}}},
	}
	if diff := cmp.Diff(want, l.Buckets); diff != "" {
		t.Errorf("BuildCTerminal() mismatch (-want +got):\n%s", diff)
	}
	if err := l.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if l.Buckets[2].Key() != "3" {
		t.Errorf("Key() = %q, want 3", l.Buckets[2].Key())
	}
}

func TestLayoutValidateRejectsOverlap(t *testing.T) {
	tests := []struct {
		name string
		l    Layout
	}{
		{
			name: "overlap",
			l: Layout{Buckets: []Bucket{
				{Length: 2, RowStart: 3, RowEnd: 4, Rows: []Assignment{{3, 0}, {4, 1}}},
				{Length: 1, RowStart: 4, RowEnd: 4, Rows: []Assignment{{4, 2}}},
			}},
		},
		{
			name: "gap inside bucket",
			l: Layout{Buckets: []Bucket{
				{Length: 2, RowStart: 3, RowEnd: 4, Rows: []Assignment{{3, 0}, {5, 1}}},
			}},
		},
		{
			name: "missing separator",
			l: Layout{Separated: true, Buckets: []Bucket{
				{Residue: 'A', RowStart: 3, RowEnd: 3, Rows: []Assignment{{3, 0}}},
				{Residue: 'B', RowStart: 4, RowEnd: 4, Rows: []Assignment{{4, 1}}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.l.Validate(); err == nil {
				t.Error("Validate() expected error")
			}
		})
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	fragments := []core.Fragment{
		frag("ABC", 'A', 0),
		frag("ABCDE", 'A', 'F'),
		frag("CDE", 'C', 0),
		frag("BCD", 'B', 0),
	}

	n1, c1 := BuildNTerminal(fragments, 3), BuildCTerminal(fragments, 3)
	n2, c2 := BuildNTerminal(fragments, 3), BuildCTerminal(fragments, 3)

	if diff := cmp.Diff(n1, n2); diff != "" {
		t.Errorf("N-terminal layout differs between runs:\n%s", diff)
	}
	if diff := cmp.Diff(c1, c2); diff != "" {
		t.Errorf("C-terminal layout differs between runs:\n%s", diff)
	}
	if diff := cmp.Diff(Link(fragments, n1, c1), Link(fragments, n2, c2)); diff != "" {
		t.Errorf("linkage differs between runs:\n%s", diff)
	}
}

func TestBuildEmpty(t *testing.T) {
	l := BuildNTerminal([]core.Fragment{frag("ABC", 0, 0)}, 3)
	if !l.Empty() {
		t.Error("expected empty N-terminal layout")
	}
}
