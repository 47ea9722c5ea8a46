package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParseRecord(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		cells  []string
		want   Fragment
		wantOK bool
	}{
		{
			name:  "both cleavage markers",
			raw:   "(A)PEPTIDE(K)",
			cells: []string{"10", "0", ""},
			want: Fragment{
				Original:    "(A)PEPTIDE(K)",
				Clean:       "APEPTIDEK",
				Left:        'A',
				Right:       'K',
				Intensities: []float64{10, 0, 0},
			},
			wantOK: true,
		},
		{
			name:  "left marker only",
			raw:   "(D)EFG",
			cells: []string{"1.5e3"},
			want: Fragment{
				Original:    "(D)EFG",
				Clean:       "DEFG",
				Left:        'D',
				Intensities: []float64{1500},
			},
			wantOK: true,
		},
		{
			name:  "no markers",
			raw:   "PEPTIDE",
			cells: []string{"5"},
			want: Fragment{
				Original:    "PEPTIDE",
				Clean:       "PEPTIDE",
				Intensities: []float64{5},
			},
			wantOK: true,
		},
		{
			name:  "markers in unexpected places keep match order",
			raw:   "PEP(T)IDE(K)(R)",
			cells: []string{"5"},
			want: Fragment{
				Original:    "PEP(T)IDE(K)(R)",
				Clean:       "PEPTIDEKR",
				Left:        'T',
				Right:       'K',
				Intensities: []float64{5},
			},
			wantOK: true,
		},
		{
			name:  "lowercase marker is not a cleavage",
			raw:   "(a)PEPTIDE",
			cells: []string{"5"},
			want: Fragment{
				Original:    "(a)PEPTIDE",
				Clean:       "aPEPTIDE",
				Intensities: []float64{5},
			},
			wantOK: true,
		},
		{
			name:  "malformed intensity reads as zero",
			raw:   "(A)BC",
			cells: []string{"n/a", "7"},
			want: Fragment{
				Original:    "(A)BC",
				Clean:       "ABC",
				Left:        'A',
				Intensities: []float64{0, 7},
			},
			wantOK: true,
		},
		{
			name:  "non-finite intensity reads as zero",
			raw:   "(A)PEP(K)",
			cells: []string{"NaN", "5", "-Inf"},
			want: Fragment{
				Original:    "(A)PEP(K)",
				Clean:       "APEPK",
				Left:        'A',
				Right:       'K',
				Intensities: []float64{0, 5, 0},
			},
			wantOK: true,
		},
		{
			name:   "infinity alone is not data",
			raw:    "(A)PEP(K)",
			cells:  []string{"Inf", "0", "nan"},
			wantOK: false,
		},
		{
			name:   "empty raw cell",
			raw:    "  ",
			cells:  []string{"10"},
			wantOK: false,
		},
		{
			name:   "all zero intensities",
			raw:    "(A)BC",
			cells:  []string{"0", "", "bad"},
			wantOK: false,
		},
		{
			name:   "negative intensities only",
			raw:    "(A)BC",
			cells:  []string{"-4"},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRecord(tt.raw, tt.cells)
			if ok != tt.wantOK {
				t.Fatalf("ParseRecord() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if diff := cmp.Diff(tt.want, got, cmpopts.IgnoreUnexported(Fragment{})); diff != "" {
				t.Errorf("ParseRecord() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseRecordRetainsOnlyPositive(t *testing.T) {
	inputs := [][]string{
		{"0", "0"},
		{"", ""},
		{"0", "3"},
		{"x", "-1"},
		{"2", ""},
	}

	for _, cells := range inputs {
		f, ok := ParseRecord("(A)BCD", cells)
		if ok && !f.HasIntensity() {
			t.Errorf("record with cells %v retained without positive intensity", cells)
		}
		if !ok && (cells[0] == "2" || cells[1] == "3") {
			t.Errorf("record with cells %v dropped despite positive intensity", cells)
		}
	}
}

func TestFragmentResidues(t *testing.T) {
	f := Fragment{Index: 3, Clean: "ABC", Left: 'A'}

	if got := f.LeftResidue(); got != "A" {
		t.Errorf("LeftResidue() = %q, want %q", got, "A")
	}
	if got := f.RightResidue(); got != "" {
		t.Errorf("RightResidue() = %q, want empty", got)
	}
	if got := f.Name(); got != "3:ABC" {
		t.Errorf("Name() = %q, want %q", got, "3:ABC")
	}
}

func TestTotalIntensity(t *testing.T) {
	f := Fragment{Intensities: []float64{1, 2.5, -1, 0}}
	if got := f.TotalIntensity(); got != 2.5 {
		t.Errorf("TotalIntensity() = %v, want 2.5", got)
	}
}
