package core

import (
	"errors"
	"testing"
)

func TestNewReference(t *testing.T) {
	if _, err := NewReference("   "); !errors.Is(err, ErrMissingReference) {
		t.Errorf("NewReference(blank) error = %v, want ErrMissingReference", err)
	}

	ref, err := NewReference(" ABCDEFGHIJ\n")
	if err != nil {
		t.Fatalf("NewReference() error = %v", err)
	}
	if ref.Len() != 10 {
		t.Errorf("Len() = %d, want 10", ref.Len())
	}
	if got := ref.Label(0); got != "A1" {
		t.Errorf("Label(0) = %q, want A1", got)
	}
	if got := ref.Label(9); got != "J10" {
		t.Errorf("Label(9) = %q, want J10", got)
	}
}

func TestAlign(t *testing.T) {
	ref, _ := NewReference("ABCDEFGHIJABC")

	tests := []struct {
		name      string
		clean     string
		wantStart int
		wantEnd   int
		wantOK    bool
	}{
		{"interior", "CDE", 2, 5, true},
		{"prefix", "AB", 0, 2, true},
		{"first occurrence wins", "ABC", 0, 3, true},
		{"suffix", "JABC", 9, 13, true},
		{"absent", "XYZ", 0, 0, false},
		{"empty", "", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, ok := ref.Align(tt.clean)
			if ok != tt.wantOK || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("Align(%q) = (%d, %d, %v), want (%d, %d, %v)",
					tt.clean, start, end, ok, tt.wantStart, tt.wantEnd, tt.wantOK)
			}
		})
	}
}

func TestAlignAllRoundTrip(t *testing.T) {
	ref, _ := NewReference("MKTAYIAKQRQISFVKSHFSRQ")
	fragments := []Fragment{
		{Clean: "TAYIA"},
		{Clean: "QRQIS"},
		{Clean: "NOTTHERE"},
		{Clean: "SHFSRQ"},
	}

	unaligned := AlignAll(ref, fragments)
	if len(unaligned) != 1 || unaligned[0] != 2 {
		t.Fatalf("AlignAll() unaligned = %v, want [2]", unaligned)
	}

	for i, f := range fragments {
		if !f.Aligned() {
			continue
		}
		if got := ref.String()[f.Start:f.End]; got != f.Clean {
			t.Errorf("fragment %d: reference[%d:%d] = %q, want %q", i, f.Start, f.End, got, f.Clean)
		}
	}
	if fragments[2].Aligned() {
		t.Error("fragment 2 should not be aligned")
	}
}
