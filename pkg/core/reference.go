package core

import (
	"fmt"
	"strings"
)

// Reference is the immutable reference amino-acid sequence of a worksheet.
type Reference struct {
	seq string
}

// NewReference creates a Reference from a raw cell value.
// An empty value yields ErrMissingReference.
func NewReference(raw string) (Reference, error) {
	seq := strings.TrimSpace(raw)
	if seq == "" {
		return Reference{}, ErrMissingReference
	}
	return Reference{seq: seq}, nil
}

// Len returns the number of residues.
func (r Reference) Len() int {
	return len(r.seq)
}

// String returns the residue string.
func (r Reference) String() string {
	return r.seq
}

// Residue returns the residue at 0-based position i.
func (r Reference) Residue(i int) byte {
	return r.seq[i]
}

// Label returns the residue at position i followed by its 1-based position, e.g. "M1".
func (r Reference) Label(i int) string {
	return fmt.Sprintf("%c%d", r.Residue(i), i+1)
}

// Align locates the first occurrence of clean in the reference.
// Repeated substrings always resolve to the first occurrence.
func (r Reference) Align(clean string) (start, end int, ok bool) {
	if clean == "" {
		return 0, 0, false
	}
	start = strings.Index(r.seq, clean)
	if start < 0 {
		return 0, 0, false
	}
	return start, start + len(clean), true
}

// AlignAll sets Start and End on every fragment found in the reference and returns
// the arena indices of fragments that could not be aligned.
func AlignAll(ref Reference, fragments []Fragment) []int {
	var unaligned []int
	for i := range fragments {
		f := &fragments[i]
		start, end, ok := ref.Align(f.Clean)
		if !ok {
			f.Start, f.End, f.aligned = 0, 0, false
			unaligned = append(unaligned, i)
			continue
		}
		f.Start, f.End, f.aligned = start, end, true
	}
	return unaligned
}
