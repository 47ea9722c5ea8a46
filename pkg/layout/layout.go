// Package layout assigns worksheet rows to cleavage groups and links the
// N-terminal panel to the C-terminal panel.
package layout

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/ChrisMcGann/cleavemap/pkg/core"
)

// Assignment places one fragment (by arena index) on a worksheet row.
type Assignment struct {
	Row      int
	Fragment int
}

// Bucket is one group of fragments with its contiguous row range.
type Bucket struct {
	Residue  byte // N-terminal key; zero for C-terminal buckets
	Length   int  // C-terminal key; zero for N-terminal buckets
	RowStart int
	RowEnd   int
	Rows     []Assignment
}

// Key returns the bucket key as text: the residue letter or the length.
func (b *Bucket) Key() string {
	if b.Residue != 0 {
		return string(b.Residue)
	}
	return strconv.Itoa(b.Length)
}

// Layout is an ordered set of buckets on one panel.
type Layout struct {
	Buckets   []Bucket
	Separated bool // a blank row follows every bucket
}

// BuildNTerminal groups fragments by left cleavage residue. Buckets are ordered by
// residue; members by ascending clean length, ties in arena order. A blank
// separator row follows every bucket.
func BuildNTerminal(fragments []core.Fragment, firstRow int) Layout {
	byResidue := make(map[byte][]int)
	var keys []byte
	for i := range fragments {
		r := fragments[i].Left
		if r == 0 {
			continue
		}
		if _, seen := byResidue[r]; !seen {
			keys = append(keys, r)
		}
		byResidue[r] = append(byResidue[r], i)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	l := Layout{Separated: true}
	row := firstRow
	for _, r := range keys {
		members := byResidue[r]
		sort.SliceStable(members, func(i, j int) bool {
			return len(fragments[members[i]].Clean) < len(fragments[members[j]].Clean)
		})

		b := Bucket{Residue: r}
		row = b.assign(members, row)
		l.Buckets = append(l.Buckets, b)
		row++ // separator
	}
	return l
}

// BuildCTerminal groups every fragment by clean sequence length, longest first.
// Members keep arena order and buckets are not separated.
func BuildCTerminal(fragments []core.Fragment, firstRow int) Layout {
	byLength := make(map[int][]int)
	var keys []int
	for i := range fragments {
		n := len(fragments[i].Clean)
		if _, seen := byLength[n]; !seen {
			keys = append(keys, n)
		}
		byLength[n] = append(byLength[n], i)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(keys)))

	var l Layout
	row := firstRow
	for _, n := range keys {
		b := Bucket{Length: n}
		row = b.assign(byLength[n], row)
		l.Buckets = append(l.Buckets, b)
	}
	return l
}

// assign places members on consecutive rows starting at row and returns the next free row.
func (b *Bucket) assign(members []int, row int) int {
	b.RowStart = row
	b.Rows = make([]Assignment, len(members))
	for i, idx := range members {
		b.Rows[i] = Assignment{Row: row, Fragment: idx}
		row++
	}
	b.RowEnd = row - 1
	return row
}

// Empty reports whether the layout has no buckets.
func (l Layout) Empty() bool {
	return len(l.Buckets) == 0
}

// Len returns the number of assigned rows across all buckets.
func (l Layout) Len() int {
	n := 0
	for _, b := range l.Buckets {
		n += len(b.Rows)
	}
	return n
}

// Validate checks that every bucket occupies contiguous rows and that buckets
// do not overlap and appear in increasing row order.
func (l Layout) Validate() error {
	prevEnd := 0
	for i, b := range l.Buckets {
		if len(b.Rows) == 0 {
			return fmt.Errorf("bucket %s is empty", b.Key())
		}
		if b.RowStart <= prevEnd {
			return fmt.Errorf("bucket %s starts at row %d, overlapping previous bucket ending at %d", b.Key(), b.RowStart, prevEnd)
		}
		if b.RowEnd-b.RowStart+1 != len(b.Rows) {
			return fmt.Errorf("bucket %s spans rows %d-%d but has %d members", b.Key(), b.RowStart, b.RowEnd, len(b.Rows))
		}
		for j, a := range b.Rows {
			if a.Row != b.RowStart+j {
				return fmt.Errorf("bucket %s row %d is not contiguous", b.Key(), a.Row)
			}
		}
		if l.Separated && i > 0 && b.RowStart != prevEnd+2 {
			return fmt.Errorf("bucket %s does not follow a single separator row", b.Key())
		}
		prevEnd = b.RowEnd
	}
	return nil
}
