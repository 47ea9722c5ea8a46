// Package tsv provides a streaming reader for tab-separated cleavage exports
package tsv

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/cleavemap/pkg/core"
)

// Reader provides streaming access to tab-separated fragment tables.
//
// The first line is a header. The column titled "Sequence" holds the annotated
// sequence, an optional "#" column holds the fragment number, and every column
// after Sequence with a non-empty title is an intensity column.
type Reader struct {
	scanner   *bufio.Scanner
	lineNum   int
	header    bool
	numberCol int
	seqCol    int
	intensity []int
	labels    []string
	current   core.Fragment
	count     int
	skipped   int
	err       error
}

// maxLineSize bounds a single row; wide exports exceed the scanner default
const maxLineSize = 16 * 1024 * 1024

// NewReader creates a new TSV reader
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{
		scanner:   scanner,
		numberCol: -1,
		seqCol:    -1,
	}
}

// Next advances to the next retained fragment. Returns false when no more fragments or error.
func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}
	if !r.header {
		if err := r.readHeader(); err != nil {
			if err != io.EOF {
				r.err = err
			}
			return false
		}
	}

	for r.scanner.Scan() {
		r.lineNum++
		line := strings.TrimRight(r.scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		raw := field(fields, r.seqCol)
		if strings.TrimSpace(raw) == "" {
			continue
		}

		cells := make([]string, len(r.intensity))
		for i, col := range r.intensity {
			cells[i] = field(fields, col)
		}

		f, ok := core.ParseRecord(raw, cells)
		if !ok {
			r.skipped++
			continue
		}

		r.count++
		f.Row = r.lineNum
		f.Index = r.count
		if n, err := strconv.Atoi(strings.TrimSpace(field(fields, r.numberCol))); err == nil {
			f.Index = n
		}
		r.current = f
		return true
	}

	if err := r.scanner.Err(); err != nil {
		r.err = err
	}
	return false
}

// Fragment returns the current fragment
func (r *Reader) Fragment() core.Fragment {
	return r.current
}

// Labels returns the intensity column titles, available after the first call to Next
func (r *Reader) Labels() []string {
	return r.labels
}

// Skipped returns the number of rows dropped for lack of positive intensity
func (r *Reader) Skipped() int {
	return r.skipped
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

// ReadAll reads every remaining fragment
func (r *Reader) ReadAll() ([]core.Fragment, error) {
	var out []core.Fragment
	for r.Next() {
		out = append(out, r.Fragment())
	}
	return out, r.Err()
}

// readHeader locates the sequence, number and intensity columns
func (r *Reader) readHeader() error {
	r.header = true

	for r.scanner.Scan() {
		r.lineNum++
		line := strings.TrimRight(r.scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		titles := strings.Split(line, "\t")
		for i, title := range titles {
			title = strings.TrimSpace(title)
			switch {
			case strings.EqualFold(title, "Sequence") && r.seqCol < 0:
				r.seqCol = i
			case title == "#" && r.seqCol < 0:
				r.numberCol = i
			case r.seqCol >= 0 && title != "":
				r.intensity = append(r.intensity, i)
				r.labels = append(r.labels, title)
			}
		}

		if r.seqCol < 0 {
			return fmt.Errorf("line %d: header has no Sequence column", r.lineNum)
		}
		if len(r.intensity) == 0 {
			return fmt.Errorf("line %d: header has no intensity columns after Sequence", r.lineNum)
		}
		return nil
	}

	if err := r.scanner.Err(); err != nil {
		return err
	}
	return io.EOF
}

func field(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return fields[i]
}
