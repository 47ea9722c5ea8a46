// Package sqlite provides SQLite database writing for cleavage analysis results
package sqlite

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ChrisMcGann/cleavemap/pkg/analysis"
	"github.com/ChrisMcGann/cleavemap/pkg/core"
	"github.com/ChrisMcGann/cleavemap/pkg/layout"
)

const (
	// Date format for HeaderTable and SheetTable (ISO 8601)
	headerDateFormat = "2006-01-02"

	// Schema version written to HeaderTable
	schemaVersion = 1
)

// Panel identifiers stored in GroupTable
const (
	PanelNTerminal = "N"
	PanelCTerminal = "C"
)

// Writer handles writing analysis results to SQLite database files
type Writer struct {
	db           *sql.DB
	outputPath   string
	sheetStmt    *sql.Stmt
	fragmentStmt *sql.Stmt
	groupStmt    *sql.Stmt
	positionStmt *sql.Stmt
	sheetID      int
	fragmentID   int
	groupID      int
	finalized    bool
}

// NewWriter creates a new SQLite writer
func NewWriter(outputPath string) (*Writer, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{
		db:         db,
		outputPath: outputPath,
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	if err := w.seedIDs(); err != nil {
		db.Close()
		return nil, err
	}

	if err := w.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	return w, nil
}

// createTables creates the required database schema
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS SheetTable (
		SheetId INTEGER PRIMARY KEY,
		Name TEXT,
		Reference TEXT,
		ReferenceLength INTEGER,
		FragmentCount INTEGER,
		UnalignedCount INTEGER,
		CoveredPositions INTEGER,
		EmptyGroupSet BOOL,
		CreationDate TEXT
	);

	CREATE TABLE IF NOT EXISTS FragmentTable (
		FragmentId INTEGER PRIMARY KEY,
		SheetId INTEGER REFERENCES SheetTable(SheetId),
		Number INTEGER,
		SourceRow INTEGER,
		Annotated TEXT,
		Sequence TEXT,
		LeftResidue TEXT,
		RightResidue TEXT,
		StartPos INTEGER,
		EndPos INTEGER,
		NeutralMass DOUBLE,
		TotalIntensity DOUBLE,
		blobIntensity BLOB
	);

	CREATE TABLE IF NOT EXISTS GroupTable (
		GroupId INTEGER PRIMARY KEY,
		SheetId INTEGER REFERENCES SheetTable(SheetId),
		Panel TEXT,
		GroupKey TEXT,
		RowStart INTEGER,
		RowEnd INTEGER,
		MemberCount INTEGER,
		LinkedRowMin INTEGER,
		LinkedRowMax INTEGER,
		SummaryRow INTEGER
	);

	CREATE TABLE IF NOT EXISTS PositionTable (
		SheetId INTEGER REFERENCES SheetTable(SheetId),
		Position INTEGER,
		Label TEXT,
		blobIntensity BLOB
	);

	CREATE TABLE IF NOT EXISTS HeaderTable (
		version INTEGER NOT NULL DEFAULT 0,
		CreationDate TEXT,
		SampleCount INTEGER,
		Description TEXT
	);
	`

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// seedIDs continues numbering after the rows of an existing database, so that
// later runs append to it
func (w *Writer) seedIDs() error {
	seeds := []struct {
		query string
		id    *int
	}{
		{"SELECT COALESCE(MAX(SheetId), 0) + 1 FROM SheetTable", &w.sheetID},
		{"SELECT COALESCE(MAX(FragmentId), 0) + 1 FROM FragmentTable", &w.fragmentID},
		{"SELECT COALESCE(MAX(GroupId), 0) + 1 FROM GroupTable", &w.groupID},
	}
	for _, s := range seeds {
		if err := w.db.QueryRow(s.query).Scan(s.id); err != nil {
			return fmt.Errorf("failed to read existing ids: %w", err)
		}
	}
	return nil
}

// prepareStatements prepares SQL statements for batch insertion
func (w *Writer) prepareStatements() error {
	var err error

	w.sheetStmt, err = w.db.Prepare(`
		INSERT INTO SheetTable (
			SheetId, Name, Reference, ReferenceLength, FragmentCount,
			UnalignedCount, CoveredPositions, EmptyGroupSet, CreationDate
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare sheet statement: %w", err)
	}

	w.fragmentStmt, err = w.db.Prepare(`
		INSERT INTO FragmentTable (
			FragmentId, SheetId, Number, SourceRow, Annotated, Sequence,
			LeftResidue, RightResidue, StartPos, EndPos, NeutralMass,
			TotalIntensity, blobIntensity
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare fragment statement: %w", err)
	}

	w.groupStmt, err = w.db.Prepare(`
		INSERT INTO GroupTable (
			GroupId, SheetId, Panel, GroupKey, RowStart, RowEnd,
			MemberCount, LinkedRowMin, LinkedRowMax, SummaryRow
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare group statement: %w", err)
	}

	w.positionStmt, err = w.db.Prepare(`
		INSERT INTO PositionTable (SheetId, Position, Label, blobIntensity)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare position statement: %w", err)
	}

	return nil
}

// WriteResult writes one analyzed worksheet to the database
func (w *Writer) WriteResult(res *analysis.Result) error {
	sheetID := w.sheetID

	_, err := w.sheetStmt.Exec(
		sheetID,                             // SheetId
		res.Sheet,                           // Name
		res.Reference.String(),              // Reference
		res.Reference.Len(),                 // ReferenceLength
		len(res.Fragments),                  // FragmentCount
		len(res.Unaligned),                  // UnalignedCount
		res.Matrix.Covered(),                // CoveredPositions
		res.Empty,                           // EmptyGroupSet
		time.Now().Format(headerDateFormat), // CreationDate
	)
	if err != nil {
		return fmt.Errorf("failed to insert sheet: %w", err)
	}

	for i := range res.Fragments {
		if err := w.writeFragment(sheetID, &res.Fragments[i]); err != nil {
			return err
		}
	}

	for i, b := range res.NTerm.Buckets {
		var linked *layout.RowRange
		if rr, ok := res.Linkage[b.RowStart]; ok {
			linked = &rr
		}
		var summaryRow interface{}
		if i < len(res.Summary.Rows) {
			summaryRow = res.Summary.Rows[i]
		}
		if err := w.writeGroup(sheetID, PanelNTerminal, &b, linked, summaryRow); err != nil {
			return err
		}
	}
	for _, b := range res.CTerm.Buckets {
		if err := w.writeGroup(sheetID, PanelCTerminal, &b, nil, nil); err != nil {
			return err
		}
	}

	for _, pos := range res.Matrix.Positions() {
		_, err := w.positionStmt.Exec(
			sheetID,
			pos,
			res.Matrix.Labels[pos],
			encodeFloat64(res.Matrix.Data.RawRowView(pos)),
		)
		if err != nil {
			return fmt.Errorf("failed to insert position %d: %w", pos, err)
		}
	}

	w.sheetID++
	return nil
}

// writeFragment writes a single fragment row
func (w *Writer) writeFragment(sheetID int, f *core.Fragment) error {
	// Unaligned fragments have no positions
	var start, end interface{}
	if f.Aligned() {
		start, end = f.Start, f.End
	}

	// Unknown residues leave the mass undefined
	var mass interface{}
	if m, ok := core.NeutralMass(f.Clean); ok {
		mass = core.RoundFloat(m, 6)
	}

	_, err := w.fragmentStmt.Exec(
		w.fragmentID,                 // FragmentId
		sheetID,                      // SheetId
		f.Index,                      // Number
		f.Row,                        // SourceRow
		f.Original,                   // Annotated
		f.Clean,                      // Sequence
		f.LeftResidue(),              // LeftResidue
		f.RightResidue(),             // RightResidue
		start,                        // StartPos
		end,                          // EndPos
		mass,                         // NeutralMass
		f.TotalIntensity(),           // TotalIntensity
		encodeFloat64(f.Intensities), // blobIntensity
	)
	if err != nil {
		return fmt.Errorf("failed to insert fragment %s: %w", f.Name(), err)
	}

	w.fragmentID++
	return nil
}

// writeGroup writes a single bucket row
func (w *Writer) writeGroup(sheetID int, panel string, b *layout.Bucket, linked *layout.RowRange, summaryRow interface{}) error {
	var linkMin, linkMax interface{}
	if linked != nil {
		linkMin, linkMax = linked.Min, linked.Max
	}

	_, err := w.groupStmt.Exec(
		w.groupID,   // GroupId
		sheetID,     // SheetId
		panel,       // Panel
		b.Key(),     // GroupKey
		b.RowStart,  // RowStart
		b.RowEnd,    // RowEnd
		len(b.Rows), // MemberCount
		linkMin,     // LinkedRowMin
		linkMax,     // LinkedRowMax
		summaryRow,  // SummaryRow
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s-terminal group %s: %w", panel, b.Key(), err)
	}

	w.groupID++
	return nil
}

// encodeFloat64 encodes values as a little-endian float64 blob
func encodeFloat64(values []float64) []byte {
	buf := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

// DecodeFloat64 decodes a little-endian float64 blob
func DecodeFloat64(buf []byte) []float64 {
	values := make([]float64, len(buf)/8)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return values
}

// Finalize writes the header table and closes the database. Calling it more
// than once is a no-op.
func (w *Writer) Finalize(samples int, description string) error {
	if w.finalized {
		return nil
	}
	w.finalized = true

	// Write HeaderTable
	_, err := w.db.Exec(`
		INSERT INTO HeaderTable (version, CreationDate, SampleCount, Description)
		VALUES (?, ?, ?, ?)
	`, schemaVersion, time.Now().Format(headerDateFormat), samples, description)
	if err != nil {
		w.closeAll()
		return fmt.Errorf("failed to insert header: %w", err)
	}

	return w.closeAll()
}

// Close closes the database without writing a header if Finalize was not called
func (w *Writer) Close() error {
	if w.finalized {
		return nil
	}
	w.finalized = true
	return w.closeAll()
}

func (w *Writer) closeAll() error {
	// Close prepared statements
	for _, stmt := range []*sql.Stmt{w.sheetStmt, w.fragmentStmt, w.groupStmt, w.positionStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}

	// Close database
	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}
