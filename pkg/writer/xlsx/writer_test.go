package xlsx

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/ChrisMcGann/cleavemap/pkg/analysis"
	"github.com/ChrisMcGann/cleavemap/pkg/core"
)

func testResult(t *testing.T) *analysis.Result {
	t.Helper()
	grid := core.SliceGrid{
		{},
		{},
		{},
		{"", "ABCDEFGHIJ"},
		{"11", "(A)BC", "1", "2"},
		{"12", "(A)BCD", "3", "4"},
		{"13", "(C)DE(F)", "5", "0"},
	}
	ws, err := core.ParseWorksheet("raw", grid, core.DefaultInputLayout(2))
	if err != nil {
		t.Fatal(err)
	}
	res, err := analysis.Analyze(ws, analysis.Options{Samples: 2, FirstRow: analysis.DefaultFirstRow})
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestWriteResult(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	w := NewWriter(f)
	if err := w.WriteResult("raw PROCESSED", testResult(t), []string{"Fxn2", "Fxn3"}); err != nil {
		t.Fatalf("WriteResult() error = %v", err)
	}

	// Two samples: intensities C:D, cleavage G, sums H:K, right panel M:P
	values := map[string]string{
		"A1": "#", "B1": "Sequence", "C1": "Fxn2", "D1": "Fxn3",
		"G1": "left", "H1": "left sum", "I1": "right sum", "J1": "sum", "K1": "percentage",
		"M1": "#", "N1": "Sequence", "O1": "Fxn2", "P1": "Fxn3",
		// A bucket: rows 3-4, C bucket: row 6
		"A3": "11", "B3": "ABC", "C3": "1", "D3": "2", "G3": "A",
		"B4": "ABCD", "G4": "A",
		"B6": "CDEF", "G6": "C",
		// Right panel: ABCD and CDEF (len 4) then ABC
		"N3": "ABCD", "N4": "CDEF", "N5": "ABC", "O5": "1",
		"K8": "100",
	}
	for ref, want := range values {
		got, err := f.GetCellValue("raw PROCESSED", ref)
		if err != nil {
			t.Fatalf("GetCellValue(%s) error = %v", ref, err)
		}
		if got != want {
			t.Errorf("%s = %q, want %q", ref, got, want)
		}
	}

	formulas := map[string]string{
		"H5": "SUM(C3:D4)",
		"I5": "SUM(O3:P5)",
		"J5": "H5+I5",
		"K5": "(J5/$J$8)*100",
		"H7": "SUM(C6:D6)",
		"I7": "SUM(O4:P4)",
		"H8": "SUM(H5:H7)",
	}
	for ref, want := range formulas {
		got, err := f.GetCellFormula("raw PROCESSED", ref)
		if err != nil {
			t.Fatalf("GetCellFormula(%s) error = %v", ref, err)
		}
		if got != want {
			t.Errorf("%s formula = %q, want %q", ref, got, want)
		}
	}
}

func TestWriteResultClearsExistingSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	if _, err := f.NewSheet("out"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellValue("out", "Z99", "stale"); err != nil {
		t.Fatal(err)
	}

	w := NewWriter(f)
	if err := w.WriteResult("out", testResult(t), nil); err != nil {
		t.Fatalf("WriteResult() error = %v", err)
	}

	if got, _ := f.GetCellValue("out", "Z99"); got != "" {
		t.Errorf("stale cell survived: %q", got)
	}
	if got, _ := f.GetCellValue("out", "C1"); got != "Sample_1" {
		t.Errorf("default label = %q, want Sample_1", got)
	}

	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := w.SaveAs(path); err != nil {
		t.Fatalf("SaveAs() error = %v", err)
	}
}

func TestWriteResultClearsOnlySheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", "out"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellValue("out", "Z99", "stale"); err != nil {
		t.Fatal(err)
	}

	w := NewWriter(f)
	if err := w.WriteResult("out", testResult(t), nil); err != nil {
		t.Fatalf("WriteResult() error = %v", err)
	}

	if got := f.GetSheetList(); len(got) != 1 || got[0] != "out" {
		t.Errorf("sheets = %v, want [out]", got)
	}
	if got, _ := f.GetCellValue("out", "Z99"); got != "" {
		t.Errorf("stale cell survived: %q", got)
	}
	if got, _ := f.GetCellValue("out", "B3"); got != "ABC" {
		t.Errorf("B3 = %q, want ABC", got)
	}
}

func TestWriteResultLabelMismatch(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	if err := NewWriter(f).WriteResult("out", testResult(t), []string{"only one"}); err == nil {
		t.Error("expected error for label count mismatch")
	}
}
