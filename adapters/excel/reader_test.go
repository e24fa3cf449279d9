package excel

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeTestWorkbook(t *testing.T, path string, sheets map[string][][]string) {
	t.Helper()
	f := excelize.NewFile()
	first := true
	for name, rows := range sheets {
		if first {
			f.SetSheetName("Sheet1", name)
			first = false
		} else {
			if _, err := f.NewSheet(name); err != nil {
				t.Fatalf("NewSheet(%s): %v", name, err)
			}
		}
		for r, row := range rows {
			for c, cell := range row {
				ref, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					t.Fatalf("cell ref: %v", err)
				}
				if err := f.SetCellValue(name, ref, cell); err != nil {
					t.Fatalf("SetCellValue: %v", err)
				}
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs(%s): %v", path, err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "absent.xlsx")); err == nil {
		t.Fatal("expected an error for a missing workbook")
	}
}

func TestSummarySheetsAndGrid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "GBR-CRT-2025-V0.6-1990-20250415-091720.xlsx")
	writeTestWorkbook(t, path, map[string][][]string{
		"Summary2": {
			{"GREENHOUSE GAS SOURCE AND SINK CATEGORIES", "CO2"},
			{"1. Energy", "100"},
		},
	})

	wb, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer wb.Close()

	sheets := wb.SummarySheets("Summary")
	if len(sheets) != 1 || sheets[0] != "Summary2" {
		t.Fatalf("SummarySheets() = %v, want [Summary2]", sheets)
	}

	g, err := wb.Grid("Summary2")
	if err != nil {
		t.Fatalf("Grid() error: %v", err)
	}
	if g.RowCount() != 2 {
		t.Fatalf("RowCount() = %d, want 2", g.RowCount())
	}
	if got := g.Cell(1, 0); got != "1. Energy" {
		t.Errorf("Cell(1,0) = %q", got)
	}
	if got := g.Cell(0, 1); got != "CO2" {
		t.Errorf("Cell(0,1) = %q", got)
	}
}

func TestSummarySheetsPrefixFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "GBR-CRT-2025-V0.6-1990-20250415-091720.xlsx")
	writeTestWorkbook(t, path, map[string][][]string{
		"Cover": {{"cover page"}},
	})

	wb, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer wb.Close()

	if sheets := wb.SummarySheets("Summary"); len(sheets) != 0 {
		t.Errorf("SummarySheets() = %v, want none", sheets)
	}
}
