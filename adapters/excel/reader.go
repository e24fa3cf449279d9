// Package excel adapts xlsx workbooks into the domain's RawGrid model.
package excel

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"ghgpipe/domain/grid"
)

// Workbook wraps one open inventory workbook.
type Workbook struct {
	filePath string
	file     *excelize.File
}

// Open opens an inventory workbook for reading.
func Open(filePath string) (*Workbook, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("workbook not found: %s", filePath)
	}

	startTime := time.Now()
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", filePath, err)
	}
	log.Printf("[WorkbookReader] %s opened in %.2fms", filePath, float64(time.Since(startTime).Nanoseconds())/1e6)

	return &Workbook{filePath: filePath, file: f}, nil
}

// Close releases the underlying file.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// SummarySheets returns the workbook's recognized reporting sheets: every
// sheet whose name starts with the given prefix ("Summary" matches
// "Summary2", "Summary1.As1", ...). Order follows the workbook.
func (w *Workbook) SummarySheets(prefix string) []string {
	var out []string
	for _, name := range w.file.GetSheetList() {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	return out
}

// Grid reads one sheet into an immutable RawGrid. Cell values keep their
// leading whitespace, which later encodes hierarchy depth.
func (w *Workbook) Grid(sheet string) (*grid.RawGrid, error) {
	readStart := time.Now()
	rows, err := w.file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	log.Printf("[WorkbookReader] sheet %s read in %.2fms (%d rows)",
		sheet, float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	return &grid.RawGrid{Sheet: sheet, Cells: rows}, nil
}
