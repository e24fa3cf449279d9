// Package extract splits the wide gas columns of each category row into
// per-gas GasRecords. Status classification runs before numeric parsing so
// markers like "NO" never coerce to zero.
package extract

import (
	"fmt"
	"log"
	"strings"

	"ghgpipe/domain/grid"
	"ghgpipe/domain/inventory"
	"ghgpipe/internal/hierarchy"
	"ghgpipe/internal/vocab"
)

// UnitKtCO2e is the normalized unit emitted when a CO2-equivalence factor
// was applied or the source column was already reported in equivalents.
const UnitKtCO2e = "kt CO2e"

// Result is the extracted record set plus non-fatal row warnings.
type Result struct {
	Records  []inventory.GasRecord
	Warnings []string
}

// Extractor turns classified rows into GasRecords using an injected
// vocabulary for status tokens and unit conversion.
type Extractor struct {
	vocab *vocab.Vocabulary
}

// New creates an extractor.
func New(v *vocab.Vocabulary) *Extractor {
	return &Extractor{vocab: v}
}

// Extract walks every data-band row that resolved to a category node and
// emits one record per gas column.
func (e *Extractor) Extract(g *grid.RawGrid, band *grid.HeaderBand, h *hierarchy.Result, country string, year int) *Result {
	res := &Result{}
	gasCols := band.GasColumns()

	for r := band.DataRows.Start; r < band.DataRows.End; r++ {
		nodeID, ok := h.RowNodes[r]
		if !ok {
			continue
		}
		var path []string
		memo := false
		if nodeID != "" {
			node, found := h.Tree.Node(nodeID)
			if !found {
				continue
			}
			path = node.Path
			memo = node.Memo
		}
		label := h.RowLabels[r]

		for _, col := range gasCols {
			rec, ok := e.extractCell(g.Cell(r, col.Index), col, res, r)
			if !ok {
				continue
			}
			rec.Country = country
			rec.Year = year
			rec.CategoryPath = append([]string{}, path...)
			rec.Label = label
			rec.Memo = memo
			res.Records = append(res.Records, rec)
		}
	}
	return res
}

// extractCell classifies one cell. The bool result is false when the cell
// was unparseable and skipped with a warning.
func (e *Extractor) extractCell(cell string, col grid.ColumnLabel, res *Result, row int) (inventory.GasRecord, bool) {
	rec := inventory.GasRecord{Gas: inventory.Gas(col.Gas)}

	if status, ok := e.vocab.MatchStatus(cell); ok && status != inventory.StatusNumeric {
		// A recognized marker or a blank: typed missing data, value
		// stays absent.
		rec.Status = status
		return rec, true
	}

	value, ok := parseNumber(cell)
	if !ok {
		res.warnf("row %d, column %d (%s): unparseable value %q skipped", row, col.Index, col.Gas, cell)
		return rec, false
	}

	rec.Status = inventory.StatusNumeric
	rec.Value, rec.Unit = e.normalize(value, col)
	return rec, true
}

// normalize converts a parsed value into the target unit system: kt CO2
// equivalent when the source column carried a recognized mass unit and the
// vocabulary has a warming potential for the gas; otherwise the value stays
// in its native unit, never silently assumed.
func (e *Extractor) normalize(value float64, col grid.ColumnLabel) (float64, string) {
	if col.Unit == "" {
		return value, ""
	}
	if strings.Contains(vocab.NormalizeToken(col.Unit), "CO2 EQ") {
		factor := e.vocab.UnitFactors[col.Unit]
		if factor == 0 {
			factor = 1
		}
		return value * factor, UnitKtCO2e
	}

	factor, ok := e.vocab.UnitFactors[col.Unit]
	if !ok {
		return value, col.Unit
	}
	kt := value * factor
	if gwp, ok := e.vocab.GWP[inventory.Gas(col.Gas)]; ok {
		return kt * gwp, UnitKtCO2e
	}
	return kt, "kt"
}

func (r *Result) warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r.Warnings = append(r.Warnings, msg)
	log.Printf("[GasExtractor] %s", msg)
}
