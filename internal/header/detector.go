// Package header locates the header band of the embedded data table inside a
// raw worksheet grid. Detection is heuristic: a ranked set of weighted signal
// functions scores every candidate row, and the best contiguous run of
// header-like rows below the configured minimum index wins.
package header

import (
	"log"
	"strings"

	"github.com/montanaflynn/stats"

	"ghgpipe/domain/grid"
	"ghgpipe/internal/config"
	"ghgpipe/internal/errors"
	"ghgpipe/internal/vocab"
)

// headerScoreThreshold is the combined signal score a row must reach to be
// considered part of the header band.
const headerScoreThreshold = 0.3

// Detector scans RawGrids for header bands.
type Detector struct {
	vocab   *vocab.Vocabulary
	cfg     config.DetectorConfig
	signals []Signal
}

// New creates a detector. Passing no signals installs DefaultSignals.
func New(v *vocab.Vocabulary, cfg config.DetectorConfig, signals ...Signal) *Detector {
	if len(signals) == 0 {
		signals = DefaultSignals()
	}
	return &Detector{vocab: v, cfg: cfg, signals: signals}
}

// ScoreRow combines all signals for one row. Exported for signal tuning
// tests.
func (d *Detector) ScoreRow(row []string) float64 {
	total := 0.0
	for _, s := range d.signals {
		total += s.Weight * s.Score(row, d.vocab)
	}
	return total
}

// Detect locates the header band and the data band that follows it.
func (d *Detector) Detect(g *grid.RawGrid) (*grid.HeaderBand, error) {
	limit := d.cfg.Lookahead
	if limit <= 0 || limit > g.RowCount() {
		limit = g.RowCount()
	}

	scores := make([]float64, limit)
	densities := make([]float64, 0, g.RowCount())
	for i := 0; i < limit; i++ {
		scores[i] = d.ScoreRow(g.Row(i))
	}
	for i := 0; i < g.RowCount(); i++ {
		densities = append(densities, scoreDensity(g.Row(i), d.vocab))
	}
	meanDensity, err := stats.Mean(densities)
	if err != nil {
		meanDensity = 0
	}

	run, ok := d.bestRun(scores)
	if !ok {
		return nil, errors.HeaderNotFound(g.Sheet)
	}
	if run.Len() > d.cfg.MaxHeaderRows {
		return nil, errors.HeaderAmbiguous(g.Sheet, run.Len())
	}
	if !d.runHasGasToken(g, run) {
		return nil, errors.HeaderNotFound(g.Sheet)
	}

	columns := d.flattenColumns(g, run)
	dataStart := run.End

	// CRT sheets often put the unit row ("(kt)") as the first row under
	// the header. Fold it into the column labels instead of treating it
	// as data.
	if d.isUnitRow(g.Row(dataStart)) {
		for i := range columns {
			if cell := g.Cell(dataStart, columns[i].Index); cell != "" {
				columns[i].RawLabel = strings.TrimSpace(columns[i].RawLabel + " " + cell)
			}
		}
		dataStart++
	}

	dataEnd := d.findDataEnd(g, dataStart, meanDensity)
	if dataEnd <= dataStart {
		log.Printf("[HeaderDetector] sheet %s: header at rows %d-%d but no data band follows", g.Sheet, run.Start, run.End)
		return nil, errors.HeaderNotFound(g.Sheet)
	}

	log.Printf("[HeaderDetector] sheet %s: header rows [%d,%d), data rows [%d,%d), %d columns",
		g.Sheet, run.Start, run.End, dataStart, dataEnd, len(columns))

	return &grid.HeaderBand{
		HeaderRows: grid.RowRange{Start: run.Start, End: run.End},
		DataRows:   grid.RowRange{Start: dataStart, End: dataEnd},
		Columns:    columns,
	}, nil
}

// bestRun finds the highest-scoring maximal run of contiguous header-like
// rows starting at or after MinHeaderRow.
func (d *Detector) bestRun(scores []float64) (grid.RowRange, bool) {
	best := grid.RowRange{}
	bestScore := 0.0
	found := false

	i := d.cfg.MinHeaderRow
	if i < 0 {
		i = 0
	}
	for i < len(scores) {
		if scores[i] < headerScoreThreshold {
			i++
			continue
		}
		j := i
		total := 0.0
		for j < len(scores) && scores[j] >= headerScoreThreshold {
			total += scores[j]
			j++
		}
		if !found || total > bestScore {
			best = grid.RowRange{Start: i, End: j}
			bestScore = total
			found = true
		}
		i = j
	}
	return best, found
}

func (d *Detector) runHasGasToken(g *grid.RawGrid, run grid.RowRange) bool {
	for r := run.Start; r < run.End; r++ {
		for _, cell := range g.Row(r) {
			if _, ok, _ := d.vocab.MatchGas(cell); ok {
				return true
			}
		}
	}
	return false
}

// flattenColumns merges a (possibly multi-row) header band top-down into one
// label per column. Lower rows refine upper ones; blank cells inherit the
// nearest non-blank cell above in the same column, which also absorbs
// merged-cell expansion duplicates.
func (d *Detector) flattenColumns(g *grid.RawGrid, run grid.RowRange) []grid.ColumnLabel {
	width := g.Width()
	columns := make([]grid.ColumnLabel, 0, width)
	for col := 0; col < width; col++ {
		var parts []string
		for r := run.Start; r < run.End; r++ {
			cell := g.Cell(r, col)
			if cell == "" {
				continue
			}
			if len(parts) > 0 && parts[len(parts)-1] == cell {
				continue
			}
			parts = append(parts, cell)
		}
		columns = append(columns, grid.ColumnLabel{
			Index:    col,
			RawLabel: strings.Join(parts, " "),
		})
	}
	return columns
}

// isUnitRow reports whether every non-blank cell of the row is a unit
// annotation like "(kt)".
func (d *Detector) isUnitRow(row []string) bool {
	filled := 0
	for _, c := range row {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		filled++
		if _, _, ok := d.vocab.MatchUnit(c); ok {
			continue
		}
		if strings.HasPrefix(c, "(") && strings.HasSuffix(c, ")") && len(c) < 20 {
			continue
		}
		return false
	}
	return filled > 0
}

// findDataEnd scans forward from start until a terminator: a blank row, a
// row far sparser than the sheet's mean density whose first cell looks like
// a trailing note, or the end of the grid.
func (d *Detector) findDataEnd(g *grid.RawGrid, start int, meanDensity float64) int {
	end := start
	for r := start; r < g.RowCount(); r++ {
		row := g.Row(r)
		density := scoreDensity(row, d.vocab)
		if density == 0 {
			break
		}
		first := firstNonBlank(row)
		if density < meanDensity*0.25 && looksLikeNote(first) {
			break
		}
		end = r + 1
	}
	return end
}

func firstNonBlank(row []string) string {
	for _, c := range row {
		if s := strings.TrimSpace(c); s != "" {
			return s
		}
	}
	return ""
}

func looksLikeNote(cell string) bool {
	lower := strings.ToLower(cell)
	return strings.HasPrefix(lower, "note") ||
		strings.HasPrefix(lower, "(") ||
		strings.HasPrefix(lower, "*")
}
