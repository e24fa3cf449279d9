package header

import (
	"strconv"
	"strings"

	"ghgpipe/internal/vocab"
)

// Signal is one named scoring heuristic over a candidate header row. Scores
// are in [0, 1]; the detector combines them with the signal weights. Keeping
// signals as data lets each one be tested and tuned independently.
type Signal struct {
	Name   string
	Weight float64
	Score  func(row []string, v *vocab.Vocabulary) float64
}

// DefaultSignals returns the standard signal set for CRT summary sheets.
func DefaultSignals() []Signal {
	return []Signal{
		{Name: "non_blank_density", Weight: 0.2, Score: scoreDensity},
		{Name: "gas_tokens", Weight: 0.4, Score: scoreGasTokens},
		{Name: "unit_tokens", Weight: 0.2, Score: scoreUnitTokens},
		{Name: "category_anchor", Weight: 0.3, Score: scoreCategoryAnchor},
		{Name: "free_text_penalty", Weight: -0.3, Score: scoreFreeText},
		{Name: "numeric_penalty", Weight: -0.4, Score: scoreNumeric},
	}
}

// scoreDensity is the fraction of cells in the row that are non-blank.
func scoreDensity(row []string, _ *vocab.Vocabulary) float64 {
	if len(row) == 0 {
		return 0
	}
	filled := 0
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			filled++
		}
	}
	return float64(filled) / float64(len(row))
}

// scoreGasTokens is the fraction of non-blank cells naming a recognized gas.
func scoreGasTokens(row []string, v *vocab.Vocabulary) float64 {
	filled, hits := 0, 0
	for _, c := range row {
		if strings.TrimSpace(c) == "" {
			continue
		}
		filled++
		if _, ok, _ := v.MatchGas(c); ok {
			hits++
		}
	}
	if filled == 0 {
		return 0
	}
	return float64(hits) / float64(filled)
}

// scoreUnitTokens is the fraction of non-blank cells carrying a unit token.
func scoreUnitTokens(row []string, v *vocab.Vocabulary) float64 {
	filled, hits := 0, 0
	for _, c := range row {
		if strings.TrimSpace(c) == "" {
			continue
		}
		filled++
		if _, _, ok := v.MatchUnit(c); ok {
			hits++
		}
	}
	if filled == 0 {
		return 0
	}
	return float64(hits) / float64(filled)
}

// scoreCategoryAnchor fires when any cell carries the category-column anchor
// text, the strongest single indicator of a CRT header row.
func scoreCategoryAnchor(row []string, v *vocab.Vocabulary) float64 {
	for _, c := range row {
		if v.IsCategoryAnchor(c) {
			return 1
		}
	}
	return 0
}

// scoreFreeText flags title-like rows: very few cells, one of them a long
// free-text run. Weighted negatively by the default set.
func scoreFreeText(row []string, _ *vocab.Vocabulary) float64 {
	filled := 0
	longest := 0
	for _, c := range row {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		filled++
		if len(c) > longest {
			longest = len(c)
		}
	}
	if filled == 0 || filled > 2 {
		return 0
	}
	if longest > 60 || (longest > 40 && strings.Count(row[0], " ") > 5) {
		return 1
	}
	return 0
}

// scoreNumeric is the fraction of non-blank cells that parse as numbers;
// data rows score high here, header rows near zero.
func scoreNumeric(row []string, _ *vocab.Vocabulary) float64 {
	filled, numeric := 0, 0
	for _, c := range row {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		filled++
		if _, err := strconv.ParseFloat(strings.ReplaceAll(c, ",", ""), 64); err == nil {
			numeric++
		}
	}
	if filled == 0 {
		return 0
	}
	return float64(numeric) / float64(filled)
}
