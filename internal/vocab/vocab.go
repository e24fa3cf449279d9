// Package vocab carries the fixed vocabularies the classifier and extractor
// match against: gas synonyms, unit tokens with conversion factors, global
// warming potentials and non-numeric status tokens. Vocabularies are built
// once and injected; nothing in this package is module-level mutable state,
// so tests can substitute their own.
package vocab

import (
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"ghgpipe/domain/inventory"
	"ghgpipe/internal/errors"
)

// Vocabulary is the immutable matching configuration for one pipeline run.
type Vocabulary struct {
	// GasSynonyms maps a normalized header token to the gas it names.
	// Longer (more specific) synonyms win over shorter ones.
	GasSynonyms map[string]inventory.Gas `yaml:"gas_synonyms"`

	// UnitFactors maps a normalized unit token to its factor into kt.
	// Gg and kt are the same quantity, so both map to 1.
	UnitFactors map[string]float64 `yaml:"unit_factors"`

	// GWP maps a gas to its CO2-equivalence factor. Gases absent from the
	// map stay in their native unit.
	GWP map[inventory.Gas]float64 `yaml:"gwp"`

	// StatusTokens maps an uppercase cell token to its typed status.
	StatusTokens map[string]inventory.Status `yaml:"status_tokens"`

	// CategoryAnchors are header tokens that identify the category-label
	// column ("GREENHOUSE GAS SOURCE AND SINK CATEGORIES" in CRT sheets).
	CategoryAnchors []string `yaml:"category_anchors"`

	// MemoPrefixes mark category labels that are memo items, reported
	// outside the sector totals.
	MemoPrefixes []string `yaml:"memo_prefixes"`
}

// Default returns the vocabulary for standard UNFCCC CRT summary sheets.
func Default() *Vocabulary {
	return &Vocabulary{
		GasSynonyms: map[string]inventory.Gas{
			"CO2":                        inventory.GasCO2,
			"NET CO2":                    inventory.GasCO2,
			"NET CO2 EMISSIONS/REMOVALS": inventory.GasCO2,
			"CH4":                        inventory.GasCH4,
			"N2O":                        inventory.GasN2O,
			"SF6":                        inventory.GasSF6,
			"HFCS":                       inventory.GasHFCs,
			"HFC":                        inventory.GasHFCs,
			"PFCS":                       inventory.GasPFCs,
			"PFC":                        inventory.GasPFCs,
			"NF3":                        inventory.GasNF3,
			"TOTAL":                      inventory.GasTotalGHG,
			"TOTAL GHG":                  inventory.GasTotalGHG,
			"TOTAL CO2 EQUIVALENT":       inventory.GasTotalGHG,
		},
		UnitFactors: map[string]float64{
			"kt":        1,
			"Gg":        1,
			"t":         0.001,
			"Mt":        1000,
			"kt CO2 eq": 1,
			"Mt CO2 eq": 1000,
		},
		// AR5 100-year values. HFCs/PFCs are reported in CO2 eq already
		// and deliberately have no entry.
		GWP: map[inventory.Gas]float64{
			inventory.GasCO2: 1,
			inventory.GasCH4: 28,
			inventory.GasN2O: 265,
			inventory.GasSF6: 23500,
			inventory.GasNF3: 16100,
		},
		StatusTokens: map[string]inventory.Status{
			"NO":    inventory.StatusNotOccurring,
			"NE":    inventory.StatusNotEstimated,
			"NA":    inventory.StatusNotApplicable,
			"IE":    inventory.StatusIncludedElsewhere,
			"C":     inventory.StatusConfidential,
			"N/A":   inventory.StatusNotApplicable,
			"NO,NE": inventory.StatusNotOccurring,
		},
		CategoryAnchors: []string{
			"GREENHOUSE GAS SOURCE AND SINK CATEGORIES",
			"SOURCE AND SINK CATEGORIES",
			"SINK CATEGORIES",
		},
		MemoPrefixes: []string{
			"Memo items:",
			"1.D.",
			"5.F.",
			"Indirect N2O",
			"Indirect CO2",
			"International bunkers",
			"Multilateral operations",
		},
	}
}

// Load reads a vocabulary from a YAML file, starting from the defaults and
// overlaying any keys the file provides.
func Load(path string) (*Vocabulary, error) {
	v := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read vocabulary file %s", path)
	}
	var overlay Vocabulary
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrapf(err, "invalid vocabulary file %s", path))
	}
	if len(overlay.GasSynonyms) > 0 {
		v.GasSynonyms = overlay.GasSynonyms
	}
	if len(overlay.UnitFactors) > 0 {
		v.UnitFactors = overlay.UnitFactors
	}
	if len(overlay.GWP) > 0 {
		v.GWP = overlay.GWP
	}
	if len(overlay.StatusTokens) > 0 {
		v.StatusTokens = overlay.StatusTokens
	}
	if len(overlay.CategoryAnchors) > 0 {
		v.CategoryAnchors = overlay.CategoryAnchors
	}
	if len(overlay.MemoPrefixes) > 0 {
		v.MemoPrefixes = overlay.MemoPrefixes
	}
	return v, nil
}

// NormalizeToken uppercases a header fragment and collapses whitespace and
// subscript digits so "CH₄ (kt)" and "ch4" compare equal.
func NormalizeToken(s string) string {
	replacer := strings.NewReplacer(
		"₀", "0", "₁", "1", "₂", "2", "₃", "3",
		"₄", "4", "₅", "5", "₆", "6", "₇", "7",
		"₈", "8", "₉", "9",
	)
	s = replacer.Replace(s)
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), " ")
}

// MatchGas resolves a flattened header label to a gas. When several synonyms
// match, the longest one wins; ambiguity at equal length reports ok=false
// with ambiguous=true so the caller can degrade the column instead of
// guessing.
func (v *Vocabulary) MatchGas(label string) (gas inventory.Gas, ok bool, ambiguous bool) {
	norm := NormalizeToken(label)
	if norm == "" {
		return "", false, false
	}

	type hit struct {
		syn string
		gas inventory.Gas
	}
	var hits []hit
	for syn, g := range v.GasSynonyms {
		if sn := NormalizeToken(syn); sn != "" && containsToken(norm, sn) {
			hits = append(hits, hit{sn, g})
		}
	}
	if len(hits) == 0 {
		return "", false, false
	}
	sort.Slice(hits, func(i, j int) bool {
		if len(hits[i].syn) != len(hits[j].syn) {
			return len(hits[i].syn) > len(hits[j].syn)
		}
		return hits[i].syn < hits[j].syn
	})
	best := hits[0]
	for _, h := range hits[1:] {
		if len(h.syn) == len(best.syn) && h.gas != best.gas {
			return "", false, true
		}
	}
	return best.gas, true, false
}

// MatchUnit finds the first recognized unit token in a header label and
// returns it with its kt conversion factor.
func (v *Vocabulary) MatchUnit(label string) (unit string, factor float64, ok bool) {
	norm := NormalizeToken(label)
	best := ""
	for u := range v.UnitFactors {
		un := NormalizeToken(u)
		if containsToken(norm, un) && len(un) > len(NormalizeToken(best)) {
			best = u
		}
	}
	if best == "" {
		return "", 0, false
	}
	return best, v.UnitFactors[best], true
}

// MatchStatus classifies a cell token as a typed status. Combined markers
// like "NO,NE" classify by their first recognized token.
func (v *Vocabulary) MatchStatus(cell string) (inventory.Status, bool) {
	tok := strings.ToUpper(strings.TrimSpace(cell))
	if tok == "" {
		return inventory.StatusMissing, true
	}
	if s, ok := v.StatusTokens[tok]; ok {
		return s, true
	}
	if strings.ContainsAny(tok, ", ") {
		for _, part := range strings.FieldsFunc(tok, func(r rune) bool { return r == ',' || r == ' ' }) {
			if s, ok := v.StatusTokens[part]; ok {
				return s, true
			}
		}
	}
	return "", false
}

// IsCategoryAnchor reports whether a header label names the category column.
func (v *Vocabulary) IsCategoryAnchor(label string) bool {
	norm := NormalizeToken(label)
	for _, a := range v.CategoryAnchors {
		if strings.Contains(norm, NormalizeToken(a)) {
			return true
		}
	}
	return false
}

// IsMemoLabel reports whether a category label is a memo item.
func (v *Vocabulary) IsMemoLabel(label string) bool {
	trimmed := strings.TrimSpace(label)
	for _, p := range v.MemoPrefixes {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}

// containsToken reports whether token appears in norm on word boundaries, so
// "CO" does not match inside "CO2".
func containsToken(norm, token string) bool {
	idx := 0
	for {
		i := strings.Index(norm[idx:], token)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(token)
		beforeOK := start == 0 || !isWordChar(norm[start-1])
		afterOK := end == len(norm) || !isWordChar(norm[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
		if idx >= len(norm) {
			return false
		}
	}
}

func isWordChar(b byte) bool {
	return b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
