// Package inventory defines the normalized emission-inventory model: gases,
// status codes, category trees and the long-format GasRecord that every
// downstream view is built from.
package inventory

import "strings"

// Gas identifies one reported greenhouse gas species.
type Gas string

const (
	GasCO2      Gas = "CO2"
	GasCH4      Gas = "CH4"
	GasN2O      Gas = "N2O"
	GasSF6      Gas = "SF6"
	GasHFCs     Gas = "HFCs"
	GasPFCs     Gas = "PFCs"
	GasNF3      Gas = "NF3"
	GasTotalGHG Gas = "Total GHG"
)

// AllGases lists every recognized gas in canonical order.
func AllGases() []Gas {
	return []Gas{GasCO2, GasCH4, GasN2O, GasSF6, GasHFCs, GasPFCs, GasNF3, GasTotalGHG}
}

// Slug returns the lowercase directory-safe name for the gas ("co2",
// "total_ghg", ...). Used for per-gas output paths.
func (g Gas) Slug() string {
	s := strings.ToLower(string(g))
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

// Status classifies the content of one inventory cell. Numeric cells carry a
// value; every other status substitutes a typed marker for it.
type Status string

const (
	StatusNumeric           Status = "numeric"
	StatusNotEstimated      Status = "not_estimated"
	StatusNotOccurring      Status = "not_occurring"
	StatusNotApplicable     Status = "not_applicable"
	StatusIncludedElsewhere Status = "included_elsewhere"
	StatusConfidential      Status = "confidential"
	StatusMissing           Status = "missing"
)

// HasValue reports whether records with this status carry a numeric value.
func (s Status) HasValue() bool { return s == StatusNumeric }

// GasRecord is the atomic output fact: one gas, one category row, one year,
// one country. Immutable once produced.
type GasRecord struct {
	Country      string   `json:"country"`
	Year         int      `json:"year"`
	CategoryPath []string `json:"category_path"`
	Label        string   `json:"label"`
	Gas          Gas      `json:"gas"`
	Value        float64  `json:"value"`
	Unit         string   `json:"unit"`
	Status       Status   `json:"status"`
	Memo         bool     `json:"memo"`
}

// PathKey renders the category path as a dotted code ("1.A.2"). The synthetic
// root contributes nothing, so a top-level sector renders as "1".
func (r GasRecord) PathKey() string {
	return strings.Join(r.CategoryPath, ".")
}

// Depth returns the hierarchy depth of the record's category (root = 0).
func (r GasRecord) Depth() int { return len(r.CategoryPath) }

// Level partitions records for output by hierarchy depth.
type Level string

const (
	LevelTotal         Level = "total"
	LevelSectors       Level = "sectors"
	LevelSubsectors    Level = "subsectors"
	LevelSubSubsectors Level = "sub_subsectors"
	LevelMemoItems     Level = "memo_items"
)

// AllLevels lists the output partitions in directory order.
func AllLevels() []Level {
	return []Level{LevelTotal, LevelSectors, LevelSubsectors, LevelSubSubsectors, LevelMemoItems}
}

// LevelOf maps a record onto its output partition. Memo rows always land in
// memo_items regardless of depth; depths past sub-subsector stay in the
// sub_subsectors partition so no record is ever dropped.
func LevelOf(r GasRecord) Level {
	if r.Memo {
		return LevelMemoItems
	}
	switch r.Depth() {
	case 0:
		return LevelTotal
	case 1:
		return LevelSectors
	case 2:
		return LevelSubsectors
	default:
		return LevelSubSubsectors
	}
}
