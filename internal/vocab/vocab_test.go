package vocab

import (
	"os"
	"path/filepath"
	"testing"

	"ghgpipe/domain/inventory"
)

func TestNormalizeToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  CH₄   (kt) ", "CH4 (KT)"},
		{"co2", "CO2"},
		{"N₂O", "N2O"},
		{"", ""},
		{"Net CO2  emissions/removals", "NET CO2 EMISSIONS/REMOVALS"},
	}
	for _, tt := range tests {
		if got := NormalizeToken(tt.in); got != tt.want {
			t.Errorf("NormalizeToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMatchGas(t *testing.T) {
	v := Default()
	tests := []struct {
		label  string
		want   inventory.Gas
		wantOK bool
	}{
		{"CO2 (kt)", inventory.GasCO2, true},
		{"Net CO2 emissions/removals", inventory.GasCO2, true},
		{"CH₄", inventory.GasCH4, true},
		{"N2O (kt)", inventory.GasN2O, true},
		{"HFCs (kt CO2 eq)", inventory.GasHFCs, true},
		{"Total GHG emissions", inventory.GasTotalGHG, true},
		{"CRT code", "", false},
		{"Description", "", false},
		// CO must not match inside CO2 and vice versa.
		{"COastal zones", "", false},
	}
	for _, tt := range tests {
		got, ok, _ := v.MatchGas(tt.label)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("MatchGas(%q) = (%q, %v), want (%q, %v)", tt.label, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestMatchGasAmbiguous(t *testing.T) {
	v := Default()
	v.GasSynonyms = map[string]inventory.Gas{
		"XXX": inventory.GasCO2,
		"YYY": inventory.GasCH4,
	}
	_, ok, ambiguous := v.MatchGas("XXX YYY (kt)")
	if ok || !ambiguous {
		t.Errorf("MatchGas with equal-length conflicting synonyms = (ok=%v, ambiguous=%v), want (false, true)", ok, ambiguous)
	}
}

func TestMatchUnit(t *testing.T) {
	v := Default()
	tests := []struct {
		label      string
		wantUnit   string
		wantFactor float64
		wantOK     bool
	}{
		{"CO2 (kt)", "kt", 1, true},
		{"(Gg)", "Gg", 1, true},
		{"HFCs (kt CO2 eq)", "kt CO2 eq", 1, true},
		{"(Mt CO2 eq)", "Mt CO2 eq", 1000, true},
		{"Description", "", 0, false},
	}
	for _, tt := range tests {
		unit, factor, ok := v.MatchUnit(tt.label)
		if ok != tt.wantOK || unit != tt.wantUnit || factor != tt.wantFactor {
			t.Errorf("MatchUnit(%q) = (%q, %v, %v), want (%q, %v, %v)",
				tt.label, unit, factor, ok, tt.wantUnit, tt.wantFactor, tt.wantOK)
		}
	}
}

func TestMatchStatus(t *testing.T) {
	v := Default()
	tests := []struct {
		cell   string
		want   inventory.Status
		wantOK bool
	}{
		{"NO", inventory.StatusNotOccurring, true},
		{"ne", inventory.StatusNotEstimated, true},
		{"NA", inventory.StatusNotApplicable, true},
		{"IE", inventory.StatusIncludedElsewhere, true},
		{"C", inventory.StatusConfidential, true},
		{"", inventory.StatusMissing, true},
		{"   ", inventory.StatusMissing, true},
		{"NO, NE", inventory.StatusNotOccurring, true},
		{"IE NA", inventory.StatusIncludedElsewhere, true},
		{"123.4", "", false},
		{"Energy", "", false},
	}
	for _, tt := range tests {
		got, ok := v.MatchStatus(tt.cell)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("MatchStatus(%q) = (%q, %v), want (%q, %v)", tt.cell, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestIsCategoryAnchor(t *testing.T) {
	v := Default()
	if !v.IsCategoryAnchor("GREENHOUSE GAS SOURCE AND SINK CATEGORIES") {
		t.Error("expected the CRT anchor to match")
	}
	if !v.IsCategoryAnchor("Greenhouse gas source and sink categories (1)") {
		t.Error("expected case-insensitive anchor match with trailing footnote")
	}
	if v.IsCategoryAnchor("CO2") {
		t.Error("gas header must not match the category anchor")
	}
}

func TestIsMemoLabel(t *testing.T) {
	v := Default()
	tests := []struct {
		label string
		want  bool
	}{
		{"Memo items:", true},
		{"International bunkers", true},
		{"1.D.1 Aviation", true},
		{"Indirect N2O", true},
		{"1. Energy", false},
		{"Total GHG emissions", false},
	}
	for _, tt := range tests {
		if got := v.IsMemoLabel(tt.label); got != tt.want {
			t.Errorf("IsMemoLabel(%q) = %v, want %v", tt.label, got, tt.want)
		}
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.yaml")
	overlay := `category_anchors:
  - "label"
status_tokens:
  "NR": "not_estimated"
`
	if err := os.WriteFile(path, []byte(overlay), 0o644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}

	v, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !v.IsCategoryAnchor("label") {
		t.Error("overlay anchor not applied")
	}
	if v.IsCategoryAnchor("GREENHOUSE GAS SOURCE AND SINK CATEGORIES") {
		t.Error("overlay should replace anchors, not append")
	}
	if s, ok := v.MatchStatus("NR"); !ok || s != inventory.StatusNotEstimated {
		t.Errorf("overlay status token NR = (%q, %v)", s, ok)
	}
	// Sections the overlay omits keep their defaults.
	if gas, ok, _ := v.MatchGas("CO2"); !ok || gas != inventory.GasCO2 {
		t.Error("default gas synonyms should survive a partial overlay")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing vocabulary file")
	}
}
