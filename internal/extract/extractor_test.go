package extract

import (
	"math"
	"testing"

	"ghgpipe/domain/grid"
	"ghgpipe/domain/inventory"
	"ghgpipe/internal/hierarchy"
	"ghgpipe/internal/vocab"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"123", 123, true},
		{"1,234.56", 1234.56, true},
		{"1.234,56", 1234.56, true},
		{"1 234,56", 1234.56, true},
		{"1,234", 1234, true},
		{"0,5", 0.5, true},
		{"12.5", 12.5, true},
		{"(123)", -123, true},
		{"-0.04", -0.04, true},
		{"", 0, false},
		{"NE", 0, false},
		{"12..3", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseNumber(tt.in)
		if ok != tt.wantOK || math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("parseNumber(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

// fixture builds a one-row band with a resolved category node so extraction
// can be exercised without the upstream stages.
type fixture struct {
	grid *grid.RawGrid
	band *grid.HeaderBand
	hier *hierarchy.Result
}

func newFixture(t *testing.T, cells []string, gasCols []grid.ColumnLabel) *fixture {
	t.Helper()
	tree := inventory.NewCategoryTree("Total")
	if _, err := tree.Add(&inventory.CategoryNode{Code: "1", Path: []string{"1"}, Name: "Energy", Row: 0}); err != nil {
		t.Fatalf("seed tree: %v", err)
	}
	cols := append([]grid.ColumnLabel{{Index: 0, Role: grid.RoleCategoryLabel}}, gasCols...)
	return &fixture{
		grid: &grid.RawGrid{Sheet: "Summary2", Cells: [][]string{cells}},
		band: &grid.HeaderBand{DataRows: grid.RowRange{Start: 0, End: 1}, Columns: cols},
		hier: &hierarchy.Result{
			Tree:      tree,
			RowNodes:  map[int]string{0: "1"},
			RowLabels: map[int]string{0: "Energy"},
		},
	}
}

func TestExtractStatusFidelity(t *testing.T) {
	f := newFixture(t, []string{"1. Energy", "100", "NO", "5"}, []grid.ColumnLabel{
		{Index: 1, Role: grid.RoleGasValue, Gas: string(inventory.GasCO2)},
		{Index: 2, Role: grid.RoleGasValue, Gas: string(inventory.GasCH4)},
		{Index: 3, Role: grid.RoleGasValue, Gas: string(inventory.GasN2O)},
	})

	res := New(vocab.Default()).Extract(f.grid, f.band, f.hier, "united_kingdom", 1990)
	if len(res.Records) != 3 {
		t.Fatalf("records = %d, want 3", len(res.Records))
	}

	byGas := map[inventory.Gas]inventory.GasRecord{}
	for _, r := range res.Records {
		byGas[r.Gas] = r
	}

	co2 := byGas[inventory.GasCO2]
	if co2.Status != inventory.StatusNumeric || co2.Value != 100 || co2.Unit != "" {
		t.Errorf("CO2 record = %+v, want numeric 100 in its native unit", co2)
	}
	if co2.PathKey() != "1" || co2.Label != "Energy" || co2.Year != 1990 {
		t.Errorf("CO2 record context = %+v", co2)
	}

	// "NO" is a typed marker, never a numeric zero.
	ch4 := byGas[inventory.GasCH4]
	if ch4.Status != inventory.StatusNotOccurring {
		t.Errorf("CH4 status = %s, want not_occurring", ch4.Status)
	}
	if ch4.Status.HasValue() || ch4.Value != 0 {
		t.Errorf("CH4 record = %+v, must carry no value", ch4)
	}

	if n2o := byGas[inventory.GasN2O]; n2o.Value != 5 {
		t.Errorf("N2O value = %v, want 5", n2o.Value)
	}
}

func TestExtractBlankCellIsMissing(t *testing.T) {
	f := newFixture(t, []string{"1. Energy", ""}, []grid.ColumnLabel{
		{Index: 1, Role: grid.RoleGasValue, Gas: string(inventory.GasCO2)},
	})
	res := New(vocab.Default()).Extract(f.grid, f.band, f.hier, "x", 2000)
	if len(res.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(res.Records))
	}
	if got := res.Records[0].Status; got != inventory.StatusMissing {
		t.Errorf("blank cell status = %s, want missing", got)
	}
}

func TestExtractUnparseableCellSkipped(t *testing.T) {
	f := newFixture(t, []string{"1. Energy", "#REF!"}, []grid.ColumnLabel{
		{Index: 1, Role: grid.RoleGasValue, Gas: string(inventory.GasCO2)},
	})
	res := New(vocab.Default()).Extract(f.grid, f.band, f.hier, "x", 2000)
	if len(res.Records) != 0 {
		t.Fatalf("records = %d, want 0", len(res.Records))
	}
	if len(res.Warnings) != 1 {
		t.Errorf("warnings = %d, want 1", len(res.Warnings))
	}
}

func TestExtractNormalization(t *testing.T) {
	tests := []struct {
		name      string
		col       grid.ColumnLabel
		cell      string
		wantValue float64
		wantUnit  string
	}{
		{
			name:      "no unit stays native",
			col:       grid.ColumnLabel{Index: 1, Role: grid.RoleGasValue, Gas: string(inventory.GasN2O)},
			cell:      "5",
			wantValue: 5,
			wantUnit:  "",
		},
		{
			name:      "kt CH4 converts by warming potential",
			col:       grid.ColumnLabel{Index: 1, Role: grid.RoleGasValue, Gas: string(inventory.GasCH4), Unit: "kt"},
			cell:      "2",
			wantValue: 56,
			wantUnit:  UnitKtCO2e,
		},
		{
			name:      "Mt CO2 scales to kt",
			col:       grid.ColumnLabel{Index: 1, Role: grid.RoleGasValue, Gas: string(inventory.GasCO2), Unit: "Mt"},
			cell:      "1.5",
			wantValue: 1500,
			wantUnit:  UnitKtCO2e,
		},
		{
			name:      "already in equivalents passes through",
			col:       grid.ColumnLabel{Index: 1, Role: grid.RoleGasValue, Gas: string(inventory.GasHFCs), Unit: "kt CO2 eq"},
			cell:      "12",
			wantValue: 12,
			wantUnit:  UnitKtCO2e,
		},
		{
			name:      "mass unit without warming potential stays kt",
			col:       grid.ColumnLabel{Index: 1, Role: grid.RoleGasValue, Gas: string(inventory.GasHFCs), Unit: "kt"},
			cell:      "3",
			wantValue: 3,
			wantUnit:  "kt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, []string{"1. Energy", tt.cell}, []grid.ColumnLabel{tt.col})
			res := New(vocab.Default()).Extract(f.grid, f.band, f.hier, "x", 2000)
			if len(res.Records) != 1 {
				t.Fatalf("records = %d, want 1", len(res.Records))
			}
			rec := res.Records[0]
			if math.Abs(rec.Value-tt.wantValue) > 1e-9 || rec.Unit != tt.wantUnit {
				t.Errorf("record = %v %q, want %v %q", rec.Value, rec.Unit, tt.wantValue, tt.wantUnit)
			}
		})
	}
}
