package hierarchy

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"ghgpipe/domain/grid"
	"ghgpipe/internal/errors"
	"ghgpipe/internal/vocab"
)

func labelGrid(labels ...string) *grid.RawGrid {
	cells := make([][]string, len(labels))
	for i, l := range labels {
		cells[i] = []string{l}
	}
	return &grid.RawGrid{Sheet: "Summary2", Cells: cells}
}

func labelBand(rows int) *grid.HeaderBand {
	return &grid.HeaderBand{
		DataRows: grid.RowRange{Start: 0, End: rows},
		Columns:  []grid.ColumnLabel{{Index: 0, Role: grid.RoleCategoryLabel}},
	}
}

func TestBuildCodedHierarchy(t *testing.T) {
	g := labelGrid(
		"Total GHG emissions",
		"1. Energy",
		"1.A Fuel combustion",
		"1.A.1 Energy industries",
		"2. Industrial processes",
	)
	res, err := New(vocab.Default()).Build(g, labelBand(g.RowCount()))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if got := res.RowNodes[0]; got != "" {
		t.Errorf("total row node = %q, want root", got)
	}
	for _, id := range []string{"1", "1.A", "1.A.1", "2"} {
		if _, ok := res.Tree.Node(id); !ok {
			t.Errorf("missing node %s", id)
		}
	}
	node, _ := res.Tree.Node("1.A.1")
	if node.ParentID != "1.A" {
		t.Errorf("1.A.1 parent = %q, want 1.A", node.ParentID)
	}
	if node.Name != "Energy industries" {
		t.Errorf("1.A.1 name = %q", node.Name)
	}
	if err := res.Tree.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestBuildIndentedHierarchy(t *testing.T) {
	g := labelGrid(
		"Energy",
		"  Fuel combustion",
		"    Stationary combustion",
		"  Fugitive emissions",
	)
	res, err := New(vocab.Default()).Build(g, labelBand(g.RowCount()))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	wantDepths := map[int]int{0: 1, 1: 2, 2: 3, 3: 2}
	for row, want := range wantDepths {
		node, ok := res.Tree.Node(res.RowNodes[row])
		if !ok {
			t.Fatalf("row %d produced no node", row)
		}
		if node.Depth() != want {
			t.Errorf("row %d depth = %d, want %d", row, node.Depth(), want)
		}
	}
	if err := res.Tree.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestBuildFlatSectorsAreSiblings(t *testing.T) {
	g := labelGrid(
		"Energy",
		"Industrial processes",
	)
	res, err := New(vocab.Default()).Build(g, labelBand(g.RowCount()))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	for row := 0; row < 2; row++ {
		node, ok := res.Tree.Node(res.RowNodes[row])
		if !ok {
			t.Fatalf("row %d produced no node", row)
		}
		if node.Depth() != 1 {
			t.Errorf("row %d depth = %d, want 1", row, node.Depth())
		}
		if node.ParentID != "" {
			t.Errorf("row %d parent = %q, want root", row, node.ParentID)
		}
	}
}

func TestBuildUncodedRowsNestUnderLastCodedRow(t *testing.T) {
	g := labelGrid(
		"1. Energy",
		"Solvent use",
		"Other activities",
	)
	res, err := New(vocab.Default()).Build(g, labelBand(g.RowCount()))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	for row, wantID := range map[int]string{1: "1.solvent_use", 2: "1.other_activities"} {
		node, ok := res.Tree.Node(res.RowNodes[row])
		if !ok {
			t.Fatalf("row %d produced no node", row)
		}
		if node.ID() != wantID {
			t.Errorf("row %d node = %q, want %q", row, node.ID(), wantID)
		}
		if node.Depth() != 2 || node.ParentID != "1" {
			t.Errorf("row %d depth = %d parent = %q, want sibling under 1", row, node.Depth(), node.ParentID)
		}
	}
}

func TestBuildCodeWinsOverIndent(t *testing.T) {
	g := labelGrid(
		"1. Energy",
		"1.A Fuel combustion",
		"  1.A.1 Energy industries",
	)
	res, err := New(vocab.Default()).Build(g, labelBand(g.RowCount()))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	node, ok := res.Tree.Node("1.A.1")
	if !ok {
		t.Fatal("coded node missing")
	}
	if node.Depth() != 3 {
		t.Errorf("depth = %d, want 3 (code authoritative)", node.Depth())
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "disagrees") {
		t.Errorf("warnings = %v, want one depth-disagreement warning", res.Warnings)
	}
}

func TestBuildDuplicateCodeLastWins(t *testing.T) {
	g := labelGrid(
		"1. Energy",
		"1.A Fuel combustion",
		"1.A Fuel combustion restated",
	)
	res, err := New(vocab.Default()).Build(g, labelBand(g.RowCount()))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	node, _ := res.Tree.Node("1.A")
	if node.Name != "Fuel combustion restated" {
		t.Errorf("duplicate node name = %q, want the later occurrence", node.Name)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "duplicate") {
		t.Errorf("warnings = %v, want one duplicate warning", res.Warnings)
	}
}

func TestBuildDepthJumpFails(t *testing.T) {
	g := labelGrid(
		"1. Energy",
		"1.A.1.a Coal fired plants",
	)
	_, err := New(vocab.Default()).Build(g, labelBand(g.RowCount()))
	if err == nil {
		t.Fatal("expected HierarchyInconsistent")
	}
	if !errors.HasCode(err, errors.CodeHierarchyInconsistent) {
		t.Errorf("error code = %s, want %s", errors.GetCode(err), errors.CodeHierarchyInconsistent)
	}
}

func TestBuildMemoSection(t *testing.T) {
	g := labelGrid(
		"Total GHG emissions",
		"5. Waste",
		"Memo items:",
		"International bunkers",
		"1.D.1 Aviation",
	)
	res, err := New(vocab.Default()).Build(g, labelBand(g.RowCount()))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if _, ok := res.RowNodes[2]; ok {
		t.Error("the memo section header must not produce a node")
	}
	bunkers, ok := res.Tree.Node(res.RowNodes[3])
	if !ok || !bunkers.Memo {
		t.Errorf("International bunkers node = %+v, want memo", bunkers)
	}
	aviation, ok := res.Tree.Node("1.D.1")
	if !ok || !aviation.Memo {
		t.Fatalf("1.D.1 node = %+v, want memo", aviation)
	}
	// The implicit grouping parent for the out-of-order memo code.
	group, ok := res.Tree.Node("1.D")
	if !ok || !group.Memo {
		t.Errorf("grouping parent 1.D = %+v, want synthetic memo node", group)
	}
	if err := res.Tree.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

// TestBuildIndentSequences feeds generated indentation profiles that never
// deepen by more than one level and checks the depth invariant holds for
// every resulting node.
func TestBuildIndentSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		depths := []int{1}
		for len(depths) < 12 {
			prev := depths[len(depths)-1]
			// Anywhere from a fresh top-level sector up to one level
			// deeper than the previous row.
			next := 1 + rng.Intn(prev+1)
			depths = append(depths, next)
		}

		labels := make([]string, len(depths))
		for i, d := range depths {
			labels[i] = strings.Repeat("  ", d-1) + fmt.Sprintf("category %d of trial %d", i, trial)
		}

		g := labelGrid(labels...)
		res, err := New(vocab.Default()).Build(g, labelBand(g.RowCount()))
		if err != nil {
			t.Fatalf("trial %d: Build() error: %v", trial, err)
		}
		if err := res.Tree.Validate(); err != nil {
			t.Fatalf("trial %d: Validate() error: %v", trial, err)
		}
		for row, want := range depths {
			node, ok := res.Tree.Node(res.RowNodes[row])
			if !ok {
				t.Fatalf("trial %d: row %d has no node", trial, row)
			}
			if node.Depth() != want {
				t.Errorf("trial %d: row %d depth = %d, want %d", trial, row, node.Depth(), want)
			}
		}
	}
}
