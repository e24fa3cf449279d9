// Package grid holds the raw worksheet model shared by the detection and
// classification stages. Values here are plain data: the package has no
// dependency on any spreadsheet library.
package grid

import "strings"

// RawGrid is the unmodified 2-D cell matrix of one worksheet. Cells are the
// string renderings excelize produces; merged cells arrive pre-expanded as
// duplicates. A RawGrid is never mutated after load.
type RawGrid struct {
	Sheet string
	Cells [][]string
}

// RowCount returns the number of rows in the grid.
func (g *RawGrid) RowCount() int {
	return len(g.Cells)
}

// Row returns row i, or nil when i is out of range. Rows may be ragged;
// callers index defensively.
func (g *RawGrid) Row(i int) []string {
	if i < 0 || i >= len(g.Cells) {
		return nil
	}
	return g.Cells[i]
}

// Cell returns the trimmed cell at (row, col), or "" when out of range.
func (g *RawGrid) Cell(row, col int) string {
	r := g.Row(row)
	if col < 0 || col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// RawCell returns the untrimmed cell at (row, col), or "" when out of range.
// Leading whitespace is significant for indentation-based hierarchy depth.
func (g *RawGrid) RawCell(row, col int) string {
	r := g.Row(row)
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// Width returns the widest row length observed in the grid.
func (g *RawGrid) Width() int {
	w := 0
	for _, r := range g.Cells {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

// RowRange is a half-open [Start, End) span of row indices.
type RowRange struct {
	Start int
	End   int
}

// Len returns the number of rows covered by the range.
func (r RowRange) Len() int { return r.End - r.Start }

// ColumnRole is the semantic role assigned to one header column.
type ColumnRole string

const (
	RoleCategoryLabel ColumnRole = "category_label"
	RoleCategoryCode  ColumnRole = "category_code"
	RoleGasValue      ColumnRole = "gas_value"
	RoleIgnored       ColumnRole = "ignored"
)

// ColumnLabel is one resolved header column: the flattened raw label plus the
// role and unit the classifier assigned to it.
type ColumnLabel struct {
	Index    int
	RawLabel string
	Role     ColumnRole
	// Gas is set only for RoleGasValue columns.
	Gas string
	// Unit is the unit token found in the header ("kt", "Gg", ...), empty
	// when the header carried no unit annotation.
	Unit string
}

// HeaderBand locates the detected header rows and the data band that follows
// them. Derived once by the detector and never mutated afterwards.
type HeaderBand struct {
	HeaderRows RowRange
	DataRows   RowRange
	Columns    []ColumnLabel
}

// GasColumns returns the columns classified as gas values, in column order.
func (b *HeaderBand) GasColumns() []ColumnLabel {
	var out []ColumnLabel
	for _, c := range b.Columns {
		if c.Role == RoleGasValue {
			out = append(out, c)
		}
	}
	return out
}

// ColumnByRole returns the first column with the given role, or false.
func (b *HeaderBand) ColumnByRole(role ColumnRole) (ColumnLabel, bool) {
	for _, c := range b.Columns {
		if c.Role == role {
			return c, true
		}
	}
	return ColumnLabel{}, false
}
