// Package hierarchy converts the category rows of a detected data band into
// an explicit tree. Depth comes from the dotted category code when one
// exists, else from label indentation, else the row nests under the most
// recent coded row (or at depth 1 when no coded row precedes it).
package hierarchy

import (
	"fmt"
	"log"
	"regexp"
	"strings"

	"ghgpipe/domain/grid"
	"ghgpipe/domain/inventory"
	"ghgpipe/internal/errors"
	"ghgpipe/internal/vocab"
)

// indentUnit is the number of leading spaces that encode one nesting level
// in indentation-formatted sheets.
const indentUnit = 2

// Result is the built tree plus the mapping from data-band row index to the
// arena ID of the node that row produced. Total rows map to the root ("").
type Result struct {
	Tree     *inventory.CategoryTree
	RowNodes map[int]string
	// RowLabels keeps the cleaned display label per row; total rows keep
	// their original wording ("Total GHG emissions without LULUCF").
	RowLabels map[int]string
	Warnings  []string
}

// Builder builds category trees for one vocabulary.
type Builder struct {
	vocab *vocab.Vocabulary
}

// New creates a builder.
func New(v *vocab.Vocabulary) *Builder {
	return &Builder{vocab: v}
}

var codeRe = regexp.MustCompile(`^\d+(\.[A-Za-z0-9]+)*\.?$`)

// parsed is one category row after label/code splitting.
type parsed struct {
	row    int
	path   []string
	label  string
	memo   bool
	total  bool
	indent int
	// coded is true when depth came from an explicit dotted code.
	coded bool
}

// Build walks the data band and assembles the tree. It fails with
// HierarchyInconsistent when a row's depth exceeds the previous row's depth
// by more than one, naming the offending row.
func (b *Builder) Build(g *grid.RawGrid, band *grid.HeaderBand) (*Result, error) {
	labelCol, ok := band.ColumnByRole(grid.RoleCategoryLabel)
	if !ok {
		return nil, errors.HierarchyInconsistent(band.DataRows.Start, "no category label column")
	}
	codeCol, hasCodeCol := band.ColumnByRole(grid.RoleCategoryCode)

	res := &Result{
		Tree:      inventory.NewCategoryTree("Total"),
		RowNodes:  make(map[int]string),
		RowLabels: make(map[int]string),
	}

	prevDepth := 0
	prevPath := []string{}
	// codedPath is the nesting context for unindented uncoded rows. Only
	// coded rows move it, so consecutive uncoded rows stay siblings.
	codedPath := []string{}
	memoSection := false

	for r := band.DataRows.Start; r < band.DataRows.End; r++ {
		raw := g.RawCell(r, labelCol.Index)
		if strings.TrimSpace(raw) == "" {
			continue
		}
		code := ""
		if hasCodeCol {
			code = g.Cell(r, codeCol.Index)
		}

		p := b.parseRow(r, raw, code)
		if p.total {
			res.RowNodes[r] = ""
			res.RowLabels[r] = p.label
			continue
		}
		if p.memo && len(p.path) == 0 && strings.HasSuffix(strings.TrimSpace(p.label), ":") {
			// "Memo items:" section header, no data of its own.
			memoSection = true
			continue
		}
		if memoSection {
			p.memo = true
		}

		if !p.coded {
			// Indentation first, then the coded-context fallback: an
			// unindented row is a child of the last coded row, so two
			// flat sectors in a row both land at the same depth.
			if p.indent > 0 {
				p.path = synthesizePath(prevPath, p.indent+1, p.label)
			} else {
				p.path = append(append([]string{}, codedPath...), slugify(p.label))
			}
		} else if p.indent > 0 && len(p.path) != p.indent+1 {
			// The dotted code is authoritative when indentation
			// disagrees; keep the discrepancy visible.
			res.warnf("row %d (%q): code depth %d disagrees with indent depth %d, using code",
				r, p.label, len(p.path), p.indent+1)
		}

		depth := len(p.path)
		if depth > prevDepth+1 && !(p.coded && p.memo) {
			return nil, errors.HierarchyInconsistent(r,
				fmt.Sprintf("category %q jumps from depth %d to %d", p.label, prevDepth, depth))
		}
		if p.coded && p.memo {
			// Memo items restart their own numbering (1.D.x after
			// sector 5); grow grouping parents instead of failing.
			res.ensureParents(p.path)
		}

		node := &inventory.CategoryNode{
			Code: p.path[len(p.path)-1],
			Path: p.path,
			Name: p.label,
			Row:  r,
			Memo: p.memo,
		}
		replaced, err := res.Tree.Add(node)
		if err != nil {
			return nil, errors.WithCode(errors.CodeHierarchyInconsistent, errors.Wrapf(err, "row %d", r))
		}
		if replaced {
			res.warnf("row %d: duplicate category code %s, later occurrence wins", r, node.ID())
		}

		res.RowNodes[r] = node.ID()
		res.RowLabels[r] = p.label
		prevDepth = depth
		prevPath = p.path
		if p.coded {
			codedPath = p.path
		}
	}

	if err := res.Tree.Validate(); err != nil {
		return nil, errors.WithCode(errors.CodeHierarchyInconsistent, err)
	}
	return res, nil
}

// parseRow splits a category cell into code path and display label.
func (b *Builder) parseRow(row int, rawLabel, code string) parsed {
	p := parsed{row: row}
	p.indent = leadingIndent(rawLabel) / indentUnit

	label := strings.TrimSpace(rawLabel)
	p.memo = b.vocab.IsMemoLabel(label)

	if strings.HasPrefix(label, "Total") {
		p.total = true
		p.label = label
		return p
	}

	// Prefer the dedicated code column; fall back to a code embedded at
	// the front of the label ("1.A.2 Manufacturing Industries").
	if code != "" && codeRe.MatchString(code) {
		p.path = splitCode(code)
		p.coded = true
		p.label = label
		return p
	}
	if head, rest, ok := strings.Cut(label, " "); ok && codeRe.MatchString(head) {
		p.path = splitCode(head)
		p.coded = true
		p.label = strings.TrimSpace(rest)
		return p
	}
	if codeRe.MatchString(label) {
		p.path = splitCode(label)
		p.coded = true
		p.label = label
		return p
	}

	p.label = label
	return p
}

func splitCode(code string) []string {
	return strings.Split(strings.Trim(code, "."), ".")
}

func leadingIndent(s string) int {
	n := 0
	for _, ch := range s {
		if ch == ' ' {
			n++
		} else if ch == '\t' {
			n += indentUnit
		} else {
			break
		}
	}
	return n
}

// synthesizePath builds a path of the wanted depth for an uncoded row: the
// prefix comes from the previous row's path, the final segment from the
// row's own label.
func synthesizePath(prevPath []string, depth int, label string) []string {
	prefix := prevPath
	if len(prefix) > depth-1 {
		prefix = prefix[:depth-1]
	}
	path := append([]string{}, prefix...)
	for len(path) < depth-1 {
		path = append(path, slugify(label))
	}
	return append(path, slugify(label))
}

func slugify(label string) string {
	var b strings.Builder
	for _, ch := range strings.ToLower(strings.TrimSpace(label)) {
		switch {
		case ch >= 'a' && ch <= 'z' || ch >= '0' && ch <= '9':
			b.WriteRune(ch)
		case ch == ' ' || ch == '-' || ch == '_':
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "x"
	}
	return b.String()
}

// ensureParents creates missing ancestors of path as pure grouping nodes.
func (r *Result) ensureParents(path []string) {
	for i := 1; i < len(path); i++ {
		prefix := path[:i]
		id := strings.Join(prefix, ".")
		if _, ok := r.Tree.Node(id); ok {
			continue
		}
		node := &inventory.CategoryNode{
			Code: prefix[len(prefix)-1],
			Path: append([]string{}, prefix...),
			Name: id,
			Row:  -1,
			Memo: true,
		}
		if _, err := r.Tree.Add(node); err != nil {
			// Parents are created shallow-first, so this cannot fail.
			return
		}
	}
}

func (r *Result) warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r.Warnings = append(r.Warnings, msg)
	log.Printf("[HierarchyBuilder] %s", msg)
}
