// Package columns assigns a semantic role to every detected header column:
// the category label, an optional category code column, gas value columns
// with their units, or ignored filler.
package columns

import (
	"fmt"
	"log"
	"regexp"
	"strings"

	"ghgpipe/domain/grid"
	"ghgpipe/internal/errors"
	"ghgpipe/internal/vocab"
)

// Result is the classified column set plus the non-fatal warnings recorded
// while resolving it.
type Result struct {
	Columns  []grid.ColumnLabel
	Warnings []string
}

// Classifier resolves header labels against an injected vocabulary.
type Classifier struct {
	vocab *vocab.Vocabulary
}

// New creates a classifier.
func New(v *vocab.Vocabulary) *Classifier {
	return &Classifier{vocab: v}
}

var codeHeaderRe = regexp.MustCompile(`(?i)\b(crt|crf|code)\b`)
var footnoteRe = regexp.MustCompile(`^\(\d+\)$`)

// Classify assigns a role to every column of the band. Individual columns
// that match no heuristic degrade to ignored with a warning; the sheet only
// fails with ColumnUnresolved when no category column or no gas column
// survives, because nothing can be extracted without both.
func (c *Classifier) Classify(band *grid.HeaderBand) (*Result, error) {
	res := &Result{Columns: make([]grid.ColumnLabel, len(band.Columns))}
	copy(res.Columns, band.Columns)

	for i := range res.Columns {
		col := &res.Columns[i]
		label := strings.TrimSpace(col.RawLabel)

		switch {
		case label == "" || footnoteRe.MatchString(label):
			col.Role = grid.RoleIgnored

		case c.vocab.IsCategoryAnchor(label):
			col.Role = grid.RoleCategoryLabel

		case codeHeaderRe.MatchString(label) && !c.hasGasToken(label):
			col.Role = grid.RoleCategoryCode

		default:
			c.classifyGas(col, res)
		}
	}

	if err := c.checkResolved(res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Classifier) hasGasToken(label string) bool {
	_, ok, _ := c.vocab.MatchGas(label)
	return ok
}

func (c *Classifier) classifyGas(col *grid.ColumnLabel, res *Result) {
	gas, ok, ambiguous := c.vocab.MatchGas(col.RawLabel)
	if ambiguous {
		// An ambiguous gas column degrades instead of aborting the
		// sheet; the warning keeps the loss visible.
		col.Role = grid.RoleIgnored
		res.warnf("column %d (%q) matches multiple gases ambiguously, ignoring", col.Index, col.RawLabel)
		return
	}
	if !ok {
		col.Role = grid.RoleIgnored
		res.warnf("column %d (%q) matched no classification heuristic, ignoring", col.Index, col.RawLabel)
		return
	}
	col.Role = grid.RoleGasValue
	col.Gas = string(gas)
	if unit, _, found := c.vocab.MatchUnit(col.RawLabel); found {
		col.Unit = unit
	}
}

// checkResolved enforces the minimum viable column set.
func (c *Classifier) checkResolved(res *Result) error {
	var haveLabel, haveGas bool
	for _, col := range res.Columns {
		switch col.Role {
		case grid.RoleCategoryLabel:
			haveLabel = true
		case grid.RoleGasValue:
			haveGas = true
		}
	}
	if !haveLabel {
		// Sheets without the CRT anchor sometimes carry the category in
		// the code column; promote it before failing.
		for i := range res.Columns {
			if res.Columns[i].Role == grid.RoleCategoryCode {
				res.Columns[i].Role = grid.RoleCategoryLabel
				res.warnf("no category-label column found, promoting code column %d", res.Columns[i].Index)
				haveLabel = true
				break
			}
		}
	}
	if !haveLabel {
		return errors.ColumnUnresolved("category label", -1)
	}
	if !haveGas {
		return errors.ColumnUnresolved("gas value", -1)
	}
	return nil
}

func (r *Result) warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r.Warnings = append(r.Warnings, msg)
	log.Printf("[ColumnClassifier] %s", msg)
}
