// Package store publishes committed country datasets and serves them back to
// consumers. Every view is written in two always-consistent encodings: a
// parquet file for fast reads and a CSV file for human inspection. A country
// commit is all-or-nothing: views are staged into a temp directory, the
// previous dataset is set aside as a tombstone, and only once the staged
// replacement is renamed into place is the old copy removed.
package store

import (
	"log"
	"os"
	"path/filepath"

	"ghgpipe/domain/inventory"
	"ghgpipe/internal/errors"
)

// Store reads and writes the processed output tree.
type Store struct {
	root string
}

// New creates a store rooted at dir.
func New(root string) *Store {
	return &Store{root: root}
}

// YearRange is an optional inclusive [From, To] filter; zero means open.
type YearRange struct {
	From int
	To   int
}

func (y YearRange) contains(year int) bool {
	if y.From != 0 && year < y.From {
		return false
	}
	if y.To != 0 && year > y.To {
		return false
	}
	return true
}

// Commit atomically publishes a country's complete record set, replacing any
// previously committed dataset for that country.
func (s *Store) Commit(country string, records []inventory.GasRecord) error {
	sortRecords(records)

	staging, err := os.MkdirTemp(s.root, ".staging-"+country+"-")
	if err != nil {
		if mkErr := os.MkdirAll(s.root, 0o755); mkErr != nil {
			return errors.Wrapf(mkErr, "failed to create output root %s", s.root)
		}
		staging, err = os.MkdirTemp(s.root, ".staging-"+country+"-")
		if err != nil {
			return errors.Wrapf(err, "failed to create staging dir for %s", country)
		}
	}
	defer os.RemoveAll(staging)

	byLevel := make(map[inventory.Level][]inventory.GasRecord)
	byGas := make(map[inventory.Gas][]inventory.GasRecord)
	for _, r := range records {
		byLevel[inventory.LevelOf(r)] = append(byLevel[inventory.LevelOf(r)], r)
		byGas[r.Gas] = append(byGas[r.Gas], r)
	}

	for _, level := range inventory.AllLevels() {
		if err := s.writeView(staging, string(level), byLevel[level]); err != nil {
			return err
		}
	}
	for _, gas := range inventory.AllGases() {
		recs := byGas[gas]
		if len(recs) == 0 {
			continue
		}
		if err := s.writeView(staging, filepath.Join("gases", gas.Slug()), recs); err != nil {
			return err
		}
	}

	// Swap via a tombstone so a crash mid-publish never destroys the only
	// copy: the previous dataset is set aside, the staging dir renamed in,
	// and only then is the old copy removed.
	final := filepath.Join(s.root, country)
	tombstone := filepath.Join(s.root, ".replaced-"+country)
	if err := os.RemoveAll(tombstone); err != nil {
		return errors.Wrapf(err, "failed to clear stale tombstone for %s", country)
	}
	if _, err := os.Stat(final); err == nil {
		if err := os.Rename(final, tombstone); err != nil {
			return errors.Wrapf(err, "failed to set aside previous dataset for %s", country)
		}
	}
	if err := os.Rename(staging, final); err != nil {
		// Put the previous dataset back so the country stays readable.
		if restoreErr := os.Rename(tombstone, final); restoreErr != nil && !os.IsNotExist(restoreErr) {
			log.Printf("[Store] failed to restore previous dataset for %s: %v", country, restoreErr)
		}
		return errors.Wrapf(err, "failed to publish dataset for %s", country)
	}
	if err := os.RemoveAll(tombstone); err != nil {
		return errors.Wrapf(err, "failed to remove replaced dataset for %s", country)
	}
	log.Printf("[Store] committed %s: %d records", country, len(records))
	return nil
}

// writeView writes one view in both encodings. Empty views are written too,
// so a committed country always has its full directory shape.
func (s *Store) writeView(dir, view string, records []inventory.GasRecord) error {
	path := filepath.Join(dir, view)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create view dir for %s", view)
	}

	rows := make([]recordRow, len(records))
	for i, r := range records {
		rows[i] = toRow(r)
	}
	if err := writeParquet(path+".parquet", rows); err != nil {
		return err
	}
	return writeCSV(path+".csv", rows)
}

// Total returns the country's total-level records.
func (s *Store) Total(country string, years YearRange) ([]inventory.GasRecord, error) {
	return s.loadView(country, string(inventory.LevelTotal), years)
}

// Sectors returns the country's sector-level records.
func (s *Store) Sectors(country string, years YearRange) ([]inventory.GasRecord, error) {
	return s.loadView(country, string(inventory.LevelSectors), years)
}

// Subsectors returns the country's subsector-level records.
func (s *Store) Subsectors(country string, years YearRange) ([]inventory.GasRecord, error) {
	return s.loadView(country, string(inventory.LevelSubsectors), years)
}

// SubSubsectors returns the deepest sector breakdown.
func (s *Store) SubSubsectors(country string, years YearRange) ([]inventory.GasRecord, error) {
	return s.loadView(country, string(inventory.LevelSubSubsectors), years)
}

// MemoItems returns the country's memo-item records.
func (s *Store) MemoItems(country string, years YearRange) ([]inventory.GasRecord, error) {
	return s.loadView(country, string(inventory.LevelMemoItems), years)
}

// ForGas returns every record of one gas across all levels.
func (s *Store) ForGas(country string, gas inventory.Gas, years YearRange) ([]inventory.GasRecord, error) {
	return s.loadView(country, filepath.Join("gases", gas.Slug()), years)
}

func (s *Store) loadView(country, view string, years YearRange) ([]inventory.GasRecord, error) {
	path := filepath.Join(s.root, country, view+".parquet")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.DatasetNotFound(country, view)
	}
	rows, err := readParquet(path)
	if err != nil {
		return nil, errors.WithCode(errors.CodeStoreError, err)
	}

	records := make([]inventory.GasRecord, 0, len(rows))
	for _, row := range rows {
		rec := fromRow(row)
		if years.contains(rec.Year) {
			records = append(records, rec)
		}
	}
	return records, nil
}

// LoadCSV reads the CSV encoding of a view. It exists for consistency
// checks between the two encodings.
func (s *Store) LoadCSV(country, view string) ([]inventory.GasRecord, error) {
	path := filepath.Join(s.root, country, view+".csv")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.DatasetNotFound(country, view)
	}
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	records := make([]inventory.GasRecord, len(rows))
	for i, row := range rows {
		records[i] = fromRow(row)
	}
	return records, nil
}

// Countries lists every committed country in the output tree.
func (s *Store) Countries() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to list output root %s", s.root)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && !isHidden(e.Name()) {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

func isHidden(name string) bool {
	return len(name) > 0 && name[0] == '.'
}
