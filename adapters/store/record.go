package store

import (
	"sort"
	"strings"

	"ghgpipe/domain/inventory"
)

// recordRow is the flat on-disk shape of a GasRecord, shared by the parquet
// and CSV encoders so both stay field-for-field identical.
type recordRow struct {
	Country      string  `parquet:"name=country, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Year         int32   `parquet:"name=year, type=INT32"`
	CategoryPath string  `parquet:"name=category_path, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Label        string  `parquet:"name=label, type=BYTE_ARRAY, convertedtype=UTF8"`
	Gas          string  `parquet:"name=gas, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Value        float64 `parquet:"name=value, type=DOUBLE"`
	Unit         string  `parquet:"name=unit, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Status       string  `parquet:"name=status, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Memo         bool    `parquet:"name=memo, type=BOOLEAN"`
}

func toRow(r inventory.GasRecord) recordRow {
	return recordRow{
		Country:      r.Country,
		Year:         int32(r.Year),
		CategoryPath: r.PathKey(),
		Label:        r.Label,
		Gas:          string(r.Gas),
		Value:        r.Value,
		Unit:         r.Unit,
		Status:       string(r.Status),
		Memo:         r.Memo,
	}
}

func fromRow(row recordRow) inventory.GasRecord {
	var path []string
	if row.CategoryPath != "" {
		path = strings.Split(row.CategoryPath, ".")
	}
	return inventory.GasRecord{
		Country:      row.Country,
		Year:         int(row.Year),
		CategoryPath: path,
		Label:        row.Label,
		Gas:          inventory.Gas(row.Gas),
		Value:        row.Value,
		Unit:         row.Unit,
		Status:       inventory.Status(row.Status),
		Memo:         row.Memo,
	}
}

// sortRecords orders records deterministically (year, path, label, gas) so
// repeated runs over unchanged input produce byte-identical output.
func sortRecords(records []inventory.GasRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if ak, bk := a.PathKey(), b.PathKey(); ak != bk {
			return ak < bk
		}
		if a.Label != b.Label {
			return a.Label < b.Label
		}
		return a.Gas < b.Gas
	})
}
