package store

import (
	"encoding/csv"
	"os"
	"strconv"

	"ghgpipe/domain/inventory"
	"ghgpipe/internal/errors"
)

var csvHeader = []string{"country", "year", "category_path", "label", "gas", "value", "unit", "status", "memo"}

func writeCSV(path string, rows []recordRow) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create csv file %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return errors.Wrapf(err, "failed to write csv header to %s", path)
	}
	for _, row := range rows {
		value := ""
		if inventory.Status(row.Status).HasValue() {
			value = strconv.FormatFloat(row.Value, 'g', -1, 64)
		}
		rec := []string{
			row.Country,
			strconv.Itoa(int(row.Year)),
			row.CategoryPath,
			row.Label,
			row.Gas,
			value,
			row.Unit,
			row.Status,
			strconv.FormatBool(row.Memo),
		}
		if err := w.Write(rec); err != nil {
			return errors.Wrapf(err, "failed to write csv row to %s", path)
		}
	}
	w.Flush()
	return w.Error()
}

func readCSV(path string) ([]recordRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open csv file %s", path)
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read csv file %s", path)
	}
	if len(all) == 0 {
		return nil, errors.StoreError("csv file " + path + " has no header")
	}

	rows := make([]recordRow, 0, len(all)-1)
	for _, rec := range all[1:] {
		if len(rec) != len(csvHeader) {
			return nil, errors.StoreError("csv file " + path + " has a malformed row")
		}
		year, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, errors.Wrapf(err, "csv file %s: bad year %q", path, rec[1])
		}
		value := 0.0
		if rec[5] != "" {
			value, err = strconv.ParseFloat(rec[5], 64)
			if err != nil {
				return nil, errors.Wrapf(err, "csv file %s: bad value %q", path, rec[5])
			}
		}
		memo, _ := strconv.ParseBool(rec[8])
		rows = append(rows, recordRow{
			Country:      rec[0],
			Year:         int32(year),
			CategoryPath: rec[2],
			Label:        rec[3],
			Gas:          rec[4],
			Value:        value,
			Unit:         rec[6],
			Status:       rec[7],
			Memo:         memo,
		})
	}
	return rows, nil
}
