// Command views queries a committed country dataset from the processed
// output tree, printing the requested view as CSV. It exercises the same
// read API the dashboard layer consumes.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"

	"ghgpipe/adapters/store"
	"ghgpipe/domain/inventory"
)

func main() {
	root := flag.String("root", "./processed_data", "processed output root")
	country := flag.String("country", "", "country directory name")
	view := flag.String("view", "total", "total | sectors | subsectors | sub_subsectors | memo_items | gas")
	gas := flag.String("gas", "", "gas name when -view=gas (CO2, CH4, ...)")
	from := flag.Int("from", 0, "first year, 0 for open")
	to := flag.Int("to", 0, "last year, 0 for open")
	flag.Parse()

	if *country == "" {
		fmt.Fprintln(os.Stderr, "usage: views -country <name> [-view total] [-from 1990] [-to 2023]")
		os.Exit(2)
	}

	s := store.New(*root)
	years := store.YearRange{From: *from, To: *to}

	var records []inventory.GasRecord
	var err error
	switch *view {
	case "total":
		records, err = s.Total(*country, years)
	case "sectors":
		records, err = s.Sectors(*country, years)
	case "subsectors":
		records, err = s.Subsectors(*country, years)
	case "sub_subsectors":
		records, err = s.SubSubsectors(*country, years)
	case "memo_items":
		records, err = s.MemoItems(*country, years)
	case "gas":
		records, err = s.ForGas(*country, inventory.Gas(*gas), years)
	default:
		fmt.Fprintf(os.Stderr, "unknown view %q\n", *view)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	w := csv.NewWriter(os.Stdout)
	w.Write([]string{"country", "year", "category_path", "label", "gas", "value", "unit", "status"})
	for _, r := range records {
		value := ""
		if r.Status.HasValue() {
			value = strconv.FormatFloat(r.Value, 'g', -1, 64)
		}
		w.Write([]string{r.Country, strconv.Itoa(r.Year), r.PathKey(), r.Label, string(r.Gas), value, r.Unit, string(r.Status)})
	}
	w.Flush()
}
