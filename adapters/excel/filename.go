package excel

import (
	"path/filepath"
	"strconv"
	"strings"

	"ghgpipe/internal/errors"
)

// FileMeta is the country/year/vintage metadata a CRT filename encodes.
type FileMeta struct {
	CountryCode string
	Year        int
	Vintage     string
}

// ParseFileMeta extracts metadata from a CRT filename following the pattern
// "GBR-CRT-2025-V0.6-1990-20250415-091720.xlsx": ISO country code first,
// reporting year fifth. Filenames are expected but not required to follow
// the pattern; mismatches fail with INPUT_INVALID so the orchestrator can
// skip the file with a manifest entry.
func ParseFileMeta(filename string) (FileMeta, error) {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	parts := strings.Split(base, "-")
	if len(parts) < 5 {
		return FileMeta{}, errors.InvalidInput("filename " + filename + " does not encode country and year")
	}

	year, err := strconv.Atoi(parts[4])
	if err != nil {
		return FileMeta{}, errors.WithCode(errors.CodeInputInvalid,
			errors.Wrapf(err, "filename %s: year field %q", filename, parts[4]))
	}

	return FileMeta{
		CountryCode: strings.ToUpper(parts[0]),
		Year:        year,
		Vintage:     parts[2],
	}, nil
}
