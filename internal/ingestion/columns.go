package ingestion

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Column names of the Baltimore 911 export.
const (
	colCrimeDate      = "CrimeDate"
	colCrimeTime      = "CrimeTime"
	colDescription    = "Description"
	colLocation       = "Location"
	colLatitude       = "Latitude"
	colLongitude      = "Longitude"
	colTotalIncidents = "Total Incidents"

	colCrimeCode    = "CrimeCode"
	colDistrict     = "District"
	colNeighborhood = "Neighborhood"
	colWeapon       = "Weapon"
	colPremise      = "Premise"
)

type columns struct {
	date, time, description, location, latitude, longitude, total int

	// -1 when absent
	crimeCode, district, neighborhood, weapon, premise int
}

func indexColumns(header []string) (columns, error) {
	pos := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := pos[name]; !dup {
			pos[name] = i
		}
	}

	required := func(name string, dst *int) error {
		i, ok := pos[name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
		*dst = i
		return nil
	}
	lookup := func(name string) int {
		if i, ok := pos[name]; ok {
			return i
		}
		return -1
	}

	var c columns
	err := errors.Join(
		required(colCrimeDate, &c.date),
		required(colCrimeTime, &c.time),
		required(colDescription, &c.description),
		required(colLocation, &c.location),
		required(colLatitude, &c.latitude),
		required(colLongitude, &c.longitude),
		required(colTotalIncidents, &c.total),
	)
	if err != nil {
		return c, err
	}

	c.crimeCode = lookup(colCrimeCode)
	c.district = lookup(colDistrict)
	c.neighborhood = lookup(colNeighborhood)
	c.weapon = lookup(colWeapon)
	c.premise = lookup(colPremise)

	return c, nil
}

// RowError reports the data row (1-based, header excluded) and column that
// failed to parse.
type RowError struct {
	Row    int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d, column %q: %v", e.Row, e.Column, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

func asRowError(row int, err error) *RowError {
	var re *RowError
	if errors.As(err, &re) {
		re.Row = row
		return re
	}
	return &RowError{Row: row, Err: err}
}

func optional(rec []string, i int) string {
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// missingValues are the cell spellings the export tools use for "no value".
var missingValues = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"n/a":  {},
	"#N/A": {},
	"<NA>": {},
	"NaN":  {},
	"nan":  {},
	"-NaN": {},
	"-nan": {},
	"null": {},
	"NULL": {},
	"None": {},
}

func isMissing(s string) bool {
	_, ok := missingValues[s]
	return ok
}

// parseOptionalFloat reports false for a missing cell. Non-finite values are
// missing too: they cannot be plotted or encoded as JSON.
func parseOptionalFloat(s string) (float64, bool, error) {
	s = strings.TrimSpace(s)
	if isMissing(s) {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, nil
	}
	return v, true, nil
}

var errNotFinite = errors.New("count is not finite")

// parseCount accepts "3" and "3.0"; a missing cell is 0.
func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if isMissing(s) {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) {
		return 0, nil
	}
	if math.IsInf(f, 0) {
		return 0, errNotFinite
	}
	return int(math.Round(f)), nil
}
