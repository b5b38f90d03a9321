package repository

import (
	"slices"

	"github.com/mr1hm/crime-dashboard/internal/models"
)

// Table is the in-memory incident table. It is built once at startup and
// never mutated afterwards, so it is safe for concurrent readers.
type Table struct {
	incidents []models.Incident
	locations []string
	years     []int
}

func NewTable(incidents []models.Incident) *Table {
	seen := make(map[string]struct{})
	locations := make([]string, 0)
	yearSet := make(map[int]struct{})

	for i := range incidents {
		loc := incidents[i].Location
		if _, ok := seen[loc]; !ok {
			seen[loc] = struct{}{}
			locations = append(locations, loc)
		}
		yearSet[incidents[i].CrimeDate.Year()] = struct{}{}
	}

	years := make([]int, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	slices.Sort(years)

	return &Table{
		incidents: incidents,
		locations: locations,
		years:     years,
	}
}

func (t *Table) Len() int {
	return len(t.incidents)
}

// All returns the backing slice. Callers must treat it as read-only.
func (t *Table) All() []models.Incident {
	return t.incidents
}

// Locations lists the distinct Location values in first-encounter order.
func (t *Table) Locations() []string {
	return t.locations
}

// DefaultLocation is the location preselected on the page.
func (t *Table) DefaultLocation() string {
	if len(t.locations) == 0 {
		return ""
	}
	return t.locations[0]
}

// HasLocation reports whether at least one incident carries location.
func (t *Table) HasLocation(location string) bool {
	return slices.Contains(t.locations, location)
}

// Filter returns the incidents at location, in table order. An unknown
// location gives an empty, non-nil slice.
func (t *Table) Filter(location string) []models.Incident {
	out := make([]models.Incident, 0)
	for i := range t.incidents {
		if t.incidents[i].Location == location {
			out = append(out, t.incidents[i])
		}
	}
	return out
}

// Years lists the distinct calendar years over the whole table, ascending.
func (t *Table) Years() []int {
	return t.years
}
