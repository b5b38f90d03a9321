package models

import (
	"time"

	"github.com/paulmach/orb"
)

type Incident struct {
	CrimeDate      time.Time // calendar date at UTC midnight
	CrimeTime      time.Time // time of day on the zero date
	CrimeCode      string
	Description    string
	Location       string // street-level label, e.g. "2700 FAIRVIEW AVE"
	District       string
	Neighborhood   string
	Weapon         string
	Premise        string
	Latitude       float64
	Longitude      float64
	HasCoordinates bool // false when the source row had no lat/lon
	TotalIncidents int  // density weight
}

// Point returns the incident position in orb's [lon, lat] order.
func (i *Incident) Point() orb.Point {
	return orb.Point{i.Longitude, i.Latitude}
}

// Hour is the hour of day the incident was reported at, 0-23.
func (i *Incident) Hour() int {
	return i.CrimeTime.Hour()
}

// Weekday is taken from CrimeDate; CrimeTime carries no date.
func (i *Incident) Weekday() time.Weekday {
	return i.CrimeDate.Weekday()
}
