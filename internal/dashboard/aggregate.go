package dashboard

import (
	"cmp"
	"slices"
	"time"

	"github.com/mr1hm/crime-dashboard/internal/models"
	"github.com/paulmach/orb"
)

// Count is one bar: a category label and the incidents in it.
type Count struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// Matrix is a heatmap grid. Z is indexed [row][column], rows follow Y and
// columns follow X.
type Matrix struct {
	X []int    `json:"x"`
	Y []string `json:"y"`
	Z [][]int  `json:"z"`
}

func newMatrix(x []int, y []string) Matrix {
	z := make([][]int, len(y))
	for i := range z {
		z[i] = make([]int, len(x))
	}
	return Matrix{X: x, Y: y, Z: z}
}

// Total sums every cell.
func (m Matrix) Total() int {
	n := 0
	for _, row := range m.Z {
		for _, v := range row {
			n += v
		}
	}
	return n
}

// DensityPoint is a map position and the summed incident weight at it.
type DensityPoint struct {
	Point  orb.Point `json:"point"`
	Weight int       `json:"weight"`
}

var weekdayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var monthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// weekdayRow puts Monday first.
func weekdayRow(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func seq(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

// CountByYear counts incidents per calendar year, oldest year first.
func CountByYear(incidents []models.Incident) []YearCount {
	byYear := make(map[int]int)
	for i := range incidents {
		byYear[incidents[i].CrimeDate.Year()]++
	}

	out := make([]YearCount, 0, len(byYear))
	for y, n := range byYear {
		out = append(out, YearCount{Year: y, Count: n})
	}
	slices.SortFunc(out, func(a, b YearCount) int { return cmp.Compare(a.Year, b.Year) })
	return out
}

// CountByDescription counts incidents per description, largest first. Equal
// counts keep the order in which the descriptions were first seen. Rows with
// an empty description are not counted.
func CountByDescription(incidents []models.Incident) []Count {
	index := make(map[string]int)
	out := make([]Count, 0)
	for i := range incidents {
		d := incidents[i].Description
		if d == "" {
			continue
		}
		j, ok := index[d]
		if !ok {
			j = len(out)
			index[d] = j
			out = append(out, Count{Label: d})
		}
		out[j].Value++
	}

	slices.SortStableFunc(out, func(a, b Count) int { return cmp.Compare(b.Value, a.Value) })
	return out
}

// TopN returns a copy of the first n entries of a sorted distribution.
func TopN(counts []Count, n int) []Count {
	n = min(n, len(counts))
	out := make([]Count, n)
	copy(out, counts[:n])
	return out
}

// HourByWeekday is the 24x7 grid of hour of day against day of week.
func HourByWeekday(incidents []models.Incident) Matrix {
	m := newMatrix(seq(0, 23), weekdayNames)
	for i := range incidents {
		m.Z[weekdayRow(incidents[i].Weekday())][incidents[i].Hour()]++
	}
	return m
}

// MonthByWeekday is the 12x7 grid of month against day of week.
func MonthByWeekday(incidents []models.Incident) Matrix {
	m := newMatrix(seq(1, 12), weekdayNames)
	for i := range incidents {
		d := incidents[i].CrimeDate
		m.Z[weekdayRow(d.Weekday())][int(d.Month())-1]++
	}
	return m
}

// YearByMonth is the years x 12 grid. The year columns are given by the
// caller so every location shares the full table's year axis; incidents in
// other years are not counted.
func YearByMonth(incidents []models.Incident, years []int) Matrix {
	m := newMatrix(slices.Clone(years), monthNames)
	col := make(map[int]int, len(years))
	for i, y := range years {
		col[y] = i
	}
	for i := range incidents {
		d := incidents[i].CrimeDate
		if c, ok := col[d.Year()]; ok {
			m.Z[int(d.Month())-1][c]++
		}
	}
	return m
}

// DensityPoints merges incidents at identical coordinates, summing their
// TotalIncidents weight. Incidents without coordinates are skipped. Points
// are returned in first-encounter order.
func DensityPoints(incidents []models.Incident) []DensityPoint {
	index := make(map[orb.Point]int)
	out := make([]DensityPoint, 0)
	for i := range incidents {
		in := &incidents[i]
		if !in.HasCoordinates {
			continue
		}
		p := in.Point()
		j, ok := index[p]
		if !ok {
			j = len(out)
			index[p] = j
			out = append(out, DensityPoint{Point: p})
		}
		out[j].Weight += in.TotalIncidents
	}
	return out
}
