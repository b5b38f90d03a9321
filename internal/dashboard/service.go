package dashboard

import (
	"log/slog"

	"github.com/jonboulle/clockwork"
	"github.com/mr1hm/crime-dashboard/internal/config"
	"github.com/mr1hm/crime-dashboard/internal/observability"
	"github.com/mr1hm/crime-dashboard/internal/repository"
)

const topCrimes = 5

// Result holds the seven views computed for one selection.
type Result struct {
	Location     string
	Rows         int // incidents at Location
	Years        []YearCount
	Distribution []Count
	HourWeekday  Matrix
	MonthWeekday Matrix
	YearMonth    Matrix
	Top          []Count
	Density      []DensityPoint // over the whole table, not just Location
}

// Service answers selection events. It holds no per-request state: every
// call filters the shared read-only table again.
type Service struct {
	table   *repository.Table
	mapCfg  config.MapConfig
	metrics *observability.Metrics
	clock   clockwork.Clock
}

func NewService(table *repository.Table, mapCfg config.MapConfig, metrics *observability.Metrics, clock clockwork.Clock) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		table:   table,
		mapCfg:  mapCfg,
		metrics: metrics,
		clock:   clock,
	}
}

func (s *Service) Table() *repository.Table {
	return s.table
}

// Compute filters the table to location and builds every view. An unknown
// location is not an error; it yields empty views.
func (s *Service) Compute(location string) *Result {
	start := s.clock.Now()

	rows := s.table.Filter(location)
	distribution := CountByDescription(rows)

	r := &Result{
		Location:     location,
		Rows:         len(rows),
		Years:        CountByYear(rows),
		Distribution: distribution,
		HourWeekday:  HourByWeekday(rows),
		MonthWeekday: MonthByWeekday(rows),
		YearMonth:    YearByMonth(rows, s.table.Years()),
		Top:          TopN(distribution, topCrimes),
		Density:      DensityPoints(s.table.All()),
	}

	outcome := "ok"
	if len(rows) == 0 && !s.table.HasLocation(location) {
		outcome = "unknown_location"
	}
	elapsed := s.clock.Since(start)
	s.metrics.FigureRequests.WithLabelValues(outcome).Inc()
	s.metrics.ComputeDuration.Observe(elapsed.Seconds())

	slog.Debug("figures computed", "location", location, "rows", len(rows), "outcome", outcome, "duration", elapsed)
	return r
}

// Figures computes the selection and returns the seven Plotly figures.
func (s *Service) Figures(location string) []Figure {
	return s.Compute(location).Figures(s.mapCfg)
}
