package ingestion

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mr1hm/crime-dashboard/internal/config"
	"github.com/mr1hm/crime-dashboard/internal/models"
	"github.com/mr1hm/crime-dashboard/internal/worker"
)

var ErrMissingColumn = errors.New("missing required column")

// CSVSource loads the incident export. Rows are parsed in chunks on a worker
// pool and written back by index, so the result keeps file order.
type CSVSource struct {
	Path       string
	DateLayout string
	TimeLayout string
	Workers    int
	ChunkSize  int
}

func NewCSVSource(cfg *config.Config) *CSVSource {
	return &CSVSource{
		Path:       cfg.Data.Path,
		DateLayout: cfg.Data.DateLayout,
		TimeLayout: cfg.Data.TimeLayout,
		Workers:    cfg.Loader.Workers,
		ChunkSize:  cfg.Loader.ChunkSize,
	}
}

func (s *CSVSource) LoadIncidents(ctx context.Context) ([]models.Incident, error) {
	start := time.Now()

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("error opening incident file: %w", err)
	}
	defer f.Close()

	incidents, err := s.Parse(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("error loading %s: %w", s.Path, err)
	}

	slog.Info("incidents loaded", "path", s.Path, "count", len(incidents), "duration", time.Since(start))
	return incidents, nil
}

type chunk struct {
	start, end int
}

// Parse reads a full CSV document. Any unparsable row fails the whole parse;
// when several rows are bad the lowest row number is reported.
func (s *CSVSource) Parse(ctx context.Context, r io.Reader) ([]models.Incident, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("empty incident file")
	}
	if err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}

	cols, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading rows: %w", err)
	}

	incidents := make([]models.Incident, len(records))
	if len(records) == 0 {
		return incidents, nil
	}

	var (
		mu       sync.Mutex
		firstErr *RowError
	)
	processor := func(ctx context.Context, job worker.Job) error {
		c := job.(chunk)
		for i := c.start; i < c.end; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			in, err := s.parseRecord(records[i], cols)
			if err != nil {
				// Rows are numbered from 1, excluding the header line.
				rowErr := asRowError(i+1, err)
				mu.Lock()
				if firstErr == nil || rowErr.Row < firstErr.Row {
					firstErr = rowErr
				}
				mu.Unlock()
				return rowErr
			}
			incidents[i] = in
		}
		return nil
	}

	size := s.ChunkSize
	if size < 1 {
		size = len(records)
	}

	pool := worker.NewWorkerPool(s.Workers, s.Workers, processor)
	pool.Start(ctx)
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		if err := pool.Submit(ctx, chunk{start: start, end: end}); err != nil {
			break
		}
	}
	pool.Stop()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if firstErr != nil {
		return nil, firstErr
	}

	return incidents, nil
}

func (s *CSVSource) parseRecord(rec []string, cols columns) (models.Incident, error) {
	var in models.Incident

	date, err := time.Parse(s.DateLayout, strings.TrimSpace(rec[cols.date]))
	if err != nil {
		return in, &RowError{Column: colCrimeDate, Err: err}
	}
	in.CrimeDate = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	clock, err := time.Parse(s.TimeLayout, strings.TrimSpace(rec[cols.time]))
	if err != nil {
		return in, &RowError{Column: colCrimeTime, Err: err}
	}
	in.CrimeTime = time.Date(0, time.January, 1, clock.Hour(), clock.Minute(), clock.Second(), 0, time.UTC)

	in.Description = strings.TrimSpace(rec[cols.description])
	in.Location = strings.TrimSpace(rec[cols.location])

	lat, hasLat, err := parseOptionalFloat(rec[cols.latitude])
	if err != nil {
		return in, &RowError{Column: colLatitude, Err: err}
	}
	lon, hasLon, err := parseOptionalFloat(rec[cols.longitude])
	if err != nil {
		return in, &RowError{Column: colLongitude, Err: err}
	}
	if hasLat && hasLon {
		in.Latitude = lat
		in.Longitude = lon
		in.HasCoordinates = true
	}

	total, err := parseCount(rec[cols.total])
	if err != nil {
		return in, &RowError{Column: colTotalIncidents, Err: err}
	}
	in.TotalIncidents = total

	in.CrimeCode = optional(rec, cols.crimeCode)
	in.District = optional(rec, cols.district)
	in.Neighborhood = optional(rec, cols.neighborhood)
	in.Weapon = optional(rec, cols.weapon)
	in.Premise = optional(rec, cols.premise)

	return in, nil
}
