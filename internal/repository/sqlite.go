package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mr1hm/crime-dashboard/internal/models"
	_ "modernc.org/sqlite"
)

const (
	snapshotDateLayout = "2006-01-02"
	snapshotTimeLayout = "15:04:05"
)

// SQLiteDB stores a snapshot of the incident table so the dashboard can
// start from it instead of re-parsing the CSV export.
type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	// :memory: databases are per-connection.
	db.SetMaxOpenConns(1)

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS incidents (
			seq INTEGER PRIMARY KEY,
			crime_date TEXT NOT NULL,
			crime_time TEXT NOT NULL,
			crime_code TEXT,
			description TEXT NOT NULL,
			location TEXT NOT NULL,
			district TEXT,
			neighborhood TEXT,
			weapon TEXT,
			premise TEXT,
			latitude REAL,
			longitude REAL,
			total_incidents INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_incidents_location ON incidents(location);
	`

	_, err := s.db.Exec(schema)
	return err
}

// ReplaceIncidents swaps the stored snapshot for incidents in one transaction.
func (s *SQLiteDB) ReplaceIncidents(ctx context.Context, incidents []models.Incident) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM incidents`); err != nil {
		return fmt.Errorf("error clearing incidents: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO incidents (
			seq, crime_date, crime_time, crime_code, description, location,
			district, neighborhood, weapon, premise, latitude, longitude, total_incidents
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := range incidents {
		in := &incidents[i]

		var lat, lon sql.NullFloat64
		if in.HasCoordinates {
			lat = sql.NullFloat64{Float64: in.Latitude, Valid: true}
			lon = sql.NullFloat64{Float64: in.Longitude, Valid: true}
		}

		_, err := stmt.ExecContext(ctx,
			i+1,
			in.CrimeDate.Format(snapshotDateLayout),
			in.CrimeTime.Format(snapshotTimeLayout),
			in.CrimeCode,
			in.Description,
			in.Location,
			in.District,
			in.Neighborhood,
			in.Weapon,
			in.Premise,
			lat,
			lon,
			in.TotalIncidents,
		)
		if err != nil {
			return fmt.Errorf("error inserting incident %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}

// LoadIncidents returns the snapshot in the order it was written.
func (s *SQLiteDB) LoadIncidents(ctx context.Context) ([]models.Incident, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT crime_date, crime_time, crime_code, description, location,
			district, neighborhood, weapon, premise, latitude, longitude, total_incidents
		FROM incidents
		ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("error querying incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]models.Incident, 0)
	for rows.Next() {
		var (
			in                                            models.Incident
			date, clock                                   string
			code, district, neighborhood, weapon, premise sql.NullString
			lat, lon                                      sql.NullFloat64
		)
		if err := rows.Scan(&date, &clock, &code, &in.Description, &in.Location,
			&district, &neighborhood, &weapon, &premise, &lat, &lon, &in.TotalIncidents); err != nil {
			return nil, fmt.Errorf("error scanning incident: %w", err)
		}

		if in.CrimeDate, err = time.Parse(snapshotDateLayout, date); err != nil {
			return nil, fmt.Errorf("error parsing stored date %q: %w", date, err)
		}
		if in.CrimeTime, err = time.Parse(snapshotTimeLayout, clock); err != nil {
			return nil, fmt.Errorf("error parsing stored time %q: %w", clock, err)
		}

		in.CrimeCode = code.String
		in.District = district.String
		in.Neighborhood = neighborhood.String
		in.Weapon = weapon.String
		in.Premise = premise.String
		if lat.Valid && lon.Valid {
			in.Latitude = lat.Float64
			in.Longitude = lon.Float64
			in.HasCoordinates = true
		}

		incidents = append(incidents, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating incidents: %w", err)
	}

	return incidents, nil
}

func (s *SQLiteDB) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM incidents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting incidents: %w", err)
	}
	return n, nil
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
