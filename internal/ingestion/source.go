package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/mr1hm/crime-dashboard/internal/config"
	"github.com/mr1hm/crime-dashboard/internal/repository"
)

// IsSnapshotPath reports whether path names a SQLite snapshot written by
// crime-import rather than a CSV export.
func IsSnapshotPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// OpenSource picks the loader for cfg.Data.Path. The returned close func
// must be called once loading is done.
func OpenSource(cfg *config.Config) (repository.IncidentSource, func() error, error) {
	if !IsSnapshotPath(cfg.Data.Path) {
		return NewCSVSource(cfg), func() error { return nil }, nil
	}

	db, err := repository.NewSQLiteDB(cfg.Data.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening snapshot %s: %w", cfg.Data.Path, err)
	}
	return db, db.Close, nil
}

// Import copies every incident from src into dst, replacing what dst held.
func Import(ctx context.Context, src repository.IncidentSource, dst repository.IncidentSnapshot) (int, error) {
	incidents, err := src.LoadIncidents(ctx)
	if err != nil {
		return 0, err
	}

	if err := dst.ReplaceIncidents(ctx, incidents); err != nil {
		return 0, fmt.Errorf("error writing snapshot: %w", err)
	}

	n, err := dst.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("error counting snapshot: %w", err)
	}
	if n != len(incidents) {
		return n, fmt.Errorf("snapshot holds %d incidents, expected %d", n, len(incidents))
	}

	slog.Info("snapshot written", "count", n)
	return n, nil
}
