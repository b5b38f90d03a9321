package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mr1hm/crime-dashboard/internal/config"
	"github.com/mr1hm/crime-dashboard/internal/ingestion"
	"github.com/mr1hm/crime-dashboard/internal/logging"
	"github.com/mr1hm/crime-dashboard/internal/repository"
)

// crime-import parses the CSV export at DATA_PATH and writes it to the SQLite
// snapshot at DB_PATH. Pointing the dashboard's DATA_PATH at that snapshot
// skips CSV parsing on startup.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	if ingestion.IsSnapshotPath(cfg.Data.Path) {
		logging.Fatalf("DATA_PATH %s is already a snapshot; point it at the CSV export", cfg.Data.Path)
	}

	slog.Info("Import starting", "from", cfg.Data.Path, "to", cfg.DB.Path)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}

	start := time.Now()
	n, err := ingestion.Import(ctx, ingestion.NewCSVSource(cfg), db)
	if cerr := db.Close(); cerr != nil {
		slog.Error("database close error", "error", cerr)
	}
	if err != nil {
		slog.Error("import failed", "error", err)
		os.Exit(1)
	}

	slog.Info("import complete", "incidents", n, "duration", time.Since(start))
}
