package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/mr1hm/crime-dashboard/internal/api"
	"github.com/mr1hm/crime-dashboard/internal/config"
	"github.com/mr1hm/crime-dashboard/internal/dashboard"
	"github.com/mr1hm/crime-dashboard/internal/ingestion"
	"github.com/mr1hm/crime-dashboard/internal/logging"
	"github.com/mr1hm/crime-dashboard/internal/observability"
	"github.com/mr1hm/crime-dashboard/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port, "data", cfg.Data.Path)

	metrics := observability.NewMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	table, err := loadTable(ctx, cfg, metrics)
	if err != nil {
		logging.Fatalf("Failed to load incidents: %v", err)
	}

	svc := dashboard.NewService(table, cfg.Map, metrics, clockwork.NewRealClock())

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(cfg.Server.RateLimitRPS))

	handler := api.NewHandler(svc, metrics)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}

// loadTable reads the whole incident table once. The server only starts
// after this returns.
func loadTable(ctx context.Context, cfg *config.Config, metrics *observability.Metrics) (*repository.Table, error) {
	start := time.Now()

	src, closeSrc, err := ingestion.OpenSource(cfg)
	if err != nil {
		return nil, err
	}
	defer closeSrc() //nolint:errcheck // read-only source

	incidents, err := src.LoadIncidents(ctx)
	if err != nil {
		return nil, err
	}
	metrics.LoadDuration.Observe(time.Since(start).Seconds())

	table := repository.NewTable(incidents)
	metrics.IncidentsLoaded.Set(float64(table.Len()))
	metrics.Locations.Set(float64(len(table.Locations())))

	if table.Len() == 0 {
		slog.Warn("incident table is empty, the location selector will have no options", "path", cfg.Data.Path)
	}
	slog.Info("incident table ready", "incidents", table.Len(), "locations", len(table.Locations()), "years", len(table.Years()))

	return table, nil
}
