/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the agency record keeper server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, flags)
  2. Build the logger
  3. Open the SQLite store and apply migrations
  4. Open the document directory
  5. Create service, handler and router
  6. Start the reminder scheduler
  7. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port       HTTP server port (default: 8080, env PORT)
  -db         SQLite database path (default: records.db, env DATABASE_PATH)
              Use ":memory:" for in-memory database
  -uploads    Document directory (default: uploads, env UPLOAD_DIR)
  -log-level  debug, info, warn, error (default: info, env LOG_LEVEL)

ENVIRONMENT:
  LOG_FORMAT         json or console
  LOG_FILE           also write JSON logs to this rotating file
  CORS_ORIGINS       comma-separated allowed origins
  OFFICE_TZ          IANA zone deciding "today" (default: Local)
  REMINDER_INTERVAL  run the reminder digest this often, e.g. 1h (default: off)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

SEE ALSO:
  - config/config.go: Settings
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samvbk/insurance-dashboard/api"
	"github.com/samvbk/insurance-dashboard/config"
	"github.com/samvbk/insurance-dashboard/files"
	"github.com/samvbk/insurance-dashboard/logging"
	"github.com/samvbk/insurance-dashboard/records"
	"github.com/samvbk/insurance-dashboard/store/sqlite"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	disk, err := files.NewDisk(cfg.UploadDir)
	if err != nil {
		return fmt.Errorf("failed to open upload directory: %w", err)
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Initialize handler
	svc := records.NewService(disk, records.WithLogger(logger))
	handler := api.NewHandler(store, svc,
		api.WithLogger(logger),
		api.WithMetrics(api.NewMetrics(reg)),
		api.WithLocation(cfg.Location),
	)

	scheduler := api.NewReminderScheduler(handler, logger)
	scheduler.CheckInterval = cfg.ReminderInterval
	scheduler.Start()
	defer scheduler.Stop()

	// Create router
	router := api.NewRouter(handler, api.RouterConfig{
		CORSOrigins: cfg.CORSOrigins,
		Metrics:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Logger:      logger,
	})

	// Create server
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", cfg.Addr()),
			zap.String("db", cfg.DBPath),
			zap.String("uploads", disk.Root()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
