package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/niatrack-data/internal/api"
	"github.com/niatrack-data/internal/common/alert"
	"github.com/niatrack-data/internal/common/config"
	"github.com/niatrack-data/internal/common/db"
	"github.com/niatrack-data/internal/common/logger"
	"github.com/niatrack-data/internal/common/maintenance"
	"github.com/niatrack-data/internal/metrics"
	"github.com/niatrack-data/internal/publisher"
	"github.com/niatrack-data/internal/report"
	"github.com/niatrack-data/internal/runner"
	"github.com/niatrack-data/internal/telemetry"
	"github.com/niatrack-data/internal/timerange"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(
		logger.ParseLogLevel(cfg.Logging.Level),
		logger.ConsoleWriter(),
		logger.FileWriter(cfg.Logging.FilePath),
	)

	log.Info("NIA tracker service starting",
		"version", "1.0.0",
		"log_level", cfg.Logging.Level,
		"telemetry_url", cfg.Telemetry.BaseURL,
		"report_interval", cfg.Report.Interval,
	)

	if err := cfg.Telemetry.Validate(); err != nil {
		log.Fatal("Invalid telemetry configuration", "error", err)
	}
	if err := cfg.Range.Validate(); err != nil {
		log.Fatal("Invalid range configuration", "error", err)
	}
	if err := cfg.Database.Validate(); err != nil {
		log.Fatal("Invalid database configuration", "error", err)
	}

	opts := report.FromConfig(cfg.Report)
	collector := metrics.NewCollector()

	// Connect to database (optional sink)
	var store *db.ReportStore
	var database *db.DB
	if cfg.Database.Enabled {
		database, err = db.New(cfg.Database.ConnectionString(), log)
		if err != nil {
			log.Fatal("Failed to connect to database", "error", err)
		}
		defer database.Close()
		store = db.NewReportStore(database)
	}

	// Connect to NATS (optional sink)
	var pub *publisher.NATSPublisher
	if cfg.NATS.Enabled {
		pub, err = publisher.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.Subject, log, collector)
		if err != nil {
			log.Fatal("Failed to connect to NATS", "error", err)
		}
		defer pub.Close()
	}

	fetcher := telemetry.NewClient(cfg.Telemetry, log)
	ranges := timerange.New(cfg.Range, opts.Location)
	alerts := alert.NewClient(cfg.Alert.WebhookURL)

	runnerCfg := runner.Config{
		Interval:         cfg.Report.Interval,
		DeviceID:         cfg.Telemetry.DeviceID,
		Keys:             cfg.Telemetry.Keys,
		CSVPath:          cfg.Report.CSVPath,
		FailureThreshold: cfg.Alert.FailureThreshold,
	}
	reportRunner := runner.New(runnerCfg, fetcher, ranges, opts, store, pub, alerts, collector, log)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := reportRunner.Start(ctx); err != nil {
			log.Error("Report runner error", "error", err)
		}
	}()

	// Start retention cleanup when persistence is on
	if database != nil {
		cleanupCfg := maintenance.DefaultSchedulerConfig()
		cleanupCfg.RetentionDays = cfg.Database.RetentionDays
		cleanup := maintenance.NewCleanupScheduler(database, log, cleanupCfg)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := cleanup.Start(ctx); err != nil {
				log.Error("Cleanup scheduler error", "error", err)
			}
		}()
	}

	// Serve the report API and metrics
	server := api.NewServer(reportRunner, collector.Handler(), log)
	httpServer := &http.Server{Addr: cfg.API.Addr, Handler: server.Handler()}
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Report API listening", "addr", cfg.API.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Info("Shutdown signal received")

	cancel()
	httpServer.Shutdown(context.Background())
	wg.Wait()

	log.Info("NIA tracker service stopped")
}
