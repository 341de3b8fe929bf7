package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/niatrack-data/internal/common/alert"
	"github.com/niatrack-data/internal/common/db"
	"github.com/niatrack-data/internal/common/logger"
	"github.com/niatrack-data/internal/metrics"
	"github.com/niatrack-data/internal/publisher"
	"github.com/niatrack-data/internal/report"
	"github.com/niatrack-data/internal/telemetry"
	"github.com/niatrack-data/internal/timerange"
	"github.com/niatrack-data/pkg/trips/models"
)

// Config for the periodic report runner.
type Config struct {
	Interval         time.Duration
	DeviceID         string
	Keys             []string
	CSVPath          string // empty disables the CSV snapshot
	FailureThreshold int    // consecutive failures before a webhook alert
}

// Runner drives the full cycle on a ticker: resolve the window, fetch one
// telemetry snapshot, run the pipeline, then fan the report out to the
// configured sinks. Every cycle works on its own snapshot, so ticks share
// nothing but the published "latest" pointer.
type Runner struct {
	config    Config
	fetcher   telemetry.Fetcher
	ranges    *timerange.Resolver
	pipeline  *report.Pipeline
	opts      report.Options
	store     *db.ReportStore          // nil when persistence is disabled
	publisher *publisher.NATSPublisher // nil when publishing is disabled
	alerts    *alert.Client
	collector *metrics.Collector
	logger    logger.Logger

	mu        sync.RWMutex
	latest    *models.Report
	failures  int
	isRunning bool
	cancelFn  context.CancelFunc
}

func New(
	cfg Config,
	fetcher telemetry.Fetcher,
	ranges *timerange.Resolver,
	opts report.Options,
	store *db.ReportStore,
	pub *publisher.NATSPublisher,
	alerts *alert.Client,
	collector *metrics.Collector,
	log logger.Logger,
) *Runner {
	return &Runner{
		config:    cfg,
		fetcher:   fetcher,
		ranges:    ranges,
		pipeline:  report.New(opts, log),
		opts:      opts,
		store:     store,
		publisher: pub,
		alerts:    alerts,
		collector: collector,
		logger:    log,
	}
}

// Start runs an initial cycle, then one per interval until the context is
// cancelled.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.isRunning {
		r.mu.Unlock()
		return fmt.Errorf("runner already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancelFn = cancel
	r.isRunning = true
	r.mu.Unlock()

	r.logger.Info("Starting report runner",
		"interval", r.config.Interval,
		"device_id", r.config.DeviceID,
		"keys", len(r.config.Keys))

	if err := r.runOnce(ctx); err != nil {
		r.logger.Error("Initial report run failed", "error", err)
	}

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Report runner stopped")
			return nil
		case <-ticker.C:
			if err := r.runOnce(ctx); err != nil {
				r.logger.Error("Report run failed", "error", err)
			}
		}
	}
}

// Stop cancels the run loop.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.isRunning {
		return
	}
	if r.cancelFn != nil {
		r.cancelFn()
	}
	r.isRunning = false
}

// Latest returns the most recent report, or nil before the first
// successful run.
func (r *Runner) Latest() *models.Report {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest
}

func (r *Runner) runOnce(ctx context.Context) error {
	started := time.Now()

	startTs, endTs, err := r.ranges.Resolve()
	if err != nil {
		return r.fail("range", fmt.Errorf("resolving range: %w", err))
	}

	fetchStart := time.Now()
	feed, err := r.fetcher.FetchTimeseries(ctx, r.config.DeviceID, r.config.Keys, startTs, endTs)
	if err != nil {
		return r.fail("fetch", fmt.Errorf("fetching telemetry: %w", err))
	}
	r.collector.FetchDuration.Observe(time.Since(fetchStart).Seconds())

	rep, err := r.pipeline.Run(feed, startTs, endTs)
	if err != nil {
		return r.fail("pipeline", err)
	}

	if r.config.CSVPath != "" {
		if err := report.WriteCSVFile(r.config.CSVPath, rep, r.opts); err != nil {
			// CSV is a side effect; the run still counts.
			r.collector.RunFailures.WithLabelValues("csv").Inc()
			r.logger.Error("Failed to write CSV snapshot", "path", r.config.CSVPath, "error", err)
		}
	}

	if r.store != nil && !rep.Empty() {
		if _, err := r.store.StoreRun(ctx, rep); err != nil {
			r.collector.RunFailures.WithLabelValues("store").Inc()
			r.logger.Error("Failed to store report run", "error", err)
		}
	}

	if r.publisher != nil && !rep.Empty() {
		if err := r.publisher.PublishReport(rep); err != nil {
			r.collector.RunFailures.WithLabelValues("publish").Inc()
			r.logger.Error("Failed to publish report", "error", err)
		}
	}

	r.mu.Lock()
	r.latest = rep
	r.failures = 0
	r.mu.Unlock()

	r.collector.ObserveRun(time.Since(started),
		len(rep.Wide), rep.TripsSeen-len(rep.Wide), len(rep.Columns))

	return nil
}

// fail records a failed cycle and fires a webhook alert once the
// consecutive-failure threshold is reached.
func (r *Runner) fail(stage string, err error) error {
	r.collector.RunFailures.WithLabelValues(stage).Inc()

	r.mu.Lock()
	r.failures++
	failures := r.failures
	r.mu.Unlock()

	if r.alerts != nil && r.config.FailureThreshold > 0 && failures == r.config.FailureThreshold {
		if alertErr := r.alerts.SendRunFailure(failures, err); alertErr != nil {
			r.logger.Warn("Failed to send failure alert", "error", alertErr)
		}
	}

	return err
}
