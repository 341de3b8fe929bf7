package maintenance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/niatrack-data/internal/common/db"
	"github.com/niatrack-data/internal/common/logger"
)

// CleanupScheduler handles periodic retention maintenance
type CleanupScheduler struct {
	maintenance *Maintenance
	logger      logger.Logger
	config      SchedulerConfig

	mu        sync.Mutex
	isRunning bool
	cancelFn  context.CancelFunc
}

// SchedulerConfig contains configuration for the cleanup scheduler
type SchedulerConfig struct {
	CleanupInterval time.Duration // How often to run retention cleanup
	RetentionDays   int           // Days of report runs to keep
}

// DefaultSchedulerConfig returns sensible defaults
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		CleanupInterval: 24 * time.Hour,
		RetentionDays:   30,
	}
}

// NewCleanupScheduler creates a new cleanup scheduler
func NewCleanupScheduler(database *db.DB, logger logger.Logger, config SchedulerConfig) *CleanupScheduler {
	return &CleanupScheduler{
		maintenance: New(database, logger),
		logger:      logger,
		config:      config,
	}
}

// Start begins periodic cleanup. It blocks until the context is cancelled.
func (s *CleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("cleanup scheduler is already running")
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancelFn = cancel
	s.isRunning = true
	s.mu.Unlock()

	s.logger.Info("Starting cleanup scheduler",
		"cleanup_interval", s.config.CleanupInterval,
		"retention_days", s.config.RetentionDays)

	// Initial cleanup on startup
	s.runCleanup(ctx)

	ticker := time.NewTicker(s.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Cleanup scheduler stopped")
			return nil
		case <-ticker.C:
			s.runCleanup(ctx)
		}
	}
}

// Stop cancels the scheduler loop
func (s *CleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	if s.cancelFn != nil {
		s.cancelFn()
	}
	s.isRunning = false
}

func (s *CleanupScheduler) runCleanup(ctx context.Context) {
	result, err := s.maintenance.CleanupOldRuns(ctx, s.config.RetentionDays)
	if err != nil {
		s.logger.Error("Retention cleanup failed", "error", err)
		return
	}
	s.logger.Debug("Retention cleanup finished",
		"data_type", string(result.DataType),
		"records_deleted", result.RecordsDeleted)
}
