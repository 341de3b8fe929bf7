package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/niatrack-data/internal/common/db"
	"github.com/niatrack-data/internal/common/logger"
)

// StoredDataType represents a category of persisted report data
type StoredDataType string

const (
	ReportRuns    StoredDataType = "report_runs"
	StationVisits StoredDataType = "station_visits"
	TripSummaries StoredDataType = "trip_summaries"
)

// CleanupResult represents the result of a cleanup operation
type CleanupResult struct {
	DataType       StoredDataType
	RecordsDeleted int64
	RetentionDays  int
	Success        bool
	Error          string
}

// Maintenance handles retention cleanup of stored report runs
type Maintenance struct {
	store  *db.ReportStore
	logger logger.Logger
}

// New creates a new Maintenance instance
func New(database *db.DB, logger logger.Logger) *Maintenance {
	return &Maintenance{
		store:  db.NewReportStore(database),
		logger: logger,
	}
}

// CleanupOldRuns removes report runs older than the retention window. Child
// tables (station_visits, trip_summaries) cascade off report_runs, so one
// delete covers all three.
func (m *Maintenance) CleanupOldRuns(ctx context.Context, retentionDays int) (*CleanupResult, error) {
	if retentionDays <= 0 {
		return nil, fmt.Errorf("retention days must be positive, got %d", retentionDays)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	m.logger.Info("Starting report run cleanup",
		"retention_days", retentionDays,
		"cutoff", cutoff)

	deleted, err := m.store.DeleteRunsBefore(ctx, cutoff)
	if err != nil {
		return &CleanupResult{
			DataType:      ReportRuns,
			RetentionDays: retentionDays,
			Success:       false,
			Error:         err.Error(),
		}, fmt.Errorf("cleaning up report runs: %w", err)
	}

	result := &CleanupResult{
		DataType:       ReportRuns,
		RecordsDeleted: deleted,
		RetentionDays:  retentionDays,
		Success:        true,
	}

	if deleted > 0 {
		m.logger.Info("Cleaned up old report runs",
			"runs_deleted", deleted,
			"retention_days", retentionDays)
	} else {
		m.logger.Debug("No report runs past retention")
	}

	return result, nil
}
