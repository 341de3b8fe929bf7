package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/niatrack-data/pkg/trips/models"
)

// ReportStore persists computed reports. Each pipeline run becomes one row
// in trips.report_runs plus its long-form visits and per-trip summaries,
// keyed by run_id so retention cleanup cascades.
type ReportStore struct {
	db *DB
}

func NewReportStore(db *DB) *ReportStore {
	return &ReportStore{db: db}
}

// StoreRun writes one report atomically and returns the new run id.
func (s *ReportStore) StoreRun(ctx context.Context, rep *models.Report) (int, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var runID int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO trips.report_runs (range_start, range_end, trip_count, computed_at)
		VALUES ($1, $2, $3, $4)
		RETURNING run_id
	`, rep.RangeStart, rep.RangeEnd, len(rep.Wide), rep.ComputedAt).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("inserting report run: %w", err)
	}

	if err := s.copyVisits(tx, runID, rep.Long); err != nil {
		return 0, err
	}

	for _, row := range rep.Wide {
		if err := s.insertSummary(ctx, tx, runID, row); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing report run: %w", err)
	}

	s.db.logger.Info("Stored report run",
		"run_id", runID,
		"trips", len(rep.Wide),
		"visits", len(rep.Long))

	return runID, nil
}

// copyVisits bulk-inserts the long-form rows with COPY. The statement is
// unqualified, relying on search_path, since pq.CopyIn mishandles
// schema-qualified names in some versions.
func (s *ReportStore) copyVisits(tx *sql.Tx, runID int, visits []models.StationVisit) error {
	if len(visits) == 0 {
		return nil
	}

	stmt, err := tx.Prepare(pq.CopyIn("station_visits", "run_id", "nia", "station", "minutes"))
	if err != nil {
		return fmt.Errorf("preparing station visits copy: %w", err)
	}
	defer stmt.Close()

	for _, v := range visits {
		if _, err := stmt.Exec(runID, v.NIA, v.Station, v.Minutes); err != nil {
			return fmt.Errorf("adding station visit to batch: %w", err)
		}
	}

	if _, err := stmt.Exec(); err != nil {
		return fmt.Errorf("executing station visits copy: %w", err)
	}
	return nil
}

func (s *ReportStore) insertSummary(ctx context.Context, tx *sql.Tx, runID int, row models.TripRow) error {
	attrs, err := json.Marshal(row.Attrs)
	if err != nil {
		return fmt.Errorf("marshaling attrs for trip %s: %w", row.NIA, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO trips.trip_summaries (
			run_id, nia, entry_local, exit_local,
			permanence_hours, processing_minutes, attrs
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, runID, row.NIA, row.EntryLocal, row.ExitLocal,
		row.PermanenceHours, row.ProcessingMinutes, attrs)
	if err != nil {
		return fmt.Errorf("inserting summary for trip %s: %w", row.NIA, err)
	}
	return nil
}

// DeleteRunsBefore removes runs computed before the cutoff. Child rows go
// with them via ON DELETE CASCADE.
func (s *ReportStore) DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.conn.ExecContext(ctx, `
		DELETE FROM trips.report_runs
		WHERE computed_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting old report runs: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}
	return deleted, nil
}
