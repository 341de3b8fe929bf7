package maintenance

import (
	"context"
	"testing"
	"time"
)

func TestStoredDataTypes(t *testing.T) {
	// Test that all stored data types are properly defined
	expected := []StoredDataType{
		ReportRuns,
		StationVisits,
		TripSummaries,
	}

	expectedStrings := []string{
		"report_runs",
		"station_visits",
		"trip_summaries",
	}

	for i, dataType := range expected {
		if string(dataType) != expectedStrings[i] {
			t.Errorf("Expected %s, got %s", expectedStrings[i], string(dataType))
		}
	}
}

func TestCleanupResult(t *testing.T) {
	result := CleanupResult{
		DataType:       ReportRuns,
		RecordsDeleted: 42,
		RetentionDays:  30,
		Success:        true,
		Error:          "",
	}

	if result.DataType != ReportRuns {
		t.Errorf("Expected ReportRuns, got %s", result.DataType)
	}
	if result.RecordsDeleted != 42 {
		t.Errorf("Expected 42 records deleted, got %d", result.RecordsDeleted)
	}
	if !result.Success {
		t.Error("Expected success to be true")
	}
}

func TestCleanupRejectsNonPositiveRetention(t *testing.T) {
	m := &Maintenance{}

	if _, err := m.CleanupOldRuns(context.Background(), 0); err == nil {
		t.Error("Expected error for zero retention")
	}
	if _, err := m.CleanupOldRuns(context.Background(), -7); err == nil {
		t.Error("Expected error for negative retention")
	}
}

func TestDefaultSchedulerConfig(t *testing.T) {
	cfg := DefaultSchedulerConfig()

	if cfg.CleanupInterval != 24*time.Hour {
		t.Errorf("Expected daily cleanup, got %v", cfg.CleanupInterval)
	}
	if cfg.RetentionDays <= 0 {
		t.Errorf("Expected positive retention default, got %d", cfg.RetentionDays)
	}
}
