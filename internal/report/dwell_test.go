package report

import (
	"math"
	"testing"

	"github.com/niatrack-data/pkg/trips/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeDwellIntervals(t *testing.T) {
	opts := DefaultOptions()
	trip := TripSequence{NIA: "1", Events: []models.EventRecord{
		record(0, "1", "En Asignación", nil),
		record(120000, "1", "Balanza", nil),
		record(300000, "1", "Desasignación", nil),
	}}

	d := ComputeDwell(trip, opts)

	if !d.Events[0].Valid || !almostEqual(d.Events[0].IntervalMin, 2) {
		t.Errorf("Event 0: expected 2 minutes, got %v valid=%v", d.Events[0].IntervalMin, d.Events[0].Valid)
	}
	if !d.Events[1].Valid || !almostEqual(d.Events[1].IntervalMin, 3) {
		t.Errorf("Event 1: expected 3 minutes, got %v valid=%v", d.Events[1].IntervalMin, d.Events[1].Valid)
	}
	if d.Events[2].Valid {
		t.Error("Last event must have no forward interval")
	}
}

func TestComputeDwellPermanence(t *testing.T) {
	opts := DefaultOptions()
	trip := TripSequence{NIA: "1", Events: []models.EventRecord{
		record(0, "1", "En Asignación", nil),
		record(7200000, "1", "Desasignación", nil),
	}}

	d := ComputeDwell(trip, opts)

	if d.EntryTS != 0 || d.ExitTS != 7200000 {
		t.Errorf("Expected entry 0 exit 7200000, got %d %d", d.EntryTS, d.ExitTS)
	}
	if !almostEqual(d.PermanenceHours, 2) {
		t.Errorf("Expected 2 hours permanence, got %v", d.PermanenceHours)
	}
	if d.EntryLocal.Hour() != 19 {
		// 1970-01-01 00:00 UTC is 19:00 the previous day in Lima.
		t.Errorf("Expected entry at 19:00 local, got %02d:00", d.EntryLocal.Hour())
	}
}

func TestComputeDwellUsesEarliestStartAndLatestEnd(t *testing.T) {
	opts := DefaultOptions()
	trip := TripSequence{NIA: "1", Events: []models.EventRecord{
		record(100, "1", "En Asignación", nil),
		record(200, "1", "En Asignación", nil),
		record(300, "1", "Desasignación", nil),
		record(400, "1", "Desasignación", nil),
	}}

	d := ComputeDwell(trip, opts)
	if d.EntryTS != 100 {
		t.Errorf("Expected earliest start marker, got %d", d.EntryTS)
	}
	if d.ExitTS != 400 {
		t.Errorf("Expected latest end marker, got %d", d.ExitTS)
	}
}

func TestComputeDwellDropsNegativeIntervals(t *testing.T) {
	opts := DefaultOptions()
	// Out-of-order timestamp in the middle: its forward gap is negative
	// and must be invalidated, not summed.
	trip := TripSequence{NIA: "1", Events: []models.EventRecord{
		record(0, "1", "En Asignación", nil),
		record(500000, "1", "Balanza", nil),
		record(400000, "1", "Descarga", nil),
		record(600000, "1", "Desasignación", nil),
	}}

	d := ComputeDwell(trip, opts)

	if d.Events[1].Valid {
		t.Error("Expected negative forward interval to be invalid")
	}
	for i, e := range d.Events {
		if e.Valid && e.IntervalMin < 0 {
			t.Errorf("Event %d: negative interval marked valid", i)
		}
	}
}
