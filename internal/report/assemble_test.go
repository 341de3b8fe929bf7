package report

import (
	"testing"

	"github.com/niatrack-data/pkg/trips/models"
)

func record(ts int64, nia, station string, attrs map[string]string) models.EventRecord {
	if attrs == nil {
		attrs = map[string]string{}
	}
	return models.EventRecord{TS: ts, NIA: nia, Station: station, Attrs: attrs}
}

func TestAssembleGroupsByTrip(t *testing.T) {
	opts := DefaultOptions()
	records := []models.EventRecord{
		record(0, "1", "En Asignación", nil),
		record(50, "2", "En Asignación", nil),
		record(100, "1", "Balanza", nil),
		record(150, "2", "Descarga", nil),
	}

	trips := Assemble(records, opts)
	if len(trips) != 2 {
		t.Fatalf("Expected 2 trips, got %d", len(trips))
	}
	if trips[0].NIA != "1" || len(trips[0].Events) != 2 {
		t.Errorf("Trip 1: expected 2 events, got %d", len(trips[0].Events))
	}
	if trips[1].NIA != "2" || len(trips[1].Events) != 2 {
		t.Errorf("Trip 2: expected 2 events, got %d", len(trips[1].Events))
	}
}

func TestAssembleDropsRecordsWithoutTripID(t *testing.T) {
	opts := DefaultOptions()
	records := []models.EventRecord{
		record(0, "1", "En Asignación", nil),
		record(50, "", "Balanza", nil),
		record(100, "1", "Desasignación", nil),
	}

	trips := Assemble(records, opts)
	if len(trips) != 1 {
		t.Fatalf("Expected 1 trip, got %d", len(trips))
	}
	if len(trips[0].Events) != 2 {
		t.Errorf("Expected unattributable record dropped, got %d events", len(trips[0].Events))
	}
}

func TestAssembleBackfillFromClosingEvent(t *testing.T) {
	opts := DefaultOptions()
	records := []models.EventRecord{
		record(0, "1", "En Asignación", nil),
		record(100, "1", "Balanza", map[string]string{"placa": "OLD-111"}),
		record(200, "1", "Desasignación", map[string]string{
			"placa":     "ABC-123",
			"conductor": "J. Pérez",
		}),
	}

	trips := Assemble(records, opts)
	if len(trips) != 1 {
		t.Fatalf("Expected 1 trip, got %d", len(trips))
	}
	trip := trips[0]

	// The closing event is authoritative for resolved trip attributes.
	if trip.Attrs["placa"] != "ABC-123" {
		t.Errorf("Expected resolved placa ABC-123, got %q", trip.Attrs["placa"])
	}
	if trip.Attrs["conductor"] != "J. Pérez" {
		t.Errorf("Expected resolved conductor J. Pérez, got %q", trip.Attrs["conductor"])
	}

	// Events missing an attribute adopt the closing value; values already
	// observed stay as reported.
	if trip.Events[0].Attrs["conductor"] != "J. Pérez" {
		t.Errorf("Expected back-filled conductor, got %q", trip.Events[0].Attrs["conductor"])
	}
	if trip.Events[1].Attrs["placa"] != "OLD-111" {
		t.Errorf("Expected observed placa untouched, got %q", trip.Events[1].Attrs["placa"])
	}

	// Input records must not be mutated by the back-fill.
	if records[0].Attrs["conductor"] != "" {
		t.Error("Back-fill mutated the input records")
	}
}

func TestAssembleNoBackfillWithoutClosingEvent(t *testing.T) {
	opts := DefaultOptions()
	records := []models.EventRecord{
		record(0, "1", "En Asignación", nil),
		record(100, "1", "Balanza", map[string]string{"placa": "ABC-123"}),
	}

	trips := Assemble(records, opts)
	if trips[0].Events[0].Attrs["placa"] != "" {
		t.Errorf("Expected no back-fill without closing event, got %q",
			trips[0].Events[0].Attrs["placa"])
	}
	if trips[0].Attrs["placa"] != "ABC-123" {
		t.Errorf("Expected first observed value as resolved attr, got %q", trips[0].Attrs["placa"])
	}
}

func TestTripCompleteness(t *testing.T) {
	opts := DefaultOptions()

	cases := []struct {
		name     string
		events   []models.EventRecord
		complete bool
	}{
		{
			name: "start then end",
			events: []models.EventRecord{
				record(0, "1", "En Asignación", nil),
				record(100, "1", "Desasignación", nil),
			},
			complete: true,
		},
		{
			name: "missing end",
			events: []models.EventRecord{
				record(0, "1", "En Asignación", nil),
				record(100, "1", "Balanza", nil),
			},
			complete: false,
		},
		{
			name: "missing start",
			events: []models.EventRecord{
				record(0, "1", "Balanza", nil),
				record(100, "1", "Desasignación", nil),
			},
			complete: false,
		},
		{
			name: "end before start",
			events: []models.EventRecord{
				record(0, "1", "Desasignación", nil),
				record(100, "1", "En Asignación", nil),
			},
			complete: false,
		},
		{
			name: "same instant",
			events: []models.EventRecord{
				record(100, "1", "En Asignación", nil),
				record(100, "1", "Desasignación", nil),
			},
			complete: false,
		},
	}

	for _, tc := range cases {
		trip := TripSequence{NIA: "1", Events: tc.events}
		if got := trip.Complete(opts); got != tc.complete {
			t.Errorf("%s: expected complete=%v, got %v", tc.name, tc.complete, got)
		}
	}
}

func TestFilterCompleteDropsOpenTrips(t *testing.T) {
	opts := DefaultOptions()
	trips := []TripSequence{
		{NIA: "1", Events: []models.EventRecord{
			record(0, "1", "En Asignación", nil),
			record(100, "1", "Desasignación", nil),
		}},
		{NIA: "2", Events: []models.EventRecord{
			record(0, "2", "En Asignación", nil),
		}},
	}

	kept := FilterComplete(trips, opts)
	if len(kept) != 1 || kept[0].NIA != "1" {
		t.Fatalf("Expected only trip 1 kept, got %d trips", len(kept))
	}
}
