package models

import "time"

// Sample is one raw telemetry observation for a single key.
type Sample struct {
	TS    Millis `json:"ts"`
	Value string `json:"value"`
}

// EventRecord is one normalized row of the telemetry table: every key that
// reported a value at this timestamp, merged into a single record.
type EventRecord struct {
	TS      int64             // UTC milliseconds
	Local   time.Time         // TS converted to the configured plant timezone
	NIA     string            // trip identifier, empty when the row carried none
	Station string            // raw station label as reported
	Label   string            // relabeled station name, set by the relabeler
	Attrs   map[string]string // shared attributes (placa, conductor, ...)

	// Forward gap to the next event of the same trip, in minutes.
	// Valid is false for the last event of a trip and for clock anomalies.
	IntervalMin float64
	Valid       bool
}

// StationVisit is one long-form row: total dwell minutes attributed to a
// relabeled station within one trip.
type StationVisit struct {
	NIA     string  `json:"nia"`
	Station string  `json:"station"`
	Minutes float64 `json:"minutes"`
}

// TripRow is one wide-pivot row: one complete trip with its per-station
// dwell breakdown. A station absent from Stations was never visited, which
// is not the same as a zero-minute visit.
type TripRow struct {
	NIA               string             `json:"nia"`
	Stations          map[string]float64 `json:"stations"`
	EntryLocal        time.Time          `json:"entry"`
	ExitLocal         time.Time          `json:"exit"`
	PermanenceHours   float64            `json:"permanence_hours"`
	ProcessingMinutes float64            `json:"processing_minutes"`
	Attrs             map[string]string  `json:"attrs,omitempty"`
}

// Report is the output of one pipeline run over a single telemetry snapshot.
type Report struct {
	Columns    []string       `json:"columns"` // station columns, first-seen order
	Wide       []TripRow      `json:"wide"`
	Long       []StationVisit `json:"long"`
	RangeStart int64          `json:"range_start"`
	RangeEnd   int64          `json:"range_end"`
	ComputedAt time.Time      `json:"computed_at"`

	// TripsSeen counts trips observed before the completeness filter, so
	// callers can tell how many open trips were dropped.
	TripsSeen int `json:"trips_seen"`
}

// Empty reports whether the run produced no trips.
func (r *Report) Empty() bool {
	return len(r.Wide) == 0
}
