package report

import (
	"time"

	"github.com/niatrack-data/pkg/trips/models"
)

const (
	msPerMinute = 60000.0
	msPerHour   = 3600000.0
)

// TripDwell is a trip with its entry/exit instants and per-event forward
// intervals computed.
type TripDwell struct {
	TripSequence
	EntryTS         int64
	ExitTS          int64
	EntryLocal      time.Time
	ExitLocal       time.Time
	PermanenceHours float64
}

// ComputeDwell derives the trip's permanence window and the forward gap of
// every event to its successor. The last event has no forward gap, and a
// negative gap (an out-of-order timestamp from a reporting anomaly) is
// marked invalid rather than surfaced as an error.
func ComputeDwell(t TripSequence, opts Options) TripDwell {
	events := make([]models.EventRecord, len(t.Events))
	copy(events, t.Events)

	for i := range events {
		if i == len(events)-1 {
			events[i].Valid = false
			continue
		}
		delta := events[i+1].TS - events[i].TS
		if delta < 0 {
			events[i].Valid = false
			continue
		}
		events[i].IntervalMin = float64(delta) / msPerMinute
		events[i].Valid = true
	}

	var entry, exit int64 = -1, -1
	for _, e := range events {
		switch e.Station {
		case opts.StartMarker:
			if entry < 0 || e.TS < entry {
				entry = e.TS
			}
		case opts.EndMarker:
			if e.TS > exit {
				exit = e.TS
			}
		}
	}

	d := TripDwell{
		TripSequence: TripSequence{NIA: t.NIA, Events: events, Attrs: t.Attrs},
		EntryTS:      entry,
		ExitTS:       exit,
	}
	if entry >= 0 && exit >= 0 {
		d.EntryLocal = time.UnixMilli(entry).In(opts.Location)
		d.ExitLocal = time.UnixMilli(exit).In(opts.Location)
		d.PermanenceHours = float64(exit-entry) / msPerHour
	}
	return d
}
