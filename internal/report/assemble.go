package report

import "github.com/niatrack-data/pkg/trips/models"

// TripSequence is one trip's events in ascending timestamp order, with the
// shared attributes resolved from its closing event.
type TripSequence struct {
	NIA    string
	Events []models.EventRecord
	Attrs  map[string]string
}

// Assemble groups normalized records by trip id, dropping records that
// carry none. Shared attributes (plate, driver, company, document) are
// typically only reported at closeout, so when a trip has a closing-marker
// event its values back-fill every event missing them.
func Assemble(records []models.EventRecord, opts Options) []TripSequence {
	order := make([]string, 0)
	grouped := make(map[string][]models.EventRecord)

	for _, rec := range records {
		if rec.NIA == "" {
			continue // unattributable, discarded by contract
		}
		if _, ok := grouped[rec.NIA]; !ok {
			order = append(order, rec.NIA)
		}
		grouped[rec.NIA] = append(grouped[rec.NIA], rec)
	}

	trips := make([]TripSequence, 0, len(order))
	for _, nia := range order {
		events := grouped[nia]

		var closing *models.EventRecord
		for i := len(events) - 1; i >= 0; i-- {
			if events[i].Station == opts.ClosingMarker {
				closing = &events[i]
				break
			}
		}

		attrs := make(map[string]string, len(opts.AttrKeys))
		for _, key := range opts.AttrKeys {
			if closing != nil && closing.Attrs[key] != "" {
				attrs[key] = closing.Attrs[key]
				continue
			}
			for _, e := range events {
				if e.Attrs[key] != "" {
					attrs[key] = e.Attrs[key]
					break
				}
			}
		}

		if closing != nil {
			events = backfill(events, closing, opts.AttrKeys)
		}

		trips = append(trips, TripSequence{NIA: nia, Events: events, Attrs: attrs})
	}

	return trips
}

// backfill returns a copy of events where attributes left empty adopt the
// closing event's values. Input records stay untouched.
func backfill(events []models.EventRecord, closing *models.EventRecord, attrKeys []string) []models.EventRecord {
	out := make([]models.EventRecord, len(events))
	for i, e := range events {
		attrs := make(map[string]string, len(e.Attrs))
		for k, v := range e.Attrs {
			attrs[k] = v
		}
		for _, key := range attrKeys {
			if attrs[key] == "" && closing.Attrs[key] != "" {
				attrs[key] = closing.Attrs[key]
			}
		}
		e.Attrs = attrs
		out[i] = e
	}
	return out
}

// Complete reports whether the trip has at least one start marker and one
// end marker, with the earliest start strictly before the latest end. Open
// trips produce unbounded dwell figures and are filtered, not reported.
func (t TripSequence) Complete(opts Options) bool {
	var minStart, maxEnd int64 = -1, -1
	for _, e := range t.Events {
		switch e.Station {
		case opts.StartMarker:
			if minStart < 0 || e.TS < minStart {
				minStart = e.TS
			}
		case opts.EndMarker:
			if e.TS > maxEnd {
				maxEnd = e.TS
			}
		}
	}
	return minStart >= 0 && maxEnd >= 0 && minStart < maxEnd
}

// FilterComplete drops incomplete trips. Not an error condition.
func FilterComplete(trips []TripSequence, opts Options) []TripSequence {
	out := make([]TripSequence, 0, len(trips))
	for _, t := range trips {
		if t.Complete(opts) {
			out = append(out, t)
		}
	}
	return out
}
