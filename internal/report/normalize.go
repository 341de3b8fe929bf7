package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/niatrack-data/pkg/trips/models"
)

// Normalize joins the per-key telemetry series into a single table with one
// record per distinct timestamp. Keys sharing a timestamp land on the same
// record; duplicate samples for the same (timestamp, key) pair resolve to
// the first occurrence in the key's series.
func Normalize(feed map[string][]models.Sample, opts Options) ([]models.EventRecord, error) {
	empty := true
	for _, samples := range feed {
		if len(samples) > 0 {
			empty = false
			break
		}
	}
	if empty {
		return nil, ErrEmptyFeed
	}

	if _, ok := feed[opts.TripIDKey]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, opts.TripIDKey)
	}
	if _, ok := feed[opts.StationKey]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, opts.StationKey)
	}

	// Iterate keys in a fixed order so merge results are deterministic.
	keys := make([]string, 0, len(feed))
	for key := range feed {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	byTS := make(map[int64]*models.EventRecord)
	for _, key := range keys {
		seen := make(map[int64]bool)
		for _, sample := range feed[key] {
			ts := int64(sample.TS)
			if seen[ts] {
				continue // first occurrence wins for this key
			}
			seen[ts] = true

			rec, ok := byTS[ts]
			if !ok {
				rec = &models.EventRecord{TS: ts, Attrs: make(map[string]string)}
				byTS[ts] = rec
			}

			switch key {
			case opts.TripIDKey:
				rec.NIA = sample.Value
			case opts.StationKey:
				rec.Station = sample.Value
			default:
				rec.Attrs[key] = sample.Value
			}
		}
	}

	records := make([]models.EventRecord, 0, len(byTS))
	for _, rec := range byTS {
		rec.Local = time.UnixMilli(rec.TS).In(opts.Location)
		records = append(records, *rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].TS < records[j].TS
	})

	return records, nil
}
