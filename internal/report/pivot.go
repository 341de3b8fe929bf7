package report

import "github.com/niatrack-data/pkg/trips/models"

// Pivot folds relabeled trips into the two output tables: the long-form
// (trip, station, minutes) table and the wide per-trip table. Station
// columns appear in first-seen order across all trips. A (trip, station)
// combination that never occurred is absent from the trip's map; a
// zero-minute visit is present with value zero.
func Pivot(trips []TripDwell, opts Options) ([]models.StationVisit, []models.TripRow, []string) {
	var columns []string
	seenColumn := make(map[string]bool)

	long := make([]models.StationVisit, 0)
	wide := make([]models.TripRow, 0, len(trips))

	for _, t := range trips {
		sums := make(map[string]float64)
		var labelOrder []string

		for _, e := range t.Events {
			if !e.Valid {
				continue // last event of the trip, or a negative gap
			}
			if _, ok := sums[e.Label]; !ok {
				labelOrder = append(labelOrder, e.Label)
			}
			sums[e.Label] += e.IntervalMin
		}

		for _, label := range labelOrder {
			long = append(long, models.StationVisit{
				NIA:     t.NIA,
				Station: label,
				Minutes: sums[label],
			})
			if !seenColumn[label] {
				seenColumn[label] = true
				columns = append(columns, label)
			}
		}

		var processing float64
		for _, station := range opts.ProcessingStations {
			if minutes, ok := sums[station]; ok {
				processing += minutes
			}
		}

		wide = append(wide, models.TripRow{
			NIA:               t.NIA,
			Stations:          sums,
			EntryLocal:        t.EntryLocal,
			ExitLocal:         t.ExitLocal,
			PermanenceHours:   t.PermanenceHours,
			ProcessingMinutes: processing,
			Attrs:             t.Attrs,
		})
	}

	return long, wide, columns
}
