package report

import (
	"errors"
	"time"

	"github.com/niatrack-data/internal/common/logger"
	"github.com/niatrack-data/pkg/trips/models"
)

// Pipeline runs the full reconstruction over one telemetry snapshot:
// normalize, assemble, filter incomplete trips, compute dwell, relabel,
// pivot. It holds no state between runs, so concurrent runs over
// independent snapshots are safe.
type Pipeline struct {
	opts   Options
	logger logger.Logger
}

func New(opts Options, log logger.Logger) *Pipeline {
	return &Pipeline{opts: opts, logger: log}
}

// Run computes the trip report for the snapshot covering [rangeStart,
// rangeEnd]. An empty snapshot yields an empty report, not an error; a
// snapshot missing the trip-id or station key is fatal for the run.
func (p *Pipeline) Run(feed map[string][]models.Sample, rangeStart, rangeEnd int64) (*models.Report, error) {
	started := time.Now()

	records, err := Normalize(feed, p.opts)
	if errors.Is(err, ErrEmptyFeed) {
		p.logger.Debug("No telemetry in range", "range_start", rangeStart, "range_end", rangeEnd)
		return p.emptyReport(rangeStart, rangeEnd), nil
	}
	if err != nil {
		return nil, err
	}

	trips := Assemble(records, p.opts)
	complete := FilterComplete(trips, p.opts)

	dwells := make([]TripDwell, 0, len(complete))
	for _, t := range complete {
		d := ComputeDwell(t, p.opts)
		d.Events = Relabel(d.Events, p.opts)
		dwells = append(dwells, d)
	}

	long, wide, columns := Pivot(dwells, p.opts)

	p.logger.Info("Computed trip report",
		"records", len(records),
		"trips", len(trips),
		"complete_trips", len(complete),
		"stations", len(columns),
		"duration_ms", time.Since(started).Milliseconds())

	return &models.Report{
		Columns:    columns,
		Wide:       wide,
		Long:       long,
		RangeStart: rangeStart,
		RangeEnd:   rangeEnd,
		ComputedAt: time.Now().UTC(),
		TripsSeen:  len(trips),
	}, nil
}

func (p *Pipeline) emptyReport(rangeStart, rangeEnd int64) *models.Report {
	return &models.Report{
		Columns:    []string{},
		Wide:       []models.TripRow{},
		Long:       []models.StationVisit{},
		RangeStart: rangeStart,
		RangeEnd:   rangeEnd,
		ComputedAt: time.Now().UTC(),
	}
}
