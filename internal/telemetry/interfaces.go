package telemetry

import (
	"context"

	"github.com/niatrack-data/pkg/trips/models"
)

// Fetcher retrieves one telemetry snapshot: a mapping of key to ordered
// samples for the device over [startTs, endTs] in UTC milliseconds. An
// empty mapping is a valid result meaning no data in range.
type Fetcher interface {
	FetchTimeseries(ctx context.Context, deviceID string, keys []string, startTs, endTs int64) (map[string][]models.Sample, error)
}
