package report

import "errors"

var (
	// ErrEmptyFeed signals that the telemetry snapshot held no samples for
	// any requested key. Callers treat it as "no data in range", not as a
	// failure.
	ErrEmptyFeed = errors.New("telemetry feed is empty")

	// ErrMissingColumn signals that the snapshot lacks the trip-id or
	// station key. The pipeline cannot attribute events and must abort.
	ErrMissingColumn = errors.New("required telemetry column missing")
)
