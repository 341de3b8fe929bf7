package timerange

import (
	"fmt"
	"time"

	"github.com/niatrack-data/internal/common/config"
)

const (
	dayShiftStartHour = 8  // 08:00 local
	dayShiftEndHour   = 20 // 20:00 local
)

// Resolver turns the configured window selection into concrete (startTs,
// endTs) UTC-millisecond bounds. Three modes are supported: an explicit
// range, a rolling window of N hours ending now, and the plant's day/night
// shift (08:00-20:00 / 20:00-08:00) in the configured local zone.
type Resolver struct {
	cfg config.RangeConfig
	loc *time.Location
	now func() time.Time
}

func New(cfg config.RangeConfig, loc *time.Location) *Resolver {
	return &Resolver{cfg: cfg, loc: loc, now: time.Now}
}

// Resolve returns the current window. EndInclusive shifts the end bound by
// one millisecond so callers can hand either convention to upstream APIs
// that treat endTs as exclusive.
func (r *Resolver) Resolve() (int64, int64, error) {
	start, end, err := r.resolve()
	if err != nil {
		return 0, 0, err
	}
	if r.cfg.EndInclusive {
		end++
	}
	return start, end, nil
}

func (r *Resolver) resolve() (int64, int64, error) {
	switch r.cfg.Mode {
	case "explicit":
		return r.cfg.StartTs, r.cfg.EndTs, nil
	case "rolling":
		now := r.now()
		return now.Add(-time.Duration(r.cfg.RollingHours) * time.Hour).UnixMilli(), now.UnixMilli(), nil
	case "shift":
		start, end := r.currentShift(r.now().In(r.loc))
		return start.UnixMilli(), end.UnixMilli(), nil
	default:
		return 0, 0, fmt.Errorf("unknown range mode: %s", r.cfg.Mode)
	}
}

// currentShift returns the bounds of the shift containing the local
// instant. The night shift spans midnight, so an early-morning instant
// belongs to the shift that started the previous evening.
func (r *Resolver) currentShift(local time.Time) (time.Time, time.Time) {
	year, month, day := local.Date()
	dayStart := time.Date(year, month, day, dayShiftStartHour, 0, 0, 0, r.loc)
	dayEnd := time.Date(year, month, day, dayShiftEndHour, 0, 0, 0, r.loc)

	switch {
	case local.Before(dayStart):
		// Night shift that started yesterday at 20:00.
		return dayEnd.AddDate(0, 0, -1), dayStart
	case local.Before(dayEnd):
		return dayStart, dayEnd
	default:
		// Night shift running until 08:00 tomorrow.
		return dayEnd, dayStart.AddDate(0, 0, 1)
	}
}
