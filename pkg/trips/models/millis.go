package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Millis handles epoch-millisecond timestamps from the telemetry API,
// which some deployments emit as JSON numbers and others as quoted strings.
type Millis int64

// UnmarshalJSON accepts both numeric and string-encoded millisecond values.
func (m *Millis) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), "\"")
	if s == "null" || s == "" {
		return nil
	}

	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("unable to parse timestamp %q: %w", s, err)
	}

	*m = Millis(v)
	return nil
}

// MarshalJSON emits the value as a plain JSON number.
func (m Millis) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(m), 10)), nil
}

// Time converts the millisecond timestamp into the given location.
func (m Millis) Time(loc *time.Location) time.Time {
	return time.UnixMilli(int64(m)).In(loc)
}
