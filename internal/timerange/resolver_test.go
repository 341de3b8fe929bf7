package timerange

import (
	"testing"
	"time"

	"github.com/niatrack-data/internal/common/config"
)

var lima = time.FixedZone("America/Lima", -5*3600)

func resolverAt(cfg config.RangeConfig, local time.Time) *Resolver {
	r := New(cfg, lima)
	r.now = func() time.Time { return local }
	return r
}

func TestResolveExplicitRange(t *testing.T) {
	cfg := config.RangeConfig{Mode: "explicit", StartTs: 1000, EndTs: 2000}
	r := New(cfg, lima)

	start, end, err := r.Resolve()
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if start != 1000 || end != 2000 {
		t.Errorf("Expected [1000, 2000), got [%d, %d)", start, end)
	}
}

func TestResolveExplicitInclusiveEnd(t *testing.T) {
	cfg := config.RangeConfig{Mode: "explicit", StartTs: 1000, EndTs: 2000, EndInclusive: true}
	r := New(cfg, lima)

	_, end, err := r.Resolve()
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if end != 2001 {
		t.Errorf("Inclusive end must extend the bound, got %d", end)
	}
}

func TestResolveRollingWindow(t *testing.T) {
	now := time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)
	cfg := config.RangeConfig{Mode: "rolling", RollingHours: 12}
	r := resolverAt(cfg, now)

	start, end, err := r.Resolve()
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if end != now.UnixMilli() {
		t.Errorf("Expected window ending now, got %d", end)
	}
	if end-start != 12*3600*1000 {
		t.Errorf("Expected 12 hour window, got %d ms", end-start)
	}
}

func TestResolveDayShift(t *testing.T) {
	// 10:30 local falls inside the 08:00-20:00 shift.
	local := time.Date(2024, 6, 1, 10, 30, 0, 0, lima)
	r := resolverAt(config.RangeConfig{Mode: "shift"}, local)

	start, end, err := r.Resolve()
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	wantStart := time.Date(2024, 6, 1, 8, 0, 0, 0, lima).UnixMilli()
	wantEnd := time.Date(2024, 6, 1, 20, 0, 0, 0, lima).UnixMilli()
	if start != wantStart || end != wantEnd {
		t.Errorf("Expected [%d, %d), got [%d, %d)", wantStart, wantEnd, start, end)
	}
}

func TestResolveNightShiftAfterMidnight(t *testing.T) {
	// 03:00 local belongs to the night shift that started yesterday 20:00.
	local := time.Date(2024, 6, 2, 3, 0, 0, 0, lima)
	r := resolverAt(config.RangeConfig{Mode: "shift"}, local)

	start, end, err := r.Resolve()
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	wantStart := time.Date(2024, 6, 1, 20, 0, 0, 0, lima).UnixMilli()
	wantEnd := time.Date(2024, 6, 2, 8, 0, 0, 0, lima).UnixMilli()
	if start != wantStart || end != wantEnd {
		t.Errorf("Expected [%d, %d), got [%d, %d)", wantStart, wantEnd, start, end)
	}
}

func TestResolveNightShiftBeforeMidnight(t *testing.T) {
	local := time.Date(2024, 6, 1, 22, 0, 0, 0, lima)
	r := resolverAt(config.RangeConfig{Mode: "shift"}, local)

	start, end, err := r.Resolve()
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	wantStart := time.Date(2024, 6, 1, 20, 0, 0, 0, lima).UnixMilli()
	wantEnd := time.Date(2024, 6, 2, 8, 0, 0, 0, lima).UnixMilli()
	if start != wantStart || end != wantEnd {
		t.Errorf("Expected [%d, %d), got [%d, %d)", wantStart, wantEnd, start, end)
	}
}

func TestResolveUnknownMode(t *testing.T) {
	r := New(config.RangeConfig{Mode: "lunar"}, lima)
	if _, _, err := r.Resolve(); err == nil {
		t.Error("Expected error for unknown mode")
	}
}
