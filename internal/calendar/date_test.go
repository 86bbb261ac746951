package calendar

import (
	"testing"
	"time"
)

func TestNormalizeAirDate_ShiftsOneDay(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"bare date", "2024-03-10", time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)},
		{"provider timestamp", "2024-03-10 02:00:00", time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)},
		{"rfc3339 utc", "2024-03-10T02:00:00Z", time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)},
		{"rfc3339 offset", "2024-03-10T02:00:00+09:00", time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)},
		{"month rollover", "2024-01-31", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{"year rollover", "2023-12-31 23:00:00", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"leap day", "2024-02-28", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeAirDate(tt.raw)
			if !ok {
				t.Fatalf("NormalizeAirDate(%q) not ok", tt.raw)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NormalizeAirDate(%q) = %v, want %v", tt.raw, got, tt.want)
			}
			if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 {
				t.Errorf("NormalizeAirDate(%q) kept a time component: %v", tt.raw, got)
			}
		})
	}
}

func TestNormalizeAirDate_AbsentOrUnparseable(t *testing.T) {
	for _, raw := range []string{"", "TBA", "10/03/2024", "2024-13-40"} {
		if _, ok := NormalizeAirDate(raw); ok {
			t.Errorf("NormalizeAirDate(%q) ok = true, want false", raw)
		}
	}
}
