package calendar

import "time"

// airDateFormats covers the provider's date forms: a bare date, the
// date-with-time it usually sends, and an offset-qualified timestamp.
var airDateFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
}

// NormalizeAirDate converts a raw air-date string into a calendar-safe
// date: shifted forward one day (the provider stamps episodes with the UTC
// night before they reach most audiences) and truncated to midnight. An
// empty or unparseable string yields ok=false; it never returns an error,
// so one bad episode cannot abort processing of the rest.
//
// The date component is taken as written, never converted between zones,
// so the result is the same for any input offset.
func NormalizeAirDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}

	for _, format := range airDateFormats {
		t, err := time.Parse(format, raw)
		if err != nil {
			continue
		}
		t = t.AddDate(0, 0, 1)
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}

	return time.Time{}, false
}
