package heuristics

import (
	"math"
	"strings"
	"time"

	"opsdesk/internal/compliance"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate reads the loosely formatted dates found on shipment records.
// Values without a zone are taken as UTC.
func ParseDate(t compliance.Text) (time.Time, bool) {
	s := strings.TrimSpace(string(t))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			return v.UTC(), true
		}
	}
	return time.Time{}, false
}

// expectedArrival is the ETA, falling back to the arrival date.
func expectedArrival(s compliance.Shipment) (time.Time, bool) {
	if t, ok := ParseDate(s.ETA); ok {
		return t, true
	}
	return ParseDate(s.ArrivalDate)
}

// DelayDays is the whole number of days, rounded up, that the expected
// arrival trails the promised date. ok is false when either date is missing.
func DelayDays(s compliance.Shipment) (int, bool) {
	promised, ok := ParseDate(s.PromisedDate)
	if !ok {
		return 0, false
	}
	arrival, ok := expectedArrival(s)
	if !ok {
		return 0, false
	}
	return int(math.Ceil(arrival.Sub(promised).Hours() / 24)), true
}
