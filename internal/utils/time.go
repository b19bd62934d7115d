package utils

import (
	"time"
)

// AtMidnight truncates a timestamp to the start of its calendar day in UTC.
// Pickup slots are keyed by day, so every date that reaches the store goes
// through this first.
func AtMidnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParsePickupDate accepts the date formats clients send for pickup days.
func ParsePickupDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// DaysUntil returns the whole days from now until t, never negative.
func DaysUntil(t time.Time) int {
	d := time.Until(t)
	if d <= 0 {
		return 0
	}
	return int((d + 24*time.Hour - time.Nanosecond) / (24 * time.Hour))
}
