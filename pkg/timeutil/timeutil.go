// Package timeutil provides day bucketing and date formatting helpers.
// Activity counters are aggregated per calendar day in UTC so the stored
// rows do not depend on the server timezone.
// No external dependencies - uses only standard library.
package timeutil

import "time"

// FormatRussianShort is the short Russian date format (DD.MM).
const FormatRussianShort = "02.01"

// StartOfDayUTC returns the start of the day (00:00:00) in UTC.
func StartOfDayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatRussianDay formats a time as a short day label (DD.MM).
func FormatRussianDay(t time.Time) string {
	return t.UTC().Format(FormatRussianShort)
}
