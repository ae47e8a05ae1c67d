package shared

import (
	"fmt"
	"time"
)

// DMYLayout is the display format used across the ledger UI, the sidebar
// buckets and the export artifacts.
const DMYLayout = "02/01/2006"

// ISODateLayout formats a calendar date for file names.
const ISODateLayout = "2006-01-02"

// wireLayouts lists the timestamp shapes the table feed is known to emit.
var wireLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"01/02/2006 15:04:05",
}

// ParseWireDate parses a feed timestamp. An empty or unparseable value
// yields nil, matching the "present or absent" model for date fields.
func ParseWireDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range wireLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

// FormatDMY renders a date as DD/MM/YYYY, empty string when absent.
func FormatDMY(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DMYLayout)
}

// ParseDMY parses a DD/MM/YYYY bucket key back into a calendar date.
func ParseDMY(s string) (time.Time, error) {
	t, err := time.Parse(DMYLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse bucket date %q: %w", s, err)
	}
	return t, nil
}

// SameDay reports whether two instants fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// DayFloor truncates an instant to midnight of its calendar day.
func DayFloor(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SplitDMY breaks a date into zero-padded day, month and four-digit year
// strings for document headers.
func SplitDMY(t time.Time) (day, month, year string) {
	return fmt.Sprintf("%02d", t.Day()), fmt.Sprintf("%02d", int(t.Month())), fmt.Sprintf("%04d", t.Year())
}
