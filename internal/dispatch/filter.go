package dispatch

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/khovp/giaokho/internal/shared"
)

var foldCaser = cases.Fold()

// foldContains reports a case-folded substring match, Unicode-aware so the
// Vietnamese ledger text compares correctly.
func foldContains(haystack, needle string) bool {
	return strings.Contains(foldCaser.String(haystack), foldCaser.String(needle))
}

// Matches evaluates the full composite filter against one record. Every
// clause must pass; the function is pure.
func Matches(rec DispatchRecord, f FilterState) bool {
	if f.Search != "" {
		hit := false
		for _, field := range searchFields {
			if val := rec.FieldString(field); val != "" && foldContains(val, f.Search) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}

	if f.Bucket != "" && f.Bucket != BucketAll {
		if rec.PackDate == nil || shared.FormatDMY(rec.PackDate) != f.Bucket {
			return false
		}
	}

	if f.OrderKD != "" && !foldContains(rec.OrderKD, f.OrderKD) {
		return false
	}
	if f.OrderVL != "" && !foldContains(rec.OrderVL, f.OrderVL) {
		return false
	}

	switch f.StatusMode {
	case StatusModeExported:
		if !rec.IsDispatched() {
			return false
		}
	case StatusModePending:
		if rec.IsDispatched() {
			return false
		}
	}

	// Records without a pack date pass the range vacuously. Arguably a gap,
	// but the behavior is long-standing and depended on by existing sheets.
	if f.DateFrom != nil && f.DateTo != nil && rec.PackDate != nil {
		day := shared.DayFloor(*rec.PackDate)
		if day.Before(shared.DayFloor(*f.DateFrom)) || day.After(shared.DayFloor(*f.DateTo)) {
			return false
		}
	}

	return true
}

// ApplyFilter returns the entries passing the filter, preserving order.
func ApplyFilter(entries []Entry, f FilterState) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if Matches(e.Record, f) {
			out = append(out, e)
		}
	}
	return out
}
