package dispatch

import "github.com/khovp/giaokho/internal/shared"

// PageEntries slices one window out of the sorted entries. A page past the
// end yields an empty slice; the function never clamps, callers that want
// clamping (the HTTP layer does) clamp before composing the window.
func PageEntries(entries []Entry, w ViewWindow) ([]Entry, shared.Pagination) {
	pg := shared.NewPagination(w.Page, w.PerPage, len(entries))

	start := (pg.Page - 1) * pg.PerPage
	if start >= len(entries) {
		return []Entry{}, pg
	}
	end := start + pg.PerPage
	if end > len(entries) {
		end = len(entries)
	}
	return entries[start:end], pg
}
