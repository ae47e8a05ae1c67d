package dispatch

import (
	"strconv"
	"testing"
)

func numberedEntries(n int) []Entry {
	entries := make([]Entry, n)
	for i := range entries {
		entries[i] = Entry{ID: RecordID(strconv.Itoa(i)), Record: testRecord()}
	}
	return entries
}

func TestPageEntriesWindows(t *testing.T) {
	entries := numberedEntries(25)

	items, pg := PageEntries(entries, ViewWindow{Page: 1, PerPage: 10})
	if len(items) != 10 || items[0].ID != "0" {
		t.Fatalf("unexpected first page: len=%d first=%s", len(items), items[0].ID)
	}
	if pg.Total != 25 || pg.TotalPages != 3 {
		t.Fatalf("unexpected pagination: %+v", pg)
	}

	items, _ = PageEntries(entries, ViewWindow{Page: 3, PerPage: 10})
	if len(items) != 5 || items[0].ID != "20" {
		t.Fatalf("unexpected last page: len=%d", len(items))
	}
}

func TestPageEntriesPastEnd(t *testing.T) {
	entries := numberedEntries(5)
	items, pg := PageEntries(entries, ViewWindow{Page: 4, PerPage: 10})
	if len(items) != 0 {
		t.Fatalf("expected empty page, got %d items", len(items))
	}
	if pg.TotalPages != 1 {
		t.Fatalf("expected 1 total page, got %d", pg.TotalPages)
	}
}

func TestPageEntriesEmptySet(t *testing.T) {
	items, pg := PageEntries(nil, ViewWindow{Page: 1, PerPage: 10})
	if len(items) != 0 {
		t.Fatal("expected no items")
	}
	if pg.TotalPages != 1 {
		t.Fatalf("empty set must still render page 1 of 1, got %d", pg.TotalPages)
	}
}
