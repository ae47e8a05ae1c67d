package dispatch

import (
	"testing"
	"time"
)

func entriesWithPackDates(dates ...*time.Time) []Entry {
	entries := make([]Entry, len(dates))
	for i, d := range dates {
		rec := testRecord()
		rec.PackDate = d
		entries[i] = Entry{ID: RecordID(rune('a' + i)), Record: rec}
	}
	return entries
}

func TestSortEntriesNoneKeepsLoadOrder(t *testing.T) {
	entries := entriesWithPackDates(datePtr(2026, time.March, 1), datePtr(2026, time.February, 1))
	got := SortEntries(entries, SortState{Key: SortKeyNone})
	if got[0].ID != entries[0].ID || got[1].ID != entries[1].ID {
		t.Fatal("expected input order to be preserved")
	}
	got[0], got[1] = got[1], got[0]
	if entries[0].ID == got[0].ID {
		t.Fatal("expected a copied slice")
	}
}

func TestSortEntriesByPackDate(t *testing.T) {
	entries := entriesWithPackDates(
		datePtr(2026, time.March, 5),
		nil,
		datePtr(2026, time.January, 2),
	)
	asc := SortEntries(entries, SortState{Key: FieldPackDate})
	if asc[0].Record.PackDate != nil {
		t.Fatal("undated record must sort first ascending")
	}
	if !asc[2].Record.PackDate.After(*asc[1].Record.PackDate) {
		t.Fatal("expected ascending date order")
	}

	desc := SortEntries(entries, SortState{Key: FieldPackDate, Descending: true})
	if desc[2].Record.PackDate != nil {
		t.Fatal("undated record must sort last descending")
	}
	if !desc[0].Record.PackDate.After(*desc[1].Record.PackDate) {
		t.Fatal("expected descending date order")
	}
}

func TestSortEntriesByQuantityIsNumeric(t *testing.T) {
	q2 := testRecord()
	q2.Quantity = 2
	q10 := testRecord()
	q10.Quantity = 10
	entries := []Entry{{ID: "ten", Record: q10}, {ID: "two", Record: q2}}

	asc := SortEntries(entries, SortState{Key: FieldQuantity})
	if asc[0].ID != "two" {
		t.Fatal("expected 2 before 10, not lexicographic order")
	}
}

func TestSortEntriesIsStable(t *testing.T) {
	same := datePtr(2026, time.March, 5)
	entries := entriesWithPackDates(same, same, same)
	got := SortEntries(entries, SortState{Key: FieldPackDate})
	for i := range entries {
		if got[i].ID != entries[i].ID {
			t.Fatalf("tie order changed at %d", i)
		}
	}
}

func TestSortEntriesByStringField(t *testing.T) {
	a := testRecord()
	a.ItemName = "bánh răng"
	b := testRecord()
	b.ItemName = "trục cam"
	entries := []Entry{{ID: "b", Record: b}, {ID: "a", Record: a}}
	got := SortEntries(entries, SortState{Key: FieldItemName})
	if got[0].ID != "a" {
		t.Fatal("expected lexicographic ascending order")
	}
}

func TestValidSortKey(t *testing.T) {
	if !ValidSortKey(FieldPackDate) || !ValidSortKey(FieldOrderKD) {
		t.Fatal("known fields must validate")
	}
	if ValidSortKey("id") || ValidSortKey("") {
		t.Fatal("unknown keys must not validate")
	}
}
