package dispatch

import (
	"sort"
	"time"
)

// dateSortKeys are the fields compared as instants rather than strings.
var dateSortKeys = map[string]bool{
	FieldPackDate: true,
	FieldShipDate: true,
}

// ValidSortKey reports whether key names a sortable ledger field.
func ValidSortKey(key string) bool {
	for _, field := range searchFields {
		if key == field {
			return true
		}
	}
	return false
}

// SortEntries orders the entries by the sort state and returns a new slice.
// The sort is stable so repeated sorts of the same filtered set keep a
// deterministic tie order. SortKeyNone preserves the input order, which is
// the store's newest-first load order.
func SortEntries(entries []Entry, s SortState) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	if s.Key == SortKeyNone {
		return out
	}

	less := lessFunc(s.Key)
	sort.SliceStable(out, func(i, j int) bool {
		if s.Descending {
			return less(out[j].Record, out[i].Record)
		}
		return less(out[i].Record, out[j].Record)
	})
	return out
}

func lessFunc(key string) func(a, b DispatchRecord) bool {
	if dateSortKeys[key] {
		return func(a, b DispatchRecord) bool {
			return dateValue(a, key).Before(dateValue(b, key))
		}
	}
	if key == FieldQuantity {
		return func(a, b DispatchRecord) bool {
			return a.Quantity < b.Quantity
		}
	}
	return func(a, b DispatchRecord) bool {
		return a.FieldString(key) < b.FieldString(key)
	}
}

// dateValue treats an absent date as the epoch minimum so undated records
// sort first ascending.
func dateValue(rec DispatchRecord, key string) time.Time {
	var t *time.Time
	if key == FieldPackDate {
		t = rec.PackDate
	} else {
		t = rec.ShipDate
	}
	if t == nil {
		return time.Time{}
	}
	return *t
}
