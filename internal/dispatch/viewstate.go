package dispatch

import "time"

// StatusMode narrows the ledger by dispatch status.
type StatusMode string

const (
	StatusModeAll      StatusMode = "all"
	StatusModeExported StatusMode = "exported"
	StatusModePending  StatusMode = "pending"
)

// BucketAll selects every day bucket in the sidebar.
const BucketAll = "all"

// SortKeyNone leaves the ledger in load order (newest first).
const SortKeyNone = ""

// FilterState is the full filter criteria for the ledger view.
type FilterState struct {
	Search     string
	Bucket     string // BucketAll or a DD/MM/YYYY bucket key
	OrderKD    string
	OrderVL    string
	StatusMode StatusMode
	DateFrom   *time.Time
	DateTo     *time.Time
}

// SortState selects the ordering of the filtered ledger.
type SortState struct {
	Key        string // a wire field name, or SortKeyNone
	Descending bool
}

// ViewWindow selects one page of the sorted ledger.
type ViewWindow struct {
	Page    int // 1-based
	PerPage int
}

// Selection is the set of records marked for export or preview.
type Selection map[RecordID]struct{}

// Has reports membership.
func (s Selection) Has(id RecordID) bool {
	_, ok := s[id]
	return ok
}

// ViewState is the immutable view value threaded through the pipeline. Every
// transition returns a new value; transitions that change filter criteria
// clear the selection and rewind to page 1 so a confirmed export can never
// include records that are no longer visible.
type ViewState struct {
	Filter    FilterState
	Sort      SortState
	Window    ViewWindow
	Selection Selection
}

// DefaultViewState is the state after a fresh load.
func DefaultViewState() ViewState {
	return ViewState{
		Filter:    FilterState{Bucket: BucketAll, StatusMode: StatusModeAll},
		Sort:      SortState{Key: SortKeyNone},
		Window:    ViewWindow{Page: 1, PerPage: 10},
		Selection: Selection{},
	}
}

// WithFilter replaces the filter criteria, clearing selection and page.
func (v ViewState) WithFilter(f FilterState) ViewState {
	v.Filter = f
	v.Window.Page = 1
	v.Selection = Selection{}
	return v
}

// WithSearch updates the free-text term.
func (v ViewState) WithSearch(term string) ViewState {
	f := v.Filter
	f.Search = term
	return v.WithFilter(f)
}

// WithBucket activates a sidebar day bucket.
func (v ViewState) WithBucket(bucket string) ViewState {
	f := v.Filter
	if bucket == "" {
		bucket = BucketAll
	}
	f.Bucket = bucket
	return v.WithFilter(f)
}

// WithSort toggles or sets the sort key the way a column header click does:
// clicking the active ascending key flips it to descending.
func (v ViewState) WithSort(key string) ViewState {
	if v.Sort.Key == key && !v.Sort.Descending {
		v.Sort.Descending = true
	} else {
		v.Sort = SortState{Key: key}
	}
	return v
}

// WithPage moves the window without touching filter or selection.
func (v ViewState) WithPage(page int) ViewState {
	if page < 1 {
		page = 1
	}
	v.Window.Page = page
	return v
}

// WithPerPage resizes the window and rewinds to page 1.
func (v ViewState) WithPerPage(perPage int) ViewState {
	if perPage > 0 {
		v.Window.PerPage = perPage
	}
	v.Window.Page = 1
	return v
}

// WithToggledSelection flips one record in or out of the selection.
func (v ViewState) WithToggledSelection(id RecordID) ViewState {
	next := make(Selection, len(v.Selection)+1)
	for k := range v.Selection {
		next[k] = struct{}{}
	}
	if next.Has(id) {
		delete(next, id)
	} else {
		next[id] = struct{}{}
	}
	v.Selection = next
	return v
}
