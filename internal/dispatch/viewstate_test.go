package dispatch

import "testing"

func TestWithFilterClearsSelectionAndPage(t *testing.T) {
	state := DefaultViewState().WithPage(3).WithToggledSelection("abc")
	if !state.Selection.Has("abc") || state.Window.Page != 3 {
		t.Fatal("setup failed")
	}

	next := state.WithSearch("kd")
	if next.Window.Page != 1 {
		t.Fatalf("expected page reset, got %d", next.Window.Page)
	}
	if len(next.Selection) != 0 {
		t.Fatal("expected selection cleared")
	}

	// The prior state value must be untouched.
	if !state.Selection.Has("abc") || state.Window.Page != 3 {
		t.Fatal("transition mutated the previous state")
	}
}

func TestWithBucketDefaultsToAll(t *testing.T) {
	state := DefaultViewState().WithBucket("")
	if state.Filter.Bucket != BucketAll {
		t.Fatalf("expected bucket all, got %q", state.Filter.Bucket)
	}
	state = state.WithBucket("14/03/2026")
	if state.Filter.Bucket != "14/03/2026" {
		t.Fatalf("unexpected bucket %q", state.Filter.Bucket)
	}
}

func TestWithSortTogglesDirection(t *testing.T) {
	state := DefaultViewState().WithSort(FieldPackDate)
	if state.Sort.Key != FieldPackDate || state.Sort.Descending {
		t.Fatalf("expected ascending pack date, got %+v", state.Sort)
	}
	state = state.WithSort(FieldPackDate)
	if !state.Sort.Descending {
		t.Fatal("second click must flip to descending")
	}
	state = state.WithSort(FieldQuantity)
	if state.Sort.Key != FieldQuantity || state.Sort.Descending {
		t.Fatalf("new key must restart ascending, got %+v", state.Sort)
	}
}

func TestWithToggledSelection(t *testing.T) {
	state := DefaultViewState().WithToggledSelection("a").WithToggledSelection("b")
	if !state.Selection.Has("a") || !state.Selection.Has("b") {
		t.Fatal("expected both ids selected")
	}
	next := state.WithToggledSelection("a")
	if next.Selection.Has("a") {
		t.Fatal("expected id a deselected")
	}
	if !state.Selection.Has("a") {
		t.Fatal("toggle mutated the previous state")
	}
}

func TestWithPerPageRewinds(t *testing.T) {
	state := DefaultViewState().WithPage(4).WithPerPage(25)
	if state.Window.PerPage != 25 || state.Window.Page != 1 {
		t.Fatalf("unexpected window %+v", state.Window)
	}
	state = state.WithPerPage(0)
	if state.Window.PerPage != 25 {
		t.Fatal("non-positive per page must be ignored")
	}
}
