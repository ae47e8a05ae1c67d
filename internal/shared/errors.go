package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrEmptySelection occurs when an export or preview is requested with no
	// records selected.
	ErrEmptySelection = errors.New("select at least one record")
	// ErrDataFormat occurs when the feed payload is not a sequence of rows.
	ErrDataFormat = errors.New("invalid data format received")
	// ErrFeedUnavailable occurs when the table feed cannot be reached or
	// rejects the request.
	ErrFeedUnavailable = errors.New("dispatch feed unavailable")
)
