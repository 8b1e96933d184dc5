package search

import "errors"

var (
	// ErrDuplicateTerm is returned when two terms share a query label.
	ErrDuplicateTerm = errors.New("search: duplicate term query")
	// ErrDuplicateCategory is returned when two categories share an id.
	ErrDuplicateCategory = errors.New("search: duplicate category id")
	// ErrInvalidEntry is returned for a term without a query or a category without an id.
	ErrInvalidEntry = errors.New("search: invalid table entry")
)
