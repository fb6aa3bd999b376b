package query

import "errors"

var (
	// ErrMergerRequired is returned when a merger is not provided.
	ErrMergerRequired = errors.New("merger required")

	// ErrDuplicateSourceID is returned when two sources share an ID.
	ErrDuplicateSourceID = errors.New("duplicate source ID")

	// ErrSourcePanicked wraps a panic recovered from a source search.
	ErrSourcePanicked = errors.New("source panicked")
)
