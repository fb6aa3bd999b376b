package everything

import "errors"

var (
	// ErrScorerRequired is returned when a scorer is not provided.
	ErrScorerRequired = errors.New("scorer required")

	// ErrMissingQueryPlaceholder is returned when the command cannot receive the query.
	ErrMissingQueryPlaceholder = errors.New("index command must contain {query}")
)
