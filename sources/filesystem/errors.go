package filesystem

import "errors"

var (
	// ErrScorerRequired is returned when a scorer is not provided.
	ErrScorerRequired = errors.New("scorer required")

	// ErrNoFolders is returned when no included folder is configured.
	ErrNoFolders = errors.New("at least one included folder required")
)
