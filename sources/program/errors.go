package program

import "errors"

var (
	// ErrRepositoryRequired is returned when a catalog repository is not provided.
	ErrRepositoryRequired = errors.New("catalog repository required")

	// ErrScorerRequired is returned when a scorer is not provided.
	ErrScorerRequired = errors.New("scorer required")
)
