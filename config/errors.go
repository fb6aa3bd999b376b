package config

import "errors"

var (
	// ErrInvalidSettings is returned when settings fail validation.
	ErrInvalidSettings = errors.New("invalid settings")
)
