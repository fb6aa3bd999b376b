package launchit

import "errors"

var (
	// ErrIndexOutOfRange is returned when a result index is not in the store.
	ErrIndexOutOfRange = errors.New("result index out of range")

	// ErrNotExecutable is returned when a result has no built-in action.
	ErrNotExecutable = errors.New("result is not a command")
)
