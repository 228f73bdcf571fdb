package script

import "errors"

// Errors for script operations.
var (
	// ErrRuntimeClosed is returned when operating on a closed runtime.
	ErrRuntimeClosed = errors.New("lua runtime is closed")

	// ErrNoHelpers is raised when a script registers an upcast converter
	// on a runtime created without upcast helpers.
	ErrNoHelpers = errors.New("no helpers for this conversion direction")
)
