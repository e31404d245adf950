package repl

import "errors"

// Sentinel errors.
var (
	ErrOutOfBounds  = errors.New("index out of range")
	ErrEditDeclined = errors.New("decline edit")
	ErrNotMapping   = errors.New("context data root must be a mapping")
	ErrUsage        = errors.New("usage")
)
