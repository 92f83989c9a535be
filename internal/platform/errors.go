package platform

import "errors"

var (
	// ErrNotAuthenticated is returned by capabilities called without a session.
	ErrNotAuthenticated = errors.New("authentication required")
	ErrNotFound         = errors.New("not found")
	ErrInvalidPath      = errors.New("invalid path")
	ErrConflict         = errors.New("already exists")
	ErrNotText          = errors.New("content is not valid UTF-8 text")
	ErrTooLarge         = errors.New("content too large")
)
