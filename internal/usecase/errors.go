package usecase

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	// ErrMissingReference means the local roster lacks the store id or slot
	// link id a remote write needs.
	ErrMissingReference      = errors.New("missing store reference")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrClosed                = errors.New("sync engine closed")
)
