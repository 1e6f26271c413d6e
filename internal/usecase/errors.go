package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrRecordingFailed       = errors.New("match recording failed")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
