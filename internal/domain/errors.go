package domain

import "errors"

var (
	// ErrInvalidRequest signals a malformed solve request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrBatchTooLarge signals a batch above the configured size limit.
	ErrBatchTooLarge = errors.New("batch too large")
	// ErrCacheUnavailable signals that the result cache could not be reached.
	ErrCacheUnavailable = errors.New("cache unavailable")
)
