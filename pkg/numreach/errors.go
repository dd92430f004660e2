package numreach

import "github.com/kailas-cloud/numreach/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidRequest   = domain.ErrInvalidRequest
	ErrBatchTooLarge    = domain.ErrBatchTooLarge
	ErrCacheUnavailable = domain.ErrCacheUnavailable
)
