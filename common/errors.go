package common

import "errors"

// ErrNotFound is returned when a requested item (e.g., cache key) is not found.
var ErrNotFound = errors.New("listq: requested item not found")

// Additional package-level errors
var (
	// ErrRequestFailed marks errors originating from the HTTP transport or a
	// non-2xx response. The fetching boundary substitutes a caller-supplied
	// message for errors wrapping this sentinel, so raw transport strings
	// never reach the rendered output.
	ErrRequestFailed = errors.New("listq: request failed")
	ErrCacheNotSet   = errors.New("listq: cache client not set")
	ErrStoreNotSet   = errors.New("listq: store not configured")
	ErrNilContext    = errors.New("listq: nil context provided")
	ErrInvalidPage   = errors.New("listq: invalid page number, must be >= 1")
	ErrEmptyEndpoint = errors.New("listq: request descriptor has no endpoint")
)
