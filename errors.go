package listq

import "listq/common"

// Re-exported package-level errors. Drivers and internal packages share these
// through the common package to avoid import cycles.
var (
	ErrNotFound      = common.ErrNotFound
	ErrRequestFailed = common.ErrRequestFailed
	ErrCacheNotSet   = common.ErrCacheNotSet
	ErrStoreNotSet   = common.ErrStoreNotSet
	ErrNilContext    = common.ErrNilContext
	ErrInvalidPage   = common.ErrInvalidPage
	ErrEmptyEndpoint = common.ErrEmptyEndpoint
)
