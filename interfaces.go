// interfaces.go
// Core interfaces for listq: CacheClient and the Navigator used by the
// history synchronizer. These are public and intended for use by users and
// driver developers.

package listq

import (
	"context"
	"net/url"
	"time"
)

// CacheClient defines the interface for query-cache drivers. Values are raw
// response bodies keyed by deterministic cache keys; drivers need no
// knowledge of result types.
type CacheClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error

	// DeleteByPrefix removes every entry whose key starts with prefix. It is
	// the primitive behind list-wide invalidation after mutations.
	DeleteByPrefix(ctx context.Context, prefix string) error

	GetCacheStats(ctx context.Context) CacheStats
}

// CacheStats holds cache operation counters for monitoring.
type CacheStats struct {
	Counters map[string]int // Operation name to count
}

// Navigator abstracts the browser history surface the synchronizer writes
// to: the current query string, plus replace/push navigation.
type Navigator interface {
	Location() url.Values
	Replace(query url.Values)
	Push(query url.Values)
}
