package listq

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"listq/common"
	"listq/internal/utils"
)

// --- Cache Key Generation ---

// GenerateQueryHash generates a short deterministic hash for a query.
// The query is normalized first (absent entries dropped, slices sorted,
// scalars canonicalized) so structurally-equal queries hash identically
// regardless of construction order.
func GenerateQueryHash(q Query) string {
	normalized := make(map[string]any, len(q))
	for k, v := range q {
		if utils.IsEmpty(v) {
			continue
		}
		normalized[k] = utils.NormalizeValue(v)
	}
	paramsJSON, err := json.Marshal(normalized)
	if err != nil {
		// Query values are scalars and string slices; marshal cannot fail in
		// practice. Fall back to a timestamp key rather than panic.
		return fmt.Sprintf("error_hash_%d", time.Now().UnixNano())
	}
	hasher := sha256.New()
	hasher.Write(paramsJSON)
	fullHash := hex.EncodeToString(hasher.Sum(nil))
	// First 8 characters keep keys short while staying collision-safe for
	// the handful of live queries a page holds.
	return fullHash[:8]
}

// CacheKey generates the cache key for one list query:
// query:{listName}:{endpoint}:{hash}. Two descriptors with the same endpoint
// and the same non-empty query entries produce equal keys; changing any
// entry produces a different key.
func CacheKey(listName, endpoint string, q Query) string {
	return fmt.Sprintf("query:%s:%s:%s", listName, endpoint, GenerateQueryHash(q))
}

// ListKeyPrefix returns the prefix shared by every cache key of a list,
// used for list-wide invalidation.
func ListKeyPrefix(listName string) string {
	return fmt.Sprintf("query:%s:", listName)
}

// --- Local Cache Client ---

type localEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

func (e localEntry) expired() bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}

// localCache implements CacheClient using an in-memory sync.Map.
type localCache struct {
	store      sync.Map // map[string]localEntry
	counters   sync.Map // map[string]int, each counter is a separate key
	countersMu sync.Mutex
}

// NewLocalCache creates an isolated in-memory cache client. Tests and
// embedded stores should prefer this over DefaultLocalCache so no state is
// shared across instances.
func NewLocalCache() CacheClient {
	return &localCache{}
}

// DefaultLocalCache is the process-wide in-memory cache client used by the
// globally configured store when no driver is supplied.
var DefaultLocalCache CacheClient = &localCache{}

func (m *localCache) Get(ctx context.Context, key string) (string, error) {
	m.incrCounter("Get")
	if v, ok := m.store.Load(key); ok {
		entry := v.(localEntry)
		if entry.expired() {
			m.store.Delete(key)
			m.incrCounter("GetExpired")
			return "", common.ErrNotFound
		}
		m.incrCounter("GetHit")
		return entry.value, nil
	}
	m.incrCounter("GetMiss")
	return "", common.ErrNotFound
}

func (m *localCache) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	m.incrCounter("Set")
	entry := localEntry{value: value}
	if expiration > 0 {
		entry.expiresAt = time.Now().Add(expiration)
	}
	m.store.Store(key, entry)
	return nil
}

func (m *localCache) Delete(ctx context.Context, key string) error {
	m.incrCounter("Delete")
	m.store.Delete(key)
	return nil
}

func (m *localCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	m.incrCounter("DeleteByPrefix")
	m.store.Range(func(k, _ any) bool {
		if strings.HasPrefix(k.(string), prefix) {
			m.store.Delete(k)
		}
		return true
	})
	return nil
}

func (m *localCache) incrCounter(name string) {
	m.countersMu.Lock()
	defer m.countersMu.Unlock()
	if v, ok := m.counters.Load(name); ok {
		m.counters.Store(name, v.(int)+1)
	} else {
		m.counters.Store(name, 1)
	}
}

func (m *localCache) GetCacheStats(ctx context.Context) CacheStats {
	stats := CacheStats{Counters: make(map[string]int)}
	m.counters.Range(func(k, v any) bool {
		stats.Counters[k.(string)] = v.(int)
		return true
	})
	return stats
}
