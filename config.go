package listq

import (
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	defaultTTL     = 8 * time.Hour
	defaultTimeout = 30 * time.Second
)

// Store is the injectable query-cache service shared by every list on a
// page: one cache client, one HTTP client, and one request-coalescing group.
// Components never talk to the HTTP layer directly; they go through a store
// so tests can instantiate isolated instances instead of sharing process
// state.
type Store struct {
	cache CacheClient
	http  *resty.Client
	group singleflight.Group
	log   zerolog.Logger
	ttl   time.Duration
}

// Config holds configuration for a Store.
type Config struct {
	// Cache is the query-cache driver. Defaults to an isolated in-memory
	// cache when nil.
	Cache CacheClient
	// BaseURL prefixes relative endpoints, e.g. "https://example.org".
	BaseURL string
	// HTTPClient overrides the default resty client. When nil a client is
	// built with a cookie jar (same-origin credentials), JSON accept header,
	// the X-Requested-With marker, and no automatic retries.
	HTTPClient *resty.Client
	// TTL is the cache lifetime for successful responses; defaults to 8h.
	TTL time.Duration
	// Timeout bounds each request so a hung backend cannot leave views
	// pending forever; defaults to 30s.
	Timeout time.Duration
	// Logger receives cache hit/miss and fetch diagnostics; defaults to a
	// no-op logger.
	Logger *zerolog.Logger
}

// NewStore creates a query store from cfg, applying defaults for any zero
// field.
func NewStore(cfg Config) *Store {
	s := &Store{
		cache: cfg.Cache,
		http:  cfg.HTTPClient,
		log:   zerolog.Nop(),
		ttl:   cfg.TTL,
	}
	if s.cache == nil {
		s.cache = NewLocalCache()
	}
	if s.ttl <= 0 {
		s.ttl = defaultTTL
	}
	if cfg.Logger != nil {
		s.log = *cfg.Logger
	}
	if s.http == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		s.http = newHTTPClient(cfg.BaseURL, timeout)
	}
	return s
}

func newHTTPClient(baseURL string, timeout time.Duration) *resty.Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("X-Requested-With", "XMLHttpRequest").
		SetRetryCount(0)
	// Cookie jar carries the session across calls, the same-origin
	// credentials behavior of the browser client.
	if jar, err := cookiejar.New(nil); err == nil {
		client.SetCookieJar(jar)
	}
	return client
}

// Cache exposes the store's cache client, mainly for stats and tests.
func (s *Store) Cache() CacheClient { return s.cache }

// HTTPClient exposes the underlying resty client so callers can tune retry
// or transport settings; this layer itself never retries.
func (s *Store) HTTPClient() *resty.Client { return s.http }

// --- Global Configuration ---

var (
	defaultStore *Store
	configMutex  sync.RWMutex
)

// Configure sets up the package-level default store. Apps that prefer a
// single shared store call this once during initialization and then use
// Use[T]; everything also works with explicitly constructed stores.
func Configure(cfg Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	defaultStore = NewStore(cfg)
}

// DefaultStore returns the globally configured store.
func DefaultStore() (*Store, error) {
	configMutex.RLock()
	defer configMutex.RUnlock()
	if defaultStore == nil {
		return nil, ErrStoreNotSet
	}
	return defaultStore, nil
}
