package listq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// List is a typed handle to one paginated list resource (mentoring queue,
// mentoring inbox, badges, representations, notifications, tracks). It knows
// the list's cache namespace and endpoint; the actual fetch happens through
// the store it is bound to.
type List[T any] struct {
	name     string
	endpoint string
	store    *Store
}

// Use binds a list to the globally configured store. Configure must have
// been called first.
func Use[T any](name, endpoint string) (*List[T], error) {
	store, err := DefaultStore()
	if err != nil {
		return nil, err
	}
	return New[T](store, name, endpoint), nil
}

// New binds a list to an explicit store.
func New[T any](store *Store, name, endpoint string) *List[T] {
	return &List[T]{name: name, endpoint: endpoint, store: store}
}

// Name returns the list's cache namespace.
func (l *List[T]) Name() string { return l.name }

// Request builds a descriptor for the list's endpoint with the given query.
func (l *List[T]) Request(query Query) RequestDescriptor {
	return NewRequest(l.endpoint, query)
}

// Query prepares a lazy *Result[T] for the given params. No network call
// happens until Load is invoked on the result.
func (l *List[T]) Query(params Query) *Result[T] {
	return l.For(l.Request(params))
}

// For prepares a lazy result for an already-built descriptor, typically one
// derived by a Controller.
func (l *List[T]) For(req RequestDescriptor) *Result[T] {
	return &Result[T]{
		list:  l,
		req:   req,
		state: QueryState[Paginated[T]]{Status: StatusPending},
	}
}

// Invalidate drops every cached query of this list.
func (l *List[T]) Invalidate(ctx context.Context) error {
	return l.store.Invalidate(ctx, l.name)
}

// Result represents one query's lazily-loaded, cached state. A new Result is
// created per descriptor; results for abandoned descriptors keep their own
// cache entries and never affect the current one.
type Result[T any] struct {
	list *List[T]
	req  RequestDescriptor

	mu     sync.Mutex
	state  QueryState[Paginated[T]]
	loaded bool
}

// Descriptor returns the request descriptor this result was built from.
func (r *Result[T]) Descriptor() RequestDescriptor { return r.req }

// CacheKey returns the deterministic key identifying this query's cached
// result.
func (r *Result[T]) CacheKey() string {
	return CacheKey(r.list.name, r.req.Endpoint, r.req.Query)
}

// Load returns the page for this result's descriptor, serving from memory,
// then cache, then the network (coalesced with identical in-flight loads).
// Previous data stays in the state during a refetch so callers can render
// stale results behind a refresh indicator.
func (r *Result[T]) Load(ctx context.Context) (*Paginated[T], error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	r.mu.Lock()
	if r.loaded && r.state.Status == StatusSuccess {
		data := r.state.Data
		r.mu.Unlock()
		return data, nil
	}
	r.state.Status = StatusPending
	r.state.Err = nil
	r.state.Fetching = true
	r.mu.Unlock()

	key := r.CacheKey()
	body, err := r.list.store.loadBody(ctx, key, r.req)
	if err != nil {
		r.fail(err)
		return nil, err
	}

	var page Paginated[T]
	if decodeErr := json.Unmarshal([]byte(body), &page); decodeErr != nil {
		// The cached body is unusable; drop it so the next load refetches
		// instead of failing repeatedly on the same entry.
		_ = r.list.store.InvalidateKey(ctx, key)
		wrapped := fmt.Errorf("listq: decoding %s response: %w", r.req.Endpoint, decodeErr)
		r.fail(wrapped)
		return nil, wrapped
	}

	r.mu.Lock()
	r.state = QueryState[Paginated[T]]{Status: StatusSuccess, Data: &page}
	r.loaded = true
	r.mu.Unlock()
	return &page, nil
}

// Refresh drops this query's cache entry and in-memory state, then loads
// fresh data. State keeps the previous page visible while the fetch runs.
func (r *Result[T]) Refresh(ctx context.Context) (*Paginated[T], error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if err := r.list.store.InvalidateKey(ctx, r.CacheKey()); err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.loaded = false
	r.mu.Unlock()
	return r.Load(ctx)
}

// State returns a snapshot of the query state for boundary rendering.
func (r *Result[T]) State() QueryState[Paginated[T]] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Result[T]) fail(err error) {
	r.mu.Lock()
	r.state.Status = StatusError
	r.state.Err = err
	r.state.Fetching = false
	r.loaded = false
	r.mu.Unlock()
}
