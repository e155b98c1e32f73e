package listq

import (
	"context"
	"errors"
	"fmt"

	"listq/common"
)

// fetchBody issues one GET for the descriptor, query flattened into URL
// search parameters, and returns the raw response body. Transport failures
// and non-2xx responses both wrap ErrRequestFailed; no retry happens at this
// layer (retry policy, if any, belongs to the resty client configuration).
func (s *Store) fetchBody(ctx context.Context, req RequestDescriptor) (string, error) {
	if ctx == nil {
		return "", ErrNilContext
	}
	if req.Endpoint == "" {
		return "", ErrEmptyEndpoint
	}
	if req.Options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Options.Timeout)
		defer cancel()
	}

	r := s.http.R().SetContext(ctx).SetQueryParamsFromValues(req.Values())
	for k, vals := range req.Options.Header {
		if len(vals) > 0 {
			r.SetHeader(k, vals[0])
		}
	}

	resp, err := r.Get(req.Endpoint)
	if err != nil {
		s.log.Debug().Err(err).Str("endpoint", req.Endpoint).Msg("FETCH ERROR")
		return "", fmt.Errorf("%w: GET %s: %v", common.ErrRequestFailed, req.Endpoint, err)
	}
	if resp.IsError() {
		s.log.Debug().Int("status", resp.StatusCode()).Str("endpoint", req.Endpoint).Msg("FETCH ERROR")
		return "", fmt.Errorf("%w: GET %s returned %d", common.ErrRequestFailed, req.Endpoint, resp.StatusCode())
	}
	s.log.Debug().Str("endpoint", req.Endpoint).Int("bytes", len(resp.Body())).Msg("FETCH OK")
	return resp.String(), nil
}

// loadBody serves the descriptor's response body from cache, or fetches and
// caches it on a miss. Concurrent calls for an identical cache key are
// coalesced into at most one in-flight request; callers must not assume they
// get independent network calls per invocation.
func (s *Store) loadBody(ctx context.Context, key string, req RequestDescriptor) (string, error) {
	body, cacheErr := s.cache.Get(ctx, key)
	if cacheErr == nil {
		s.log.Debug().Str("key", key).Msg("CACHE HIT")
		return body, nil
	}
	if !errors.Is(cacheErr, common.ErrNotFound) {
		s.log.Warn().Err(cacheErr).Str("key", key).Msg("cache Get failed, falling through to fetch")
	} else {
		s.log.Debug().Str("key", key).Msg("CACHE MISS")
	}

	v, err, shared := s.group.Do(key, func() (any, error) {
		fetched, fetchErr := s.fetchBody(ctx, req)
		if fetchErr != nil {
			return "", fetchErr
		}
		ttl := s.ttl
		if req.Options.TTL > 0 {
			ttl = req.Options.TTL
		}
		// A late response writes only its own key; a newer query under a
		// different key is never overwritten by it.
		if setErr := s.cache.Set(ctx, key, fetched, ttl); setErr != nil {
			s.log.Warn().Err(setErr).Str("key", key).Msg("failed to cache response")
		}
		return fetched, nil
	})
	if err != nil {
		return "", err
	}
	if shared {
		s.log.Debug().Str("key", key).Msg("request coalesced")
	}
	return v.(string), nil
}

// Invalidate removes every cached query of a list, e.g. after a mutation
// touched its backing resource. The next Load for any of the list's
// descriptors refetches.
func (s *Store) Invalidate(ctx context.Context, listName string) error {
	s.log.Debug().Str("list", listName).Msg("CACHE INVALIDATE")
	return s.cache.DeleteByPrefix(ctx, ListKeyPrefix(listName))
}

// InvalidateKey removes one cached query result.
func (s *Store) InvalidateKey(ctx context.Context, key string) error {
	s.log.Debug().Str("key", key).Msg("CACHE DEL")
	return s.cache.Delete(ctx, key)
}
