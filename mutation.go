package listq

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"listq/common"
)

// Mutation describes a write call (POST/PATCH/PUT/DELETE) whose success must
// invalidate the cached queries of the named lists, so those lists reflect
// the change on their next load without a full reload.
type Mutation struct {
	Method      string
	Endpoint    string
	Body        any
	Invalidates []string
}

// Mutate executes the mutation through the store's HTTP client and, on a 2xx
// response, invalidates every listed cache prefix. The raw response body is
// returned for callers that want the updated resource.
func (s *Store) Mutate(ctx context.Context, m Mutation) (json.RawMessage, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	switch m.Method {
	case http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete:
	default:
		return nil, fmt.Errorf("listq: unsupported mutation method %q", m.Method)
	}
	if m.Endpoint == "" {
		return nil, ErrEmptyEndpoint
	}

	r := s.http.R().SetContext(ctx).SetHeader("Content-Type", "application/json")
	if m.Body != nil {
		r.SetBody(m.Body)
	}
	resp, err := r.Execute(m.Method, m.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", common.ErrRequestFailed, m.Method, m.Endpoint, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: %s %s returned %d", common.ErrRequestFailed, m.Method, m.Endpoint, resp.StatusCode())
	}

	for _, list := range m.Invalidates {
		if invErr := s.Invalidate(ctx, list); invErr != nil {
			s.log.Warn().Err(invErr).Str("list", list).Msg("post-mutation invalidation failed")
		}
	}
	return json.RawMessage(resp.Body()), nil
}
