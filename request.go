package listq

import (
	"net/http"
	"net/url"
	"time"
)

// Options carries per-request cache-control and transport hints.
type Options struct {
	// TTL overrides the store's default cache lifetime for this request.
	TTL time.Duration
	// Timeout overrides the HTTP client timeout for this request.
	Timeout time.Duration
	// Header holds extra headers merged over the store's defaults.
	Header http.Header
}

// RequestDescriptor is an immutable value describing one HTTP GET resource.
// A new descriptor is produced on every filter/sort/page change; descriptors
// are never mutated in place.
type RequestDescriptor struct {
	Endpoint string
	Query    Query
	Options  Options
}

// NewRequest builds a descriptor for an endpoint with the given query.
func NewRequest(endpoint string, query Query) RequestDescriptor {
	return RequestDescriptor{Endpoint: endpoint, Query: query}
}

// Merge returns a new descriptor whose query is the shallow merge of the
// current query and partial. Fields set to an empty value in partial are
// deleted from the result.
func (r RequestDescriptor) Merge(partial Query) RequestDescriptor {
	return RequestDescriptor{
		Endpoint: r.Endpoint,
		Query:    r.Query.Merge(partial),
		Options:  r.Options,
	}
}

// Values flattens the descriptor's query into URL parameters, omitting
// absent entries.
func (r RequestDescriptor) Values() url.Values {
	return r.Query.Values()
}

// URL renders the full request target, endpoint plus encoded query.
func (r RequestDescriptor) URL() string {
	encoded := r.Query.Encode()
	if encoded == "" {
		return r.Endpoint
	}
	return r.Endpoint + "?" + encoded
}
