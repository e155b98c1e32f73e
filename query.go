package listq

import (
	"net/url"

	"listq/internal/utils"
)

// Query holds the filter/sort/page fields of one list request. Values may be
// strings, numbers, bools, or string slices (e.g., selected tags). Entries
// whose value is nil, an empty string, or an empty slice are treated as
// absent: they never appear in encoded URLs or cache keys, so a descriptor
// with {"criteria": ""} is equal, for caching purposes, to one without the
// key at all.
type Query map[string]any

// Clean returns a copy of the query with all absent entries removed.
func (q Query) Clean() Query {
	out := make(Query, len(q))
	for k, v := range q {
		if utils.IsEmpty(v) {
			continue
		}
		out[k] = v
	}
	return out
}

// Merge produces a new query that is the shallow merge of q and partial.
// A partial entry holding an empty value deletes the field from the result,
// which is how callers clear a filter.
func (q Query) Merge(partial Query) Query {
	out := make(Query, len(q)+len(partial))
	for k, v := range q {
		out[k] = v
	}
	for k, v := range partial {
		if utils.IsEmpty(v) {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

// Values flattens the query into URL parameters. Slice values are
// canonicalized (sorted) and emitted as repeated keys; absent entries are
// omitted entirely, never serialized as "key=".
func (q Query) Values() url.Values {
	vals := url.Values{}
	for _, k := range utils.SortedKeys(q) {
		v := q[k]
		if utils.IsEmpty(v) {
			continue
		}
		switch nv := utils.NormalizeValue(v).(type) {
		case []string:
			for _, item := range nv {
				vals.Add(k, item)
			}
		case string:
			vals.Set(k, nv)
		}
	}
	return vals
}

// Encode returns the urlencoded parameter string for the query.
func (q Query) Encode() string {
	return q.Values().Encode()
}
