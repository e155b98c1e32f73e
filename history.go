package listq

import (
	"net/url"
	"strconv"
	"sync"
)

// HistoryMode selects how query changes are written to history.
type HistoryMode int

const (
	// ModeReplace overwrites the current history entry. This is the default:
	// one filter session stays one history entry, keeping the back button
	// usable.
	ModeReplace HistoryMode = iota
	// ModePush adds a history entry per change, preserving fine-grained
	// undo at the cost of back-button noise.
	ModePush
)

// Synchronizer mirrors non-empty query state into the page's query string so
// list views are linkable and back-button-safe. Sync is idempotent: an
// unchanged query never navigates.
type Synchronizer struct {
	nav  Navigator
	mode HistoryMode

	mu   sync.Mutex
	last string
}

// NewSynchronizer creates a synchronizer over nav, seeded with the current
// location so the initial render does not navigate.
func NewSynchronizer(nav Navigator, mode HistoryMode) *Synchronizer {
	return &Synchronizer{nav: nav, mode: mode, last: nav.Location().Encode()}
}

// Sync writes the query's non-empty fields to the location. Empty fields are
// omitted entirely, never serialized as "key=".
func (s *Synchronizer) Sync(q Query) {
	vals := q.Values()
	encoded := vals.Encode()

	s.mu.Lock()
	if encoded == s.last {
		s.mu.Unlock()
		return
	}
	s.last = encoded
	s.mu.Unlock()

	if s.mode == ModePush {
		s.nav.Push(vals)
		return
	}
	s.nav.Replace(vals)
}

// SyncState mirrors a controller state, the usual call site after an
// OnChange notification.
func (s *Synchronizer) SyncState(st ControllerState) {
	s.Sync(st.Query())
}

// StateFromValues hydrates a controller state from an encoded query string,
// the inverse of ControllerState.Query().Values(). Unknown fields land in
// the extra bag; multi-valued fields become string slices.
func StateFromValues(vals url.Values) ControllerState {
	st := ControllerState{}
	extra := Query{}
	for k, vs := range vals {
		if len(vs) == 0 || vs[0] == "" {
			continue
		}
		switch k {
		case FieldCriteria:
			st.Criteria = vs[0]
		case FieldOrder:
			st.Order = vs[0]
		case FieldPage:
			if n, err := strconv.Atoi(vs[0]); err == nil && n >= 1 {
				st.Page = n
			}
		default:
			if len(vs) == 1 {
				extra[k] = vs[0]
			} else {
				tags := make([]string, len(vs))
				copy(tags, vs)
				extra[k] = tags
			}
		}
	}
	if len(extra) > 0 {
		st.Extra = extra
	}
	return st
}
