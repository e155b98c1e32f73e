package listq

import (
	"context"
	"encoding/json"
	"sync"
)

// Event is a message from the platform's real-time channel. The transport
// delivering events (e.g. a WebSocket subscription) is an external
// collaborator; it is injected as a channel.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// EventNotificationsChanged signals that the notifications list changed
// server-side.
const EventNotificationsChanged = "notifications.changed"

// Watcher keeps a list's cache in sync with real-time change events. While
// the owning panel is closed, a change event only invalidates the cache so
// the next open refetches; while open, it also triggers an immediate
// refetch.
type Watcher struct {
	store   *Store
	list    string
	events  <-chan Event
	refetch func(ctx context.Context)

	mu   sync.Mutex
	open bool
}

// NewWatcher creates a watcher invalidating listName on change events.
// refetch, if non-nil, is called whenever fresh data should be loaded
// immediately (panel open, or a change arriving while open).
func NewWatcher(store *Store, listName string, events <-chan Event, refetch func(ctx context.Context)) *Watcher {
	return &Watcher{store: store, list: listName, events: events, refetch: refetch}
}

// Run consumes events until ctx is cancelled or the event channel closes.
func (w *Watcher) Run(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.events:
			if !ok {
				return nil
			}
			if ev.Type != EventNotificationsChanged {
				continue
			}
			w.handleChanged(ctx)
		}
	}
}

func (w *Watcher) handleChanged(ctx context.Context) {
	w.mu.Lock()
	open := w.open
	w.mu.Unlock()

	if err := w.store.Invalidate(ctx, w.list); err != nil {
		w.store.log.Warn().Err(err).Str("list", w.list).Msg("watch invalidation failed")
	}
	if open && w.refetch != nil {
		w.refetch(ctx)
	}
}

// Open marks the panel open and refetches unconditionally.
func (w *Watcher) Open(ctx context.Context) {
	w.mu.Lock()
	w.open = true
	w.mu.Unlock()
	if w.refetch != nil {
		w.refetch(ctx)
	}
}

// Close marks the panel closed. Subsequent change events only invalidate.
func (w *Watcher) Close() {
	w.mu.Lock()
	w.open = false
	w.mu.Unlock()
}
