package listq

import (
	"sync"
	"time"
)

// DefaultDebounce is the delay before a free-text criteria change is
// committed to the controller's descriptor, limiting network calls to one
// per typing pause instead of one per keystroke.
const DefaultDebounce = 200 * time.Millisecond

// Reserved query field names owned by the controller.
const (
	FieldCriteria = "criteria"
	FieldOrder    = "order"
	FieldPage     = "page"
)

// ControllerState is the filter/sort/page state owned by a single list view
// instance. Page 0 means unset (first page); it is omitted from derived
// queries.
type ControllerState struct {
	Criteria string
	Order    string
	Page     int
	Extra    Query
}

// Query flattens the state into query fields, omitting unset entries.
func (st ControllerState) Query() Query {
	q := make(Query, len(st.Extra)+3)
	for k, v := range st.Extra {
		q[k] = v
	}
	if st.Criteria != "" {
		q[FieldCriteria] = st.Criteria
	}
	if st.Order != "" {
		q[FieldOrder] = st.Order
	}
	if st.Page > 0 {
		q[FieldPage] = st.Page
	}
	return q
}

// Controller owns one list view's mutable filter/sort/page state and derives
// updated request descriptors from it. It holds no knowledge of the HTTP
// layer. All setters are safe for concurrent use; the OnChange callback runs
// without the controller lock held.
type Controller struct {
	mu       sync.Mutex
	base     RequestDescriptor
	state    ControllerState
	debounce time.Duration
	timer    *time.Timer
	pending  string
	closed   bool
	onChange func(RequestDescriptor)
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithDebounce overrides the criteria debounce interval.
func WithDebounce(d time.Duration) ControllerOption {
	return func(c *Controller) { c.debounce = d }
}

// WithInitialState seeds the controller, e.g. from a hydrated URL query.
func WithInitialState(st ControllerState) ControllerOption {
	return func(c *Controller) { c.state = cloneState(st) }
}

// WithOnChange registers the callback fired with the new descriptor after
// every committed state transition.
func WithOnChange(fn func(RequestDescriptor)) ControllerOption {
	return func(c *Controller) { c.onChange = fn }
}

// NewController creates a controller deriving descriptors from base.
func NewController(base RequestDescriptor, opts ...ControllerOption) *Controller {
	c := &Controller{base: base, debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetCriteria schedules a debounced criteria change. The timer is cancelled
// and restarted on every call, so rapid calls inside the debounce window
// commit exactly once, with the final text. The commit clears the page in
// the same state transition.
func (c *Controller) SetCriteria(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.pending = text
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, c.commitCriteria)
}

// FlushCriteria commits any pending criteria change immediately, e.g. when
// the user submits the filter form instead of pausing.
func (c *Controller) FlushCriteria() {
	c.mu.Lock()
	if c.timer == nil {
		c.mu.Unlock()
		return
	}
	stopped := c.timer.Stop()
	c.mu.Unlock()
	if stopped {
		c.commitCriteria()
	}
}

func (c *Controller) commitCriteria() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.state.Criteria = c.pending
	c.state.Page = 0
	desc := c.descriptorLocked()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn(desc)
	}
}

// SetOrder commits a sort change, clearing the page in the same transition.
func (c *Controller) SetOrder(key string) {
	c.apply(func() {
		c.state.Order = key
		c.state.Page = 0
	})
}

// SetPage commits a page change. Pages are 1-based.
func (c *Controller) SetPage(n int) error {
	if n < 1 {
		return ErrInvalidPage
	}
	c.apply(func() { c.state.Page = n })
	return nil
}

// SetQuery atomically replaces the extra-filters bag, the escape hatch for
// changing several fields together. Reserved fields are stripped; the page
// resets since the filter set changed.
func (c *Controller) SetQuery(extra Query) {
	cleaned := extra.Clean()
	delete(cleaned, FieldCriteria)
	delete(cleaned, FieldOrder)
	delete(cleaned, FieldPage)
	c.apply(func() {
		c.state.Extra = cleaned
		c.state.Page = 0
	})
}

func (c *Controller) apply(mutate func()) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	mutate()
	desc := c.descriptorLocked()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn(desc)
	}
}

// State returns a snapshot of the controller's current state.
func (c *Controller) State() ControllerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneState(c.state)
}

// Descriptor returns the request descriptor derived from the base and the
// current state.
func (c *Controller) Descriptor() RequestDescriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.descriptorLocked()
}

func (c *Controller) descriptorLocked() RequestDescriptor {
	return RequestDescriptor{
		Endpoint: c.base.Endpoint,
		Query:    c.base.Query.Merge(c.state.Query()),
		Options:  c.base.Options,
	}
}

// Close cancels any pending debounce timer. A commit scheduled before Close
// never fires afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func cloneState(st ControllerState) ControllerState {
	out := st
	if st.Extra != nil {
		out.Extra = make(Query, len(st.Extra))
		for k, v := range st.Extra {
			out.Extra[k] = v
		}
	}
	return out
}
