package listq

// Status is the lifecycle phase of one query's state.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// QueryState is the tagged union a fetching boundary renders from. Data is
// retained across refetches so views can keep previous results visible while
// new ones load (stale-while-revalidate presentation): Status pending with
// non-nil Data means a background refresh over stale data.
type QueryState[T any] struct {
	Status   Status
	Data     *T
	Err      error
	Fetching bool
}

// Meta is the pagination envelope every paginated endpoint returns.
type Meta struct {
	CurrentPage   int  `json:"currentPage"`
	TotalPages    int  `json:"totalPages"`
	TotalCount    int  `json:"totalCount"`
	UnscopedTotal *int `json:"unscopedTotal,omitempty"`
}

// Paginated is the response shape of a paginated list resource:
// { results: [...], meta: {...} }.
type Paginated[T any] struct {
	Results []T  `json:"results"`
	Meta    Meta `json:"meta"`
}
