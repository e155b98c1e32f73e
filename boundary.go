package listq

import (
	"errors"

	"listq/common"
)

// DefaultErrorMessage is the last-resort text when neither the error nor the
// caller supplies one.
const DefaultErrorMessage = "An error occurred"

// View is the rendered projection of one query state. Exactly one of
// Loading, ErrorMessage, or Data is meaningful; Refreshing marks a
// non-blocking background refetch shown over stale data (the results-zone
// indicator).
type View[T any] struct {
	Loading      bool
	ErrorMessage string
	Data         *T
	Refreshing   bool
}

// Project is the fetching boundary: a pure function from query state to
// view. No transition logic lives here.
//
// Error precedence: the error's own message, then the caller's default, then
// DefaultErrorMessage. Transport/HTTP errors (wrapping ErrRequestFailed) are
// treated as message-less so raw network strings never render; the caller's
// default wins for those.
func Project[T any](st QueryState[T], defaultErr error) View[T] {
	switch st.Status {
	case StatusError:
		return View[T]{ErrorMessage: errorMessage(st.Err, defaultErr)}
	case StatusSuccess:
		return View[T]{Data: st.Data, Refreshing: st.Fetching && st.Data != nil}
	default:
		if st.Data != nil {
			// Stale-while-revalidate: previous page stays visible behind
			// the refresh indicator.
			return View[T]{Data: st.Data, Refreshing: true}
		}
		return View[T]{Loading: true}
	}
}

func errorMessage(err, defaultErr error) string {
	if err != nil && !errors.Is(err, common.ErrRequestFailed) {
		return err.Error()
	}
	if defaultErr != nil {
		return defaultErr.Error()
	}
	return DefaultErrorMessage
}
