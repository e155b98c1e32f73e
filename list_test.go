package listq_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"listq"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, handler http.Handler) (*listq.Store, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store := listq.NewStore(listq.Config{
		BaseURL: srv.URL,
		Cache:   listq.NewLocalCache(),
		TTL:     time.Minute,
	})
	return store, srv
}

func queuePage(totalCount, currentPage, totalPages int) string {
	return fmt.Sprintf(
		`{"results":[{"uuid":"r1","trackTitle":"JavaScript"}],"meta":{"currentPage":%d,"totalPages":%d,"totalCount":%d}}`,
		currentPage, totalPages, totalCount)
}

type mentoringRequest struct {
	UUID       string `json:"uuid"`
	TrackTitle string `json:"trackTitle"`
}

func TestResultLoadSuccess(t *testing.T) {
	var gotHeader string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Requested-With")
		assert.Equal(t, "/api/mentoring/queue", r.URL.Path)
		assert.Equal(t, "javascript", r.URL.Query().Get("trackSlug"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		fmt.Fprint(w, queuePage(42, 1, 3))
	})
	store, _ := newTestStore(t, handler)

	queue := listq.New[mentoringRequest](store, "mentoring-queue", "/api/mentoring/queue")
	result := queue.Query(listq.Query{"trackSlug": "javascript", "page": 1})

	page, err := result.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "XMLHttpRequest", gotHeader)
	assert.Equal(t, 42, page.Meta.TotalCount)
	assert.Equal(t, 3, page.Meta.TotalPages)
	assert.Equal(t, 1, page.Meta.CurrentPage)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "JavaScript", page.Results[0].TrackTitle)

	state := result.State()
	assert.Equal(t, listq.StatusSuccess, state.Status)
	view := listq.Project(state, nil)
	assert.False(t, view.Loading)
	assert.Empty(t, view.ErrorMessage)
	require.NotNil(t, view.Data)
	assert.Equal(t, 42, view.Data.Meta.TotalCount)
}

func TestResultLoadServedFromCache(t *testing.T) {
	var hits int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		fmt.Fprint(w, queuePage(10, 1, 1))
	})
	store, _ := newTestStore(t, handler)
	queue := listq.New[mentoringRequest](store, "mentoring-queue", "/api/mentoring/queue")

	// Two independent results for the same descriptor, e.g. two mounts of
	// the same view. Only the first reaches the network.
	_, err := queue.Query(listq.Query{"page": 1}).Load(context.Background())
	require.NoError(t, err)
	_, err = queue.Query(listq.Query{"page": 1}).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestResultLoadErrorUsesDefaultMessage(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	store, _ := newTestStore(t, handler)
	queue := listq.New[mentoringRequest](store, "mentoring-queue", "/api/mentoring/queue")

	result := queue.Query(listq.Query{"trackSlug": "javascript"})
	_, err := result.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, listq.ErrRequestFailed)

	state := result.State()
	assert.Equal(t, listq.StatusError, state.Status)

	view := listq.Project(state, errors.New("Unable to load mentoring queue"))
	assert.Equal(t, "Unable to load mentoring queue", view.ErrorMessage)
	assert.Nil(t, view.Data)
}

func TestConcurrentLoadsCoalesce(t *testing.T) {
	var hits int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		time.Sleep(100 * time.Millisecond)
		fmt.Fprint(w, queuePage(5, 1, 1))
	})
	store, _ := newTestStore(t, handler)
	queue := listq.New[mentoringRequest](store, "mentoring-queue", "/api/mentoring/queue")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			page, err := queue.Query(listq.Query{"trackSlug": "go"}).Load(context.Background())
			assert.NoError(t, err)
			if page != nil {
				assert.Equal(t, 5, page.Meta.TotalCount)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "identical in-flight loads must coalesce")
}

func TestLateResponseDoesNotOverwriteNewerQuery(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			// The abandoned first query answers late.
			time.Sleep(150 * time.Millisecond)
			fmt.Fprint(w, queuePage(111, 1, 3))
		default:
			fmt.Fprint(w, queuePage(222, 2, 3))
		}
	})
	store, _ := newTestStore(t, handler)
	queue := listq.New[mentoringRequest](store, "mentoring-queue", "/api/mentoring/queue")

	stale := queue.Query(listq.Query{"page": 1})
	current := queue.Query(listq.Query{"page": 2})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = stale.Load(context.Background())
	}()

	page, err := current.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 222, page.Meta.TotalCount)

	<-done

	// The late response populated its own key only; the current result's
	// state and cache entry are untouched.
	assert.Equal(t, 222, current.State().Data.Meta.TotalCount)
	cachedBody, err := store.Cache().Get(context.Background(), current.CacheKey())
	require.NoError(t, err)
	assert.Contains(t, cachedBody, `"totalCount":222`)
	assert.NotEqual(t, stale.CacheKey(), current.CacheKey())
}

func TestRefreshKeepsPreviousDataVisible(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var first int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&first, 1) == 1 {
			fmt.Fprint(w, queuePage(40, 1, 2))
			return
		}
		close(entered)
		<-release
		fmt.Fprint(w, queuePage(41, 1, 2))
	})
	store, _ := newTestStore(t, handler)
	queue := listq.New[mentoringRequest](store, "mentoring-queue", "/api/mentoring/queue")
	result := queue.Query(listq.Query{"trackSlug": "go"})

	_, err := result.Load(context.Background())
	require.NoError(t, err)

	refreshed := make(chan struct{})
	go func() {
		defer close(refreshed)
		_, _ = result.Refresh(context.Background())
	}()

	<-entered
	state := result.State()
	view := listq.Project(state, nil)
	assert.True(t, view.Refreshing, "stale data should render behind a refresh indicator")
	require.NotNil(t, view.Data)
	assert.Equal(t, 40, view.Data.Meta.TotalCount)

	close(release)
	<-refreshed
	assert.Equal(t, 41, result.State().Data.Meta.TotalCount)
}

func TestMutationInvalidatesLists(t *testing.T) {
	var hits int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			fmt.Fprint(w, `{"ok":true}`)
			return
		}
		atomic.AddInt32(&hits, 1)
		fmt.Fprint(w, queuePage(7, 1, 1))
	})
	store, _ := newTestStore(t, handler)
	queue := listq.New[mentoringRequest](store, "mentoring-queue", "/api/mentoring/queue")

	_, err := queue.Query(listq.Query{"page": 1}).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, int32(1), atomic.LoadInt32(&hits))

	body, err := store.Mutate(context.Background(), listq.Mutation{
		Method:      http.MethodPatch,
		Endpoint:    "/api/mentoring/requests/r1",
		Body:        map[string]any{"status": "done"},
		Invalidates: []string{"mentoring-queue"},
	})
	require.NoError(t, err)
	assert.Contains(t, string(body), "ok")

	// The list refetches after the mutation invalidated its cache.
	_, err = queue.Query(listq.Query{"page": 1}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestUseRequiresConfiguredStore(t *testing.T) {
	listq.Configure(listq.Config{Cache: listq.NewLocalCache()})
	queue, err := listq.Use[mentoringRequest]("badges", "/api/badges")
	require.NoError(t, err)
	assert.Equal(t, "badges", queue.Name())
}
