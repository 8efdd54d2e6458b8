package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newshub/internal/domain"
	"newshub/internal/retry"
)

func noSleep(adapter *SearchAdapter) *[]time.Duration {
	waits := &[]time.Duration{}
	adapter.sleep = func(_ context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	}
	return waits
}

func TestSearchFetchWithoutKeyIsSkipped(t *testing.T) {
	t.Parallel()

	adapter := NewSearchAdapter("", SearchOptions{}, nil, nil, nil)
	articles, err := adapter.Fetch(context.Background(), domain.CategoryBusiness, 9)

	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestSearchFetchSplitsLimitAcrossKeywordsAndPaces(t *testing.T) {
	t.Parallel()

	var queries []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		queries = append(queries, q.Get("q"))
		assert.Equal(t, "3", q.Get("max"))
		assert.Equal(t, "secret", q.Get("token"))

		fmt.Fprintf(w, `{"articles":[{"title":"Item for %s","url":"https://s.example.com/%s","publishedAt":"2025-06-01T09:00:00Z","source":{"name":"S"}}]}`,
			q.Get("q"), q.Get("q"))
	}))
	defer server.Close()

	adapter := NewSearchAdapter("secret", SearchOptions{
		Endpoint:   server.URL,
		QueryDelay: 700 * time.Millisecond,
	}, nil, nil, nil)
	waits := noSleep(adapter)

	articles, err := adapter.Fetch(context.Background(), domain.CategoryBusiness, 9)
	require.NoError(t, err)

	// business issues its three keyword queries, serialized with delays
	assert.Equal(t, []string{"finance", "business", "stocks"}, queries)
	require.Len(t, *waits, 2)
	assert.Equal(t, 700*time.Millisecond, (*waits)[0])
	require.Len(t, articles, 3)
	assert.Equal(t, domain.CategoryBusiness, articles[0].Category)
}

func TestSearchFetchRetriesRateLimitedQuery(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"articles":[{"title":"Recovered","url":"https://s.example.com/r","source":{"name":"S"}}]}`))
	}))
	defer server.Close()

	retrier := retry.New(retry.Config{MaxAttempts: 3, BaseDelay: time.Millisecond}, nil)
	adapter := NewSearchAdapter("secret", SearchOptions{
		Endpoint: server.URL,
		Keywords: map[domain.Category][]string{domain.CategoryScience: {"space"}},
	}, retrier, nil, nil)
	noSleep(adapter)

	articles, err := adapter.Fetch(context.Background(), domain.CategoryScience, 5)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Recovered", articles[0].Title)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSearchFetchExhaustedQueryYieldsNothing(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	retrier := retry.New(retry.Config{MaxAttempts: 2, BaseDelay: time.Millisecond}, nil)
	adapter := NewSearchAdapter("secret", SearchOptions{
		Endpoint: server.URL,
		Keywords: map[domain.Category][]string{domain.CategoryScience: {"space", "research"}},
	}, retrier, nil, nil)
	noSleep(adapter)

	articles, err := adapter.Fetch(context.Background(), domain.CategoryScience, 4)
	require.NoError(t, err, "an exhausted query must not abort the category")
	assert.Empty(t, articles)
}

func TestSearchFetchEnrichesMissingImages(t *testing.T) {
	t.Parallel()

	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><meta property="og:image" content="https://cdn.example.com/og.jpg"></head><body/></html>`))
	}))
	defer page.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"articles":[
			{"title":"Needs image","url":%q,"source":{"name":"S"}},
			{"title":"Has image","url":"https://s.example.com/2","image":"https://cdn.example.com/own.jpg","source":{"name":"S"}}
		]}`, page.URL)
	}))
	defer api.Close()

	adapter := NewSearchAdapter("secret", SearchOptions{
		Endpoint: api.URL,
		Keywords: map[domain.Category][]string{domain.CategoryGeneral: {"korea"}},
	}, nil, NewImageEnricher(2*time.Second), nil)
	noSleep(adapter)

	articles, err := adapter.Fetch(context.Background(), domain.CategoryGeneral, 4)
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "https://cdn.example.com/og.jpg", articles[0].ImageURL)
	assert.Equal(t, "https://cdn.example.com/own.jpg", articles[1].ImageURL)
}
