package fetcher_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ewintr.nl/vidfeed/fetcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetchAllPreservesOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/broken":
			w.WriteHeader(http.StatusInternalServerError)
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		default:
			fmt.Fprintf(w, "document for %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	urls := []string{
		srv.URL + "/a",
		srv.URL + "/broken",
		srv.URL + "/b",
		srv.URL + "/missing",
		srv.URL + "/c",
	}

	f := fetcher.NewFeedFetcher(5*time.Second, testLogger())
	results := f.FetchAll(context.Background(), urls)

	require.Len(t, results, len(urls))
	for i, result := range results {
		assert.Equal(t, urls[i], result.URL)
	}
	assert.True(t, results[0].OK)
	assert.Equal(t, "document for /a", results[0].Document)
	assert.False(t, results[1].OK)
	assert.True(t, results[2].OK)
	assert.False(t, results[3].OK)
	assert.True(t, results[4].OK)
}

func TestFetchAllUnreachableHost(t *testing.T) {
	f := fetcher.NewFeedFetcher(time.Second, testLogger())
	results := f.FetchAll(context.Background(), []string{"http://127.0.0.1:1/feed"})

	require.Len(t, results, 1)
	assert.False(t, results[0].OK)
	assert.Empty(t, results[0].Document)
}

func TestFetchAllSendsUserAgent(t *testing.T) {
	var agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	f := fetcher.NewFeedFetcher(time.Second, testLogger())
	f.FetchAll(context.Background(), []string{srv.URL})

	assert.Contains(t, agent, "Mozilla/5.0")
}
