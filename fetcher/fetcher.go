package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/90.0.4430.212 Safari/537.36"

// Result is the outcome of fetching one feed URL. A failed fetch leaves
// Document empty and OK false; it never fails the batch.
type Result struct {
	URL      string
	Document string
	OK       bool
}

type FeedFetcher struct {
	client *http.Client
	logger *slog.Logger
}

func NewFeedFetcher(timeout time.Duration, logger *slog.Logger) *FeedFetcher {
	return &FeedFetcher{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// FetchAll retrieves all feed documents concurrently, one request per URL,
// and returns one Result per URL in input order.
func (f *FeedFetcher) FetchAll(ctx context.Context, urls []string) []Result {
	results := make([]Result, len(urls))
	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			doc, err := f.fetch(ctx, url)
			if err != nil {
				f.logger.Error("failed to fetch feed", slog.String("url", url), slog.String("error", err.Error()))
				results[i] = Result{URL: url}
				return
			}
			results[i] = Result{URL: url, Document: doc, OK: true}
		}(i, url)
	}
	wg.Wait()

	return results
}

func (f *FeedFetcher) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(body), nil
}
