package catalog

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

const (
	// enrichWindow bounds the working set to what is about to be displayed.
	enrichWindow = 40
	// enrichLimit caps simultaneous oracle calls.
	enrichLimit = 5
)

// DurationResolver resolves the runtime of a single video. A false return
// means unresolved; the record is retried on a future pass.
type DurationResolver interface {
	Duration(ctx context.Context, link string) (string, bool)
}

// Enricher fills in missing durations for a bounded working set with
// bounded concurrency and re-derives the shorts classification from every
// resolved duration.
type Enricher struct {
	resolver DurationResolver
	cache    *DurationCache
	logger   *slog.Logger
}

func NewEnricher(resolver DurationResolver, cache *DurationCache, logger *slog.Logger) *Enricher {
	return &Enricher{
		resolver: resolver,
		cache:    cache,
		logger:   logger,
	}
}

// Enrich resolves durations for the catalog's first records that still
// carry the unknown sentinel and returns the number resolved. Every update
// goes back through the catalog's lock, so views served during the pass
// never observe a torn record. It blocks until the whole batch has
// settled; callers never see a partially-running pass.
func (e *Enricher) Enrich(ctx context.Context, videoSet *Catalog) int {
	working := videoSet.unresolved(enrichWindow)
	if len(working) == 0 {
		return 0
	}
	e.logger.Info("enriching videos", slog.Int("count", len(working)))

	sem := semaphore.NewWeighted(enrichLimit)
	var resolved atomic.Int64
	var wg sync.WaitGroup
	for _, target := range working {
		wg.Add(1)
		go func(target enrichTarget) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer sem.Release(1)

			// the aggregation pass already applied the cache, but a
			// parallel session may have resolved this id since
			if label, ok := e.cache.Get(target.id); ok {
				videoSet.ApplyDuration(target.id, label)
				resolved.Add(1)
				return
			}

			label, ok := e.resolver.Duration(ctx, target.link)
			if !ok {
				return
			}
			e.cache.Put(target.id, label)
			videoSet.ApplyDuration(target.id, label)
			resolved.Add(1)
		}(target)
	}
	wg.Wait()

	return int(resolved.Load())
}
