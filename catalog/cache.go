package catalog

import (
	"log/slog"
	"sync"

	"ewintr.nl/vidfeed/model"
	"ewintr.nl/vidfeed/storage"
)

// DurationCache mirrors the persisted duration table in memory. Only
// resolved labels are ever stored, so a failed lookup is retried on the
// next enrichment pass instead of poisoning the cache.
type DurationCache struct {
	repo   storage.MetadataRepository
	logger *slog.Logger

	mu      sync.RWMutex
	entries map[model.VideoID]string
}

// NewDurationCache loads the full persisted duration table. A store that
// cannot be read yields an empty cache, not an error.
func NewDurationCache(repo storage.MetadataRepository, logger *slog.Logger) *DurationCache {
	c := &DurationCache{
		repo:    repo,
		logger:  logger,
		entries: map[model.VideoID]string{},
	}

	entries, err := repo.Durations()
	if err != nil {
		logger.Error("failed to load duration cache", slog.String("error", err.Error()))
		return c
	}
	c.entries = entries

	return c
}

func (c *DurationCache) Get(id model.VideoID) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	label, ok := c.entries[id]

	return label, ok
}

// Put stores a resolved duration in memory and writes it through to the
// store. The persistent write is best effort; a failure is logged and the
// in-memory entry stands for the rest of the run. Unresolved labels are
// dropped.
func (c *DurationCache) Put(id model.VideoID, label string) {
	if !model.Resolved(label) {
		return
	}

	c.mu.Lock()
	c.entries[id] = label
	c.mu.Unlock()

	if err := c.repo.SaveDuration(id, label); err != nil {
		c.logger.Error("failed to persist duration", slog.String("id", string(id)), slog.String("error", err.Error()))
	}
}

func (c *DurationCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
