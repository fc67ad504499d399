package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"ewintr.nl/vidfeed/model"
	"ewintr.nl/vidfeed/storage"
)

var ErrUnknownVideo = errors.New("unknown video")

// Catalog is the session's aggregated video set: every record from the
// last refresh, reconciled against the seen set and the duration cache,
// indexed by channel and flattened newest first. Records with the same id
// share one state, whichever channel or playlist surfaced them.
type Catalog struct {
	seen      storage.SeenRepository
	playlists storage.PlaylistRepository
	cache     *DurationCache
	logger    *slog.Logger

	mu         sync.RWMutex
	byChannel  map[string][]*model.Video
	flat       []*model.Video
	byID       map[model.VideoID][]*model.Video
	showShorts bool
}

func NewCatalog(seen storage.SeenRepository, playlists storage.PlaylistRepository, cache *DurationCache, logger *slog.Logger) *Catalog {
	return &Catalog{
		seen:       seen,
		playlists:  playlists,
		cache:      cache,
		logger:     logger,
		byChannel:  map[string][]*model.Video{},
		flat:       []*model.Video{},
		byID:       map[model.VideoID][]*model.Video{},
		showShorts: true,
	}
}

// Refresh replaces the in-memory set with the given parsed feeds. The seen
// set is loaded once for the whole pass; cached durations are folded in and
// immediately re-derive the shorts flag, so cache hits never need a live
// lookup.
func (c *Catalog) Refresh(feeds []*model.ChannelFeed) error {
	seenSet, err := c.seen.SeenSet()
	if err != nil {
		return fmt.Errorf("refresh catalog: %w", err)
	}

	byChannel := map[string][]*model.Video{}
	byID := map[model.VideoID][]*model.Video{}
	flat := []*model.Video{}
	for _, feed := range feeds {
		for _, video := range feed.Videos {
			c.reconcile(video, seenSet)
			byChannel[feed.Channel] = append(byChannel[feed.Channel], video)
			byID[video.ID] = append(byID[video.ID], video)
			flat = append(flat, video)
		}
	}

	sortByPublished(flat)
	for _, videos := range byChannel {
		sortByPublished(videos)
	}

	c.mu.Lock()
	c.byChannel = byChannel
	c.byID = byID
	c.flat = flat
	c.mu.Unlock()

	c.logger.Info("catalog refreshed", slog.Int("channels", len(byChannel)), slog.Int("videos", len(flat)))

	return nil
}

// enrichTarget is the part of a record an enrichment pass needs, copied
// out so the lookup runs without a reference into the locked set.
type enrichTarget struct {
	id   model.VideoID
	link string
}

// unresolved returns id and link for the records at the top of the
// flattened list that still carry the unknown sentinel.
func (c *Catalog) unresolved(limit int) []enrichTarget {
	c.mu.RLock()
	defer c.mu.RUnlock()

	targets := []enrichTarget{}
	for _, video := range c.flat[:min(len(c.flat), limit)] {
		if !model.Resolved(video.Duration) {
			targets = append(targets, enrichTarget{id: video.ID, link: video.Link})
		}
	}

	return targets
}

// ApplyDuration sets a resolved duration on every copy of the video and
// re-derives the shorts classification. An id that left the set since the
// lookup started is a no-op.
func (c *Catalog) ApplyDuration(id model.VideoID, label string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, video := range c.byID[id] {
		video.Duration = label
		if model.ShortFromLabel(label) {
			video.IsShort = true
		}
	}
}

func (c *Catalog) reconcile(video *model.Video, seenSet map[model.VideoID]bool) {
	video.IsSeen = seenSet[video.ID]
	if label, ok := c.cache.Get(video.ID); ok {
		video.Duration = label
		if model.ShortFromLabel(label) {
			video.IsShort = true
		}
	} else if video.Duration == "" {
		video.Duration = model.DurationUnknown
	}
}

// sort is stable so equal timestamps keep their feed order
func sortByPublished(videos []*model.Video) {
	sort.SliceStable(videos, func(i, j int) bool {
		return videos[i].PublishedAt.After(videos[j].PublishedAt)
	})
}

func (c *Catalog) Channels() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.byChannel))
	for name := range c.byChannel {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Videos returns the flattened list, newest first, honoring the shorts
// toggle.
func (c *Catalog) Videos() []*model.Video {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.visible(c.flat)
}

func (c *Catalog) ChannelVideos(name string) ([]*model.Video, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	videos, ok := c.byChannel[name]
	if !ok {
		return []*model.Video{}, false
	}

	return c.visible(videos), true
}

func (c *Catalog) Unread() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return unread(c.flat)
}

func (c *Catalog) ChannelUnread(name string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return unread(c.byChannel[name])
}

func unread(videos []*model.Video) int {
	count := 0
	for _, video := range videos {
		if !video.IsSeen {
			count++
		}
	}

	return count
}

// MarkSeen persists the seen mark and flips every in-memory copy of the
// video. The caller never observes a flipped flag without a persisted row.
func (c *Catalog) MarkSeen(video *model.Video) error {
	if err := c.seen.MarkSeen(video.ID, video.Title); err != nil {
		return err
	}

	c.mu.Lock()
	video.IsSeen = true
	for _, other := range c.byID[video.ID] {
		other.IsSeen = true
	}
	c.mu.Unlock()

	return nil
}

func (c *Catalog) MarkSeenID(id model.VideoID) error {
	c.mu.RLock()
	copies, ok := c.byID[id]
	c.mu.RUnlock()
	if !ok {
		return ErrUnknownVideo
	}

	return c.MarkSeen(copies[0])
}

// MarkAllSeen marks every unseen video of the current set and reports how
// many were affected.
func (c *Catalog) MarkAllSeen() (int, error) {
	c.mu.RLock()
	unseen := []*model.Video{}
	for _, video := range c.flat {
		if !video.IsSeen {
			unseen = append(unseen, video)
		}
	}
	c.mu.RUnlock()

	if len(unseen) == 0 {
		return 0, nil
	}
	if err := c.seen.MarkAllSeen(unseen); err != nil {
		return 0, err
	}

	c.mu.Lock()
	for _, video := range unseen {
		video.IsSeen = true
		for _, other := range c.byID[video.ID] {
			other.IsSeen = true
		}
	}
	c.mu.Unlock()

	return len(unseen), nil
}

func (c *Catalog) AddToWatchLater(video *model.Video) error {
	return c.playlists.Add(model.WatchLater, video)
}

func (c *Catalog) AddToPlaylistID(name string, id model.VideoID) error {
	c.mu.RLock()
	copies, ok := c.byID[id]
	var snapshot model.Video
	if ok {
		snapshot = *copies[0]
	}
	c.mu.RUnlock()
	if !ok {
		return ErrUnknownVideo
	}

	return c.playlists.Add(name, &snapshot)
}

// RemoveFromPlaylist removes the membership row. The removal is visible to
// the next PlaylistVideos call; display state is the caller's concern.
func (c *Catalog) RemoveFromPlaylist(name string, id model.VideoID) error {
	return c.playlists.Remove(name, id)
}

// PlaylistVideos loads a playlist's snapshots, most recently added first,
// reconciled against the current seen set and duration cache.
func (c *Catalog) PlaylistVideos(name string) ([]*model.Video, error) {
	videos, err := c.playlists.Videos(name)
	if err != nil {
		return []*model.Video{}, err
	}
	seenSet, err := c.seen.SeenSet()
	if err != nil {
		return []*model.Video{}, fmt.Errorf("load playlist: %w", err)
	}
	for _, video := range videos {
		c.reconcile(video, seenSet)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.visible(videos), nil
}

func (c *Catalog) Playlists() ([]*model.Playlist, error) {
	return c.playlists.Playlists()
}

func (c *Catalog) CreatePlaylist(name string) error {
	return c.playlists.Create(name)
}

func (c *Catalog) DeletePlaylist(name string) error {
	return c.playlists.Delete(name)
}

func (c *Catalog) ShowShorts() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.showShorts
}

// ToggleShorts flips the shorts display filter and returns the new value.
func (c *Catalog) ToggleShorts() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showShorts = !c.showShorts

	return c.showShorts
}

// visible applies the shorts filter and copies out each record, so a view
// never shares memory with a concurrent enrichment or seen-mark write.
// Callers re-request a view after an enrichment pass, since resolving a
// duration can flip a record to short.
func (c *Catalog) visible(videos []*model.Video) []*model.Video {
	result := make([]*model.Video, 0, len(videos))
	for _, video := range videos {
		if !c.showShorts && video.IsShort {
			continue
		}
		snapshot := *video
		result = append(result, &snapshot)
	}

	return result
}
