package catalog_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"ewintr.nl/vidfeed/model"
	"ewintr.nl/vidfeed/storage"
	"github.com/google/uuid"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSeenRepo struct {
	mu       sync.Mutex
	seen     map[model.VideoID]string
	failMark bool
}

func newFakeSeenRepo(ids ...model.VideoID) *fakeSeenRepo {
	seen := map[model.VideoID]string{}
	for _, id := range ids {
		seen[id] = string(id)
	}

	return &fakeSeenRepo{seen: seen}
}

func (r *fakeSeenRepo) SeenSet() (map[model.VideoID]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := map[model.VideoID]bool{}
	for id := range r.seen {
		set[id] = true
	}

	return set, nil
}

func (r *fakeSeenRepo) MarkSeen(id model.VideoID, title string) error {
	if r.failMark {
		return errors.New("store unreachable")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen[id] = title

	return nil
}

func (r *fakeSeenRepo) MarkAllSeen(videos []*model.Video) error {
	if r.failMark {
		return errors.New("store unreachable")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, video := range videos {
		r.seen[video.ID] = video.Title
	}

	return nil
}

type fakeMetadataRepo struct {
	mu        sync.Mutex
	durations map[model.VideoID]string
	saves     int
	saveErr   error
}

func newFakeMetadataRepo() *fakeMetadataRepo {
	return &fakeMetadataRepo{durations: map[model.VideoID]string{}}
}

func (r *fakeMetadataRepo) Durations() (map[model.VideoID]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	durations := map[model.VideoID]string{}
	for id, d := range r.durations {
		durations[id] = d
	}

	return durations, nil
}

func (r *fakeMetadataRepo) SaveDuration(id model.VideoID, duration string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.durations[id] = duration
	r.saves++

	return nil
}

func (r *fakeMetadataRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.saves
}

type fakePlaylistRepo struct {
	mu    sync.Mutex
	items map[string][]model.Video
}

func newFakePlaylistRepo() *fakePlaylistRepo {
	return &fakePlaylistRepo{items: map[string][]model.Video{
		model.WatchLater: {},
	}}
}

func (r *fakePlaylistRepo) Playlists() ([]*model.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	playlists := []*model.Playlist{}
	for name, items := range r.items {
		playlists = append(playlists, &model.Playlist{
			ID:        uuid.New(),
			Name:      name,
			System:    name == model.WatchLater,
			ItemCount: len(items),
		})
	}

	return playlists, nil
}

func (r *fakePlaylistRepo) Create(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[name]; ok {
		return errors.New("name taken")
	}
	r.items[name] = []model.Video{}

	return nil
}

func (r *fakePlaylistRepo) Delete(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if name == model.WatchLater {
		return storage.ErrProtectedPlaylist
	}
	if _, ok := r.items[name]; !ok {
		return storage.ErrNotFound
	}
	delete(r.items, name)

	return nil
}

func (r *fakePlaylistRepo) Videos(name string) ([]*model.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items, ok := r.items[name]
	if !ok {
		return []*model.Video{}, storage.ErrNotFound
	}
	videos := make([]*model.Video, 0, len(items))
	for _, item := range items {
		video := item
		videos = append(videos, &video)
	}

	return videos, nil
}

func (r *fakePlaylistRepo) Add(name string, video *model.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	items, ok := r.items[name]
	if !ok {
		return storage.ErrNotFound
	}
	for i, item := range items {
		if item.ID == video.ID {
			items[i] = *video
			return nil
		}
	}
	r.items[name] = append([]model.Video{*video}, items...)

	return nil
}

func (r *fakePlaylistRepo) Remove(name string, id model.VideoID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	items, ok := r.items[name]
	if !ok {
		return storage.ErrNotFound
	}
	for i, item := range items {
		if item.ID == id {
			r.items[name] = append(items[:i], items[i+1:]...)
			return nil
		}
	}

	return nil
}

// fakeResolver serves durations by link and records how many calls ran at
// once, to probe the concurrency cap.
type fakeResolver struct {
	durations   map[string]string
	delay       time.Duration
	calls       atomic.Int64
	inflight    atomic.Int64
	maxInflight atomic.Int64
}

func newFakeResolver(durations map[string]string) *fakeResolver {
	return &fakeResolver{durations: durations}
}

func (r *fakeResolver) Duration(_ context.Context, link string) (string, bool) {
	r.calls.Add(1)
	current := r.inflight.Add(1)
	defer r.inflight.Add(-1)
	for {
		seen := r.maxInflight.Load()
		if current <= seen || r.maxInflight.CompareAndSwap(seen, current) {
			break
		}
	}
	if r.delay > 0 {
		time.Sleep(r.delay)
	}

	label, ok := r.durations[link]

	return label, ok
}
