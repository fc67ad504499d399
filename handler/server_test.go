package handler_test

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ewintr.nl/vidfeed/catalog"
	"ewintr.nl/vidfeed/feed"
	"ewintr.nl/vidfeed/handler"
	"ewintr.nl/vidfeed/model"
	"ewintr.nl/vidfeed/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *catalog.Catalog) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()
	sqlite, err := storage.NewSqlite(filepath.Join(dir, "vidfeed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	cache := catalog.NewDurationCache(storage.NewSqliteMetadataRepository(sqlite), logger)
	videoSet := catalog.NewCatalog(
		storage.NewSqliteSeenRepository(sqlite),
		storage.NewSqlitePlaylistRepository(sqlite),
		cache,
		logger,
	)
	require.NoError(t, videoSet.Refresh([]*model.ChannelFeed{
		{Channel: "Channel A", Videos: []*model.Video{
			{
				ID:          "a1",
				Title:       "newest",
				Channel:     "Channel A",
				Link:        "https://example.com/v/a1",
				PublishedAt: time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC),
				Duration:    model.DurationUnknown,
			},
			{
				ID:          "a2",
				Title:       "oldest",
				Channel:     "Channel A",
				Link:        "https://example.com/v/a2",
				PublishedAt: time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC),
				Duration:    model.DurationUnknown,
			},
		}},
	}))

	subscriptions := feed.NewOPML(filepath.Join(dir, "vidfeed.opml"))
	require.NoError(t, subscriptions.Add("Channel A", "https://example.com/feed/a"))

	srv := httptest.NewServer(handler.NewServer(videoSet, subscriptions, logger))
	t.Cleanup(srv.Close)

	return srv, videoSet
}

func get(t *testing.T, url string, target any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if target != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
	}

	return resp.StatusCode
}

func post(t *testing.T, url, body string) int {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()

	return resp.StatusCode
}

func del(t *testing.T, url string) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodDelete, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	return resp.StatusCode
}

type videoList struct {
	Unread int `json:"unread"`
	Videos []struct {
		ID   string `json:"id"`
		Seen bool   `json:"seen"`
	} `json:"videos"`
}

func TestServerIndex(t *testing.T) {
	srv, _ := newTestServer(t)

	var resp struct {
		Message string `json:"message"`
	}
	status := get(t, srv.URL+"/", &resp)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "vidfeed index", resp.Message)

	assert.Equal(t, http.StatusNotFound, get(t, srv.URL+"/nope", nil))
}

func TestServerVideoList(t *testing.T) {
	srv, _ := newTestServer(t)

	var list videoList
	status := get(t, srv.URL+"/video", &list)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, list.Unread)
	require.Len(t, list.Videos, 2)
	assert.Equal(t, "a1", list.Videos[0].ID)
	assert.Equal(t, "a2", list.Videos[1].ID)

	status = get(t, srv.URL+"/video?channel=Channel+A", &list)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, list.Videos, 2)

	assert.Equal(t, http.StatusNotFound, get(t, srv.URL+"/video?channel=nope", nil))
}

func TestServerMarkSeen(t *testing.T) {
	srv, _ := newTestServer(t)

	assert.Equal(t, http.StatusOK, post(t, srv.URL+"/video/seen", `{"id": "a1"}`))
	assert.Equal(t, http.StatusNotFound, post(t, srv.URL+"/video/seen", `{"id": "ghost"}`))
	assert.Equal(t, http.StatusBadRequest, post(t, srv.URL+"/video/seen", `{}`))

	var list videoList
	get(t, srv.URL+"/video", &list)
	assert.Equal(t, 1, list.Unread)
	assert.True(t, list.Videos[0].Seen)

	assert.Equal(t, http.StatusOK, post(t, srv.URL+"/video/seen", `{"all": true}`))
	get(t, srv.URL+"/video", &list)
	assert.Equal(t, 0, list.Unread)
}

func TestServerPlaylists(t *testing.T) {
	srv, _ := newTestServer(t)

	var playlists []struct {
		Name   string `json:"name"`
		System bool   `json:"system"`
		Count  int    `json:"count"`
	}
	status := get(t, srv.URL+"/playlist", &playlists)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, playlists, 1)
	assert.Equal(t, model.WatchLater, playlists[0].Name)
	assert.True(t, playlists[0].System)

	// the system playlist refuses deletion
	assert.Equal(t, http.StatusForbidden, del(t, srv.URL+"/playlist/Watch%20Later"))

	assert.Equal(t, http.StatusOK, post(t, srv.URL+"/playlist", `{"name": "later"}`))
	assert.Equal(t, http.StatusOK, del(t, srv.URL+"/playlist/later"))
	assert.Equal(t, http.StatusNotFound, del(t, srv.URL+"/playlist/later"))
}

func TestServerPlaylistItems(t *testing.T) {
	srv, _ := newTestServer(t)
	base := srv.URL + "/playlist/Watch%20Later"

	assert.Equal(t, http.StatusOK, post(t, base+"/items", `{"id": "a1"}`))
	assert.Equal(t, http.StatusNotFound, post(t, base+"/items", `{"id": "ghost"}`))

	var videos []struct {
		ID string `json:"id"`
	}
	status := get(t, base, &videos)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, videos, 1)
	assert.Equal(t, "a1", videos[0].ID)

	assert.Equal(t, http.StatusOK, del(t, fmt.Sprintf("%s/items?id=%s", base, "a1")))
	get(t, base, &videos)
	assert.Empty(t, videos)

	assert.Equal(t, http.StatusNotFound, get(t, srv.URL+"/playlist/nope", nil))
}

func TestServerFeeds(t *testing.T) {
	srv, _ := newTestServer(t)

	var feeds []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	}
	status := get(t, srv.URL+"/feed", &feeds)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, feeds, 1)
	assert.Equal(t, "Channel A", feeds[0].Title)

	assert.Equal(t, http.StatusOK, post(t, srv.URL+"/feed", `{"title": "Channel B", "url": "https://example.com/feed/b"}`))
	assert.Equal(t, http.StatusBadRequest, post(t, srv.URL+"/feed", `{"title": "no url"}`))

	get(t, srv.URL+"/feed", &feeds)
	require.Len(t, feeds, 2)
	assert.Equal(t, "https://example.com/feed/b", feeds[1].URL)

	assert.Equal(t, http.StatusOK, del(t, srv.URL+"/feed?index=0"))
	assert.Equal(t, http.StatusNotFound, del(t, srv.URL+"/feed?index=5"))
	assert.Equal(t, http.StatusBadRequest, del(t, srv.URL+"/feed"))

	get(t, srv.URL+"/feed", &feeds)
	require.Len(t, feeds, 1)
	assert.Equal(t, "Channel B", feeds[0].Title)
}
