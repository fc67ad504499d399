package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"ewintr.nl/vidfeed/catalog"
	"ewintr.nl/vidfeed/model"
	"ewintr.nl/vidfeed/storage"
)

type PlaylistAPI struct {
	videoSet *catalog.Catalog
	logger   *slog.Logger
}

func NewPlaylistAPI(videoSet *catalog.Catalog, logger *slog.Logger) *PlaylistAPI {
	return &PlaylistAPI{
		videoSet: videoSet,
		logger:   logger,
	}
}

func (p *PlaylistAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	head, tail := ShiftPath(r.URL.Path)
	name, err := url.PathUnescape(head)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid playlist name", err)
		return
	}
	sub, _ := ShiftPath(tail)

	switch {
	case r.Method == http.MethodGet && name == "":
		p.List(w, r)
	case r.Method == http.MethodPost && name == "":
		p.Create(w, r)
	case r.Method == http.MethodGet && sub == "":
		p.Videos(w, r, name)
	case r.Method == http.MethodDelete && sub == "":
		p.Delete(w, r, name)
	case r.Method == http.MethodPost && sub == "items":
		p.AddItem(w, r, name)
	case r.Method == http.MethodDelete && sub == "items":
		p.RemoveItem(w, r, name)
	default:
		Error(w, http.StatusNotFound, "not found", fmt.Errorf("method %s with subpath %q was not registered in the playlist api", r.Method, sub))
	}
}

func (p *PlaylistAPI) List(w http.ResponseWriter, r *http.Request) {
	playlists, err := p.videoSet.Playlists()
	if err != nil {
		p.returnErr(w, http.StatusInternalServerError, "could not list playlists", err)
		return
	}

	type respPlaylist struct {
		Name   string `json:"name"`
		System bool   `json:"system"`
		Count  int    `json:"count"`
	}
	resp := make([]respPlaylist, 0, len(playlists))
	for _, playlist := range playlists {
		resp = append(resp, respPlaylist{
			Name:   playlist.Name,
			System: playlist.System,
			Count:  playlist.ItemCount,
		})
	}

	jsonBody, err := json.Marshal(resp)
	if err != nil {
		p.returnErr(w, http.StatusInternalServerError, "could not marshal response", err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(jsonBody)
}

func (p *PlaylistAPI) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		Error(w, http.StatusBadRequest, "invalid request body", fmt.Errorf("need a name"))
		return
	}

	if err := p.videoSet.CreatePlaylist(req.Name); err != nil {
		p.returnErr(w, http.StatusInternalServerError, "could not create playlist", err)
		return
	}
	Message(w, http.StatusOK, fmt.Sprintf("created playlist %q", req.Name))
}

func (p *PlaylistAPI) Delete(w http.ResponseWriter, r *http.Request, name string) {
	err := p.videoSet.DeletePlaylist(name)
	switch {
	case errors.Is(err, storage.ErrProtectedPlaylist):
		Error(w, http.StatusForbidden, "playlist is protected", err)
	case errors.Is(err, storage.ErrNotFound):
		Error(w, http.StatusNotFound, "not found", err)
	case err != nil:
		p.returnErr(w, http.StatusInternalServerError, "could not delete playlist", err)
	default:
		Message(w, http.StatusOK, fmt.Sprintf("deleted playlist %q", name))
	}
}

func (p *PlaylistAPI) Videos(w http.ResponseWriter, r *http.Request, name string) {
	videos, err := p.videoSet.PlaylistVideos(name)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		Error(w, http.StatusNotFound, "not found", err)
		return
	case err != nil:
		p.returnErr(w, http.StatusInternalServerError, "could not list playlist videos", err)
		return
	}

	resp := make([]respVideo, 0, len(videos))
	for _, video := range videos {
		resp = append(resp, respVideo{
			ID:          string(video.ID),
			Title:       video.Title,
			Channel:     video.Channel,
			Link:        video.Link,
			PublishedAt: video.PublishedAt,
			Duration:    video.Duration,
			Short:       video.IsShort,
			Seen:        video.IsSeen,
		})
	}

	jsonBody, err := json.Marshal(resp)
	if err != nil {
		p.returnErr(w, http.StatusInternalServerError, "could not marshal response", err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(jsonBody)
}

func (p *PlaylistAPI) AddItem(w http.ResponseWriter, r *http.Request, name string) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		Error(w, http.StatusBadRequest, "invalid request body", fmt.Errorf("need a video id"))
		return
	}

	err := p.videoSet.AddToPlaylistID(name, model.VideoID(req.ID))
	switch {
	case errors.Is(err, catalog.ErrUnknownVideo), errors.Is(err, storage.ErrNotFound):
		Error(w, http.StatusNotFound, "not found", err)
	case err != nil:
		p.returnErr(w, http.StatusInternalServerError, "could not add to playlist", err)
	default:
		Message(w, http.StatusOK, fmt.Sprintf("added to %q", name))
	}
}

func (p *PlaylistAPI) RemoveItem(w http.ResponseWriter, r *http.Request, name string) {
	id := r.URL.Query().Get("id")
	if id == "" {
		Error(w, http.StatusBadRequest, "invalid request", fmt.Errorf("need a video id"))
		return
	}

	err := p.videoSet.RemoveFromPlaylist(name, model.VideoID(id))
	switch {
	case errors.Is(err, storage.ErrNotFound):
		Error(w, http.StatusNotFound, "not found", err)
	case err != nil:
		p.returnErr(w, http.StatusInternalServerError, "could not remove from playlist", err)
	default:
		Message(w, http.StatusOK, fmt.Sprintf("removed from %q", name))
	}
}

func (p *PlaylistAPI) returnErr(w http.ResponseWriter, status int, message string, err error, details ...any) {
	p.logger.Error(message, slog.String("err", err.Error()), slog.String("details", fmt.Sprintf("%+v", details)))
	Error(w, status, message, err, details...)
}
