package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"ewintr.nl/vidfeed/catalog"
	"ewintr.nl/vidfeed/model"
)

type VideoAPI struct {
	videoSet *catalog.Catalog
	logger   *slog.Logger
}

func NewVideoAPI(videoSet *catalog.Catalog, logger *slog.Logger) *VideoAPI {
	return &VideoAPI{
		videoSet: videoSet,
		logger:   logger,
	}
}

func (v *VideoAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	head, _ := ShiftPath(r.URL.Path)

	switch {
	case r.Method == http.MethodGet && head == "":
		v.List(w, r)
	case r.Method == http.MethodPost && head == "seen":
		v.MarkSeen(w, r)
	default:
		Error(w, http.StatusNotFound, "not found", fmt.Errorf("method %s with subpath %q was not registered in the video api", r.Method, head))
	}
}

type respVideo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Channel     string    `json:"channel"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"published_at"`
	Duration    string    `json:"duration"`
	Short       bool      `json:"short"`
	Seen        bool      `json:"seen"`
}

func (v *VideoAPI) List(w http.ResponseWriter, r *http.Request) {
	var videos []*model.Video
	if channel := r.URL.Query().Get("channel"); channel != "" {
		channelVideos, ok := v.videoSet.ChannelVideos(channel)
		if !ok {
			Error(w, http.StatusNotFound, "not found", fmt.Errorf("unknown channel %q", channel))
			return
		}
		videos = channelVideos
	} else {
		videos = v.videoSet.Videos()
	}

	resp := struct {
		Unread int         `json:"unread"`
		Videos []respVideo `json:"videos"`
	}{
		Unread: v.videoSet.Unread(),
		Videos: make([]respVideo, 0, len(videos)),
	}
	for _, video := range videos {
		resp.Videos = append(resp.Videos, respVideo{
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
		v.returnErr(w, http.StatusInternalServerError, "could not marshal response", err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(jsonBody)
}

func (v *VideoAPI) MarkSeen(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID  string `json:"id"`
		All bool   `json:"all"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	switch {
	case req.All:
		count, err := v.videoSet.MarkAllSeen()
		if err != nil {
			v.returnErr(w, http.StatusInternalServerError, "could not mark all seen", err)
			return
		}
		Message(w, http.StatusOK, fmt.Sprintf("marked %d videos as seen", count))
	case req.ID != "":
		err := v.videoSet.MarkSeenID(model.VideoID(req.ID))
		switch {
		case errors.Is(err, catalog.ErrUnknownVideo):
			Error(w, http.StatusNotFound, "not found", err)
		case err != nil:
			v.returnErr(w, http.StatusInternalServerError, "could not mark seen", err)
		default:
			Message(w, http.StatusOK, "marked as seen")
		}
	default:
		Error(w, http.StatusBadRequest, "invalid request body", fmt.Errorf("need an id or all"))
	}
}

func (v *VideoAPI) returnErr(w http.ResponseWriter, status int, message string, err error, details ...any) {
	v.logger.Error(message, slog.String("err", err.Error()), slog.String("details", fmt.Sprintf("%+v", details)))
	Error(w, status, message, err, details...)
}
