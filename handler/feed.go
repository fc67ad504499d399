package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"ewintr.nl/vidfeed/feed"
)

type FeedAPI struct {
	subscriptions *feed.OPML
	logger        *slog.Logger
}

func NewFeedAPI(subscriptions *feed.OPML, logger *slog.Logger) *FeedAPI {
	return &FeedAPI{
		subscriptions: subscriptions,
		logger:        logger,
	}
}

func (f *FeedAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	head, _ := ShiftPath(r.URL.Path)
	if head != "" {
		Error(w, http.StatusNotFound, "not found", fmt.Errorf("subpath %q was not registered in the feed api", head))
		return
	}

	switch r.Method {
	case http.MethodGet:
		f.List(w, r)
	case http.MethodPost:
		f.Add(w, r)
	case http.MethodDelete:
		f.Remove(w, r)
	default:
		Error(w, http.StatusNotFound, "not found", fmt.Errorf("method %s was not registered in the feed api", r.Method))
	}
}

func (f *FeedAPI) List(w http.ResponseWriter, r *http.Request) {
	subs, err := f.subscriptions.Subscriptions()
	if err != nil {
		f.returnErr(w, http.StatusInternalServerError, "could not list feeds", err)
		return
	}

	type respFeed struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	}
	resp := make([]respFeed, 0, len(subs))
	for _, sub := range subs {
		resp = append(resp, respFeed{Title: sub.Title, URL: sub.URL})
	}

	jsonBody, err := json.Marshal(resp)
	if err != nil {
		f.returnErr(w, http.StatusInternalServerError, "could not marshal response", err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(jsonBody)
}

func (f *FeedAPI) Add(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		Error(w, http.StatusBadRequest, "invalid request body", fmt.Errorf("need a feed url"))
		return
	}

	if err := f.subscriptions.Add(req.Title, req.URL); err != nil {
		f.returnErr(w, http.StatusInternalServerError, "could not add feed", err)
		return
	}
	Message(w, http.StatusOK, fmt.Sprintf("added feed %q", req.URL))
}

// Remove drops the feed at the given top-level position. The list endpoint
// returns feeds in that same order, so the index is what a client just saw.
func (f *FeedAPI) Remove(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.URL.Query().Get("index"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid request", fmt.Errorf("need a feed index"))
		return
	}

	if err := f.subscriptions.Remove(index); err != nil {
		Error(w, http.StatusNotFound, "not found", err)
		return
	}
	Message(w, http.StatusOK, fmt.Sprintf("removed feed %d", index))
}

func (f *FeedAPI) returnErr(w http.ResponseWriter, status int, message string, err error, details ...any) {
	f.logger.Error(message, slog.String("err", err.Error()), slog.String("details", fmt.Sprintf("%+v", details)))
	Error(w, status, message, err, details...)
}
