package model

import "time"

type VideoID string

// Video is one entry surfaced by a channel feed, or the durable snapshot of
// one loaded back from playlist storage. Records are rebuilt on every
// aggregation pass; only seen marks, durations and playlist snapshots
// persist.
type Video struct {
	ID          VideoID
	Title       string
	Channel     string
	Link        string
	PublishedAt time.Time
	Duration    string
	IsShort     bool
	IsSeen      bool
}

// ChannelFeed is the normalized result of parsing one feed document.
type ChannelFeed struct {
	Channel string
	Videos  []*Video
}
