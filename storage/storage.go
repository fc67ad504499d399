package storage

import (
	"errors"

	"ewintr.nl/vidfeed/model"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrProtectedPlaylist = errors.New("playlist is protected")
)

type SeenRepository interface {
	SeenSet() (map[model.VideoID]bool, error)
	MarkSeen(id model.VideoID, title string) error
	MarkAllSeen(videos []*model.Video) error
}

type MetadataRepository interface {
	Durations() (map[model.VideoID]string, error)
	SaveDuration(id model.VideoID, duration string) error
}

type PlaylistRepository interface {
	Playlists() ([]*model.Playlist, error)
	Create(name string) error
	Delete(name string) error
	Videos(name string) ([]*model.Video, error)
	Add(name string, video *model.Video) error
	Remove(name string, id model.VideoID) error
}
