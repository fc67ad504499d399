package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ewintr.nl/vidfeed/model"
	"github.com/google/uuid"
)

type SqlitePlaylistRepository struct {
	sqlite *Sqlite
}

func NewSqlitePlaylistRepository(sqlite *Sqlite) *SqlitePlaylistRepository {
	return &SqlitePlaylistRepository{sqlite: sqlite}
}

func (r *SqlitePlaylistRepository) Playlists() ([]*model.Playlist, error) {
	rows, err := r.sqlite.db.Query(`
SELECT p.id, p.name, p.created_at, p.is_system_list, COUNT(pi.video_id)
FROM playlists p
LEFT JOIN playlist_items pi ON pi.playlist_id = p.id
GROUP BY p.id
ORDER BY p.created_at, p.name`)
	if err != nil {
		return []*model.Playlist{}, fmt.Errorf("list playlists: %w", err)
	}
	defer rows.Close()

	playlists := []*model.Playlist{}
	for rows.Next() {
		var id, name, createdAt string
		var system bool
		var count int
		if err := rows.Scan(&id, &name, &createdAt, &system, &count); err != nil {
			return []*model.Playlist{}, err
		}
		pid, err := uuid.Parse(id)
		if err != nil {
			return []*model.Playlist{}, fmt.Errorf("playlist id %q: %w", id, err)
		}
		created, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return []*model.Playlist{}, fmt.Errorf("playlist created_at %q: %w", createdAt, err)
		}
		playlists = append(playlists, &model.Playlist{
			ID:        pid,
			Name:      name,
			CreatedAt: created,
			System:    system,
			ItemCount: count,
		})
	}

	return playlists, rows.Err()
}

func (r *SqlitePlaylistRepository) Create(name string) error {
	_, err := r.sqlite.db.Exec(`
INSERT INTO playlists (id, name, created_at, is_system_list)
VALUES (?, ?, ?, 0)`,
		uuid.New().String(), name, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("create playlist: %w", err)
	}

	return nil
}

func (r *SqlitePlaylistRepository) Delete(name string) error {
	id, system, err := r.find(name)
	if err != nil {
		return err
	}
	if system {
		return ErrProtectedPlaylist
	}

	// playlist_items cascade
	if _, err := r.sqlite.db.Exec(`DELETE FROM playlists WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}

	return nil
}

func (r *SqlitePlaylistRepository) Videos(name string) ([]*model.Video, error) {
	if _, _, err := r.find(name); err != nil {
		return []*model.Video{}, err
	}

	rows, err := r.sqlite.db.Query(`
SELECT v.video_id, v.title, v.channel, v.url, v.duration, v.is_shorts, v.published_date
FROM videos v
JOIN playlist_items pi ON pi.video_id = v.video_id
JOIN playlists p ON p.id = pi.playlist_id
WHERE p.name = ?
ORDER BY pi.added_at DESC, pi.rowid DESC`, name)
	if err != nil {
		return []*model.Video{}, fmt.Errorf("list playlist videos: %w", err)
	}
	defer rows.Close()

	videos := []*model.Video{}
	for rows.Next() {
		var id, title, channel, url, duration, published string
		var short bool
		if err := rows.Scan(&id, &title, &channel, &url, &duration, &short, &published); err != nil {
			return []*model.Video{}, err
		}
		publishedAt, _ := time.Parse(time.RFC3339, published)
		videos = append(videos, &model.Video{
			ID:          model.VideoID(id),
			Title:       title,
			Channel:     channel,
			Link:        url,
			PublishedAt: publishedAt,
			Duration:    duration,
			IsShort:     short,
		})
	}

	return videos, rows.Err()
}

func (r *SqlitePlaylistRepository) Add(name string, video *model.Video) error {
	id, _, err := r.find(name)
	if err != nil {
		return err
	}

	tx, err := r.sqlite.db.Begin()
	if err != nil {
		return fmt.Errorf("add to playlist: %w", err)
	}

	// snapshot survives the feed no longer surfacing this video; upsert
	// instead of REPLACE, since a REPLACE deletes the row and the delete
	// cascades into playlist_items
	published := ""
	if !video.PublishedAt.IsZero() {
		published = video.PublishedAt.Format(time.RFC3339)
	}
	if _, err := tx.Exec(`
INSERT INTO videos (video_id, title, channel, url, duration, is_shorts, published_date)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(video_id) DO UPDATE SET
title = excluded.title,
channel = excluded.channel,
url = excluded.url,
duration = excluded.duration,
is_shorts = excluded.is_shorts,
published_date = excluded.published_date`,
		string(video.ID), video.Title, video.Channel, video.Link, video.Duration, video.IsShort, published); err != nil {
		tx.Rollback()
		return fmt.Errorf("save video snapshot: %w", err)
	}

	if _, err := tx.Exec(`
INSERT OR IGNORE INTO playlist_items (playlist_id, video_id, added_at)
VALUES (?, ?, ?)`,
		id, string(video.ID), time.Now().UTC().Format(time.RFC3339)); err != nil {
		tx.Rollback()
		return fmt.Errorf("add to playlist: %w", err)
	}

	return tx.Commit()
}

func (r *SqlitePlaylistRepository) Remove(name string, id model.VideoID) error {
	playlistID, _, err := r.find(name)
	if err != nil {
		return err
	}

	if _, err := r.sqlite.db.Exec(`
DELETE FROM playlist_items
WHERE playlist_id = ? AND video_id = ?`,
		playlistID, string(id)); err != nil {
		return fmt.Errorf("remove from playlist: %w", err)
	}

	return nil
}

func (r *SqlitePlaylistRepository) find(name string) (string, bool, error) {
	var id string
	var system bool
	err := r.sqlite.db.QueryRow(`SELECT id, is_system_list FROM playlists WHERE name = ?`, name).
		Scan(&id, &system)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, ErrNotFound
	case err != nil:
		return "", false, fmt.Errorf("find playlist: %w", err)
	}

	return id, system, nil
}
