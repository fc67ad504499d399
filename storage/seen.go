package storage

import (
	"fmt"
	"time"

	"ewintr.nl/vidfeed/model"
)

type SqliteSeenRepository struct {
	sqlite *Sqlite
}

func NewSqliteSeenRepository(sqlite *Sqlite) *SqliteSeenRepository {
	return &SqliteSeenRepository{sqlite: sqlite}
}

func (r *SqliteSeenRepository) SeenSet() (map[model.VideoID]bool, error) {
	rows, err := r.sqlite.db.Query(`SELECT video_id FROM seen_videos`)
	if err != nil {
		return map[model.VideoID]bool{}, fmt.Errorf("load seen set: %w", err)
	}
	defer rows.Close()

	seen := map[model.VideoID]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return map[model.VideoID]bool{}, err
		}
		seen[model.VideoID(id)] = true
	}

	return seen, rows.Err()
}

func (r *SqliteSeenRepository) MarkSeen(id model.VideoID, title string) error {
	_, err := r.sqlite.db.Exec(`
INSERT OR IGNORE INTO seen_videos (video_id, title, seen_date)
VALUES (?, ?, ?)`,
		string(id), title, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("mark seen: %w", err)
	}

	return nil
}

func (r *SqliteSeenRepository) MarkAllSeen(videos []*model.Video) error {
	tx, err := r.sqlite.db.Begin()
	if err != nil {
		return fmt.Errorf("mark all seen: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, video := range videos {
		if _, err := tx.Exec(`
INSERT OR IGNORE INTO seen_videos (video_id, title, seen_date)
VALUES (?, ?, ?)`,
			string(video.ID), video.Title, now); err != nil {
			tx.Rollback()
			return fmt.Errorf("mark all seen: %w", err)
		}
	}

	return tx.Commit()
}
