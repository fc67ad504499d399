package storage

import (
	"fmt"

	"ewintr.nl/vidfeed/model"
)

type SqliteMetadataRepository struct {
	sqlite *Sqlite
}

func NewSqliteMetadataRepository(sqlite *Sqlite) *SqliteMetadataRepository {
	return &SqliteMetadataRepository{sqlite: sqlite}
}

func (r *SqliteMetadataRepository) Durations() (map[model.VideoID]string, error) {
	rows, err := r.sqlite.db.Query(`SELECT video_id, duration FROM video_metadata`)
	if err != nil {
		return map[model.VideoID]string{}, fmt.Errorf("load durations: %w", err)
	}
	defer rows.Close()

	durations := map[model.VideoID]string{}
	for rows.Next() {
		var id, duration string
		if err := rows.Scan(&id, &duration); err != nil {
			return map[model.VideoID]string{}, err
		}
		durations[model.VideoID(id)] = duration
	}

	return durations, rows.Err()
}

func (r *SqliteMetadataRepository) SaveDuration(id model.VideoID, duration string) error {
	_, err := r.sqlite.db.Exec(`
INSERT OR REPLACE INTO video_metadata (video_id, duration)
VALUES (?, ?)`,
		string(id), duration)
	if err != nil {
		return fmt.Errorf("save duration: %w", err)
	}

	return nil
}
