package storage

import (
	"database/sql"
	"fmt"
	"time"

	"ewintr.nl/vidfeed/model"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type Sqlite struct {
	db *sql.DB
}

func NewSqlite(path string) (*Sqlite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return &Sqlite{}, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA busy_timeout = 5000`,
		`PRAGMA foreign_keys = ON`,
	} {
		if _, err := db.Exec(pragma); err != nil {
			return &Sqlite{}, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	s := &Sqlite{db: db}
	if err := s.migrate(sqliteMigrations); err != nil {
		return &Sqlite{}, err
	}
	if err := s.ensureSystemPlaylist(); err != nil {
		return &Sqlite{}, err
	}

	return s, nil
}

func (s *Sqlite) Close() error {
	return s.db.Close()
}

var sqliteMigrations = []string{
	`CREATE TABLE seen_videos (
video_id TEXT PRIMARY KEY,
title TEXT,
seen_date TEXT
)`,
	`CREATE TABLE video_metadata (
video_id TEXT PRIMARY KEY,
duration TEXT
)`,
	`CREATE TABLE playlists (
id TEXT PRIMARY KEY,
name TEXT NOT NULL UNIQUE,
created_at TEXT DEFAULT CURRENT_TIMESTAMP,
is_system_list BOOLEAN DEFAULT 0
)`,
	`CREATE TABLE videos (
video_id TEXT PRIMARY KEY,
title TEXT,
channel TEXT,
url TEXT,
duration TEXT,
is_shorts BOOLEAN,
published_date TEXT,
first_seen TEXT DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE TABLE playlist_items (
playlist_id TEXT NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
video_id TEXT NOT NULL REFERENCES videos(video_id) ON DELETE CASCADE,
added_at TEXT DEFAULT CURRENT_TIMESTAMP,
PRIMARY KEY (playlist_id, video_id)
)`,
}

func (s *Sqlite) migrate(wanted []string) error {
	query := `CREATE TABLE IF NOT EXISTS migration
("id" INTEGER PRIMARY KEY AUTOINCREMENT, "query" TEXT)`
	_, err := s.db.Exec(query)
	if err != nil {
		return err
	}

	// find existing
	rows, err := s.db.Query(`SELECT query FROM migration ORDER BY id`)
	if err != nil {
		return err
	}

	existing := []string{}
	for rows.Next() {
		var query string
		if err := rows.Scan(&query); err != nil {
			return err
		}
		existing = append(existing, query)
	}
	rows.Close()

	// compare
	missing, err := compareMigrations(wanted, existing)
	if err != nil {
		return err
	}

	// execute missing
	for _, query := range missing {
		if _, err := s.db.Exec(query); err != nil {
			return err
		}

		// register
		if _, err := s.db.Exec(`
INSERT INTO migration
(query) VALUES (?)
`, query); err != nil {
			return err
		}
	}

	return nil
}

func compareMigrations(wanted, existing []string) ([]string, error) {
	needed := []string{}
	if len(wanted) < len(existing) {
		return []string{}, fmt.Errorf("not enough migrations")
	}

	for i, want := range wanted {
		switch {
		case i >= len(existing):
			needed = append(needed, want)
		case want == existing[i]:
			// do nothing
		case want != existing[i]:
			return []string{}, fmt.Errorf("incompatible migration: %v", want)
		}
	}

	return needed, nil
}

func (s *Sqlite) ensureSystemPlaylist() error {
	_, err := s.db.Exec(`
INSERT INTO playlists (id, name, created_at, is_system_list)
SELECT ?, ?, ?, 1
WHERE NOT EXISTS (SELECT 1 FROM playlists WHERE name = ?)`,
		uuid.New().String(), model.WatchLater, time.Now().UTC().Format(time.RFC3339), model.WatchLater)

	return err
}
