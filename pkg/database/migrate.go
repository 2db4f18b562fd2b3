package database

import (
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS media_items (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	media_type    TEXT NOT NULL,
	readable_kind TEXT,
	watch_status  TEXT,
	read_status   TEXT,
	progress_cur  INTEGER NOT NULL DEFAULT 0,
	progress_tot  INTEGER,
	score         INTEGER,
	global_score  INTEGER,
	external_id   INTEGER,
	poster_url    TEXT,
	source        TEXT,
	tags          TEXT NOT NULL DEFAULT '[]'
);
`

func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
