package queue

import (
	"context"
	"fmt"
)

const createSubmissionsTable = `
CREATE TABLE IF NOT EXISTS submissions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    rss_url TEXT NOT NULL,
    status TEXT NOT NULL,
    episode_title TEXT,
    audio_url TEXT,
    audio_file TEXT,
    transcript TEXT,
    words_json TEXT,
    show_notes TEXT,
    clips_json TEXT,
    clip_urls_json TEXT,
    error_message TEXT,
    work_dir TEXT,
    progress_stage TEXT,
    progress_percent REAL DEFAULT 0,
    progress_message TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    last_heartbeat TEXT
)`

const createStatusIndex = `CREATE INDEX IF NOT EXISTS idx_submissions_status ON submissions (status, created_at)`

func (s *Store) applySchema(ctx context.Context) error {
	for _, stmt := range []string{createSubmissionsTable, createStatusIndex} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
