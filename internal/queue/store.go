package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"podsculpt/internal/config"
)

// Store manages submission persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the submissions database and applies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "submissions.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applySchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// NewSubmission inserts a pending submission for a feed URL.
func (s *Store) NewSubmission(ctx context.Context, rssURL string) (*Submission, error) {
	rssURL = strings.TrimSpace(rssURL)
	if rssURL == "" {
		return nil, errors.New("rss url required")
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO submissions (rss_url, status, created_at, updated_at, progress_percent)
         VALUES (?, ?, ?, ?, 0)`,
		rssURL,
		StatusPending,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert submission: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a submission by identifier. Returns nil when absent.
func (s *Store) GetByID(ctx context.Context, id int64) (*Submission, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = ?`, id)
	item, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return item, nil
}

// Update persists changes to an existing submission.
func (s *Store) Update(ctx context.Context, sub *Submission) error {
	if sub == nil {
		return errors.New("submission is nil")
	}
	sub.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE submissions
         SET rss_url = ?, status = ?, episode_title = ?, audio_url = ?, audio_file = ?,
             transcript = ?, words_json = ?, show_notes = ?, clips_json = ?, clip_urls_json = ?,
             error_message = ?, work_dir = ?, progress_stage = ?, progress_percent = ?,
             progress_message = ?, updated_at = ?, last_heartbeat = ?
         WHERE id = ?`,
		sub.RSSURL,
		sub.Status,
		nullableString(sub.EpisodeTitle),
		nullableString(sub.AudioURL),
		nullableString(sub.AudioFile),
		nullableString(sub.Transcript),
		nullableString(sub.WordsJSON),
		nullableString(sub.ShowNotes),
		nullableString(sub.ClipsJSON),
		nullableString(sub.ClipURLsJSON),
		nullableString(sub.ErrorMessage),
		nullableString(sub.WorkDir),
		nullableString(sub.ProgressStage),
		sub.ProgressPercent,
		nullableString(sub.ProgressMessage),
		sub.UpdatedAt.Format(time.RFC3339Nano),
		nullableTime(sub.LastHeartbeat),
		sub.ID,
	)
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	return nil
}

// NextForStatuses returns the oldest submission matching any of the provided statuses.
func (s *Store) NextForStatuses(ctx context.Context, statuses ...Status) (*Submission, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := makePlaceholders(len(statuses))
	args := make([]any, len(statuses))
	for i, status := range statuses {
		args[i] = status
	}

	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE status IN (` + placeholders + `) ORDER BY created_at LIMIT 1`
	row := s.db.QueryRowContext(ctx, query, args...)
	item, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// List returns submissions filtered by status set (or all when none given).
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Submission, error) {
	baseQuery := `SELECT ` + submissionColumns + ` FROM submissions`
	orderClause := ` ORDER BY created_at`

	var (
		rows *sql.Rows
		err  error
	)
	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		rows, err = s.db.QueryContext(ctx, baseQuery+` WHERE status IN (`+placeholders+`)`+orderClause, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var items []*Submission
	for rows.Next() {
		item, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateHeartbeat updates the last heartbeat timestamp for an in-flight submission.
func (s *Store) UpdateHeartbeat(ctx context.Context, id int64) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE submissions SET last_heartbeat = ?, updated_at = ? WHERE id = ?`,
		now,
		now,
		id,
	)
	if err != nil {
		return fmt.Errorf("update heartbeat: %w", err)
	}
	return nil
}

// FailStaleProcessing marks in-flight submissions whose heartbeat expired as
// failed. The state machine is monotonic, so interrupted runs are not resumed.
func (s *Store) FailStaleProcessing(ctx context.Context, cutoff time.Time) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	placeholders := makePlaceholders(len(processingStatuses))
	args := make([]any, 0, len(processingStatuses)+4)
	args = append(args, StatusFailed, DaemonStopReason, now)
	for status := range processingStatuses {
		args = append(args, status)
	}
	args = append(args, cutoff.UTC().Format(time.RFC3339Nano))

	res, err := s.db.ExecContext(
		ctx,
		`UPDATE submissions
         SET status = ?, error_message = ?, progress_stage = 'Failed',
             progress_percent = 0, last_heartbeat = NULL, updated_at = ?
         WHERE status IN (`+placeholders+`) AND last_heartbeat IS NOT NULL AND last_heartbeat < ?`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("fail stale submissions: %w", err)
	}
	return res.RowsAffected()
}

// RetryFailed moves failed submissions back to pending for reprocessing.
func (s *Store) RetryFailed(ctx context.Context, ids ...int64) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if len(ids) == 0 {
		res, err := s.db.ExecContext(
			ctx,
			`UPDATE submissions
             SET status = ?, error_message = NULL, progress_stage = 'Retry requested',
                 progress_percent = 0, progress_message = NULL, updated_at = ?
             WHERE status = ?`,
			StatusPending,
			now,
			StatusFailed,
		)
		if err != nil {
			return 0, fmt.Errorf("retry failed submissions: %w", err)
		}
		return res.RowsAffected()
	}

	placeholders := makePlaceholders(len(ids))
	args := make([]any, 0, len(ids)+2)
	args = append(args, StatusPending, now)
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE submissions
         SET status = ?, error_message = NULL, progress_stage = 'Retry requested',
             progress_percent = 0, progress_message = NULL, updated_at = ?
         WHERE id IN (`+placeholders+`) AND status = '`+string(StatusFailed)+`'`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("retry selected submissions: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns a count of submissions grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM submissions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("submission stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

const submissionColumns = "id, rss_url, status, episode_title, audio_url, audio_file, transcript, words_json, show_notes, clips_json, clip_urls_json, error_message, work_dir, progress_stage, progress_percent, progress_message, created_at, updated_at, last_heartbeat"

func scanSubmission(scanner interface{ Scan(dest ...any) error }) (*Submission, error) {
	var (
		id               int64
		rssURL           string
		statusStr        string
		episodeTitle     sql.NullString
		audioURL         sql.NullString
		audioFile        sql.NullString
		transcript       sql.NullString
		wordsJSON        sql.NullString
		showNotes        sql.NullString
		clipsJSON        sql.NullString
		clipURLsJSON     sql.NullString
		errorMessage     sql.NullString
		workDir          sql.NullString
		progressStage    sql.NullString
		progressPercent  sql.NullFloat64
		progressMessage  sql.NullString
		createdRaw       sql.NullString
		updatedRaw       sql.NullString
		lastHeartbeatRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&rssURL,
		&statusStr,
		&episodeTitle,
		&audioURL,
		&audioFile,
		&transcript,
		&wordsJSON,
		&showNotes,
		&clipsJSON,
		&clipURLsJSON,
		&errorMessage,
		&workDir,
		&progressStage,
		&progressPercent,
		&progressMessage,
		&createdRaw,
		&updatedRaw,
		&lastHeartbeatRaw,
	); err != nil {
		return nil, err
	}

	sub := &Submission{
		ID:              id,
		RSSURL:          rssURL,
		Status:          Status(statusStr),
		EpisodeTitle:    episodeTitle.String,
		AudioURL:        audioURL.String,
		AudioFile:       audioFile.String,
		Transcript:      transcript.String,
		WordsJSON:       wordsJSON.String,
		ShowNotes:       showNotes.String,
		ClipsJSON:       clipsJSON.String,
		ClipURLsJSON:    clipURLsJSON.String,
		ErrorMessage:    errorMessage.String,
		WorkDir:         workDir.String,
		ProgressStage:   progressStage.String,
		ProgressPercent: progressPercent.Float64,
		ProgressMessage: progressMessage.String,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		sub.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		sub.UpdatedAt = updated
	}
	if lastHeartbeatRaw.Valid {
		if heartbeat, err := parseTimeString(lastHeartbeatRaw.String); err == nil {
			sub.LastHeartbeat = &heartbeat
		}
	}
	return sub, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
