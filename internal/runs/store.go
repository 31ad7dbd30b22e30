package runs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Run is one row of the generation ledger.
type Run struct {
	ID             int64
	SessionID      string
	Status         Status
	Stage          Stage
	ScriptPath     string
	AudioPath      string
	TranscriptPath string
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Store wraps the SQLite ledger database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the ledger database under dataDir.
func Open(dataDir string) (*Store, error) {
	dbPath := filepath.Join(dataDir, "runs.db")
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
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) migrate(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL UNIQUE,
    status TEXT NOT NULL,
    stage TEXT,
    script_path TEXT,
    audio_path TEXT,
    transcript_path TEXT,
    error_message TEXT,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Create inserts a pending run for sessionID and returns it.
func (s *Store) Create(ctx context.Context, sessionID, scriptPath string) (*Run, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (session_id, status, stage, script_path, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, StatusPending, StageParse, nullableString(scriptPath), now, now)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert run id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches one run, returning nil when it does not exist.
func (s *Store) GetByID(ctx context.Context, id int64) (*Run, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run %d: %w", id, err)
	}
	return run, nil
}

// GetBySession fetches the run with the given session id, nil when absent.
func (s *Store) GetBySession(ctx context.Context, sessionID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE session_id = ?", sessionID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", sessionID, err)
	}
	return run, nil
}

// Update persists all mutable fields of run.
func (s *Store) Update(ctx context.Context, run *Run) error {
	if !run.Status.Valid() {
		return fmt.Errorf("update run %d: invalid status %q", run.ID, run.Status)
	}
	run.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, stage = ?, script_path = ?, audio_path = ?,
		 transcript_path = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		run.Status, run.Stage,
		nullableString(run.ScriptPath),
		nullableString(run.AudioPath),
		nullableString(run.TranscriptPath),
		nullableString(run.ErrorMessage),
		run.UpdatedAt, run.ID)
	if err != nil {
		return fmt.Errorf("update run %d: %w", run.ID, err)
	}
	return nil
}

// SetStage marks the run running and records its current pipeline stage.
func (s *Store) SetStage(ctx context.Context, id int64, stage Stage) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, stage = ?, updated_at = ? WHERE id = ?`,
		StatusRunning, stage, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set stage %q on run %d: %w", stage, id, err)
	}
	return nil
}

// MarkCompleted finalizes a successful run with its artifact paths.
func (s *Store) MarkCompleted(ctx context.Context, id int64, audioPath, transcriptPath string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, stage = ?, audio_path = ?, transcript_path = ?,
		 error_message = NULL, updated_at = ? WHERE id = ?`,
		StatusCompleted, StageFinalize,
		nullableString(audioPath), nullableString(transcriptPath),
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark run %d completed: %w", id, err)
	}
	return nil
}

// MarkFailed records the failure message on the run.
func (s *Store) MarkFailed(ctx context.Context, id int64, cause error) error {
	message := ""
	if cause != nil {
		message = cause.Error()
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		StatusFailed, nullableString(message), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark run %d failed: %w", id, err)
	}
	return nil
}

// List returns runs newest first, optionally filtered by status.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Run, error) {
	query := selectColumns
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += " WHERE status IN (" + strings.Join(placeholders, ", ") + ")"
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// Clear removes every run and reports how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs`)
	if err != nil {
		return 0, fmt.Errorf("clear runs: %w", err)
	}
	return res.RowsAffected()
}

const selectColumns = `SELECT id, session_id, status, stage, script_path, audio_path,
 transcript_path, error_message, created_at, updated_at FROM runs`

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var run Run
	var stage, scriptPath, audioPath, transcriptPath, errorMessage sql.NullString
	if err := scanner.Scan(
		&run.ID, &run.SessionID, &run.Status, &stage,
		&scriptPath, &audioPath, &transcriptPath, &errorMessage,
		&run.CreatedAt, &run.UpdatedAt,
	); err != nil {
		return nil, err
	}
	run.Stage = stage.String
	run.ScriptPath = scriptPath.String
	run.AudioPath = audioPath.String
	run.TranscriptPath = transcriptPath.String
	run.ErrorMessage = errorMessage.String
	return &run, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
