package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"subsweep/internal/scan"
	"subsweep/internal/services"
)

// DefaultRetention is the number of runs kept by Prune when the caller does
// not pick a limit.
const DefaultRetention = 500

// Run is one journal row.
type Run struct {
	ID                  int64
	RunID               string
	Trigger             string
	Status              string
	Error               string
	StartedAt           time.Time
	FinishedAt          time.Time
	Roots               []string
	Filter              string
	Total               int
	Seen                int
	Skipped             int
	Processed           int
	Failed              int
	SubtitlesExtracted  int
	PlaceholdersWritten int
	PlaceholderFailures int
	Progress            float64
}

// Duration returns the wall time of the run.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store persists run summaries in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal at path and applies migrations.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, services.Wrap(services.ErrConfiguration, "history", "open", "database path is empty", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record stores the outcome of one run. runErr is classified into the status
// column; a nil error records "ok".
func (s *Store) Record(ctx context.Context, summary scan.Summary, runErr error) (int64, error) {
	rootsJSON, err := json.Marshal(summary.RootLabels())
	if err != nil {
		return 0, fmt.Errorf("marshal roots: %w", err)
	}
	var message any
	if runErr != nil {
		message = runErr.Error()
	}
	started := summary.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	finished := summary.FinishedAt
	if finished.IsZero() {
		finished = started
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO scan_runs (
            run_id, trigger_name, status, error_message, started_at, finished_at,
            roots_json, language_filter, total_episodes, seen, skipped, processed,
            failed, subtitles_extracted, placeholders_written, placeholder_failures,
            progress_percent
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.RunID,
		nullableString(summary.Trigger),
		services.Classify(runErr),
		message,
		formatTime(started),
		formatTime(finished),
		string(rootsJSON),
		summary.Filter,
		summary.Total,
		summary.Seen,
		summary.Skipped,
		summary.Processed,
		summary.Failed,
		summary.SubtitlesExtracted,
		summary.PlaceholdersWritten,
		summary.PlaceholderFailures,
		summary.Progress,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return res.LastInsertId()
}

// List returns the most recent runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, trigger_name, status, error_message, started_at, finished_at,
            roots_json, language_filter, total_episodes, seen, skipped, processed, failed,
            subtitles_extracted, placeholders_written, placeholder_failures, progress_percent
        FROM scan_runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Prune deletes all but the newest keep runs and returns how many rows went.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		keep = DefaultRetention
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM scan_runs WHERE id NOT IN (
            SELECT id FROM scan_runs ORDER BY started_at DESC, id DESC LIMIT ?
        )`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run      Run
		trigger  sql.NullString
		message  sql.NullString
		started  string
		finished string
		roots    string
	)
	if err := row.Scan(
		&run.ID, &run.RunID, &trigger, &run.Status, &message, &started, &finished,
		&roots, &run.Filter, &run.Total, &run.Seen, &run.Skipped, &run.Processed, &run.Failed,
		&run.SubtitlesExtracted, &run.PlaceholdersWritten, &run.PlaceholderFailures, &run.Progress,
	); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Trigger = trigger.String
	run.Error = message.String
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	if roots != "" {
		if err := json.Unmarshal([]byte(roots), &run.Roots); err != nil {
			return Run{}, fmt.Errorf("decode roots for run %s: %w", run.RunID, err)
		}
	}
	return run, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
