// Package ledger tracks transcription usage per calendar month so the
// pipeline can warn before it burns through the provider's quota.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"cleanvid/internal/services"
)

const schema = `
CREATE TABLE IF NOT EXISTS monthly_usage (
    month TEXT PRIMARY KEY,
    seconds REAL NOT NULL DEFAULT 0,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS video_usage (
    month TEXT NOT NULL,
    video TEXT NOT NULL,
    seconds REAL NOT NULL DEFAULT 0,
    updated_at TEXT NOT NULL,
    PRIMARY KEY (month, video)
);
`

// Store persists usage in SQLite. A sidecar flock serializes writers
// across processes; the CLI and a cron-driven run may race otherwise.
type Store struct {
	db   *sql.DB
	lock *flock.Flock
	path string
}

// Open connects to (or creates) the ledger database.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrTransient, "", "ledger.open", "create directory", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "", "ledger.open", "open sqlite db", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, services.Wrap(services.ErrTransient, "", "ledger.open", fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, services.Wrap(services.ErrTransient, "", "ledger.open", "apply schema", err)
	}

	return &Store{
		db:   db,
		lock: flock.New(path + ".lock"),
		path: path,
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// MonthKey formats a time as the ledger's month bucket, e.g.
// "2026 August".
func MonthKey(t time.Time) string {
	return t.Format("2006 January")
}

// AddUsage bills seconds of audio against the month and video. Call it
// only after a submission was accepted; rejected submissions cost
// nothing.
func (s *Store) AddUsage(ctx context.Context, month, video string, seconds float64) error {
	if seconds < 0 {
		return services.Wrap(services.ErrValidation, "", "ledger.add_usage", fmt.Sprintf("negative seconds %v", seconds), nil)
	}
	if err := s.lock.Lock(); err != nil {
		return services.Wrap(services.ErrTransient, "", "ledger.add_usage", "acquire lock", err)
	}
	defer s.lock.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return services.Wrap(services.ErrTransient, "", "ledger.add_usage", "begin tx", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO monthly_usage (month, seconds, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(month) DO UPDATE SET seconds = seconds + excluded.seconds, updated_at = excluded.updated_at`,
		month, seconds, now); err != nil {
		return services.Wrap(services.ErrTransient, "", "ledger.add_usage", "update monthly usage", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO video_usage (month, video, seconds, updated_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(month, video) DO UPDATE SET seconds = seconds + excluded.seconds, updated_at = excluded.updated_at`,
		month, video, seconds, now); err != nil {
		return services.Wrap(services.ErrTransient, "", "ledger.add_usage", "update video usage", err)
	}
	if err := tx.Commit(); err != nil {
		return services.Wrap(services.ErrTransient, "", "ledger.add_usage", "commit", err)
	}
	return nil
}

// Usage returns the seconds billed for a month.
func (s *Store) Usage(ctx context.Context, month string) (float64, error) {
	var seconds float64
	err := s.db.QueryRowContext(ctx,
		`SELECT seconds FROM monthly_usage WHERE month = ?`, month).Scan(&seconds)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "", "ledger.usage", "query monthly usage", err)
	}
	return seconds, nil
}

// IsOverLimit reports whether a month's billed usage has reached the
// limit, in minutes. A zero or negative limit disables the check. The
// result is advisory; the pipeline warns but does not refuse.
func (s *Store) IsOverLimit(ctx context.Context, month string, limitMinutes float64) (bool, error) {
	if limitMinutes <= 0 {
		return false, nil
	}
	seconds, err := s.Usage(ctx, month)
	if err != nil {
		return false, err
	}
	return seconds >= limitMinutes*60, nil
}

// VideoUsage is one video's share of a month.
type VideoUsage struct {
	Video   string
	Seconds float64
}

// MonthSummary is a month's total plus its per-video breakdown.
type MonthSummary struct {
	Month   string
	Seconds float64
	Videos  []VideoUsage
}

// Summary returns the breakdown for a month, videos ordered by usage.
func (s *Store) Summary(ctx context.Context, month string) (MonthSummary, error) {
	summary := MonthSummary{Month: month}

	seconds, err := s.Usage(ctx, month)
	if err != nil {
		return summary, err
	}
	summary.Seconds = seconds

	rows, err := s.db.QueryContext(ctx,
		`SELECT video, seconds FROM video_usage WHERE month = ? ORDER BY seconds DESC, video`, month)
	if err != nil {
		return summary, services.Wrap(services.ErrTransient, "", "ledger.summary", "query video usage", err)
	}
	defer rows.Close()

	for rows.Next() {
		var vu VideoUsage
		if err := rows.Scan(&vu.Video, &vu.Seconds); err != nil {
			return summary, services.Wrap(services.ErrTransient, "", "ledger.summary", "scan row", err)
		}
		summary.Videos = append(summary.Videos, vu)
	}
	if err := rows.Err(); err != nil {
		return summary, services.Wrap(services.ErrTransient, "", "ledger.summary", "iterate rows", err)
	}
	return summary, nil
}

// Months lists every month present in the ledger, most recent first by
// recorded update time.
func (s *Store) Months(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT month FROM monthly_usage ORDER BY updated_at DESC`)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "", "ledger.months", "query months", err)
	}
	defer rows.Close()

	var months []string
	for rows.Next() {
		var month string
		if err := rows.Scan(&month); err != nil {
			return nil, services.Wrap(services.ErrTransient, "", "ledger.months", "scan row", err)
		}
		months = append(months, month)
	}
	return months, rows.Err()
}
