// Package history persists discovery runs in SQLite so consecutive runs can
// be compared.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	driverName        = "sqlite"
	maxAttempts       = 5
	defaultProjectKey = "default"
	// Fixed-width so ts_utc sorts lexically.
	timestampLayout = "2006-01-02T15:04:05.000000000Z"
)

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

// Open creates or opens the history database at path. A non-positive
// busyTimeout falls back to two seconds.
func Open(path string, busyTimeout time.Duration) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	if busyTimeout <= 0 {
		busyTimeout = 2 * time.Second
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)",
		cleanPath, busyTimeout.Milliseconds())
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveRun stores run with its entries and returns it with ID, ProjectKey and
// Timestamp filled in.
func (s *Store) SaveRun(run Run) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run.ProjectKey = projectKeyOrDefault(run.ProjectKey)
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now()
	}
	run.Timestamp = run.Timestamp.UTC()

	err := s.withRetry("save run", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`
INSERT INTO runs (run_id, project_key, ts_utc, file_count, fn_count, schema_count, response_count)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			run.ProjectKey,
			run.Timestamp.Format(timestampLayout),
			run.Files,
			run.Count(BucketFunctions),
			run.Count(BucketSchemas),
			run.Count(BucketResponses),
		); err != nil {
			_ = tx.Rollback()
			return err
		}

		stmt, err := tx.Prepare(`INSERT INTO run_entries (run_id, position, bucket, kind, name) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		for i, e := range run.Entries {
			if _, err := stmt.Exec(run.ID, i, e.Bucket, e.Kind, e.Name); err != nil {
				_ = stmt.Close()
				_ = tx.Rollback()
				return err
			}
		}
		_ = stmt.Close()
		return tx.Commit()
	})
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// LatestRun returns the newest run for projectKey, or nil when none exists.
func (s *Store) LatestRun(projectKey string) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		run   Run
		tsRaw string
	)
	err := s.withRetry("load latest run", func() error {
		return s.db.QueryRow(`
SELECT run_id, project_key, ts_utc, file_count
FROM runs
WHERE project_key = ?
ORDER BY ts_utc DESC, rowid DESC
LIMIT 1`, projectKeyOrDefault(projectKey)).Scan(&run.ID, &run.ProjectKey, &tsRaw, &run.Files)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	ts, err := time.Parse(timestampLayout, tsRaw)
	if err != nil {
		return nil, fmt.Errorf("parse run timestamp %q: %w", tsRaw, err)
	}
	run.Timestamp = ts.UTC()

	entries, err := s.loadEntries(run.ID)
	if err != nil {
		return nil, err
	}
	run.Entries = entries
	return &run, nil
}

func (s *Store) loadEntries(runID string) ([]Entry, error) {
	var rows *sql.Rows
	err := s.withRetry("load run entries", func() error {
		var qErr error
		rows, qErr = s.db.Query(`SELECT bucket, kind, name FROM run_entries WHERE run_id = ? ORDER BY position ASC`, runID)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Bucket, &e.Kind, &e.Name); err != nil {
			return nil, fmt.Errorf("scan run entry row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run entry rows: %w", err)
	}
	return entries, nil
}

// CountRuns returns the number of stored runs for projectKey.
func (s *Store) CountRuns(projectKey string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	err := s.withRetry("count runs", func() error {
		return s.db.QueryRow(`SELECT COUNT(*) FROM runs WHERE project_key = ?`, projectKeyOrDefault(projectKey)).Scan(&n)
	})
	return n, err
}

// Prune keeps the newest keep runs of projectKey and deletes the rest.
// A non-positive keep disables pruning.
func (s *Store) Prune(projectKey string, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	err := s.withRetry("prune runs", func() error {
		res, err := s.db.Exec(`
DELETE FROM runs
WHERE project_key = ?1
  AND run_id NOT IN (
    SELECT run_id FROM runs
    WHERE project_key = ?1
    ORDER BY ts_utc DESC, rowid DESC
    LIMIT ?2
  )`, projectKeyOrDefault(projectKey), keep)
		if err != nil {
			return err
		}
		deleted, err = res.RowsAffected()
		return err
	})
	return deleted, err
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

func projectKeyOrDefault(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return defaultProjectKey
	}
	return key
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func IsCorruptError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "malformed") || strings.Contains(msg, "not a database") || errors.Is(err, os.ErrInvalid)
}
