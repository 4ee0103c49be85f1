package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

// timeLayout is fixed-width so that stored timestamps compare correctly as
// text. All timestamps are written in UTC.
const timeLayout = "2006-01-02T15:04:05.000Z"

// ErrActiveSessionExists is returned by StartSession when the user already
// has a session in the active state.
var ErrActiveSessionExists = errors.New("an active session already exists")

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

// SetClock replaces the time source used for record timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS categories (
		id                TEXT PRIMARY KEY,
		uid               TEXT NOT NULL,
		category_key      TEXT NOT NULL,
		name              TEXT NOT NULL,
		description       TEXT NOT NULL DEFAULT '',
		color             TEXT NOT NULL DEFAULT '#3B82F6',
		icon              TEXT NOT NULL DEFAULT 'default',
		kind              TEXT NOT NULL CHECK (kind IN ('main', 'sub')),
		parent_key        TEXT,
		is_active         INTEGER NOT NULL DEFAULT 1,
		total_time_spent  INTEGER NOT NULL DEFAULT 0,
		total_sessions    INTEGER NOT NULL DEFAULT 0,
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL,
		UNIQUE(uid, category_key)
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_sub_name_per_parent
		ON categories(uid, parent_key, lower(name)) WHERE kind = 'sub';

	CREATE TABLE IF NOT EXISTS schedules (
		id                  TEXT PRIMARY KEY,
		uid                 TEXT NOT NULL,
		schedule_key        TEXT NOT NULL,
		category_id         TEXT NOT NULL,
		category_name       TEXT NOT NULL DEFAULT '',
		title               TEXT NOT NULL,
		description         TEXT NOT NULL DEFAULT '',
		start_time          TEXT NOT NULL,
		end_time            TEXT NOT NULL,
		days_of_week        TEXT NOT NULL,
		is_recurring        INTEGER NOT NULL DEFAULT 1,
		is_active           INTEGER NOT NULL DEFAULT 1,
		priority            INTEGER NOT NULL DEFAULT 2,
		estimated_duration  INTEGER NOT NULL DEFAULT 0,
		created_at          TEXT NOT NULL,
		updated_at          TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_schedules_uid ON schedules(uid, start_time);

	CREATE TABLE IF NOT EXISTS time_sessions (
		id             TEXT PRIMARY KEY,
		uid            TEXT NOT NULL,
		tracking_id    TEXT NOT NULL,
		category_id    TEXT NOT NULL,
		category_name  TEXT NOT NULL DEFAULT '',
		title          TEXT NOT NULL DEFAULT '',
		description    TEXT NOT NULL DEFAULT '',
		start_time     TEXT NOT NULL,
		end_time       TEXT,
		status         TEXT NOT NULL CHECK (status IN ('active', 'completed')),
		duration       INTEGER,
		notes          TEXT NOT NULL DEFAULT '',
		tags           TEXT NOT NULL DEFAULT '[]',
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_start    ON time_sessions(uid, start_time);
	CREATE INDEX IF NOT EXISTS idx_sessions_category ON time_sessions(category_id);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_one_active
		ON time_sessions(uid) WHERE status = 'active';

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('analytics_range', 'week'),
		('clock_format',    '12h'),
		('confirm_delete',  'true'),
		('daily_goal',      '28800'),
		('recent_limit',    '10'),
		('week_start',      'monday');
	`
	_, err := s.db.Exec(ddl)
	return err
}

func (s *Store) stamp() string {
	return formatTime(s.now())
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) time.Time {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		// Accept plain RFC3339 for rows written by hand or imported.
		t, _ = time.Parse(time.RFC3339Nano, v)
	}
	return t
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

type rowScanner interface {
	Scan(dest ...any) error
}

// withTx runs fn inside a transaction, rolling back on error.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
