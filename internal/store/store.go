// Package store persists autocorrection analytics to SQLite so suggestion
// quality can be reviewed offline.
//
// The store never sees document content beyond the corrected words
// themselves, and it is strictly best-effort: callers attach it as a
// diagnostics sink and failures are logged, not propagated.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Schema for the analytics store.
const schema = `
CREATE TABLE IF NOT EXISTS corrections (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp_ns INTEGER NOT NULL,
    session_id   TEXT NOT NULL,
    typed        TEXT NOT NULL,
    corrected    TEXT NOT NULL,
    separator    INTEGER NOT NULL,
    cancelled    INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_corrections_timestamp ON corrections(timestamp_ns);
CREATE INDEX IF NOT EXISTS idx_corrections_session ON corrections(session_id);

CREATE TABLE IF NOT EXISTS keystroke_counts (
    kind  TEXT PRIMARY KEY,
    count INTEGER NOT NULL
);
`

// Keystroke count kinds.
const (
	KindChar      = "char"
	KindSeparator = "separator"
	KindCancelled = "cancelled"
)

// Correction is one persisted autocorrection record.
type Correction struct {
	ID          int64
	TimestampNs int64
	SessionID   string
	Typed       string
	Corrected   string
	Separator   rune
	Cancelled   bool
}

// Counts holds the aggregate keystroke counters.
type Counts struct {
	Char      int64
	Separator int64
	Cancelled int64
}

// Store is the SQLite analytics store.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at the given path and applies
// the schema.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordCorrection inserts an autocorrection record and returns its ID.
func (s *Store) RecordCorrection(sessionID, typed, corrected string, separator rune) (int64, error) {
	result, err := s.db.Exec(`
		INSERT INTO corrections (timestamp_ns, session_id, typed, corrected, separator)
		VALUES (?, ?, ?, ?, ?)`,
		time.Now().UnixNano(), sessionID, typed, corrected, int64(separator),
	)
	if err != nil {
		return 0, fmt.Errorf("insert correction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id: %w", err)
	}
	return id, nil
}

// MarkCancelled flags the most recent correction in the session as reverted
// and bumps the cancelled counter. A session with no corrections is a no-op
// for the flag but still counts the cancellation.
func (s *Store) MarkCancelled(sessionID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		UPDATE corrections SET cancelled = 1
		WHERE id = (
			SELECT id FROM corrections
			WHERE session_id = ? ORDER BY timestamp_ns DESC LIMIT 1
		)`, sessionID); err != nil {
		return fmt.Errorf("mark cancelled: %w", err)
	}

	if err := incrementTx(tx, KindCancelled, 1); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// IncrementKeystroke bumps the counter for the given kind by n.
func (s *Store) IncrementKeystroke(kind string, n int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := incrementTx(tx, kind, n); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func incrementTx(tx *sql.Tx, kind string, n int64) error {
	if _, err := tx.Exec(`
		INSERT INTO keystroke_counts (kind, count) VALUES (?, ?)
		ON CONFLICT(kind) DO UPDATE SET count = count + excluded.count`,
		kind, n); err != nil {
		return fmt.Errorf("increment %s: %w", kind, err)
	}
	return nil
}

// RecentCorrections returns up to n corrections, most recent first.
func (s *Store) RecentCorrections(n int) ([]Correction, error) {
	rows, err := s.db.Query(`
		SELECT id, timestamp_ns, session_id, typed, corrected, separator, cancelled
		FROM corrections ORDER BY timestamp_ns DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query corrections: %w", err)
	}
	defer rows.Close()

	var out []Correction
	for rows.Next() {
		var (
			c         Correction
			separator int64
			cancelled int64
		)
		if err := rows.Scan(&c.ID, &c.TimestampNs, &c.SessionID, &c.Typed, &c.Corrected, &separator, &cancelled); err != nil {
			return nil, fmt.Errorf("scan correction: %w", err)
		}
		c.Separator = rune(separator)
		c.Cancelled = cancelled != 0
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate corrections: %w", err)
	}
	return out, nil
}

// Counts returns the aggregate keystroke counters.
func (s *Store) Counts() (Counts, error) {
	rows, err := s.db.Query(`SELECT kind, count FROM keystroke_counts`)
	if err != nil {
		return Counts{}, fmt.Errorf("query counts: %w", err)
	}
	defer rows.Close()

	var c Counts
	for rows.Next() {
		var (
			kind  string
			count int64
		)
		if err := rows.Scan(&kind, &count); err != nil {
			return Counts{}, fmt.Errorf("scan count: %w", err)
		}
		switch kind {
		case KindChar:
			c.Char = count
		case KindSeparator:
			c.Separator = count
		case KindCancelled:
			c.Cancelled = count
		}
	}
	if err := rows.Err(); err != nil {
		return Counts{}, fmt.Errorf("iterate counts: %w", err)
	}
	return c, nil
}
