// Package history remembers the documents picked in the file manager.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS selections (
    path TEXT PRIMARY KEY,
    count INTEGER NOT NULL DEFAULT 0,
    seq INTEGER NOT NULL,
    picked_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_selections_seq ON selections(seq);
`

// Entry is one remembered document.
type Entry struct {
	Path     string
	Count    int
	PickedAt time.Time
}

// DB wraps the SQLite database connection.
type DB struct {
	conn *sql.DB
	now  func() time.Time
}

// Open opens or creates the database at the given path.
func Open(path string) (*DB, error) {
	return open(path + "?_pragma=journal_mode(wal)&_pragma=busy_timeout(2000)")
}

// OpenMemory opens an in-memory database (for testing).
func OpenMemory() (*DB, error) {
	return open(":memory:")
}

func open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// One connection keeps :memory: databases alive and serializes writers.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(schema); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			return nil, fmt.Errorf("init schema: %w (close: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &DB{conn: conn, now: time.Now}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Record marks paths as picked now, in order, so the last path is the
// most recent.
func (db *DB) Record(paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("record selection: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var seq int64
	if err := tx.QueryRow("SELECT COALESCE(MAX(seq), 0) FROM selections").Scan(&seq); err != nil {
		return fmt.Errorf("record selection: %w", err)
	}

	at := db.now().UnixNano()
	for _, p := range paths {
		seq++
		_, err := tx.Exec(`
			INSERT INTO selections (path, count, seq, picked_at)
			VALUES (?, 1, ?, ?)
			ON CONFLICT(path) DO UPDATE SET
				count = count + 1,
				seq = excluded.seq,
				picked_at = excluded.picked_at
		`, p, seq, at)
		if err != nil {
			return fmt.Errorf("record %s: %w", p, err)
		}
	}
	return tx.Commit()
}

// Recent returns up to limit entries, most recently picked first.
func (db *DB) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := db.conn.Query(
		"SELECT path, count, picked_at FROM selections ORDER BY seq DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var at int64
		if err := rows.Scan(&e.Path, &e.Count, &at); err != nil {
			return nil, fmt.Errorf("scan recent: %w", err)
		}
		e.PickedAt = time.Unix(0, at)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Remove forgets path. Removing an unknown path is not an error.
func (db *DB) Remove(path string) error {
	_, err := db.conn.Exec("DELETE FROM selections WHERE path = ?", path)
	return err
}
