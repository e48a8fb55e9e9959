// ABOUTME: SQLite snapshot backend using modernc.org/sqlite
// ABOUTME: Keeps the state document in a single-row table with WAL journaling

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteSnapshotter stores the state document in a single-row SQLite table.
// WAL mode keeps concurrent readers (the shop-admin CLI) from blocking saves.
type SQLiteSnapshotter struct {
	db *sql.DB
}

// NewSQLiteSnapshotter opens (or creates) a SQLite database at the given path.
// Parent directories are created if needed.
func NewSQLiteSnapshotter(path string) (*SQLiteSnapshotter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS snapshot (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			doc BLOB NOT NULL,
			updated_at DATETIME NOT NULL
		);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteSnapshotter{db: db}, nil
}

// Load reads the stored document, returning ErrNoSnapshot if none was saved yet.
func (s *SQLiteSnapshotter) Load() ([]byte, error) {
	var doc []byte
	err := s.db.QueryRow("SELECT doc FROM snapshot WHERE id = 1").Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot row: %w", err)
	}
	return doc, nil
}

// Save upserts the single snapshot row; the transaction commit is the
// durability point.
func (s *SQLiteSnapshotter) Save(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshot (id, doc, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("writing snapshot row: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteSnapshotter) Close() error {
	return s.db.Close()
}
