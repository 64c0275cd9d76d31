// Package storage is the persistent store: a SQLite database holding
// profiles, the imported folder/bookmark tree, tags, and point-in-time scan
// results. Every other component goes through this package's query surface.
//
// A Store is not meant to be shared across concurrently running units of
// work; a background task opens its own Store scoped to its lifetime.
package storage

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const currentSchemaVersion = 1

// timeFormat is how timestamps are stored. SQLite text comparison on these
// sorts chronologically.
const timeFormat = time.RFC3339

// Store wraps the SQLite connection.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if necessary) the database at path and migrates the
// schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if _, err := s.db.Exec(schemaV1); err != nil {
			return err
		}
	}

	return nil
}

// BackupTo copies the database file to a timestamped backup in dir and
// returns the backup path. Callers should run this only while no writes are
// in flight.
func (s *Store) BackupTo(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	// Fold WAL contents into the main file so the copy is complete.
	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return "", fmt.Errorf("checkpoint database: %w", err)
	}

	name := fmt.Sprintf("bmsweep_%s.db", time.Now().Format("20060102_150405"))
	dst := filepath.Join(dir, name)

	if err := copyFile(s.path, dst); err != nil {
		return "", fmt.Errorf("copy database: %w", err)
	}
	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

// formatTime renders a nullable timestamp for storage.
func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(timeFormat)
	return &s
}

// parseTime reads a nullable stored timestamp.
func parseTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := time.Parse(timeFormat, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// mustParseTime reads a required stored timestamp, zero on corruption.
func mustParseTime(s string) time.Time {
	t, _ := time.Parse(timeFormat, s)
	return t
}

func nullToPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullIntToPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
