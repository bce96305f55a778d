// Package sqlitekv provides a SQLite-backed implementation of the
// session.Persistence interface: a single key-value table holding the token
// pair, login flag and user snapshot across process restarts.
package sqlitekv

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/tripwiser/internal/session"
)

// Ensure KV implements session.Persistence
var _ session.Persistence = (*KV)(nil)

// KV implements session.Persistence using SQLite.
type KV struct {
	db *sql.DB
}

// New opens (creating if needed) the session database at the given path.
func New(dbPath string) (*KV, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS session_kv (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create session table: %w", err)
	}

	return &KV{db: db}, nil
}

// Close closes the database connection.
func (s *KV) Close() error {
	return s.db.Close()
}

// Save upserts the given pairs in one transaction.
func (s *KV) Save(pairs map[string]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for k, v := range pairs {
		if _, err := tx.Exec(
			`INSERT INTO session_kv (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, k, v,
		); err != nil {
			return fmt.Errorf("failed to save key %q: %w", k, err)
		}
	}
	return tx.Commit()
}

// Load returns every stored pair.
func (s *KV) Load() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM session_kv`)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	defer rows.Close()

	pairs := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		pairs[k] = v
	}
	return pairs, rows.Err()
}

// Clear removes every pair. A single DELETE, so observers see all keys or
// none.
func (s *KV) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM session_kv`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
