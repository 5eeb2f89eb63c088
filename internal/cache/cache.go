// Package cache is the local mirror of the per-user records: a small
// SQLite database holding the last snapshot of each record kind. Reads stay
// available when the sync server is not; reconciliation overwrites the
// mirror whenever the remote copy is reachable.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/jstrand/bt/internal/store"
)

const cacheFile = "cache.db"

// Cache is a SQLite-backed store.LocalCache.
type Cache struct {
	conn *sql.DB
}

var _ store.LocalCache = (*Cache)(nil)

// Open opens (creating if needed) the cache database under dir.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	conn, err := sql.Open("sqlite", filepath.Join(dir, cacheFile))
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	// WAL keeps reads available while a reconciliation write is in flight.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=500"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			kind       TEXT PRIMARY KEY,
			doc        JSON NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}

	return &Cache{conn: conn}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.conn.Close()
}

// Get returns the mirrored record, or (nil, nil) on a miss.
func (c *Cache) Get(kind store.RecordKind) (json.RawMessage, error) {
	var doc []byte
	err := c.conn.QueryRow(`SELECT doc FROM records WHERE kind = ?`, string(kind)).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", kind, err)
	}
	return json.RawMessage(doc), nil
}

// Set stores (or replaces) the mirrored record.
func (c *Cache) Set(kind store.RecordKind, record json.RawMessage) error {
	_, err := c.conn.Exec(`
		INSERT INTO records (kind, doc, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(kind) DO UPDATE SET doc = excluded.doc, updated_at = CURRENT_TIMESTAMP
	`, string(kind), []byte(record))
	if err != nil {
		return fmt.Errorf("cache set %s: %w", kind, err)
	}
	return nil
}

// Remove drops the mirrored record. Removing a missing record is a no-op.
func (c *Cache) Remove(kind store.RecordKind) error {
	if _, err := c.conn.Exec(`DELETE FROM records WHERE kind = ?`, string(kind)); err != nil {
		return fmt.Errorf("cache remove %s: %w", kind, err)
	}
	return nil
}
