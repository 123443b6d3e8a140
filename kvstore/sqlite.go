package kvstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteConfig selects where the backing database lives.
type SQLiteConfig struct {
	OnDisk    bool
	Directory string
}

// SQLiteStore is a single-instance Store backed by a SQLite database,
// intended for dev deployments where a shared Postgres isn't worth
// running.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if necessary) the kv table.
func NewSQLiteStore(cfg ...SQLiteConfig) (*SQLiteStore, error) {
	onDisk := false
	directory := ""
	if len(cfg) > 0 {
		onDisk = cfg[0].OnDisk
		directory = cfg[0].Directory
	}

	sourceName := ":memory:"
	if onDisk {
		sourceName = directory + "/transit.db"
	}

	db, err := sql.Open("sqlite3", sourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value BLOB NOT NULL,
    metadata TEXT NOT NULL,
    expires_at TIMESTAMP
);`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating kv table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	var value []byte
	var metaJSON string
	var expiresAt sql.NullTime

	row := s.db.QueryRowContext(ctx, `SELECT value, metadata, expires_at FROM kv WHERE key = ?`, key)
	err := row.Scan(&value, &metaJSON, &expiresAt)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("reading key %q: %w", key, err)
	}

	if expiresAt.Valid && time.Now().After(expiresAt.Time) {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
			return Entry{}, false, fmt.Errorf("expiring key %q: %w", key, err)
		}
		return Entry{}, false, nil
	}

	var metadata map[string]string
	if err := json.Unmarshal([]byte(metaJSON), &metadata); err != nil {
		return Entry{}, false, fmt.Errorf("decoding metadata for key %q: %w", key, err)
	}

	return Entry{Value: value, Metadata: metadata}, true, nil
}

func (s *SQLiteStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration, metadata map[string]string) error {
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("encoding metadata for key %q: %w", key, err)
	}

	var expiresAt *time.Time
	if ttl > 0 {
		t := time.Now().Add(ttl)
		expiresAt = &t
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO kv (key, value, metadata, expires_at) VALUES (?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, metadata = excluded.metadata, expires_at = excluded.expires_at`,
		key, value, string(metaJSON), expiresAt)
	if err != nil {
		return fmt.Errorf("writing key %q: %w", key, err)
	}

	return nil
}
