package kvstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// psql is the squirrel statement builder configured for Postgres's
// dollar-numbered placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresStore is a Store backed by a shared Postgres database. It is
// the intended production backend: the read API and both workers run
// as separate processes and this is the only state they share.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore opens connStr and ensures the kv table exists.
func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sqlx.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging db: %w", err)
	}

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value BYTEA NOT NULL,
    metadata JSONB NOT NULL,
    expires_at TIMESTAMPTZ
);`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating kv table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	query, args, err := psql.
		Select("value", "metadata", "expires_at").
		From("kv").
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return Entry{}, false, fmt.Errorf("building query: %w", err)
	}

	var row struct {
		Value     []byte     `db:"value"`
		Metadata  []byte     `db:"metadata"`
		ExpiresAt *time.Time `db:"expires_at"`
	}
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("reading key %q: %w", key, err)
	}

	if row.ExpiresAt != nil && time.Now().After(*row.ExpiresAt) {
		del, delArgs, err := psql.Delete("kv").Where(sq.Eq{"key": key}).ToSql()
		if err != nil {
			return Entry{}, false, fmt.Errorf("building delete: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, del, delArgs...); err != nil {
			return Entry{}, false, fmt.Errorf("expiring key %q: %w", key, err)
		}
		return Entry{}, false, nil
	}

	var metadata map[string]string
	if err := json.Unmarshal(row.Metadata, &metadata); err != nil {
		return Entry{}, false, fmt.Errorf("decoding metadata for key %q: %w", key, err)
	}

	return Entry{Value: row.Value, Metadata: metadata}, true, nil
}

func (s *PostgresStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration, metadata map[string]string) error {
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("encoding metadata for key %q: %w", key, err)
	}

	var expiresAt *time.Time
	if ttl > 0 {
		t := time.Now().Add(ttl)
		expiresAt = &t
	}

	query, args, err := psql.
		Insert("kv").
		Columns("key", "value", "metadata", "expires_at").
		Values(key, value, metaJSON, expiresAt).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, metadata = EXCLUDED.metadata, expires_at = EXCLUDED.expires_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("building upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("writing key %q: %w", key, err)
	}

	return nil
}
