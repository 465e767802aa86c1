package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ZanzyTHEbar/dashboard-directory-size/dds/db"
)

// LibSQLStore persists entries in a libsql table, the way the CMS keeps
// transients in its options table. Entries survive process restarts.
type LibSQLStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewLibSQLStore opens dsn and creates the transients table if needed.
func NewLibSQLStore(dsn string) (*LibSQLStore, error) {
	conn, err := db.ConnectToDB(dsn)
	if err != nil {
		return nil, err
	}
	store := &LibSQLStore{db: conn, now: time.Now}
	if err := store.init(); err != nil {
		conn.Close()
		return nil, err
	}
	return store, nil
}

func (s *LibSQLStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS size_transients (
		key TEXT PRIMARY KEY,
		value INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create size_transients table: %w", err)
	}
	return nil
}

func (s *LibSQLStore) Get(ctx context.Context, key string) (int64, bool, error) {
	var value, expiresAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT value, expires_at FROM size_transients WHERE key = ?", key).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read transient %s: %w", key, err)
	}

	if s.now().UnixNano() >= expiresAt {
		if _, err := s.db.ExecContext(ctx,
			"DELETE FROM size_transients WHERE key = ? AND expires_at = ?", key, expiresAt); err != nil {
			return 0, false, fmt.Errorf("failed to evict transient %s: %w", key, err)
		}
		return 0, false, nil
	}
	return value, true, nil
}

func (s *LibSQLStore) Set(ctx context.Context, key string, value int64, ttl time.Duration) error {
	expiresAt := s.now().Add(ttl).UnixNano()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO size_transients (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to write transient %s: %w", key, err)
	}
	return nil
}

func (s *LibSQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM size_transients WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete transient %s: %w", key, err)
	}
	return nil
}

func (s *LibSQLStore) Close() error {
	return s.db.Close()
}
