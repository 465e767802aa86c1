package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/tursodatabase/go-libsql"
)

// ErrNoDatabase is returned when no DSN is configured.
var ErrNoDatabase = errors.New("no database configured")

// ConnectToDB opens a libsql database. Bare paths are treated as local files and
// their parent directory is created.
func ConnectToDB(dsn string) (*sql.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, ErrNoDatabase
	}

	dbURL := dsn
	if !strings.HasPrefix(dsn, "file:") && !strings.Contains(dsn, "://") {
		dbURL = "file:" + dsn
	}

	if path, ok := localPath(dbURL); ok {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("could not create database directory: %w", err)
		}
	}

	db, err := sql.Open("libsql", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", dsn, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database %s: %w", dsn, err)
	}
	return db, nil
}

// localPath extracts the file path from a file: URL, ignoring in-memory databases.
func localPath(dbURL string) (string, bool) {
	path := strings.TrimPrefix(dbURL, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || strings.HasPrefix(path, ":memory:") || !strings.HasPrefix(dbURL, "file:") {
		return "", false
	}
	return path, true
}
