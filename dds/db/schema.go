package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// SchemaSizer reports the on-disk size of a database's tables and indexes.
type SchemaSizer struct {
	db   *sql.DB
	name string
	log  zerolog.Logger
}

// NewSchemaSizer creates a sizer for db, labelled with the schema name shown in reports.
func NewSchemaSizer(db *sql.DB, name string, log zerolog.Logger) *SchemaSizer {
	return &SchemaSizer{db: db, name: name, log: log}
}

// SchemaSize sums the pages used by every table and index. It prefers the dbstat
// virtual table and falls back to page_count * page_size when dbstat is not compiled in.
func (s *SchemaSizer) SchemaSize(ctx context.Context) (int64, error) {
	var total sql.NullInt64
	err := s.db.QueryRowContext(ctx, "SELECT SUM(pgsize) FROM dbstat").Scan(&total)
	if err == nil && total.Valid {
		return total.Int64, nil
	}
	if err != nil {
		s.log.Debug().Err(err).Str("schema", s.name).Msg("dbstat unavailable, using page pragmas")
	}

	var pageCount, pageSize int64
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err != nil {
		return 0, fmt.Errorf("failed to read page_count: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0, fmt.Errorf("failed to read page_size: %w", err)
	}
	return pageCount * pageSize, nil
}

// Close closes the underlying connection.
func (s *SchemaSizer) Close() error {
	return s.db.Close()
}
