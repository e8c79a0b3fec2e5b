package store

import (
	"fmt"
	"strings"
)

type PostgresDialect struct{}

func (d *PostgresDialect) Name() string       { return "postgres" }
func (d *PostgresDialect) DriverName() string { return "pgx" }

func (d *PostgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

func (d *PostgresDialect) NowExpr() string { return "NOW()" }

const pgSystemTablesSQL = `
CREATE TABLE IF NOT EXISTS _schemas (
    id          TEXT PRIMARY KEY,
    seq         BIGSERIAL,
    name        TEXT NOT NULL,
    definition  JSONB NOT NULL,
    created_at  TIMESTAMPTZ DEFAULT NOW(),
    updated_at  TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS _submissions (
    id          TEXT PRIMARY KEY,
    schema_id   TEXT NOT NULL REFERENCES _schemas(id) ON DELETE CASCADE,
    payload     JSONB NOT NULL,
    created_at  TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS _uploads (
    id           TEXT PRIMARY KEY,
    filename     TEXT NOT NULL,
    storage_path TEXT NOT NULL,
    mime_type    TEXT NOT NULL,
    size         BIGINT NOT NULL,
    uploaded_by  TEXT,
    created_at   TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS _users (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMPTZ DEFAULT NOW()
);
`

func (d *PostgresDialect) SystemTablesSQL() string { return pgSystemTablesSQL }

func (d *PostgresDialect) InsertionOrderExpr() string { return "seq" }

func (d *PostgresDialect) MapError(err error) error {
	if err == nil {
		return nil
	}
	// With pgx/stdlib the underlying error message carries the PG code
	errStr := err.Error()
	if strings.Contains(errStr, "23505") || strings.Contains(errStr, "duplicate key") {
		return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
	}
	return err
}
