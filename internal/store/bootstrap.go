package store

import (
	"context"
	"fmt"
	"strings"
)

// Bootstrap creates the system tables if they don't exist. Statements run
// one at a time so a partial failure names the statement that broke.
func (s *Store) Bootstrap(ctx context.Context) error {
	for _, stmt := range splitStatements(s.Dialect.SystemTablesSQL()) {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap: %w", err)
		}
	}
	return nil
}

// splitStatements breaks a DDL script on semicolons. Good enough for our own
// DDL, which never embeds semicolons in literals.
func splitStatements(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
