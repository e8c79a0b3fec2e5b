package store

import "strings"

// Dialect abstracts database-specific SQL generation and behavior.
type Dialect interface {
	// Name returns "postgres" or "sqlite".
	Name() string

	// DriverName returns the database/sql driver name ("pgx" or "sqlite").
	DriverName() string

	// Placeholder returns the parameter placeholder for the given 1-based index.
	Placeholder(index int) string

	// NowExpr returns the SQL expression for the current timestamp.
	NowExpr() string

	// SystemTablesSQL returns the DDL for the system tables.
	SystemTablesSQL() string

	// InsertionOrderExpr returns the column expression that orders _schemas
	// rows by original insertion (replace-by-id keeps a row's position).
	InsertionOrderExpr() string

	// MapError inspects a driver error and returns a well-known sentinel error if applicable.
	MapError(err error) error
}

// NewDialect creates a Dialect for the given driver name ("postgres" or "sqlite").
func NewDialect(driver string) Dialect {
	switch driver {
	case "sqlite":
		return &SQLiteDialect{}
	default:
		return &PostgresDialect{}
	}
}

// Placeholders builds a comma-separated placeholder list for n params.
func Placeholders(d Dialect, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = d.Placeholder(i + 1)
	}
	return strings.Join(parts, ", ")
}
