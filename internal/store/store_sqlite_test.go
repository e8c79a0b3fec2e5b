package store

import (
	"context"
	"fmt"
	"testing"

	"formspec-backend/internal/config"
)

func newSQLiteStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(context.Background(), config.DatabaseConfig{
		Driver: "sqlite",
		Path:   t.TempDir(),
		Name:   "test",
	})
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(s.Close)
	if err := s.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return s
}

func TestSQLite_SchemaDeleteCascadesToSubmissions(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	d := s.Dialect

	insertSchema := fmt.Sprintf("INSERT INTO _schemas (id, name, definition) VALUES (%s)",
		Placeholders(d, 3))
	if _, err := Exec(ctx, s.DB, insertSchema, "s1", "Contact", `{"id":"s1","name":"Contact","fields":[]}`); err != nil {
		t.Fatalf("insert schema: %v", err)
	}

	insertSub := fmt.Sprintf("INSERT INTO _submissions (id, schema_id, payload) VALUES (%s)",
		Placeholders(d, 3))
	if _, err := Exec(ctx, s.DB, insertSub, "sub1", "s1", `{}`); err != nil {
		t.Fatalf("insert submission: %v", err)
	}

	if _, err := Exec(ctx, s.DB,
		fmt.Sprintf("DELETE FROM _schemas WHERE id = %s", d.Placeholder(1)), "s1"); err != nil {
		t.Fatalf("delete schema: %v", err)
	}

	// ON DELETE CASCADE must take the submission rows with the schema
	rows, err := QueryRows(ctx, s.DB, "SELECT id FROM _submissions")
	if err != nil {
		t.Fatalf("query submissions: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no submissions after schema delete, got %d orphan row(s)", len(rows))
	}
}

func TestSQLite_SubmissionRequiresExistingSchema(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	d := s.Dialect

	insertSub := fmt.Sprintf("INSERT INTO _submissions (id, schema_id, payload) VALUES (%s)",
		Placeholders(d, 3))
	if _, err := Exec(ctx, s.DB, insertSub, "sub1", "missing", `{}`); err == nil {
		t.Fatal("expected FK violation for submission without a schema")
	}
}
