package schemastore

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"formspec-backend/internal/schema"
	"formspec-backend/internal/store"
)

// SQLStore keeps schema documents in the _schemas system table, one JSON
// document per row.
type SQLStore struct {
	db *store.Store
}

func NewSQLStore(db *store.Store) *SQLStore {
	return &SQLStore{db: db}
}

// Get loads a document whole. A corrupt definition is logged and reported as
// absent rather than propagated, so one bad row never breaks the caller.
func (s *SQLStore) Get(ctx context.Context, id string) (*schema.Document, error) {
	d := s.db.Dialect
	row, err := store.QueryRow(ctx, s.db.DB,
		fmt.Sprintf("SELECT definition FROM _schemas WHERE id = %s", d.Placeholder(1)), id)
	if err != nil {
		return nil, err
	}

	doc, err := decodeDefinition(row["definition"])
	if err != nil {
		log.Printf("WARN: schema %s has invalid definition: %v", id, err)
		return nil, store.ErrNotFound
	}
	return doc, nil
}

// List returns all documents in insertion order. Malformed rows are logged
// and skipped so corruption in one stored document doesn't hide the rest.
func (s *SQLStore) List(ctx context.Context) ([]*schema.Document, error) {
	d := s.db.Dialect
	rows, err := store.QueryRows(ctx, s.db.DB,
		fmt.Sprintf("SELECT id, definition FROM _schemas ORDER BY %s", d.InsertionOrderExpr()))
	if err != nil {
		return nil, err
	}

	docs := make([]*schema.Document, 0, len(rows))
	for _, row := range rows {
		doc, err := decodeDefinition(row["definition"])
		if err != nil {
			log.Printf("WARN: skipping schema %v (invalid definition): %v", row["id"], err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Put inserts or replaces the whole document by id. A replaced row keeps its
// original insertion position.
func (s *SQLStore) Put(ctx context.Context, doc *schema.Document) error {
	defJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	d := s.db.Dialect
	sqlStr := fmt.Sprintf(`INSERT INTO _schemas (id, name, definition) VALUES (%s, %s, %s)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, definition = excluded.definition, updated_at = %s`,
		d.Placeholder(1), d.Placeholder(2), d.Placeholder(3), d.NowExpr())

	if _, err := store.Exec(ctx, s.db.DB, sqlStr, doc.ID, doc.Name, string(defJSON)); err != nil {
		return s.db.MapError(err)
	}
	return nil
}

// Delete removes the document by id. Deleting an absent id reports ErrNotFound.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	d := s.db.Dialect
	n, err := store.Exec(ctx, s.db.DB,
		fmt.Sprintf("DELETE FROM _schemas WHERE id = %s", d.Placeholder(1)), id)
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// decodeDefinition tolerates both string and []byte column representations.
func decodeDefinition(v any) (*schema.Document, error) {
	var raw []byte
	switch def := v.(type) {
	case string:
		raw = []byte(def)
	case []byte:
		raw = def
	default:
		return nil, fmt.Errorf("unexpected definition type %T", v)
	}

	var doc schema.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
