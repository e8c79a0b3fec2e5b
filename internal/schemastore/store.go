// Package schemastore persists schema documents whole: replace-by-id put,
// whole-document get, delete by id. Listing returns documents in insertion
// order. There is no versioning and no partial update — the document is the
// unit of storage.
package schemastore

import (
	"context"

	"formspec-backend/internal/schema"
)

// Store is the persistence contract for schema documents. Loaded documents
// are untrusted input: callers must tolerate missing or old-shaped
// descriptors (the type configuration table degrades gracefully).
type Store interface {
	Get(ctx context.Context, id string) (*schema.Document, error)
	List(ctx context.Context) ([]*schema.Document, error)
	Put(ctx context.Context, doc *schema.Document) error
	Delete(ctx context.Context, id string) error
}
