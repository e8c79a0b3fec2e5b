package schemastore

import (
	"context"
	"encoding/json"
	"sync"

	"formspec-backend/internal/schema"
	"formspec-backend/internal/store"
)

// MemoryStore is an in-process Store. It mirrors the key-value semantics the
// builders rely on: insertion-ordered listing, replace-by-id keeping the
// original position. Used in tests and as a zero-dependency fallback.
type MemoryStore struct {
	mu    sync.RWMutex
	order []string
	docs  map[string]*schema.Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*schema.Document)}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*schema.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneDocument(doc), nil
}

func (m *MemoryStore) List(_ context.Context) ([]*schema.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*schema.Document, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, cloneDocument(m.docs[id]))
	}
	return out, nil
}

func (m *MemoryStore) Put(_ context.Context, doc *schema.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.docs[doc.ID]; !exists {
		m.order = append(m.order, doc.ID)
	}
	m.docs[doc.ID] = cloneDocument(doc)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.docs[id]; !exists {
		return store.ErrNotFound
	}
	delete(m.docs, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// cloneDocument deep-copies through JSON so callers can't mutate stored
// state. The document is JSON-shaped by construction, so this never fails.
func cloneDocument(doc *schema.Document) *schema.Document {
	raw, _ := json.Marshal(doc)
	var out schema.Document
	_ = json.Unmarshal(raw, &out)
	return &out
}
