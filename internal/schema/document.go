package schema

import "fmt"

// ExpressionRule is an optional schema-level constraint evaluated against the
// whole submitted value map after per-field validation. The expression sees
// the env {"values": map[fieldID]any} and a true result means the rule is
// violated.
type ExpressionRule struct {
	Expression string `json:"expression"`
	Message    string `json:"message,omitempty"`
}

// Document is a named, ordered collection of field descriptors. The whole
// document is the unit of storage: no versioning, no partial updates.
// Insertion order of Fields is the display and submission order.
type Document struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Fields      []FieldDescriptor `json:"fields"`
	Rules       []ExpressionRule  `json:"rules,omitempty"`
}

// GetField returns a pointer to the field with the given id, or nil.
func (d *Document) GetField(id string) *FieldDescriptor {
	for i := range d.Fields {
		if d.Fields[i].ID == id {
			return &d.Fields[i]
		}
	}
	return nil
}

// HasField returns true if the document has a field with the given id.
func (d *Document) HasField(id string) bool {
	return d.GetField(id) != nil
}

// FieldIDs returns all field ids in display order.
func (d *Document) FieldIDs() []string {
	ids := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		ids[i] = f.ID
	}
	return ids
}

// Validate checks the structural invariants a document must satisfy before
// it is persisted: a name, and non-empty, unique field ids. Field types are
// deliberately not checked here — unknown types degrade to the text
// configuration at render time rather than blocking a save.
func (d *Document) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("schema name is required")
	}
	seen := make(map[string]bool, len(d.Fields))
	for i := range d.Fields {
		f := &d.Fields[i]
		if f.ID == "" {
			return fmt.Errorf("field %d has no id", i)
		}
		if seen[f.ID] {
			return fmt.Errorf("duplicate field id: %s", f.ID)
		}
		seen[f.ID] = true
	}
	return nil
}
