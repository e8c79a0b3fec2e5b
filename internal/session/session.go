// Package session binds a compiled schema to a live value map and owns the
// submit/reset lifecycle: Unbound -> Editing (per bound schema) -> Submitted.
// Re-binding to a different schema discards all prior values and errors;
// nothing merges across schemas.
package session

import (
	"errors"
	"time"

	"formspec-backend/internal/compiler"
	"formspec-backend/internal/schema"
)

var (
	ErrUnbound      = errors.New("session: no schema bound")
	ErrUnknownField = errors.New("session: unknown field id")
)

// State is the session lifecycle position.
type State int

const (
	Unbound State = iota
	Editing
	Submitted
)

// Session owns the live value map, the compiled validator, and accumulated
// per-field errors for one bound schema. All mutation happens synchronously
// inside a single caller; there is no internal locking by design.
type Session struct {
	doc      *schema.Document
	compiled *compiler.CompiledSchema
	values   map[string]any
	errors   map[string]string
	state    State
	now      func() time.Time
}

// New returns an unbound session.
func New() *Session {
	return &Session{state: Unbound, now: time.Now}
}

// Bind compiles the document and replaces the whole value map with fresh
// defaults. Any previous schema's values and errors are discarded.
func (s *Session) Bind(doc *schema.Document) {
	s.releaseFiles()
	s.doc = doc
	s.compiled = compiler.Compile(doc)
	s.values = s.compiled.Defaults()
	s.errors = make(map[string]string)
	s.state = Editing
}

// Reset re-binds the given schema, dropping all live state. Passing the
// currently bound schema restores its defaults.
func (s *Session) Reset(doc *schema.Document) {
	s.Bind(doc)
}

// Close releases held file resources. Call when the session is torn down.
func (s *Session) Close() {
	s.releaseFiles()
	s.values = nil
	s.errors = nil
	s.doc = nil
	s.compiled = nil
	s.state = Unbound
}

// releaseFiles runs the release hooks of every file selection in the current
// value map.
func (s *Session) releaseFiles() {
	for _, v := range s.values {
		if sel, ok := v.(*FileSelection); ok {
			sel.Clear()
		}
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Document returns the bound schema document, or nil when unbound.
func (s *Session) Document() *schema.Document {
	return s.doc
}

// SetValue stores a field's live value. Once a field has failed validation,
// editing it re-validates immediately so the error clears (or updates) as
// the user types.
func (s *Session) SetValue(fieldID string, value any) error {
	if s.state == Unbound {
		return ErrUnbound
	}
	if !s.doc.HasField(fieldID) {
		return ErrUnknownField
	}
	s.values[fieldID] = value
	if _, hadError := s.errors[fieldID]; hadError {
		if detail := s.compiled.ValidateField(fieldID, value); detail != nil {
			s.errors[fieldID] = detail.Message
		} else {
			delete(s.errors, fieldID)
		}
	}
	if s.state == Submitted {
		s.state = Editing
	}
	return nil
}

// Value returns a field's current live value.
func (s *Session) Value(fieldID string) any {
	return s.values[fieldID]
}

// Values returns a copy of the live value map.
func (s *Session) Values() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// SetValues applies a whole value map on top of the defaults, skipping keys
// that don't belong to the bound schema.
func (s *Session) SetValues(values map[string]any) error {
	if s.state == Unbound {
		return ErrUnbound
	}
	for id, v := range values {
		if s.doc.HasField(id) {
			s.values[id] = v
		}
	}
	return nil
}

// Errors returns a copy of the per-field error messages from the last
// validation pass.
func (s *Session) Errors() map[string]string {
	out := make(map[string]string, len(s.errors))
	for k, v := range s.errors {
		out[k] = v
	}
	return out
}

// ValidateAndSubmit runs the compiled validator against the full value map in
// one pass. On any failure it records one message per offending field and
// stays in Editing without producing a payload — there is no partial submit.
// On success it returns the finalized payload and moves to Submitted.
func (s *Session) ValidateAndSubmit() (*Payload, map[string]string, error) {
	if s.state == Unbound {
		return nil, nil, ErrUnbound
	}

	s.errors = make(map[string]string)
	details := s.compiled.Validate(s.values)
	if len(details) > 0 {
		for _, d := range details {
			key := d.Field
			if key == "" {
				// schema-level rule failures surface under a reserved key
				key = "_schema"
			}
			if _, exists := s.errors[key]; !exists {
				s.errors[key] = d.Message
			}
		}
		s.state = Editing
		return nil, s.Errors(), nil
	}

	payload := s.buildPayload()
	s.state = Submitted
	return payload, nil, nil
}
