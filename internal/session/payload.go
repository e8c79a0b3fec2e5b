package session

import (
	"time"

	"github.com/samber/lo"

	"formspec-backend/internal/compiler"
	"formspec-backend/internal/schema"
)

// PayloadField is one descriptor plus its collected value. Embedding keeps
// the wire shape flat: {...descriptor fields, "value": ...}.
type PayloadField struct {
	schema.FieldDescriptor
	Value any `json:"value"`
}

// Payload is the finalized, submission-ready representation of a schema plus
// its collected values. Field names and shapes are the wire contract
// consumers depend on.
type Payload struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Fields      []PayloadField `json:"fields"`
	SubmittedAt string         `json:"submittedAt"`
}

func (s *Session) buildPayload() *Payload {
	return &Payload{
		ID:          s.doc.ID,
		Name:        s.doc.Name,
		Description: s.doc.Description,
		Fields: lo.Map(s.doc.Fields, func(f schema.FieldDescriptor, _ int) PayloadField {
			return PayloadField{FieldDescriptor: f, Value: payloadValue(f, s.values[f.ID])}
		}),
		SubmittedAt: s.now().UTC().Format(time.RFC3339),
	}
}

// payloadValue strips host resources out of the live value. File selections
// flatten to {name, size, type} descriptors; raw file content never travels
// in a payload.
func payloadValue(f schema.FieldDescriptor, v any) any {
	if f.Type != schema.TypeFile {
		return v
	}
	if sel, ok := v.(*FileSelection); ok {
		return sel.Files()
	}
	return compiler.FileInfos(v)
}
