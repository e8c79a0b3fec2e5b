package compiler

import (
	"formspec-backend/internal/schema"
)

// FieldError is one validation failure, keyed by field id. Rule names which
// check fired (required, min_length, format, max_files, ...).
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Rule    string `json:"rule,omitempty"`
	Message string `json:"message"`
}

// Validator checks a single field's live value. A nil result means the value
// passed. The first failing check wins: a validator reports at most one error.
type Validator func(value any) *FieldError

// CompiledSchema is the output of Compile: one validator and one default
// value per field, keyed by field id, plus the compiled schema-level
// expression rules. It is a pure function of the field list — compiling the
// same fields twice yields validators with identical accept/reject behavior.
type CompiledSchema struct {
	order      []string
	validators map[string]Validator
	defaults   map[string]any
	rules      []*compiledRule
}

// Compile builds the validation and default-value contracts for an ordered
// field list. Compilation never fails: an unrecognized field type gets an
// always-pass validator and an empty-string default, so one bad descriptor
// never hard-blocks the whole form.
func Compile(doc *schema.Document) *CompiledSchema {
	cs := &CompiledSchema{
		order:      make([]string, 0, len(doc.Fields)),
		validators: make(map[string]Validator, len(doc.Fields)),
		defaults:   make(map[string]any, len(doc.Fields)),
	}
	for i := range doc.Fields {
		f := &doc.Fields[i]
		cs.order = append(cs.order, f.ID)
		cs.validators[f.ID] = buildValidator(f)
		cs.defaults[f.ID] = defaultValue(f)
	}
	for i := range doc.Rules {
		cs.rules = append(cs.rules, &compiledRule{def: doc.Rules[i]})
	}
	return cs
}

// ValidateField runs the single field's validator. Unknown ids pass.
func (cs *CompiledSchema) ValidateField(id string, value any) *FieldError {
	v, ok := cs.validators[id]
	if !ok {
		return nil
	}
	return v(value)
}

// Validate runs every field's validator against the value map in one pass,
// then the schema-level expression rules. Field errors come back in field
// order, at most one per field.
func (cs *CompiledSchema) Validate(values map[string]any) []FieldError {
	var errs []FieldError
	for _, id := range cs.order {
		if detail := cs.validators[id](values[id]); detail != nil {
			errs = append(errs, *detail)
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return cs.evaluateRules(values)
}

// Defaults returns a fresh default value map. Callers bind the returned map
// directly; it fully replaces any previous value map so stale keys from a
// prior schema never leak into a new session.
func (cs *CompiledSchema) Defaults() map[string]any {
	out := make(map[string]any, len(cs.defaults))
	for id, v := range cs.defaults {
		out[id] = v
	}
	return out
}

// FieldOrder returns the field ids in display/submission order.
func (cs *CompiledSchema) FieldOrder() []string {
	out := make([]string, len(cs.order))
	copy(out, cs.order)
	return out
}

// defaultValue picks the initial live value for a field by type.
func defaultValue(f *schema.FieldDescriptor) any {
	switch f.Type {
	case schema.TypeCheckbox:
		return false
	case schema.TypeChecklist:
		return []string{}
	case schema.TypeRange:
		if f.Min != nil {
			return *f.Min
		}
		return float64(0)
	case schema.TypeMinMax:
		return schema.MinMaxValue{}
	default:
		return ""
	}
}
