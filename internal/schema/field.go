package schema

// FieldType identifies the input widget a field renders as. The set is
// closed; changing a field's type is modeled as delete+recreate in the
// builder, so a descriptor's type never changes after creation.
type FieldType string

const (
	TypeText      FieldType = "text"
	TypeTextarea  FieldType = "textarea"
	TypeNumber    FieldType = "number"
	TypeEmail     FieldType = "email"
	TypePhone     FieldType = "phone"
	TypeDate      FieldType = "date"
	TypeFile      FieldType = "file"
	TypeCheckbox  FieldType = "checkbox"
	TypeChecklist FieldType = "checklist"
	TypeRadio     FieldType = "radio"
	TypeSelect    FieldType = "select"
	TypeRange     FieldType = "range"
	TypeMinMax    FieldType = "min_max"
)

// ValidationRule holds the optional per-field constraints. Keys that don't
// apply to the field's type (per the type configuration table) are ignored
// if present, so stale rules from an older schema version are harmless.
type ValidationRule struct {
	MinLength       *int     `json:"minLength,omitempty"`
	MaxLength       *int     `json:"maxLength,omitempty"`
	MinValue        *float64 `json:"minValue,omitempty"`
	MaxValue        *float64 `json:"maxValue,omitempty"`
	MinDate         string   `json:"minDate,omitempty"`
	MaxDate         string   `json:"maxDate,omitempty"`
	MinSelections   *int     `json:"minSelections,omitempty"`
	MaxSelections   *int     `json:"maxSelections,omitempty"`
	MaxFileSize     *int     `json:"maxFileSize,omitempty"` // kilobytes, per individual file
	RequiredMessage string   `json:"requiredMessage,omitempty"`
	Pattern         string   `json:"pattern,omitempty"` // reserved; only email/phone ship built-in patterns
	PatternMessage  string   `json:"patternMessage,omitempty"`
}

// FieldDescriptor is one entry in a schema's ordered field list. ID is
// assigned at creation, never reused, and joins the descriptor to its live
// value and rendered input.
type FieldDescriptor struct {
	ID                string          `json:"id"`
	Type              FieldType       `json:"type"`
	Label             string          `json:"label"`
	Placeholder       string          `json:"placeholder,omitempty"`
	Tooltip           string          `json:"tooltip,omitempty"`
	Required          bool            `json:"required,omitempty"`
	Options           []string        `json:"options,omitempty"`
	AcceptedFileTypes []string        `json:"acceptedFileTypes,omitempty"`
	MaxFiles          *int            `json:"maxFiles,omitempty"` // unset means unlimited
	Min               *float64        `json:"min,omitempty"`
	Max               *float64        `json:"max,omitempty"`
	Step              *float64        `json:"step,omitempty"`
	DisableSpinners   bool            `json:"disableSpinners,omitempty"`
	Validation        *ValidationRule `json:"validation,omitempty"`
}

// Rule returns the field's validation rule, or a zero rule if none is set.
func (f *FieldDescriptor) Rule() ValidationRule {
	if f.Validation == nil {
		return ValidationRule{}
	}
	return *f.Validation
}

// DisplayName returns the label, falling back to the field id for unlabeled
// fields so error messages always name something.
func (f *FieldDescriptor) DisplayName() string {
	if f.Label != "" {
		return f.Label
	}
	return f.ID
}

// FileInfo is the submission-side representation of one selected file. Raw
// file content never travels in a payload, only these descriptors.
type FileInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

// MinMaxValue is the live value shape for min_max fields: two free-text
// numeric-looking strings with no cross-validation between them.
type MinMaxValue struct {
	Min string `json:"min"`
	Max string `json:"max"`
}
