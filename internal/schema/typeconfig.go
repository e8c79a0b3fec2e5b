package schema

// TypeConfig declares what a field type supports: which builder controls it
// needs and which validation rule categories apply to it. It is the single
// source of truth consumed by both the builder UI contract and the validator
// compiler.
type TypeConfig struct {
	HasPlaceholder   bool `json:"hasPlaceholder"`
	HasOptions       bool `json:"hasOptions"`
	HasRangeSettings bool `json:"hasRangeSettings"`
	HasFileSettings  bool `json:"hasFileSettings"`

	HasMinMaxLength     bool `json:"hasMinMaxLength"`
	HasMinMaxValue      bool `json:"hasMinMaxValue"`
	HasMinMaxDate       bool `json:"hasMinMaxDate"`
	HasMinMaxSelections bool `json:"hasMinMaxSelections"`
	HasMaxFileSize      bool `json:"hasMaxFileSize"`
	HasDisableSpinners  bool `json:"hasDisableSpinners"`
}

var typeConfigs = map[FieldType]TypeConfig{
	TypeText:      {HasPlaceholder: true, HasMinMaxLength: true},
	TypeTextarea:  {HasPlaceholder: true, HasMinMaxLength: true},
	TypeNumber:    {HasPlaceholder: true, HasMinMaxValue: true, HasDisableSpinners: true},
	TypeEmail:     {HasPlaceholder: true},
	TypePhone:     {HasPlaceholder: true},
	TypeDate:      {HasMinMaxDate: true},
	TypeFile:      {HasFileSettings: true, HasMaxFileSize: true},
	TypeCheckbox:  {},
	TypeChecklist: {HasOptions: true, HasMinMaxSelections: true},
	TypeRadio:     {HasOptions: true},
	TypeSelect:    {HasOptions: true},
	TypeRange:     {HasRangeSettings: true},
	TypeMinMax:    {HasPlaceholder: true, HasDisableSpinners: true},
}

// ConfigFor is total: an unrecognized type falls back to the text
// configuration so the builder stays usable against schemas written by a
// newer version.
func ConfigFor(t FieldType) TypeConfig {
	if cfg, ok := typeConfigs[t]; ok {
		return cfg
	}
	return typeConfigs[TypeText]
}

// NeedsValidationSection reports whether the builder should show the
// validation editor for a field. Required fields always get the section so
// the required-message override is offered.
func NeedsValidationSection(f *FieldDescriptor) bool {
	if f.Required {
		return true
	}
	cfg := ConfigFor(f.Type)
	return cfg.HasMinMaxLength || cfg.HasMinMaxValue || cfg.HasMinMaxDate ||
		cfg.HasMinMaxSelections || cfg.HasMaxFileSize || cfg.HasDisableSpinners
}
