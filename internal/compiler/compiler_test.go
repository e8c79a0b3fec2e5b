package compiler

import (
	"reflect"
	"testing"

	"formspec-backend/internal/schema"
)

func TestDefaults_PerTypeTable(t *testing.T) {
	min := 2.5
	doc := &schema.Document{
		ID: "s1", Name: "defaults",
		Fields: []schema.FieldDescriptor{
			{ID: "t", Type: schema.TypeText},
			{ID: "cb", Type: schema.TypeCheckbox},
			{ID: "cl", Type: schema.TypeChecklist},
			{ID: "rng", Type: schema.TypeRange, Min: &min},
			{ID: "rng0", Type: schema.TypeRange},
			{ID: "mm", Type: schema.TypeMinMax},
			{ID: "f", Type: schema.TypeFile},
		},
	}
	defaults := Compile(doc).Defaults()

	if defaults["t"] != "" {
		t.Fatalf("text default: expected empty string, got %v", defaults["t"])
	}
	if defaults["cb"] != false {
		t.Fatalf("checkbox default: expected false, got %v", defaults["cb"])
	}
	if !reflect.DeepEqual(defaults["cl"], []string{}) {
		t.Fatalf("checklist default: expected empty slice, got %v", defaults["cl"])
	}
	if defaults["rng"] != 2.5 {
		t.Fatalf("range default: expected field min 2.5, got %v", defaults["rng"])
	}
	if defaults["rng0"] != float64(0) {
		t.Fatalf("range default without min: expected 0, got %v", defaults["rng0"])
	}
	if !reflect.DeepEqual(defaults["mm"], schema.MinMaxValue{}) {
		t.Fatalf("min_max default: expected zero MinMaxValue, got %v", defaults["mm"])
	}
	// File fields share the generic empty-string default
	if defaults["f"] != "" {
		t.Fatalf("file default: expected empty string, got %v", defaults["f"])
	}
}

func TestDefaults_ReturnsFreshMap(t *testing.T) {
	doc := &schema.Document{ID: "s1", Name: "x",
		Fields: []schema.FieldDescriptor{{ID: "a", Type: schema.TypeText}}}
	cs := Compile(doc)

	first := cs.Defaults()
	first["a"] = "mutated"
	second := cs.Defaults()
	if second["a"] != "" {
		t.Fatalf("mutating one defaults map leaked into the next: %v", second["a"])
	}
}

func TestCompile_UnknownTypePasses(t *testing.T) {
	doc := &schema.Document{ID: "s1", Name: "x",
		Fields: []schema.FieldDescriptor{{ID: "mystery", Type: "hologram", Required: true}}}
	cs := Compile(doc)

	// Unknown types never block: always-pass validator, empty-string default
	if detail := cs.ValidateField("mystery", nil); detail != nil {
		t.Fatalf("unknown type should pass, got %v", detail)
	}
	if cs.Defaults()["mystery"] != "" {
		t.Fatalf("unknown type default: expected empty string, got %v", cs.Defaults()["mystery"])
	}
}

func TestValidateField_UnknownIDPasses(t *testing.T) {
	doc := &schema.Document{ID: "s1", Name: "x",
		Fields: []schema.FieldDescriptor{{ID: "a", Type: schema.TypeText}}}
	cs := Compile(doc)

	if detail := cs.ValidateField("nope", "anything"); detail != nil {
		t.Fatalf("unknown field id should pass, got %v", detail)
	}
}

func TestValidate_ErrorsInFieldOrder(t *testing.T) {
	doc := &schema.Document{
		ID: "s1", Name: "ordered",
		Fields: []schema.FieldDescriptor{
			{ID: "first", Type: schema.TypeText, Required: true},
			{ID: "middle", Type: schema.TypeText},
			{ID: "last", Type: schema.TypeEmail, Required: true},
		},
	}
	cs := Compile(doc)

	errs := cs.Validate(map[string]any{"first": "", "middle": "", "last": ""})
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(errs), errs)
	}
	if errs[0].Field != "first" || errs[1].Field != "last" {
		t.Fatalf("errors out of field order: %v", errs)
	}
}

func TestValidate_AtMostOneErrorPerField(t *testing.T) {
	// A value that is both too short and fails nothing else still yields one error
	doc := &schema.Document{
		ID: "s1", Name: "x",
		Fields: []schema.FieldDescriptor{
			{ID: "a", Type: schema.TypeText, Required: true,
				Validation: &schema.ValidationRule{MinLength: intPtr(5), MaxLength: intPtr(2)}},
		},
	}
	cs := Compile(doc)
	errs := cs.Validate(map[string]any{"a": "abc"})
	if len(errs) != 1 {
		t.Fatalf("expected exactly 1 error, got %d: %v", len(errs), errs)
	}
	if errs[0].Rule != "min_length" {
		t.Fatalf("first failing check should win, got %s", errs[0].Rule)
	}
}

func TestCompile_Deterministic(t *testing.T) {
	doc := &schema.Document{
		ID: "s1", Name: "x",
		Fields: []schema.FieldDescriptor{
			{ID: "a", Type: schema.TypeText, Required: true},
			{ID: "b", Type: schema.TypeNumber,
				Validation: &schema.ValidationRule{MinValue: floatPtr(1)}},
		},
	}

	a := Compile(doc)
	b := Compile(doc)

	values := []map[string]any{
		{"a": "", "b": "5"},
		{"a": "x", "b": "0"},
		{"a": "x", "b": "2"},
	}
	for _, v := range values {
		got1 := a.Validate(v)
		got2 := b.Validate(v)
		if !reflect.DeepEqual(got1, got2) {
			t.Fatalf("two compilations disagree for %v: %v vs %v", v, got1, got2)
		}
	}
	if !reflect.DeepEqual(a.FieldOrder(), []string{"a", "b"}) {
		t.Fatalf("unexpected field order: %v", a.FieldOrder())
	}
}
