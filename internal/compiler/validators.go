package compiler

import (
	"fmt"
	"regexp"
	"strconv"
	"unicode/utf8"

	"formspec-backend/internal/schema"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9\s\-()]{7,20}$`)
)

// buildValidator is total over field types. Unknown types get passValidator
// so a schema written by a newer builder version still validates.
func buildValidator(f *schema.FieldDescriptor) Validator {
	switch f.Type {
	case schema.TypeText, schema.TypeTextarea:
		return textValidator(f)
	case schema.TypeEmail:
		return patternValidator(f, emailPattern, "format", "Enter a valid email address")
	case schema.TypePhone:
		return patternValidator(f, phonePattern, "format", "Enter a valid phone number")
	case schema.TypeNumber:
		return numberValidator(f)
	case schema.TypeDate:
		return dateValidator(f)
	case schema.TypeCheckbox:
		return checkboxValidator(f)
	case schema.TypeChecklist:
		return checklistValidator(f)
	case schema.TypeRadio, schema.TypeSelect:
		return selectionValidator(f)
	case schema.TypeRange, schema.TypeMinMax:
		// range always has some slider position; min_max carries two
		// free-text strings with no cross-check between them.
		return passValidator
	case schema.TypeFile:
		return fileValidator(f)
	default:
		return passValidator
	}
}

func passValidator(any) *FieldError { return nil }

func requiredError(f *schema.FieldDescriptor) *FieldError {
	msg := f.Rule().RequiredMessage
	if msg == "" {
		msg = fmt.Sprintf("%s is required", f.DisplayName())
	}
	return &FieldError{Field: f.ID, Rule: "required", Message: msg}
}

// textValidator enforces required-before-length precedence: an empty value
// reports "required" (or passes when optional) and length checks never fire.
func textValidator(f *schema.FieldDescriptor) Validator {
	rule := f.Rule()
	return func(v any) *FieldError {
		s := toString(v)
		if s == "" {
			if f.Required {
				return requiredError(f)
			}
			return nil
		}
		n := utf8.RuneCountInString(s)
		if rule.MinLength != nil && n < *rule.MinLength {
			return &FieldError{Field: f.ID, Rule: "min_length",
				Message: fmt.Sprintf("%s must be at least %d characters", f.DisplayName(), *rule.MinLength)}
		}
		if rule.MaxLength != nil && n > *rule.MaxLength {
			return &FieldError{Field: f.ID, Rule: "max_length",
				Message: fmt.Sprintf("%s must be at most %d characters", f.DisplayName(), *rule.MaxLength)}
		}
		return nil
	}
}

// patternValidator backs email and phone. An empty value bypasses the format
// check when the field is optional — empty is valid even though it would not
// match the pattern.
func patternValidator(f *schema.FieldDescriptor, re *regexp.Regexp, rule, defaultMsg string) Validator {
	msg := f.Rule().PatternMessage
	if msg == "" {
		msg = defaultMsg
	}
	return func(v any) *FieldError {
		s := toString(v)
		if s == "" {
			if f.Required {
				return requiredError(f)
			}
			return nil
		}
		if !re.MatchString(s) {
			return &FieldError{Field: f.ID, Rule: rule, Message: msg}
		}
		return nil
	}
}

// numberValidator coerces widget input (usually a string) to a number. For
// optional fields the empty string is a valid "no value" sentinel.
func numberValidator(f *schema.FieldDescriptor) Validator {
	rule := f.Rule()
	return func(v any) *FieldError {
		s, n, isNum := toNumber(v)
		if !isNum {
			if s == "" {
				if f.Required {
					return requiredError(f)
				}
				return nil
			}
			return &FieldError{Field: f.ID, Rule: "number",
				Message: fmt.Sprintf("%s must be a number", f.DisplayName())}
		}
		if rule.MinValue != nil && n < *rule.MinValue {
			return &FieldError{Field: f.ID, Rule: "min_value",
				Message: fmt.Sprintf("%s must be at least %v", f.DisplayName(), *rule.MinValue)}
		}
		if rule.MaxValue != nil && n > *rule.MaxValue {
			return &FieldError{Field: f.ID, Rule: "max_value",
				Message: fmt.Sprintf("%s must be at most %v", f.DisplayName(), *rule.MaxValue)}
		}
		return nil
	}
}

// dateValidator compares ISO calendar dates lexically, which is sound
// because YYYY-MM-DD sorts the same way it orders in time.
func dateValidator(f *schema.FieldDescriptor) Validator {
	rule := f.Rule()
	return func(v any) *FieldError {
		s := toString(v)
		if s == "" {
			if f.Required {
				return requiredError(f)
			}
			return nil
		}
		if rule.MinDate != "" && s < rule.MinDate {
			return &FieldError{Field: f.ID, Rule: "min_date",
				Message: fmt.Sprintf("%s must be on or after %s", f.DisplayName(), rule.MinDate)}
		}
		if rule.MaxDate != "" && s > rule.MaxDate {
			return &FieldError{Field: f.ID, Rule: "max_date",
				Message: fmt.Sprintf("%s must be on or before %s", f.DisplayName(), rule.MaxDate)}
		}
		return nil
	}
}

// checkboxValidator: a required checkbox must be exactly true. False is a
// validation failure, not merely unset.
func checkboxValidator(f *schema.FieldDescriptor) Validator {
	return func(v any) *FieldError {
		if !f.Required {
			return nil
		}
		if b, ok := v.(bool); ok && b {
			return nil
		}
		return requiredError(f)
	}
}

// checklistValidator bounds the selection count. The effective minimum is
// minSelections when set, else 1 for required fields, else 0.
func checklistValidator(f *schema.FieldDescriptor) Validator {
	rule := f.Rule()
	min := 0
	if rule.MinSelections != nil {
		min = *rule.MinSelections
	} else if f.Required {
		min = 1
	}
	return func(v any) *FieldError {
		selected := toStringSlice(v)
		if len(selected) < min {
			if len(selected) == 0 && f.Required && rule.MinSelections == nil {
				return requiredError(f)
			}
			return &FieldError{Field: f.ID, Rule: "min_selections",
				Message: fmt.Sprintf("Select at least %d option(s) for %s", min, f.DisplayName())}
		}
		if rule.MaxSelections != nil && len(selected) > *rule.MaxSelections {
			return &FieldError{Field: f.ID, Rule: "max_selections",
				Message: fmt.Sprintf("Select at most %d option(s) for %s", *rule.MaxSelections, f.DisplayName())}
		}
		return nil
	}
}

// selectionValidator backs radio and select: required means a non-empty
// choice; optional accepts the empty string or any option value.
func selectionValidator(f *schema.FieldDescriptor) Validator {
	return func(v any) *FieldError {
		if f.Required && toString(v) == "" {
			return requiredError(f)
		}
		return nil
	}
}

// fileValidator runs three independent clauses in order; the first failing
// clause's message wins. The live value is a file descriptor collection, so
// this check sits outside the text-oriented per-type mechanism.
func fileValidator(f *schema.FieldDescriptor) Validator {
	rule := f.Rule()
	return func(v any) *FieldError {
		files := toFileInfos(v)
		if f.Required && len(files) == 0 {
			return requiredError(f)
		}
		if f.MaxFiles != nil && len(files) > *f.MaxFiles {
			return &FieldError{Field: f.ID, Rule: "max_files",
				Message: fmt.Sprintf("At most %d file(s) allowed for %s", *f.MaxFiles, f.DisplayName())}
		}
		if rule.MaxFileSize != nil {
			limit := int64(*rule.MaxFileSize) * 1024
			for _, fi := range files {
				if fi.Size > limit {
					return &FieldError{Field: f.ID, Rule: "max_file_size",
						Message: fmt.Sprintf("%s exceeds the maximum size of %d KB", fi.Name, *rule.MaxFileSize)}
				}
			}
		}
		return nil
	}
}

// --- live value coercions ---

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case bool:
		if s {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// toNumber returns the string form, the numeric value, and whether the value
// coerced to a number at all.
func toNumber(v any) (string, float64, bool) {
	switch n := v.(type) {
	case nil:
		return "", 0, false
	case float64:
		return "", n, true
	case float32:
		return "", float64(n), true
	case int:
		return "", float64(n), true
	case int64:
		return "", float64(n), true
	case string:
		if n == "" {
			return "", 0, false
		}
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return n, 0, false
		}
		return n, parsed, true
	default:
		return fmt.Sprintf("%v", v), 0, false
	}
}

func toStringSlice(v any) []string {
	switch list := v.(type) {
	case nil:
		return nil
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, toString(item))
		}
		return out
	default:
		return nil
	}
}

// FileInfos normalizes a file field's live value to descriptor form.
// Anything unrecognized (including the empty-string default) counts as no
// files.
func FileInfos(v any) []schema.FileInfo {
	files := toFileInfos(v)
	if files == nil {
		return []schema.FileInfo{}
	}
	return files
}

// toFileInfos accepts the shapes a file value shows up in: typed descriptors,
// a live selection exposing Files(), or decoded JSON from an API submission.
func toFileInfos(v any) []schema.FileInfo {
	switch files := v.(type) {
	case nil:
		return nil
	case []schema.FileInfo:
		return files
	case interface{ Files() []schema.FileInfo }:
		return files.Files()
	case []any:
		out := make([]schema.FileInfo, 0, len(files))
		for _, item := range files {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			fi := schema.FileInfo{Name: toString(m["name"]), Type: toString(m["type"])}
			if _, size, ok := toNumber(m["size"]); ok {
				fi.Size = int64(size)
			}
			out = append(out, fi)
		}
		return out
	default:
		return nil
	}
}
