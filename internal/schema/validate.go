package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// FailureKind classifies why model output was rejected.
type FailureKind string

const (
	MalformedJSON  FailureKind = "malformed_json"
	SchemaMismatch FailureKind = "schema_mismatch"
	MissingField   FailureKind = "missing_field"
	InvalidEnum    FailureKind = "invalid_enum"
)

// ValidationError is returned when model output does not conform to a Schema.
type ValidationError struct {
	Schema string
	Kind   FailureKind
	Field  string
	Value  string
	Err    error
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Schema, e.Kind)
	if e.Field != "" {
		fmt.Fprintf(&b, " (field %q", e.Field)
		if e.Value != "" {
			fmt.Fprintf(&b, ", value %q", e.Value)
		}
		b.WriteString(")")
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Details is the client-safe summary: the kind and the field, never the
// offending value or the raw model text.
func (e *ValidationError) Details() string {
	if e.Field == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Field
}

// ValidateTaskAnalysis parses raw model output into a TaskAnalysis.
func ValidateTaskAnalysis(raw string) (TaskAnalysis, error) {
	payload, err := TaskAnalysisSchema.check(raw)
	if err != nil {
		return TaskAnalysis{}, err
	}

	var out TaskAnalysis
	if err := json.Unmarshal(payload, &out); err != nil {
		return TaskAnalysis{}, TaskAnalysisSchema.fail(SchemaMismatch, "", "", err)
	}
	if !out.EffortScore.Valid() {
		return TaskAnalysis{}, TaskAnalysisSchema.fail(InvalidEnum, "effort_score", string(out.EffortScore), nil)
	}
	return out, nil
}

// ValidateSuggestionList parses raw model output into a SuggestionList
// holding exactly SuggestionCount non-empty entries.
func ValidateSuggestionList(raw string) (SuggestionList, error) {
	payload, err := SuggestionListSchema.check(raw)
	if err != nil {
		return SuggestionList{}, err
	}

	var out SuggestionList
	if err := json.Unmarshal(payload, &out); err != nil {
		return SuggestionList{}, SuggestionListSchema.fail(SchemaMismatch, "", "", err)
	}
	return out, nil
}

func (s Schema) fail(kind FailureKind, field, value string, err error) *ValidationError {
	return &ValidationError{Schema: s.Name, Kind: kind, Field: field, Value: value, Err: err}
}

// check runs the field-driven checks and returns a JSON object holding only
// the checked fields, keyed exactly as declared. encoding/json matches struct
// keys case-insensitively, so the original payload must not be decoded.
func (s Schema) check(raw string) ([]byte, error) {
	payload := ExtractJSON(raw)
	if len(payload) == 0 || !json.Valid(payload) {
		return nil, s.fail(MalformedJSON, "", "", nil)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(payload, &obj); err != nil || obj == nil {
		return nil, s.fail(SchemaMismatch, "", "", err)
	}

	checked := make(map[string]json.RawMessage, len(s.Fields))
	for _, f := range s.Fields {
		v, ok := obj[f.Name]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return nil, s.fail(MissingField, f.Name, "", nil)
		}
		if err := s.checkField(f, v); err != nil {
			return nil, err
		}
		checked[f.Name] = v
	}

	out, err := json.Marshal(checked)
	if err != nil {
		return nil, s.fail(SchemaMismatch, "", "", err)
	}
	return out, nil
}

func (s Schema) checkField(f Field, v json.RawMessage) error {
	switch f.Type {
	case TypeBool:
		var b bool
		if err := json.Unmarshal(v, &b); err != nil {
			return s.fail(MissingField, f.Name, "", err)
		}

	case TypeString:
		var str string
		if err := json.Unmarshal(v, &str); err != nil {
			return s.fail(MissingField, f.Name, "", err)
		}
		if f.NonEmpty && strings.TrimSpace(str) == "" {
			return s.fail(MissingField, f.Name, "", nil)
		}
		if len(f.Enum) > 0 && !contains(f.Enum, str) {
			return s.fail(InvalidEnum, f.Name, str, nil)
		}

	case TypeStringList:
		var items []json.RawMessage
		if err := json.Unmarshal(v, &items); err != nil {
			return s.fail(MissingField, f.Name, "", err)
		}
		for i, it := range items {
			var str string
			if bytes.Equal(bytes.TrimSpace(it), []byte("null")) {
				return s.fail(MissingField, f.Name, "", fmt.Errorf("item %d is null", i))
			}
			if err := json.Unmarshal(it, &str); err != nil {
				return s.fail(MissingField, f.Name, "", fmt.Errorf("item %d: %w", i, err))
			}
			if f.NonEmpty && strings.TrimSpace(str) == "" {
				return s.fail(SchemaMismatch, f.Name, "", fmt.Errorf("item %d is blank", i))
			}
		}
		if f.Items > 0 && len(items) != f.Items {
			return s.fail(SchemaMismatch, f.Name, "", fmt.Errorf("got %d items, want %d", len(items), f.Items))
		}
	}
	return nil
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// ExtractJSON unwraps a JSON value from model text: it strips Markdown code
// fences and, when the text does not start with a JSON value, takes the span
// from the first '{' to the last '}'. It never alters the JSON itself.
func ExtractJSON(raw string) []byte {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// drop the info string (```json), which may share a line with the body
		s = strings.TrimLeftFunc(s, isInfoStringRune)
		if end := strings.LastIndex(s, "```"); end >= 0 {
			s = s[:end]
		}
		s = strings.TrimSpace(s)
	}

	if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") {
		return []byte(s)
	}

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return []byte(s)
	}
	return []byte(s[start : end+1])
}

func isInfoStringRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '+'
}
