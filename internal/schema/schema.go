// Package schema is the single source of truth for the shape of model output:
// the record types, their field descriptors, the prompt format instructions
// rendered from those descriptors, and the validator that enforces them.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

type FieldType int

const (
	TypeString FieldType = iota
	TypeBool
	TypeStringList
)

func (t FieldType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeBool:
		return "boolean"
	case TypeStringList:
		return "array of strings"
	default:
		return "unknown"
	}
}

// Field describes one required key of a record.
type Field struct {
	Name        string
	Type        FieldType
	Description string

	// NonEmpty rejects strings (or list items) that are blank after trimming.
	NonEmpty bool
	// Enum, when set, is the closed set of accepted string values.
	Enum []string
	// Items is the exact length required of a TypeStringList; 0 means any.
	Items int
}

type Schema struct {
	Name        string
	Description string
	Fields      []Field
}

var TaskAnalysisSchema = Schema{
	Name:        "TaskAnalysis",
	Description: "Structured output of task details.",
	Fields: []Field{
		{
			Name:        "text",
			Type:        TypeString,
			Description: "The cleaned-up final task text.",
			NonEmpty:    true,
		},
		{
			Name:        "time",
			Type:        TypeString,
			Description: "Extracted deadline or date. Must be YYYY-MM-DD or a time of day, or '" + TimeUnspecified + "'.",
		},
		{
			Name:        "category",
			Type:        TypeString,
			Description: "A category label (e.g., Work, Study, Health).",
		},
		{
			Name:        "urgent",
			Type:        TypeBool,
			Description: "True if the task is marked urgent or uses words like ASAP.",
		},
		{
			Name:        "note",
			Type:        TypeString,
			Description: "A helpful, concise note or warning for the user. May be empty.",
		},
		{
			Name:        "effort_score",
			Type:        TypeString,
			Description: "Assigned score: Low, Medium, High, or Critical.",
			Enum:        effortEnum(),
		},
	},
}

var SuggestionListSchema = Schema{
	Name:        "SuggestionList",
	Description: "Structured output of suggested tasks.",
	Fields: []Field{
		{
			Name:        "suggestions",
			Type:        TypeStringList,
			Description: fmt.Sprintf("A list of %d complete task suggestions.", SuggestionCount),
			NonEmpty:    true,
			Items:       SuggestionCount,
		},
	},
}

func effortEnum() []string {
	out := make([]string, len(EffortScores))
	for i, s := range EffortScores {
		out[i] = string(s)
	}
	return out
}

// FormatInstructions renders the schema as prompt text: a key-by-key list
// followed by the equivalent JSON Schema document.
func (s Schema) FormatInstructions() string {
	var b strings.Builder

	b.WriteString("Return ONLY a JSON object, with no prose and no code fences, containing exactly these keys:\n")
	for _, f := range s.Fields {
		b.WriteString(`- "`)
		b.WriteString(f.Name)
		b.WriteString(`" (`)
		b.WriteString(f.Type.String())
		switch {
		case len(f.Enum) > 0:
			b.WriteString(", one of ")
			b.WriteString(strings.Join(f.Enum, "|"))
		case f.Items > 0:
			fmt.Fprintf(&b, ", exactly %d non-empty items", f.Items)
		case f.NonEmpty:
			b.WriteString(", non-empty")
		}
		b.WriteString("): ")
		b.WriteString(f.Description)
		b.WriteString("\n")
	}

	doc, _ := json.MarshalIndent(s.JSONSchema(), "", "  ")
	b.WriteString("\nThe object must validate against this JSON Schema:\n")
	b.Write(doc)

	return b.String()
}

// JSONSchema returns the schema as a draft-07 JSON Schema document.
func (s Schema) JSONSchema() map[string]any {
	props := make(map[string]any, len(s.Fields))
	required := make([]string, 0, len(s.Fields))

	for _, f := range s.Fields {
		props[f.Name] = f.jsonSchema()
		required = append(required, f.Name)
	}

	return map[string]any{
		"$schema":     "http://json-schema.org/draft-07/schema#",
		"title":       s.Name,
		"description": s.Description,
		"type":        "object",
		"properties":  props,
		"required":    required,
	}
}

func (f Field) jsonSchema() map[string]any {
	str := func() map[string]any {
		m := map[string]any{"type": "string"}
		if f.NonEmpty {
			m["pattern"] = `\S`
		}
		return m
	}

	var m map[string]any
	switch f.Type {
	case TypeBool:
		m = map[string]any{"type": "boolean"}
	case TypeStringList:
		m = map[string]any{"type": "array", "items": str()}
		if f.Items > 0 {
			m["minItems"] = f.Items
			m["maxItems"] = f.Items
		}
	default:
		m = str()
		if len(f.Enum) > 0 {
			m["enum"] = f.Enum
		}
	}
	m["description"] = f.Description
	return m
}
