package ai

import (
	"strings"
	"time"

	"task-analyzer-backend/internal/schema"
)

// Prompt is a (system instruction, user message) pair.
type Prompt struct {
	System string
	User   string
}

// Request turns the prompt into a deterministic (temperature 0) provider
// request constrained to s.
func (p Prompt) Request(s schema.Schema) Request {
	return Request{
		System:      p.System,
		User:        p.User,
		Temperature: 0,
		Schema:      &s,
	}
}

// BuildAnalysisPrompt composes the /analyze prompt. now is the request's
// wall-clock time; only its calendar date is used.
func BuildAnalysisPrompt(s schema.Schema, taskText string, now time.Time) Prompt {
	var b strings.Builder

	b.WriteString(analysisRole)
	b.WriteString("\n\nThe current date is ")
	b.WriteString(now.Format(DateLayout))
	b.WriteString(".\n\nThe response format must be:\n")
	b.WriteString(s.FormatInstructions())

	return Prompt{System: b.String(), User: taskText}
}

// BuildSuggestionPrompt composes the /suggest prompt.
func BuildSuggestionPrompt(s schema.Schema, partial string) Prompt {
	var b strings.Builder

	b.WriteString(suggestionRole)
	b.WriteString("\n\nThe response format must be:\n")
	b.WriteString(s.FormatInstructions())

	return Prompt{System: b.String(), User: partial}
}
