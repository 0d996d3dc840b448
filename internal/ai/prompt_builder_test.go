package ai

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"task-analyzer-backend/internal/schema"
)

func TestBuildAnalysisPrompt(t *testing.T) {
	now := time.Date(2025, time.March, 7, 23, 59, 0, 0, time.UTC)
	task := `Finish report ASAP "quoted" \ and <tags>`

	p := BuildAnalysisPrompt(schema.TaskAnalysisSchema, task, now)

	assert.Equal(t, task, p.User, "user message must be the raw task text")
	assert.True(t, strings.HasPrefix(p.System, "You are a professional task analysis engine."))
	assert.Contains(t, p.System, "The current date is 2025-03-07.")
	assert.Contains(t, p.System, "Strictly format any date found as YYYY-MM-DD.")
	assert.True(t, strings.HasSuffix(p.System, schema.TaskAnalysisSchema.FormatInstructions()))
}

func TestBuildAnalysisPrompt_DateFollowsRequestTime(t *testing.T) {
	a := BuildAnalysisPrompt(schema.TaskAnalysisSchema, "x", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	b := BuildAnalysisPrompt(schema.TaskAnalysisSchema, "x", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))

	assert.Contains(t, a.System, "2025-01-01")
	assert.Contains(t, b.System, "2025-01-02")
	assert.NotEqual(t, a.System, b.System)
}

func TestBuildSuggestionPrompt(t *testing.T) {
	p := BuildSuggestionPrompt(schema.SuggestionListSchema, "Buy groceries for")

	assert.Equal(t, "Buy groceries for", p.User)
	assert.Contains(t, p.System, "Generate exactly 5 unique suggestions")
	assert.NotContains(t, p.System, "The current date is")
	assert.True(t, strings.HasSuffix(p.System, schema.SuggestionListSchema.FormatInstructions()))
}

func TestPrompt_Request(t *testing.T) {
	p := Prompt{System: "sys", User: "usr"}
	req := p.Request(schema.SuggestionListSchema)

	assert.Equal(t, "sys", req.System)
	assert.Equal(t, "usr", req.User)
	assert.Zero(t, req.Temperature)
	if assert.NotNil(t, req.Schema) {
		assert.Equal(t, "SuggestionList", req.Schema.Name)
	}
}
