package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"
)

func TestFormatInstructions_ListsEveryField(t *testing.T) {
	for _, s := range []Schema{TaskAnalysisSchema, SuggestionListSchema} {
		text := s.FormatInstructions()
		for _, f := range s.Fields {
			assert.Contains(t, text, `"`+f.Name+`"`, "%s.%s", s.Name, f.Name)
		}
		assert.Contains(t, text, `"title": "`+s.Name+`"`)
	}
}

func TestFormatInstructions_TaskAnalysis(t *testing.T) {
	text := TaskAnalysisSchema.FormatInstructions()

	assert.Contains(t, text, `- "urgent" (boolean): True if the task is marked urgent`)
	assert.Contains(t, text, `- "effort_score" (string, one of Low|Medium|High|Critical)`)
	assert.Contains(t, text, `- "text" (string, non-empty)`)
	assert.Contains(t, text, "YYYY-MM-DD")
}

func TestFormatInstructions_SuggestionList(t *testing.T) {
	text := SuggestionListSchema.FormatInstructions()

	assert.Contains(t, text, `- "suggestions" (array of strings, exactly 5 non-empty items)`)
	assert.Contains(t, text, `"minItems": 5`)
	assert.Contains(t, text, `"maxItems": 5`)
}

func TestFormatInstructions_Deterministic(t *testing.T) {
	assert.Equal(t, TaskAnalysisSchema.FormatInstructions(), TaskAnalysisSchema.FormatInstructions())
}

// The published JSON Schema and the validator are both derived from Fields;
// they must accept and reject the same documents.
func TestJSONSchema_AgreesWithValidator(t *testing.T) {
	docs := []struct {
		schema   Schema
		validate func(string) error
		raw      string
	}{
		{TaskAnalysisSchema, analysisErr, reportJSON},
		{TaskAnalysisSchema, analysisErr, `{"text":"a","time":"unspecified","category":"c","note":"","effort_score":"Low"}`},
		{TaskAnalysisSchema, analysisErr, `{"text":"a","time":"unspecified","category":"c","urgent":"yes","note":"","effort_score":"Low"}`},
		{TaskAnalysisSchema, analysisErr, `{"text":"a","time":"unspecified","category":"c","urgent":true,"note":"","effort_score":"Extreme"}`},
		{TaskAnalysisSchema, analysisErr, `{"text":" ","time":"unspecified","category":"c","urgent":true,"note":"","effort_score":"Low"}`},
		{TaskAnalysisSchema, analysisErr, `{"text":"a","time":"unspecified","category":"c","urgent":true,"note":"","effort_score":"Low","extra":1}`},
		{SuggestionListSchema, suggestionErr, `{"suggestions":["a","b","c","d","e"]}`},
		{SuggestionListSchema, suggestionErr, `{"suggestions":["a","b","c","d"]}`},
		{SuggestionListSchema, suggestionErr, `{"suggestions":["a","b","c","d","e","f"]}`},
		{SuggestionListSchema, suggestionErr, `{"suggestions":["a","b","","d","e"]}`},
		{SuggestionListSchema, suggestionErr, `{"suggestions":["a","b",1,"d","e"]}`},
		{SuggestionListSchema, suggestionErr, `{"other":[]}`},
	}

	for _, d := range docs {
		loader := gojsonschema.NewGoLoader(d.schema.JSONSchema())
		result, err := gojsonschema.Validate(loader, gojsonschema.NewStringLoader(d.raw))
		require.NoError(t, err, d.raw)

		vErr := d.validate(d.raw)
		assert.Equal(t, result.Valid(), vErr == nil, "%s: schema valid=%v, validator err=%v, schema errors=%v",
			d.raw, result.Valid(), vErr, result.Errors())
	}
}

func analysisErr(raw string) error {
	_, err := ValidateTaskAnalysis(raw)
	return err
}

func suggestionErr(raw string) error {
	_, err := ValidateSuggestionList(raw)
	return err
}

func TestEffortScore_Valid(t *testing.T) {
	assert.True(t, EffortCritical.Valid())
	assert.False(t, EffortScore("").Valid())
	assert.False(t, EffortScore("LOW").Valid())
}
