package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"task-analyzer-backend/internal/schema"
)

func newTestGemini(t *testing.T, h http.HandlerFunc) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewGemini(context.Background(), GeminiOptions{
		APIKey:     "test-key",
		Model:      "gemini-test",
		BaseURL:    srv.URL + "/",
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)
	return c
}

func TestNewGemini_RequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), GeminiOptions{})
	assert.Error(t, err)
}

func TestGeminiClient_Generate(t *testing.T) {
	var body string
	var path string

	c := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		body = string(b)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{
				map[string]any{
					"content": map[string]any{
						"role":  "model",
						"parts": []any{map[string]any{"text": `{"suggestions":["a","b","c","d","e"]}`}},
					},
				},
			},
		})
	})
	assert.Equal(t, "gemini-test", c.Model())

	p := BuildSuggestionPrompt(schema.SuggestionListSchema, "Buy groceries for")
	out, err := c.Generate(context.Background(), p.Request(schema.SuggestionListSchema))
	require.NoError(t, err)

	assert.Equal(t, `{"suggestions":["a","b","c","d","e"]}`, out)
	assert.True(t, strings.HasSuffix(path, "models/gemini-test:generateContent"), path)
	assert.Contains(t, body, "Buy groceries for")
	assert.Contains(t, body, "Generate exactly 5 unique suggestions")
	assert.Contains(t, body, "application/json")
}

func TestGeminiClient_ProviderErrorIsTransport(t *testing.T) {
	c := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	})

	_, err := c.Generate(context.Background(), Request{User: "x"})

	var te *TransportError
	require.True(t, errors.As(err, &te), "got %v", err)
	assert.Equal(t, "gemini", te.Provider)
}

func TestGeminiClient_EmptyCandidates(t *testing.T) {
	c := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := c.Generate(context.Background(), Request{User: "x"})

	var te *TransportError
	assert.True(t, errors.As(err, &te), "got %v", err)
}

func TestToGenAISchema(t *testing.T) {
	s := toGenAISchema(schema.TaskAnalysisSchema)

	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, []string{"text", "time", "category", "urgent", "note", "effort_score"}, s.Required)
	assert.Equal(t, s.Required, s.PropertyOrdering)
	assert.Equal(t, genai.TypeBoolean, s.Properties["urgent"].Type)
	assert.Equal(t, []string{"Low", "Medium", "High", "Critical"}, s.Properties["effort_score"].Enum)

	l := toGenAISchema(schema.SuggestionListSchema)
	items := l.Properties["suggestions"]
	assert.Equal(t, genai.TypeArray, items.Type)
	assert.Equal(t, genai.TypeString, items.Items.Type)
	require.NotNil(t, items.MinItems)
	assert.Equal(t, int64(5), *items.MinItems)
	assert.Equal(t, int64(5), *items.MaxItems)
}
