package ai

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"task-analyzer-backend/internal/schema"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiClient calls the Gemini API through the genai SDK.
// It is immutable after construction and safe for concurrent use.
type GeminiClient struct {
	client *genai.Client
	model  string
}

type GeminiOptions struct {
	APIKey string
	Model  string

	// BaseURL and HTTPClient are for tests.
	BaseURL    string
	HTTPClient *http.Client
}

func NewGemini(ctx context.Context, opts GeminiOptions) (*GeminiClient, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if opts.Model == "" {
		opts.Model = DefaultGeminiModel
	}

	cc := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiClient{client: client, model: opts.Model}, nil
}

func (c *GeminiClient) Model() string { return c.model }

func (c *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = toGenAISchema(*req.Schema)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.User), cfg)
	if err != nil {
		return "", &TransportError{Provider: "gemini", Err: err}
	}

	text := resp.Text()
	if text == "" {
		return "", &TransportError{Provider: "gemini", Err: fmt.Errorf("empty response from model %s", c.model)}
	}
	return text, nil
}

// toGenAISchema mirrors schema.Schema into Gemini's OpenAPI-subset schema.
func toGenAISchema(s schema.Schema) *genai.Schema {
	out := &genai.Schema{
		Type:        genai.TypeObject,
		Title:       s.Name,
		Description: s.Description,
		Properties:  make(map[string]*genai.Schema, len(s.Fields)),
	}

	for _, f := range s.Fields {
		var p *genai.Schema
		switch f.Type {
		case schema.TypeBool:
			p = &genai.Schema{Type: genai.TypeBoolean}
		case schema.TypeStringList:
			p = &genai.Schema{
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			}
			if f.Items > 0 {
				p.MinItems = genai.Ptr(int64(f.Items))
				p.MaxItems = genai.Ptr(int64(f.Items))
			}
		default:
			p = &genai.Schema{Type: genai.TypeString}
			if len(f.Enum) > 0 {
				p.Format = "enum"
				p.Enum = f.Enum
			}
		}
		p.Description = f.Description

		out.Properties[f.Name] = p
		out.Required = append(out.Required, f.Name)
		out.PropertyOrdering = append(out.PropertyOrdering, f.Name)
	}
	return out
}
