package ai

import (
	"context"
	"fmt"

	"task-analyzer-backend/internal/schema"
)

// Request is one call to a text-generation provider.
type Request struct {
	System      string
	User        string
	Temperature float32

	// Schema, when set, asks the provider for structured output of this shape.
	// It biases the provider; it does not replace validation.
	Schema *schema.Schema
}

// Provider generates raw text for a prompt. Implementations do not retry.
type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// TransportError reports that the provider could not be reached or answered
// with a transport-level failure (including a timeout).
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ai: %s: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
