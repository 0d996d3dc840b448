// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"

	"task-analyzer-backend/internal/ai"
)

// FakeProvider is an in-memory ai.Provider that returns a canned response
// and records every request it receives.
type FakeProvider struct {
	mu       sync.Mutex
	requests []ai.Request

	// Response is returned by Generate when Err is nil.
	Response string
	// Err, when set, is returned by Generate.
	Err error
	// Block makes Generate wait for ctx to be done.
	Block bool
}

// NewFakeProvider creates a FakeProvider that answers with response.
func NewFakeProvider(response string) *FakeProvider {
	return &FakeProvider{Response: response}
}

func (f *FakeProvider) Generate(ctx context.Context, req ai.Request) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.Block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.Err != nil {
		return "", f.Err
	}
	return f.Response, nil
}

// Calls returns how many times Generate was invoked.
func (f *FakeProvider) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// LastRequest returns the most recent request, or the zero Request.
func (f *FakeProvider) LastRequest() ai.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return ai.Request{}
	}
	return f.requests[len(f.requests)-1]
}
