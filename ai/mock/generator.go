package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/poiesic/storyweave/ai"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via GenerateFunc.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, returns a fixed Markdown article.
	GenerateFunc func(ctx context.Context, req ai.GenerationRequest) (string, error)

	mu       sync.Mutex
	requests []ai.GenerationRequest
}

// NewMockGenerator creates a mock generator with default behavior.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate records the request and returns the injected or default response.
func (m *MockGenerator) Generate(ctx context.Context, req ai.GenerationRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}

	return fmt.Sprintf("# Mock article\n\n**Summary:** Mock summary\n\nGenerated from a %d character prompt.", len(req.Prompt)), nil
}

// CallCount returns the number of Generate calls.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns a copy of every request received.
func (m *MockGenerator) Requests() []ai.GenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ai.GenerationRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// Reset clears the call history and injected behavior.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
	m.GenerateFunc = nil
}
