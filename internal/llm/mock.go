package llm

import (
	"context"
	"sync"
)

// MockClient implements Client for tests. Unset funcs return an empty object.
type MockClient struct {
	GenerateContentFunc func(ctx context.Context, prompt string, tier ModelTier) (string, error)
	GenerateJSONFunc    func(ctx context.Context, prompt string, tier ModelTier) (string, error)

	mu      sync.Mutex
	prompts []string
}

// NewMockClient returns a MockClient that always answers with response.
func NewMockClient(response string) *MockClient {
	return &MockClient{
		GenerateJSONFunc: func(context.Context, string, ModelTier) (string, error) {
			return response, nil
		},
	}
}

// GenerateContent records the prompt and delegates to GenerateContentFunc.
func (m *MockClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	m.record(prompt)
	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, prompt, tier)
	}
	return "{}", nil
}

// GenerateJSON records the prompt and delegates to GenerateJSONFunc.
func (m *MockClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	m.record(prompt)
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, tier)
	}
	return "{}", nil
}

// GetModel returns a fixed model name.
func (m *MockClient) GetModel(ModelTier) string {
	return "mock-model"
}

// Close does nothing.
func (m *MockClient) Close() error {
	return nil
}

// Calls returns how many generate calls were made.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// LastPrompt returns the most recent prompt, or "".
func (m *MockClient) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

func (m *MockClient) record(prompt string) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
}
