package llm

import (
	"context"
	"sync"
)

// MockResponse is a canned response for MockProvider.
type MockResponse struct {
	Text string
	Err  error
}

// MockProvider returns canned responses in FIFO order and records every
// request. It is safe for concurrent use.
type MockProvider struct {
	mu        sync.Mutex
	name      string
	responses []MockResponse
	Calls     []Request
}

func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{name: "mock", responses: responses}
}

// Named sets the name reported by Name and Response.Provider.
func (m *MockProvider) Named(name string) *MockProvider {
	m.name = name
	return m
}

// Generate returns the next canned response, or ErrProviderUnavailable once
// the queue is empty.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	if len(m.responses) == 0 {
		return nil, &ErrProviderUnavailable{}
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]
	if resp.Err != nil {
		return nil, resp.Err
	}
	return finish(req, &Response{
		Text:       resp.Text,
		Provider:   m.name,
		Model:      "mock",
		StopReason: "end",
	})
}

func (m *MockProvider) Name() string    { return m.name }
func (m *MockProvider) ModelID() string { return "mock" }

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
