package llm

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockProvider is a mock implementation of the Provider interface for testing
// and graceful degradation scenarios.
type MockProvider struct {
	mu            sync.Mutex
	responses     []string // Pre-defined responses (rotates through them)
	responseIndex int      // Current index in responses
	mode          MockMode // Mode of operation (echo, fixed, fixtures)
	delay         int      // Simulated delay in milliseconds (for testing latency)
	errorAfter    int      // Number of successful calls before returning errors
	callCount     int      // Number of Chat() calls made
	requests      []ChatRequest
}

// MockMode defines the operation mode of the mock provider.
type MockMode int

const (
	// MockModeEcho returns the user's message (echo mode)
	MockModeEcho MockMode = iota

	// MockModeFixed returns a fixed response
	MockModeFixed

	// MockModeFixtures returns pre-defined responses in rotation
	MockModeFixtures

	// MockModeError always returns an error
	MockModeError
)

// MockConfig holds configuration for the mock provider.
type MockConfig struct {
	Mode       MockMode // Operation mode
	Responses  []string // Pre-defined responses (for Fixed/Fixtures modes)
	Delay      int      // Simulated delay in milliseconds
	ErrorAfter int      // Number of successful calls before returning errors
}

// NewMockProvider creates a new mock LLM provider.
func NewMockProvider(cfg MockConfig) *MockProvider {
	return &MockProvider{
		mode:       cfg.Mode,
		responses:  cfg.Responses,
		delay:      cfg.Delay,
		errorAfter: cfg.ErrorAfter,
	}
}

// NewEchoProvider creates a mock provider that echoes user messages.
func NewEchoProvider() *MockProvider {
	return NewMockProvider(MockConfig{
		Mode: MockModeEcho,
	})
}

// NewFixedProvider creates a mock provider that always returns a fixed response.
func NewFixedProvider(response string) *MockProvider {
	return NewMockProvider(MockConfig{
		Mode:      MockModeFixed,
		Responses: []string{response},
	})
}

// NewFixturesProvider creates a mock provider that cycles through pre-defined responses.
func NewFixturesProvider(responses []string) *MockProvider {
	return NewMockProvider(MockConfig{
		Mode:      MockModeFixtures,
		Responses: responses,
	})
}

// NewErrorProvider creates a mock provider that always returns errors.
func NewErrorProvider() *MockProvider {
	return NewMockProvider(MockConfig{
		Mode: MockModeError,
	})
}

// Chat implements the Provider interface.
func (m *MockProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	m.mu.Lock()
	m.callCount++
	m.requests = append(m.requests, req)
	count := m.callCount
	m.mu.Unlock()

	if m.delay > 0 {
		select {
		case <-time.After(time.Duration(m.delay) * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.errorAfter > 0 && count > m.errorAfter {
		return nil, fmt.Errorf("mock provider error after %d calls", m.errorAfter)
	}

	if m.mode == MockModeError {
		return nil, fmt.Errorf("mock provider error")
	}

	// Get the user message (last message if available)
	var userMessage string
	if len(req.Messages) > 0 {
		lastMsg := req.Messages[len(req.Messages)-1]
		if lastMsg.Role == RoleUser {
			userMessage = lastMsg.Content
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var response string
	switch m.mode {
	case MockModeEcho:
		if userMessage != "" {
			response = fmt.Sprintf("Echo: %s", userMessage)
		} else {
			response = "Echo: (no user message)"
		}
	case MockModeFixed:
		if len(m.responses) > 0 {
			response = m.responses[0]
		}
	case MockModeFixtures:
		if len(m.responses) > 0 {
			response = m.responses[m.responseIndex%len(m.responses)]
			m.responseIndex++
		}
	}

	return &ChatResponse{
		Content:      response,
		FinishReason: FinishReasonStop,
		Model:        "mock",
	}, nil
}

// GetDefaultModel returns the mock model identifier.
func (m *MockProvider) GetDefaultModel() string {
	return "mock"
}

// CallCount returns the number of Chat() calls made so far.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Requests returns a copy of all recorded chat requests.
func (m *MockProvider) Requests() []ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ChatRequest, len(m.requests))
	copy(out, m.requests)
	return out
}
