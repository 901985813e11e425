package provider

import (
	"context"
	"strings"
	"sync"
)

// MockModel is a deterministic Model implementation for testing.
// Responses are selected by prompt content, so one mock can drive a whole
// multi-step run with step-appropriate canned output.
type MockModel struct {
	// Response is the fixed text returned when no rule matches.
	Response string

	// Rules maps a prompt substring to the response returned when the last
	// user turn contains it. Longest matching substring wins.
	Rules map[string]string

	// Error, if set, is returned by every call instead of a response.
	Error error

	mu      sync.Mutex
	prompts []string
}

// NewMockModel creates a mock returning the given fixed response.
func NewMockModel(response string) *MockModel {
	return &MockModel{Response: response}
}

// NewMockModelWithError creates a mock that always fails.
func NewMockModelWithError(err error) *MockModel {
	return &MockModel{Error: err}
}

// Prompts returns a copy of every prompt the mock has received, in order.
func (m *MockModel) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// LastPrompt returns the most recent prompt, or "" if none were received.
func (m *MockModel) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

func (m *MockModel) respond(turns []Turn) (string, error) {
	prompt := ""
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == RoleUser {
			prompt = turns[i].Content
			break
		}
	}

	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.Error != nil {
		return "", m.Error
	}

	best := ""
	for substr := range m.Rules {
		if strings.Contains(prompt, substr) && len(substr) > len(best) {
			best = substr
		}
	}
	if best != "" {
		return m.Rules[best], nil
	}
	return m.Response, nil
}

// Complete returns the canned response for the last user turn.
func (m *MockModel) Complete(ctx context.Context, turns []Turn) (string, error) {
	return m.respond(turns)
}

// Stream delivers the canned response split into word-sized fragments.
func (m *MockModel) Stream(ctx context.Context, turns []Turn) (<-chan Chunk, error) {
	text, err := m.respond(turns)

	ch := make(chan Chunk)
	go func() {
		defer close(ch)
		if err != nil {
			ch <- Chunk{Err: err}
			return
		}
		for _, word := range strings.SplitAfter(text, " ") {
			select {
			case ch <- Chunk{Text: word}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}
