// Package provider maps model identifiers to backend connection configuration
// and builds uniform model handles over them. It defines a provider-agnostic
// Model interface with a concrete implementation speaking the OpenAI chat
// completion protocol (which also covers Gemini and Mistral through their
// compatible endpoints) and a deterministic mock for testing.
package provider

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrProviderNotFound is returned by Registry.Resolve for unknown ids.
	ErrProviderNotFound = errors.New("provider not found")

	// ErrModelFailed wraps backend call failures.
	ErrModelFailed = errors.New("model request failed")
)

// ConfigurationError reports missing or invalid provider setup. It is not
// retryable; the configuration must be fixed.
type ConfigurationError struct {
	Provider string
	Reason   string
	Err      error
}

func (e *ConfigurationError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("provider configuration: %s", e.Reason)
	}
	return fmt.Sprintf("provider %q configuration: %s", e.Provider, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Turn is one role-tagged message in a model conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Roles accepted in Turn.Role.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Chunk is one fragment of a streamed model response. A non-nil Err is always
// the last chunk delivered before the channel closes.
type Chunk struct {
	Text string
	Err  error
}

// Model is the uniform handle over a configured backend.
// Implementations must be stateless and safe for concurrent use.
type Model interface {
	// Complete sends the turns and returns the full generated text.
	Complete(ctx context.Context, turns []Turn) (string, error)

	// Stream sends the turns and returns a finite, forward-only sequence of
	// text fragments. The channel is closed after the last fragment; fragments
	// arrive in generation order.
	Stream(ctx context.Context, turns []Turn) (<-chan Chunk, error)
}
