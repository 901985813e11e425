package provider

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAI-compatible chat completion endpoints for the non-OpenAI backends.
const (
	googleEndpoint  = "https://generativelanguage.googleapis.com/v1beta/openai/"
	mistralEndpoint = "https://api.mistral.ai/v1"
)

// headerVarRe matches {NAME} placeholders inside configured header values.
var headerVarRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Build resolves a model identifier and constructs its model handle.
// It fails fast with a ConfigurationError when the id is unknown or when a
// required credential is absent and no custom header supplies auth instead.
func (r *Registry) Build(id string) (Model, error) {
	cfg, err := r.Resolve(id)
	if err != nil {
		return nil, &ConfigurationError{Provider: id, Reason: "no configuration found for model", Err: err}
	}

	apiKey := r.secret(cfg.CredentialRef)
	if apiKey == "" && cfg.CredentialRef != "" && len(cfg.CustomHeaders) == 0 {
		return nil, &ConfigurationError{
			Provider: id,
			Reason:   fmt.Sprintf("missing credential: environment variable %s is not set", cfg.CredentialRef),
		}
	}

	opts := []option.RequestOption{
		option.WithRequestTimeout(time.Duration(cfg.TimeoutSeconds * float64(time.Second))),
	}

	switch cfg.Backend {
	case BackendGoogle:
		opts = append(opts, option.WithBaseURL(googleEndpoint))
	case BackendMistral:
		opts = append(opts, option.WithBaseURL(mistralEndpoint))
	case BackendOpenAICompatible:
		if cfg.Endpoint == "" {
			return nil, &ConfigurationError{Provider: id, Reason: "endpoint not configured for openai_compatible model"}
		}
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	case BackendOpenAI:
		if cfg.Endpoint != "" {
			opts = append(opts, option.WithBaseURL(cfg.Endpoint))
		}
	default:
		return nil, &ConfigurationError{Provider: id, Reason: fmt.Sprintf("unsupported backend %q", cfg.Backend)}
	}

	if len(cfg.CustomHeaders) > 0 {
		// Custom headers are assumed to fully express auth; the default
		// bearer token header is suppressed to avoid a conflicting
		// Authorization header.
		for name, value := range cfg.CustomHeaders {
			opts = append(opts, option.WithHeader(name, ExpandHeaderValue(value)))
		}
	} else {
		opts = append(opts, option.WithAPIKey(apiKey))
	}

	return &chatModel{
		client: openai.NewClient(opts...),
		cfg:    cfg,
	}, nil
}

// ExpandHeaderValue replaces every {NAME} token in a header value template
// with the environment variable NAME, or the empty string when unset.
func ExpandHeaderValue(value string) string {
	return headerVarRe.ReplaceAllStringFunc(value, func(m string) string {
		return os.Getenv(m[1 : len(m)-1])
	})
}

// chatModel implements Model over the OpenAI chat completion protocol.
type chatModel struct {
	client openai.Client
	cfg    Config
}

func (m *chatModel) params(turns []Turn) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns)+1)

	// Inject the provider's default system prompt when the caller supplies
	// no system turn of its own.
	hasSystem := false
	for _, t := range turns {
		if t.Role == RoleSystem {
			hasSystem = true
			break
		}
	}
	if m.cfg.SystemPrompt != "" && !hasSystem {
		messages = append(messages, openai.SystemMessage(m.cfg.SystemPrompt))
	}

	for _, t := range turns {
		switch t.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(t.Content))
		default:
			messages = append(messages, openai.UserMessage(t.Content))
		}
	}

	return openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(m.cfg.ModelName),
		Messages: messages,
	}
}

// Complete sends the turns and returns the full generated text.
func (m *chatModel) Complete(ctx context.Context, turns []Turn) (string, error) {
	completion, err := m.client.Chat.Completions.New(ctx, m.params(turns))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrModelFailed, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: no response generated", ErrModelFailed)
	}
	return completion.Choices[0].Message.Content, nil
}

// Stream sends the turns and relays content deltas as they arrive.
func (m *chatModel) Stream(ctx context.Context, turns []Turn) (<-chan Chunk, error) {
	stream := m.client.Chat.Completions.NewStreaming(ctx, m.params(turns))

	ch := make(chan Chunk)
	go func() {
		defer close(ch)
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			select {
			case ch <- Chunk{Text: delta}:
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil {
			select {
			case ch <- Chunk{Err: fmt.Errorf("%w: %w", ErrModelFailed, err)}:
			case <-ctx.Done():
			}
		}
	}()

	return ch, nil
}
