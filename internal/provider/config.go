package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
)

// Backend identifies which client shape to build for a provider.
type Backend string

const (
	BackendGoogle           Backend = "google"
	BackendOpenAI           Backend = "openai"
	BackendOpenAICompatible Backend = "openai_compatible"
	BackendMistral          Backend = "mistral"
)

// DefaultTimeoutSeconds applies when a provider entry carries no usable
// timeout value.
const DefaultTimeoutSeconds = 60

func (b Backend) valid() bool {
	switch b {
	case BackendGoogle, BackendOpenAI, BackendOpenAICompatible, BackendMistral:
		return true
	}
	return false
}

// Config is one registry entry: the connection configuration for a model id.
// Credentials are referenced by environment variable name and resolved at
// client construction time, never stored here.
type Config struct {
	ID             string
	Backend        Backend
	ModelName      string
	CredentialRef  string
	CustomHeaders  map[string]string
	Endpoint       string
	TimeoutSeconds float64
	SystemPrompt   string
}

// Registry is the immutable provider table, loaded once at startup and safe
// for unsynchronized concurrent reads.
type Registry struct {
	configs map[string]Config
	secrets map[string]string
}

// builtinConfigs mirrors the shipped provider table. Entries can be overridden
// or extended by an external JSON file at load time.
func builtinConfigs() map[string]Config {
	return map[string]Config{
		"gemini-flash": {
			ID:             "gemini-flash",
			Backend:        BackendGoogle,
			ModelName:      "gemini-1.5-flash",
			CredentialRef:  "GOOGLE_API_KEY",
			TimeoutSeconds: DefaultTimeoutSeconds,
			SystemPrompt:   "You are a helpful assistant powered by Google Gemini.",
		},
		"gpt-4": {
			ID:             "gpt-4",
			Backend:        BackendOpenAI,
			ModelName:      "gpt-4",
			CredentialRef:  "OPENAI_API_KEY",
			TimeoutSeconds: DefaultTimeoutSeconds,
			SystemPrompt:   "You are a helpful assistant powered by OpenAI GPT-4.",
		},
		"mistral-large": {
			ID:             "mistral-large",
			Backend:        BackendMistral,
			ModelName:      "mistral-large-latest",
			CredentialRef:  "MISTRAL_API_KEY",
			TimeoutSeconds: DefaultTimeoutSeconds,
			SystemPrompt:   "You are a helpful assistant powered by Mistral AI.",
		},
	}
}

// fileEntry is the JSON shape of one override-file provider entry.
// TimeoutSeconds is deliberately loose: misconfigured timeouts fall back to
// the default instead of failing the whole load.
type fileEntry struct {
	Backend        string            `json:"backend"`
	ModelName      string            `json:"backend_model_name"`
	CredentialRef  string            `json:"credential_ref"`
	CustomHeaders  map[string]string `json:"custom_headers"`
	Endpoint       string            `json:"endpoint"`
	TimeoutSeconds any               `json:"timeout_seconds"`
	SystemPrompt   string            `json:"default_system_prompt"`
}

// LoadRegistry builds the provider registry from the built-in table merged
// with the optional JSON override file at path (empty path skips the file).
// Override entries replace built-ins with the same id.
func LoadRegistry(path string) (*Registry, error) {
	configs := builtinConfigs()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("reading providers file %s: %v", path, err)}
		}
		// UseNumber keeps timeout values as raw tokens for coerceTimeout.
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		var entries map[string]fileEntry
		if err := dec.Decode(&entries); err != nil {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("parsing providers file %s: %v", path, err)}
		}
		for id, e := range entries {
			cfg := Config{
				ID:             id,
				Backend:        Backend(e.Backend),
				ModelName:      e.ModelName,
				CredentialRef:  e.CredentialRef,
				CustomHeaders:  e.CustomHeaders,
				Endpoint:       e.Endpoint,
				TimeoutSeconds: coerceTimeout(e.TimeoutSeconds),
				SystemPrompt:   e.SystemPrompt,
			}
			if !cfg.Backend.valid() {
				return nil, &ConfigurationError{Provider: id, Reason: fmt.Sprintf("unsupported backend %q", e.Backend)}
			}
			if cfg.Backend == BackendOpenAICompatible && cfg.Endpoint == "" {
				return nil, &ConfigurationError{Provider: id, Reason: "endpoint is required for openai_compatible backends"}
			}
			configs[id] = cfg
		}
	}

	// Snapshot the credential environment once so resolution is stable for
	// the life of the process, matching the immutable-registry contract.
	secrets := make(map[string]string)
	for _, cfg := range configs {
		if cfg.CredentialRef != "" {
			if v := os.Getenv(cfg.CredentialRef); v != "" {
				secrets[cfg.CredentialRef] = v
			}
		}
	}

	return &Registry{configs: configs, secrets: secrets}, nil
}

// coerceTimeout accepts numeric or string timeout values and falls back to
// the default on anything unusable.
func coerceTimeout(v any) float64 {
	switch t := v.(type) {
	case json.Number:
		if f, err := t.Float64(); err == nil && f > 0 {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(t, 64); err == nil && f > 0 {
			return f
		}
	}
	return DefaultTimeoutSeconds
}

// Resolve returns the configuration for a model identifier.
func (r *Registry) Resolve(id string) (Config, error) {
	cfg, ok := r.configs[id]
	if !ok {
		return Config{}, fmt.Errorf("%w: %s", ErrProviderNotFound, id)
	}
	return cfg, nil
}

// IDs returns all registered model identifiers, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.configs))
	for id := range r.configs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// secret looks up a credential by reference name: the in-process snapshot
// first, then the live environment.
func (r *Registry) secret(ref string) string {
	if v, ok := r.secrets[ref]; ok {
		return v
	}
	return os.Getenv(ref)
}
