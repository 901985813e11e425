package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DefaultProvider != "gemini-flash" {
		t.Errorf("default provider = %q", cfg.DefaultProvider)
	}
	if cfg.Language != "English" {
		t.Errorf("language = %q", cfg.Language)
	}
	if cfg.SessionDB != "scenarist.db" {
		t.Errorf("session db = %q", cfg.SessionDB)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarist.yaml")
	content := []byte("default_provider: mistral-large\nlanguage: French\nproviders_file: providers.json\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DefaultProvider != "mistral-large" {
		t.Errorf("default provider = %q", cfg.DefaultProvider)
	}
	if cfg.Language != "French" {
		t.Errorf("language = %q", cfg.Language)
	}
	if cfg.ProvidersFile != "providers.json" {
		t.Errorf("providers file = %q", cfg.ProvidersFile)
	}
	// Unset keys keep their defaults.
	if cfg.SessionDB != "scenarist.db" {
		t.Errorf("session db = %q", cfg.SessionDB)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SCENARIST_LANGUAGE", "Spanish")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Language != "Spanish" {
		t.Errorf("language = %q, want env override", cfg.Language)
	}
}
