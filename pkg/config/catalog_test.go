package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCatalogConfig(t *testing.T) {
	cfg := DefaultCatalogConfig()

	if len(cfg.Models) != 5 {
		t.Fatalf("models = %d, want 5", len(cfg.Models))
	}

	// catalog order is the selector's tie-break, so it is part of the contract
	expectedOrder := []string{
		"gemini-2.0-flash",
		"gemini-1.5-pro",
		"claude-3-5-sonnet-latest",
		"claude-3-5-haiku-latest",
		"mistralai/Mistral-7B-Instruct-v0.3",
	}
	for i, id := range expectedOrder {
		if cfg.Models[i].ID != id {
			t.Errorf("models[%d] = %q, want %q", i, cfg.Models[i].ID, id)
		}
	}

	if cfg.Classifier.Adapter != "google" || cfg.Classifier.Model != "gemini-2.0-flash" {
		t.Errorf("classifier = %s/%s, want google/gemini-2.0-flash",
			cfg.Classifier.Adapter, cfg.Classifier.Model)
	}

	if cfg.Dispatch.MaxAttempts != 3 {
		t.Errorf("max attempts = %d, want 3", cfg.Dispatch.MaxAttempts)
	}
	if cfg.Dispatch.MaxConcurrent != 3 {
		t.Errorf("max concurrent = %d, want 3", cfg.Dispatch.MaxConcurrent)
	}
	if cfg.Dispatch.BatchPauseMs != 2500 {
		t.Errorf("batch pause = %d, want 2500", cfg.Dispatch.BatchPauseMs)
	}
	if cfg.Dispatch.TimeoutSeconds != 60 {
		t.Errorf("timeout = %d, want 60", cfg.Dispatch.TimeoutSeconds)
	}
}

func TestLoadCatalogConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")

	yaml := `models:
  - id: gemini-2.0-flash
    name: Gemini 2.0 Flash
    provider: google
    characteristics: [speed]
    cost_tier: very_low
    speed_tier: fast
classifier:
  adapter: google
  model: gemini-2.0-flash
dispatch:
  max_attempts: 5
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadCatalogConfig(path)
	if err != nil {
		t.Fatalf("LoadCatalogConfig() error = %v", err)
	}

	if len(cfg.Models) != 1 {
		t.Fatalf("models = %d, want 1", len(cfg.Models))
	}
	if cfg.Dispatch.MaxAttempts != 5 {
		t.Errorf("max attempts = %d, want 5", cfg.Dispatch.MaxAttempts)
	}
	// omitted dispatch fields take defaults
	if cfg.Dispatch.MaxConcurrent != 3 {
		t.Errorf("max concurrent = %d, want default 3", cfg.Dispatch.MaxConcurrent)
	}
	if cfg.Dispatch.BatchPauseMs != 2500 {
		t.Errorf("batch pause = %d, want default 2500", cfg.Dispatch.BatchPauseMs)
	}
}

func TestLoadCatalogConfig_MissingFile(t *testing.T) {
	if _, err := LoadCatalogConfig("/nonexistent/catalog.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidateCatalog_Defaults(t *testing.T) {
	aliases := DefaultAliases()
	errs := aliases.ValidateCatalog(DefaultCatalogConfig())
	if len(errs) != 0 {
		t.Errorf("default catalog should validate, got %v", errs)
	}
}

func TestValidateCatalog_BadEntry(t *testing.T) {
	aliases := DefaultAliases()
	cfg := &CatalogConfig{
		Models: []ModelEntry{
			{ID: "gpt-4", Provider: "openai"},
		},
	}

	errs := aliases.ValidateCatalog(cfg)
	if len(errs) != 1 {
		t.Fatalf("errors = %d, want 1: %v", len(errs), errs)
	}
}

func TestAliases_Resolve(t *testing.T) {
	aliases := DefaultAliases()

	tests := []struct {
		input    string
		expected string
	}{
		{"flash", "gemini-2.0-flash"},
		{"sonnet", "claude-3-5-sonnet-latest"},
		{"mistral", "mistralai/Mistral-7B-Instruct-v0.3"},
		{"summarizer", "facebook/bart-large-cnn"},
		{"gemini-2.0-flash", "gemini-2.0-flash"},
		{"not-an-alias", "not-an-alias"},
	}

	for _, tt := range tests {
		if got := aliases.Resolve(tt.input); got != tt.expected {
			t.Errorf("Resolve(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestAliases_IsAlias(t *testing.T) {
	aliases := DefaultAliases()

	if !aliases.IsAlias("flash") || !aliases.IsAlias("summarizer") {
		t.Error("expected known aliases to report true")
	}
	if aliases.IsAlias("gemini-2.0-flash") {
		t.Error("canonical model name is not an alias")
	}
	if aliases.IsAlias("") {
		t.Error("empty string is not an alias")
	}
}

func TestAliases_ProviderListing(t *testing.T) {
	aliases := DefaultAliases()

	providers := aliases.ListProviders()
	expected := []string{"anthropic", "google", "huggingface"}
	if len(providers) != len(expected) {
		t.Fatalf("providers = %v, want %v", providers, expected)
	}
	for i, p := range expected {
		if providers[i] != p {
			t.Errorf("providers[%d] = %q, want %q (sorted)", i, providers[i], p)
		}
	}

	googleModels := aliases.GetProviderModels("google")
	if len(googleModels) != 2 || googleModels[0] != "gemini-2.0-flash" {
		t.Errorf("google models = %v", googleModels)
	}
	if models := aliases.GetProviderModels("openai"); models != nil {
		t.Errorf("unknown provider models = %v, want nil", models)
	}
}

func TestAliases_GetProviderForModel(t *testing.T) {
	aliases := DefaultAliases()

	if got := aliases.GetProviderForModel("claude-3-5-haiku-latest"); got != "anthropic" {
		t.Errorf("provider = %q, want anthropic", got)
	}
	if got := aliases.GetProviderForModel("unknown-model"); got != "" {
		t.Errorf("provider = %q, want empty", got)
	}
}
