package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// CatalogConfig holds the model catalog and dispatch policy configuration.
type CatalogConfig struct {
	Models     []ModelEntry     `yaml:"models"`
	Classifier ClassifierConfig `yaml:"classifier,omitempty"`
	Dispatch   DispatchConfig   `yaml:"dispatch,omitempty"`
}

// ModelEntry describes one model in the selection catalog. Catalog order
// matters: the selector breaks score ties by position, so entries are a
// preference ranking, not an arbitrary list.
type ModelEntry struct {
	ID              string   `yaml:"id"`
	Name            string   `yaml:"name"`
	Provider        string   `yaml:"provider"`
	Characteristics []string `yaml:"characteristics"`
	CostTier        string   `yaml:"cost_tier"`
	SpeedTier       string   `yaml:"speed_tier"`
}

// ClassifierConfig selects the adapter/model used for remote task analysis.
type ClassifierConfig struct {
	Adapter string `yaml:"adapter,omitempty"`
	Model   string `yaml:"model,omitempty"`
}

// DispatchConfig defines retry and batching behavior for inference calls.
type DispatchConfig struct {
	MaxAttempts    int `yaml:"max_attempts,omitempty"`
	MaxConcurrent  int `yaml:"max_concurrent,omitempty"`
	BatchPauseMs   int `yaml:"batch_pause_ms,omitempty"`
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`
}

// LoadCatalogConfig reads catalog configuration from a YAML file.
func LoadCatalogConfig(path string) (*CatalogConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg CatalogConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyCatalogDefaults(&cfg)
	return &cfg, nil
}

// DefaultCatalogConfig returns the built-in model catalog.
func DefaultCatalogConfig() *CatalogConfig {
	cfg := &CatalogConfig{
		Models: []ModelEntry{
			{
				ID:              "gemini-2.0-flash",
				Name:            "Gemini 2.0 Flash",
				Provider:        "google",
				Characteristics: []string{"speed", "classification"},
				CostTier:        "very_low",
				SpeedTier:       "fast",
			},
			{
				ID:              "gemini-1.5-pro",
				Name:            "Gemini 1.5 Pro",
				Provider:        "google",
				Characteristics: []string{"reasoning", "analysis"},
				CostTier:        "medium",
				SpeedTier:       "medium",
			},
			{
				ID:              "claude-3-5-sonnet-latest",
				Name:            "Claude 3.5 Sonnet",
				Provider:        "anthropic",
				Characteristics: []string{"reasoning", "creative_writing", "analysis"},
				CostTier:        "medium",
				SpeedTier:       "medium",
			},
			{
				ID:              "claude-3-5-haiku-latest",
				Name:            "Claude 3.5 Haiku",
				Provider:        "anthropic",
				Characteristics: []string{"speed", "accuracy"},
				CostTier:        "low",
				SpeedTier:       "fast",
			},
			{
				ID:              "mistralai/Mistral-7B-Instruct-v0.3",
				Name:            "Mistral 7B Instruct",
				Provider:        "huggingface",
				Characteristics: []string{"speed", "creativity"},
				CostTier:        "very_low",
				SpeedTier:       "fast",
			},
		},
	}

	applyCatalogDefaults(cfg)
	return cfg
}

func applyCatalogDefaults(cfg *CatalogConfig) {
	if cfg == nil {
		return
	}
	if cfg.Classifier.Adapter == "" {
		cfg.Classifier.Adapter = "google"
	}
	if cfg.Classifier.Model == "" {
		cfg.Classifier.Model = "gemini-2.0-flash"
	}
	if cfg.Dispatch.MaxAttempts == 0 {
		cfg.Dispatch.MaxAttempts = 3
	}
	if cfg.Dispatch.MaxConcurrent == 0 {
		cfg.Dispatch.MaxConcurrent = 3
	}
	if cfg.Dispatch.BatchPauseMs == 0 {
		cfg.Dispatch.BatchPauseMs = 2500
	}
	if cfg.Dispatch.TimeoutSeconds == 0 {
		cfg.Dispatch.TimeoutSeconds = 60
	}
}
