package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// ModelAliases manages model alias resolution and validation.
type ModelAliases struct {
	Aliases   map[string]string   `yaml:"aliases"`
	Providers map[string][]string `yaml:"providers"`
}

// LoadAliases reads model aliases from a YAML file.
func LoadAliases(path string) (*ModelAliases, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var aliases ModelAliases
	if err := yaml.Unmarshal(data, &aliases); err != nil {
		return nil, err
	}

	if aliases.Aliases == nil {
		aliases.Aliases = make(map[string]string)
	}
	if aliases.Providers == nil {
		aliases.Providers = make(map[string][]string)
	}

	return &aliases, nil
}

// LoadAliasesWithFallback loads aliases from the user config dir, falling
// back to the built-in defaults if no file is found.
func LoadAliasesWithFallback() (*ModelAliases, error) {
	home, err := os.UserHomeDir()
	if err == nil {
		userPath := filepath.Join(home, ".curam", "models.yaml")
		if _, err := os.Stat(userPath); err == nil {
			return LoadAliases(userPath)
		}
	}

	return DefaultAliases(), nil
}

// Resolve returns the canonical model name for an alias.
// If the input is not an alias, it returns the input unchanged.
func (a *ModelAliases) Resolve(modelOrAlias string) string {
	if a == nil || a.Aliases == nil {
		return modelOrAlias
	}
	if canonical, ok := a.Aliases[modelOrAlias]; ok {
		return canonical
	}
	return modelOrAlias
}

// IsAlias returns true if the given string is a known alias.
func (a *ModelAliases) IsAlias(name string) bool {
	if a == nil || a.Aliases == nil {
		return false
	}
	_, ok := a.Aliases[name]
	return ok
}

// ValidateModel checks if a model exists in the provider's list.
// Returns nil if valid, or an error describing the problem.
func (a *ModelAliases) ValidateModel(provider, model string) error {
	if a == nil || a.Providers == nil {
		return nil // No validation possible without provider info
	}

	models, ok := a.Providers[provider]
	if !ok {
		return fmt.Errorf("unknown provider %q", provider)
	}

	for _, m := range models {
		if m == model {
			return nil
		}
	}

	return fmt.Errorf("model %q not in %s provider list", model, provider)
}

// ListAliases returns a copy of the aliases map.
func (a *ModelAliases) ListAliases() map[string]string {
	if a == nil || a.Aliases == nil {
		return make(map[string]string)
	}
	result := make(map[string]string, len(a.Aliases))
	for k, v := range a.Aliases {
		result[k] = v
	}
	return result
}

// ListProviders returns a sorted list of provider names.
func (a *ModelAliases) ListProviders() []string {
	if a == nil || a.Providers == nil {
		return nil
	}
	providers := make([]string, 0, len(a.Providers))
	for p := range a.Providers {
		providers = append(providers, p)
	}
	sort.Strings(providers)
	return providers
}

// GetProviderModels returns the models for a given provider.
func (a *ModelAliases) GetProviderModels(provider string) []string {
	if a == nil || a.Providers == nil {
		return nil
	}
	return a.Providers[provider]
}

// GetProviderForModel returns the provider name for a canonical model.
func (a *ModelAliases) GetProviderForModel(model string) string {
	if a == nil || a.Providers == nil {
		return ""
	}
	for provider, models := range a.Providers {
		for _, m := range models {
			if m == model {
				return provider
			}
		}
	}
	return ""
}

// ValidateCatalog checks that every catalog entry names a known
// provider/model pair. Returns a slice of validation errors.
func (a *ModelAliases) ValidateCatalog(cfg *CatalogConfig) []error {
	if a == nil || cfg == nil {
		return nil
	}

	var errs []error
	for _, entry := range cfg.Models {
		model := a.Resolve(entry.ID)
		if err := a.ValidateModel(entry.Provider, model); err != nil {
			errs = append(errs, fmt.Errorf("catalog entry %q: %w", entry.ID, err))
		}
	}

	if cfg.Classifier.Adapter != "" {
		model := a.Resolve(cfg.Classifier.Model)
		if err := a.ValidateModel(cfg.Classifier.Adapter, model); err != nil {
			errs = append(errs, fmt.Errorf("classifier: %w", err))
		}
	}

	return errs
}

// DefaultAliases returns the default model aliases configuration.
func DefaultAliases() *ModelAliases {
	return &ModelAliases{
		Aliases: map[string]string{
			// Google
			"flash": "gemini-2.0-flash",
			"pro":   "gemini-1.5-pro",
			// Anthropic
			"sonnet": "claude-3-5-sonnet-latest",
			"haiku":  "claude-3-5-haiku-latest",
			// Hugging Face
			"mistral":    "mistralai/Mistral-7B-Instruct-v0.3",
			"summarizer": "facebook/bart-large-cnn",
			"qa":         "deepset/roberta-base-squad2",
			"sentiment":  "distilbert/distilbert-base-uncased-finetuned-sst-2-english",
		},
		Providers: map[string][]string{
			"google":    {"gemini-2.0-flash", "gemini-1.5-pro"},
			"anthropic": {"claude-3-5-sonnet-latest", "claude-3-5-haiku-latest"},
			"huggingface": {
				"mistralai/Mistral-7B-Instruct-v0.3",
				"facebook/bart-large-cnn",
				"deepset/roberta-base-squad2",
				"distilbert/distilbert-base-uncased-finetuned-sst-2-english",
			},
		},
	}
}
