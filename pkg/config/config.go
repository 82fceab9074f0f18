package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	GoogleAPIKey      string
	AnthropicAPIKey   string
	HuggingFaceAPIKey string
	StabilityAPIKey   string
	MailFrom          MailFromConfig
	Catalog           *CatalogConfig
	ConfigDir         string
}

// FileConfig represents the structure of ~/.curam/config.yaml
type FileConfig struct {
	APIKeys APIKeysConfig  `yaml:"api_keys"`
	Mail    MailFromConfig `yaml:"mail"`
}

// APIKeysConfig holds API key configuration from file.
type APIKeysConfig struct {
	Google      string `yaml:"google"`
	Anthropic   string `yaml:"anthropic"`
	HuggingFace string `yaml:"huggingface"`
	Stability   string `yaml:"stability"`
}

// MailFromConfig holds the sender identity for outbound email.
type MailFromConfig struct {
	Address string `yaml:"address"`
	Name    string `yaml:"name"`
}

// Load reads configuration from config files and environment variables.
// Environment variables take precedence over file configuration.
func Load() (*Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	fileConfig := loadFileConfig(filepath.Join(configDir, "config.yaml"))

	cfg := &Config{
		GoogleAPIKey:      getEnvOrDefault("GOOGLE_API_KEY", fileConfig.APIKeys.Google),
		AnthropicAPIKey:   getEnvOrDefault("ANTHROPIC_API_KEY", fileConfig.APIKeys.Anthropic),
		HuggingFaceAPIKey: getEnvOrDefault("HF_API_KEY", fileConfig.APIKeys.HuggingFace),
		StabilityAPIKey:   getEnvOrDefault("STABILITY_API_KEY", fileConfig.APIKeys.Stability),
		MailFrom: MailFromConfig{
			Address: getEnvOrDefault("MAIL_FROM_ADDRESS", fileConfig.Mail.Address),
			Name:    getEnvOrDefault("MAIL_FROM_NAME", fileConfig.Mail.Name),
		},
		ConfigDir: configDir,
	}

	catalogPath := filepath.Join(configDir, "catalog.yaml")
	if _, err := os.Stat(catalogPath); err == nil {
		catalog, err := LoadCatalogConfig(catalogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog config: %w", err)
		}
		cfg.Catalog = catalog
	} else {
		cfg.Catalog = DefaultCatalogConfig()
	}

	return cfg, nil
}

// LoadWithCatalogFile loads config with a specific catalog file.
func LoadWithCatalogFile(catalogPath string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	catalog, err := LoadCatalogConfig(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog config from %s: %w", catalogPath, err)
	}
	cfg.Catalog = catalog

	return cfg, nil
}

// HasAdapter returns true if the API key for the given adapter is configured.
func (c *Config) HasAdapter(name string) bool {
	switch name {
	case "google":
		return c.GoogleAPIKey != ""
	case "anthropic":
		return c.AnthropicAPIKey != ""
	case "huggingface":
		return c.HuggingFaceAPIKey != ""
	default:
		return false
	}
}

// loadFileConfig reads the config file, returning empty config if not found.
func loadFileConfig(path string) *FileConfig {
	cfg := &FileConfig{}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg // Return empty config if file doesn't exist
	}

	_ = yaml.Unmarshal(data, cfg) // Ignore parse errors, use defaults
	return cfg
}

// getEnvOrDefault returns the environment variable value if set,
// otherwise returns the default value.
func getEnvOrDefault(envVar, defaultValue string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultValue
}

func getConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".curam")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return configDir, nil
}
