package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "GALLERY_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (GALLERY_*, with "__" separating nested
// keys, e.g. GALLERY_AI__PROVIDER).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if cfg.AI.Model == "" {
		cfg.AI.Model = DefaultModel(cfg.AI.Provider)
	}

	return cfg, nil
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validProviders = map[ProviderType]bool{
	ProviderNone:   true,
	ProviderOpenAI: true,
	ProviderOllama: true,
}

var validLogFormats = map[string]bool{
	"console": true,
	"json":    true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.RequestTimeout < 0 {
		return fmt.Errorf("server.request_timeout must be non-negative")
	}

	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("auth.session_ttl must be positive")
	}
	if c.Auth.CookieName == "" {
		return fmt.Errorf("auth.cookie_name is required")
	}

	if c.Files.MaxBytes <= 0 {
		return fmt.Errorf("files.max_bytes must be positive")
	}

	if !validProviders[c.AI.Provider] {
		return fmt.Errorf("invalid ai.provider %q: must be one of none, openai, ollama", c.AI.Provider)
	}
	if c.AI.Provider != ProviderNone && c.AI.Model == "" {
		return fmt.Errorf("ai.model is required")
	}
	if c.AI.RateLimitRPM < 0 {
		return fmt.Errorf("ai.rate_limit_rpm must be non-negative")
	}

	if strings.Contains(c.Hosting.Domain, "/") {
		return fmt.Errorf("hosting.domain %q must be a bare domain", c.Hosting.Domain)
	}

	if c.Log.Format != "" && !validLogFormats[c.Log.Format] {
		return fmt.Errorf("invalid log.format %q: must be console or json", c.Log.Format)
	}

	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}
