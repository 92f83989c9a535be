package config

import (
	"fmt"
	"time"
)

// DefaultHidden are glob patterns hidden from directory listings by default.
var DefaultHidden = []string{
	".*",
	"**/.*",
}

// defaultModels maps each provider to the model used when none is configured.
var defaultModels = map[ProviderType]string{
	ProviderOpenAI: "gpt-4o-mini",
	ProviderOllama: "llama3",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir: ".gallery",
		Server: ServerConfig{
			Port:           8080,
			AllowAll:       true,
			RequestTimeout: 120 * time.Second,
		},
		Auth: AuthConfig{
			GuestSignIn: true,
			SessionTTL:  30 * 24 * time.Hour,
			CookieName:  "gallery_session",
		},
		Files: FilesConfig{
			Hidden:   DefaultHidden,
			MaxBytes: 10 << 20,
		},
		AI: AIConfig{
			Provider:     ProviderOpenAI,
			Model:        defaultModels[ProviderOpenAI],
			RateLimitRPM: 60,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// DefaultModel returns the default chat model for a provider.
func DefaultModel(p ProviderType) string {
	return defaultModels[p]
}

// PublicURL returns the externally visible base URL of the gallery server.
func (c *Config) PublicURL() string {
	if c.Server.PublicURL != "" {
		return c.Server.PublicURL
	}
	return fmt.Sprintf("http://localhost:%d", c.Server.Port)
}
