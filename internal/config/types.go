package config

import "time"

// ProviderType identifies an LLM provider for the AI capability.
type ProviderType string

const (
	ProviderNone   ProviderType = "none"
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// Config is the top-level gallery configuration, corresponding to .gallery.yml.
type Config struct {
	DataDir string        `yaml:"data_dir" koanf:"data_dir"`
	Server  ServerConfig  `yaml:"server" koanf:"server"`
	Auth    AuthConfig    `yaml:"auth" koanf:"auth"`
	Files   FilesConfig   `yaml:"files" koanf:"files"`
	AI      AIConfig      `yaml:"ai" koanf:"ai"`
	Hosting HostingConfig `yaml:"hosting" koanf:"hosting"`
	Log     LogConfig     `yaml:"log" koanf:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int           `yaml:"port" koanf:"port"`
	PublicURL      string        `yaml:"public_url" koanf:"public_url"`
	AllowAll       bool          `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	RequestTimeout time.Duration `yaml:"request_timeout" koanf:"request_timeout"`
}

// AuthConfig controls session handling.
type AuthConfig struct {
	GuestSignIn bool          `yaml:"guest_sign_in" koanf:"guest_sign_in"`
	SessionTTL  time.Duration `yaml:"session_ttl" koanf:"session_ttl"`
	CookieName  string        `yaml:"cookie_name" koanf:"cookie_name"`
}

// FilesConfig controls the per-user file store.
type FilesConfig struct {
	Hidden   []string `yaml:"hidden" koanf:"hidden"`
	MaxBytes int64    `yaml:"max_bytes" koanf:"max_bytes"`
}

// AIConfig selects the chat model backing the AI examples.
type AIConfig struct {
	Provider     ProviderType `yaml:"provider" koanf:"provider"`
	Model        string       `yaml:"model" koanf:"model"`
	BaseURL      string       `yaml:"base_url" koanf:"base_url"`
	SystemPrompt string       `yaml:"system_prompt" koanf:"system_prompt"`
	RateLimitRPM int          `yaml:"rate_limit_rpm" koanf:"rate_limit_rpm"`
}

// HostingConfig controls how hosted site URLs are formed.
type HostingConfig struct {
	Domain string `yaml:"domain" koanf:"domain"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"`
}
