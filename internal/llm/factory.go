package llm

import (
	"fmt"
	"os"
)

// Options selects and configures a provider.
type Options struct {
	Provider string
	Model    string
	// BaseURL overrides the API endpoint (OpenAI-compatible gateways, remote Ollama).
	BaseURL string
	// RateLimitRPM wraps the provider in a limiter when positive.
	RateLimitRPM int
}

// NewProvider creates a new LLM provider from opts.
// Supported provider types: "openai", "ollama". "none" and "" yield a nil
// provider and no error.
func NewProvider(opts Options) (Provider, error) {
	var p Provider
	switch opts.Provider {
	case "", "none":
		return nil, nil

	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		p = NewOpenAIProvider(apiKey, opts.BaseURL, opts.Model)

	case "ollama":
		host := opts.BaseURL
		if host == "" {
			host = os.Getenv("OLLAMA_HOST")
		}
		if host == "" {
			host = "http://localhost:11434"
		}
		p = NewOllamaProvider(host, opts.Model)

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", opts.Provider)
	}

	if opts.RateLimitRPM > 0 {
		p = NewRateLimitedProvider(p, opts.RateLimitRPM)
	}
	return p, nil
}
