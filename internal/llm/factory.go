package llm

import (
	"fmt"
	"os"
	"time"
)

// ProviderOptions configures NewProvider.
type ProviderOptions struct {
	// Host is the Ollama host, or the base URL of an OpenAI-compatible
	// server. Empty uses OLLAMA_HOST or the provider default.
	Host    string
	Timeout time.Duration
	Retries int
}

// NewProvider creates a new LLM provider based on the given provider type and model.
// Supported provider types: "ollama", "openai".
func NewProvider(providerType string, model string, opts ProviderOptions) (Provider, error) {
	var p Provider
	switch providerType {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" && opts.Host == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		p = NewOpenAIProvider(apiKey, model, opts.Host)

	case "ollama":
		host := opts.Host
		if host == "" {
			host = os.Getenv("OLLAMA_HOST")
		}
		if host == "" {
			host = DefaultOllamaHost
		}
		p = NewOllamaProvider(host, model, opts.Timeout)

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}

	if opts.Retries > 0 {
		p = NewRetryingProvider(p, opts.Retries)
	}
	return p, nil
}
