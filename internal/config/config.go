package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/docqa/internal/chunker"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = ".docqa.yml"

// EnvPrefix prefixes environment overrides. A double underscore separates
// nested keys: DOCQA_STORE__BACKEND sets store.backend.
const EnvPrefix = "DOCQA_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (DOCQA_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: DOCQA_TOP_K -> top_k, DOCQA_LLM__RETRIES -> llm.retries.
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
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

// validProviders is the set of recognized provider values.
var validProviders = map[ProviderType]bool{
	ProviderOllama: true,
	ProviderOpenAI: true,
}

// validBackends is the set of recognized store backends.
var validBackends = map[BackendType]bool{
	BackendChromem: true,
	BackendQdrant:  true,
}

// Validate checks that the configuration contains valid values. Every
// failure wraps chunker.ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{chunker.ErrInvalidConfig}, args...)...))
	}

	if c.Provider == "" {
		fail("provider is required")
	} else if !validProviders[c.Provider] {
		fail("invalid provider %q: must be one of ollama, openai", c.Provider)
	}

	if c.Model == "" {
		fail("model is required")
	}

	if c.EmbeddingProvider != "" && !validProviders[c.EmbeddingProvider] {
		fail("invalid embedding_provider %q", c.EmbeddingProvider)
	}

	if c.EmbeddingDimensions < 0 {
		fail("embedding_dimensions must be non-negative")
	}

	if err := c.ChunkOptions("").Validate(); err != nil {
		errs = append(errs, err)
	}

	if c.TopK <= 0 {
		fail("top_k must be positive, got %d", c.TopK)
	}

	if c.BatchSize < 0 {
		fail("batch_size must be non-negative")
	}

	if c.MaxConcurrency < 0 {
		fail("max_concurrency must be non-negative")
	}

	if !validBackends[c.Store.Backend] {
		fail("invalid store.backend %q: must be one of chromem, qdrant", c.Store.Backend)
	}

	if c.Store.Backend == BackendChromem && c.Store.Path == "" {
		fail("store.path is required for the chromem backend")
	}

	if c.LLM.Timeout < 0 {
		fail("llm.timeout must be non-negative")
	}

	if c.LLM.Retries < 0 {
		fail("llm.retries must be non-negative")
	}

	return errors.Join(errs...)
}

// ChunkOptions returns the chunker options for a document from source.
func (c *Config) ChunkOptions(source string) chunker.Options {
	return chunker.Options{Size: c.ChunkSize, Overlap: c.ChunkOverlap, Source: source}
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
