package config

import "time"

// Preset describes the models used by default with a provider.
type Preset struct {
	Model               string
	EmbeddingModel      string
	EmbeddingDimensions int
}

// presets maps each provider to its default model choices.
var presets = map[ProviderType]Preset{
	ProviderOllama: {Model: "llama3.2", EmbeddingModel: "all-minilm", EmbeddingDimensions: 384},
	ProviderOpenAI: {Model: "gpt-4o-mini", EmbeddingModel: "text-embedding-3-small", EmbeddingDimensions: 1536},
}

// DefaultExcludes are glob patterns skipped when ingesting directories.
var DefaultExcludes = []string{
	".git/**",
	"node_modules/**",
	"vendor/**",
	".docqa/**",
}

// DefaultStorePath is where the vector store and ledger live by default.
const DefaultStorePath = ".docqa/db"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	preset := presets[ProviderOllama]
	return &Config{
		Provider:            ProviderOllama,
		Model:               preset.Model,
		EmbeddingProvider:   ProviderOllama,
		EmbeddingModel:      preset.EmbeddingModel,
		EmbeddingDimensions: preset.EmbeddingDimensions,
		OllamaHost:          "http://localhost:11434",
		ChunkSize:           400,
		ChunkOverlap:        50,
		TopK:                3,
		BatchSize:           32,
		MaxConcurrency:      4,
		Dedup:               true,
		Store: StoreConfig{
			Backend:    BackendChromem,
			Path:       DefaultStorePath,
			Collection: "documents",
			QdrantHost: "localhost",
			QdrantPort: 6334,
		},
		LLM: LLMConfig{
			Timeout:     2 * time.Minute,
			Retries:     1,
			Temperature: 0.1,
		},
		Include: []string{"**"},
		Exclude: DefaultExcludes,
	}
}

// GetPreset returns the preset for the given provider.
// Returns the Ollama preset if the provider is not known.
func GetPreset(provider ProviderType) Preset {
	if p, ok := presets[provider]; ok {
		return p
	}
	return presets[ProviderOllama]
}
