package config

import "time"

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderOllama ProviderType = "ollama"
	ProviderOpenAI ProviderType = "openai"
)

// BackendType identifies a vector store backend.
type BackendType string

const (
	BackendChromem BackendType = "chromem"
	BackendQdrant  BackendType = "qdrant"
)

// Config is the top-level docqa configuration, corresponding to .docqa.yml.
type Config struct {
	Provider            ProviderType `yaml:"provider" koanf:"provider"`
	Model               string       `yaml:"model" koanf:"model"`
	LLMHost             string       `yaml:"llm_host,omitempty" koanf:"llm_host"`
	EmbeddingProvider   ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel      string       `yaml:"embedding_model" koanf:"embedding_model"`
	EmbeddingDimensions int          `yaml:"embedding_dimensions" koanf:"embedding_dimensions"`
	OllamaHost          string       `yaml:"ollama_host" koanf:"ollama_host"`
	ChunkSize           int          `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap        int          `yaml:"chunk_overlap" koanf:"chunk_overlap"`
	TopK                int          `yaml:"top_k" koanf:"top_k"`
	BatchSize           int          `yaml:"batch_size" koanf:"batch_size"`
	MaxConcurrency      int          `yaml:"max_concurrency" koanf:"max_concurrency"`
	Dedup               bool         `yaml:"dedup" koanf:"dedup"`
	Store               StoreConfig  `yaml:"store" koanf:"store"`
	LLM                 LLMConfig    `yaml:"llm" koanf:"llm"`
	Include             []string     `yaml:"include" koanf:"include"`
	Exclude             []string     `yaml:"exclude" koanf:"exclude"`
}

// StoreConfig selects and locates the vector store.
type StoreConfig struct {
	Backend    BackendType `yaml:"backend" koanf:"backend"`
	Path       string      `yaml:"path" koanf:"path"`
	Collection string      `yaml:"collection" koanf:"collection"`
	QdrantHost string      `yaml:"qdrant_host,omitempty" koanf:"qdrant_host"`
	QdrantPort int         `yaml:"qdrant_port,omitempty" koanf:"qdrant_port"`
}

// LLMConfig holds answer generation settings.
type LLMConfig struct {
	Timeout     time.Duration `yaml:"timeout" koanf:"timeout"`
	Retries     int           `yaml:"retries" koanf:"retries"`
	Temperature float64       `yaml:"temperature" koanf:"temperature"`
	MaxTokens   int           `yaml:"max_tokens,omitempty" koanf:"max_tokens"`
}
