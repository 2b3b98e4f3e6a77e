package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ziadkadry99/docqa/internal/config"
	"github.com/ziadkadry99/docqa/internal/db"
	"github.com/ziadkadry99/docqa/internal/embeddings"
	"github.com/ziadkadry99/docqa/internal/ledger"
	"github.com/ziadkadry99/docqa/internal/llm"
	"github.com/ziadkadry99/docqa/internal/rag"
	"github.com/ziadkadry99/docqa/internal/vectordb"
)

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}
	model := cfg.EmbeddingModel
	if model == "" {
		model = config.GetPreset(provider).EmbeddingModel
	}

	switch provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" && cfg.LLMHost == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(model), cfg.LLMHost), nil
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(model, cfg.EmbeddingDimensions, cfg.OllamaHost), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", provider)
	}
}

// createLLMProviderFromConfig creates an LLM provider based on config settings.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	host := cfg.LLMHost
	if host == "" && cfg.Provider == config.ProviderOllama {
		host = cfg.OllamaHost
	}
	return llm.NewProvider(string(cfg.Provider), cfg.Model, llm.ProviderOptions{
		Host:    host,
		Timeout: cfg.LLM.Timeout,
		Retries: cfg.LLM.Retries,
	})
}

// openStore opens the configured vector store backend.
func openStore(ctx context.Context, cfg *config.Config, embedder embeddings.Embedder) (vectordb.VectorStore, error) {
	switch cfg.Store.Backend {
	case config.BackendQdrant:
		return vectordb.NewQdrantStore(ctx, vectordb.QdrantOptions{
			Host:       cfg.Store.QdrantHost,
			Port:       cfg.Store.QdrantPort,
			APIKey:     os.Getenv("QDRANT_API_KEY"),
			Collection: cfg.Store.Collection,
			Dedup:      cfg.Dedup,
			Dimensions: embedder.Dimensions(),
		})
	default:
		return vectordb.NewChromemStore(vectordb.ChromemOptions{
			Dir:           cfg.Store.Path,
			Collection:    cfg.Store.Collection,
			Dedup:         cfg.Dedup,
			EmbeddingFunc: embeddings.ToChromemFunc(embedder),
		})
	}
}

// ledgerPath places the ledger next to the local store.
func ledgerPath(cfg *config.Config) string {
	dir := cfg.Store.Path
	if dir == "" {
		dir = config.DefaultStorePath
	}
	return filepath.Join(dir, "ledger.db")
}

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `docqa init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// app bundles the components a command needs and closes them together.
type app struct {
	cfg      *config.Config
	embedder embeddings.Embedder
	store    vectordb.VectorStore
	database *db.DB
	pipeline *rag.Pipeline
}

// newApp wires config, embedder, store, ledger and, when withLLM is set,
// the language model into a pipeline.
func newApp(ctx context.Context, withLLM bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	var provider llm.Provider
	if withLLM {
		provider, err = createLLMProviderFromConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("creating LLM provider: %w", err)
		}
	}

	store, err := openStore(ctx, cfg, embedder)
	if err != nil {
		return nil, fmt.Errorf("opening vector store: %w", err)
	}

	path := ledgerPath(cfg)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		store.Close()
		return nil, fmt.Errorf("%w: %v", vectordb.ErrStorageUnavailable, err)
	}
	database, err := db.Open(path)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("%w: %v", vectordb.ErrStorageUnavailable, err)
	}

	pipeline, err := rag.NewPipeline(embedder, store, provider, ledger.NewStore(database), rag.Options{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		TopK:         cfg.TopK,
		BatchSize:    cfg.BatchSize,
		Concurrency:  cfg.MaxConcurrency,
		Include:      cfg.Include,
		Exclude:      cfg.Exclude,
		Generator: rag.GeneratorOptions{
			Model:       cfg.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			// llm.timeout bounds each attempt.
			Timeout: cfg.LLM.Timeout * time.Duration(cfg.LLM.Retries+1),
		},
	})
	if err != nil {
		store.Close()
		database.Close()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		embedder: embedder,
		store:    store,
		database: database,
		pipeline: pipeline,
	}, nil
}

func (a *app) Close() error {
	return errors.Join(a.store.Close(), a.database.Close())
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
