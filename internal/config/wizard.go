package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and saves the
// resulting Config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to docqa! Let's configure your document store.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"ollama", "openai"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)
	cfg.EmbeddingProvider = cfg.Provider

	preset := GetPreset(cfg.Provider)
	cfg.Model = preset.Model
	cfg.EmbeddingModel = preset.EmbeddingModel
	cfg.EmbeddingDimensions = preset.EmbeddingDimensions

	// 2. Models.
	modelPrompt := promptui.Prompt{
		Label:   "Chat model",
		Default: cfg.Model,
	}
	if cfg.Model, err = modelPrompt.Run(); err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	if cfg.Provider == ProviderOllama {
		hostPrompt := promptui.Prompt{
			Label:   "Ollama host",
			Default: cfg.OllamaHost,
		}
		if cfg.OllamaHost, err = hostPrompt.Run(); err != nil {
			return nil, fmt.Errorf("ollama host: %w", err)
		}
	}

	// 3. Chunking.
	sizePrompt := promptui.Prompt{
		Label:    "Chunk size (characters)",
		Default:  strconv.Itoa(cfg.ChunkSize),
		Validate: positiveInt,
	}
	sizeStr, err := sizePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("chunk size: %w", err)
	}
	cfg.ChunkSize, _ = strconv.Atoi(sizeStr)

	overlapPrompt := promptui.Prompt{
		Label:   "Chunk overlap (characters)",
		Default: strconv.Itoa(cfg.ChunkOverlap),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 || n >= cfg.ChunkSize {
				return fmt.Errorf("overlap must be between 0 and %d", cfg.ChunkSize-1)
			}
			return nil
		},
	}
	overlapStr, err := overlapPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("chunk overlap: %w", err)
	}
	cfg.ChunkOverlap, _ = strconv.Atoi(overlapStr)

	// 4. Store backend.
	backendPrompt := promptui.Select{
		Label: "Select vector store",
		Items: []string{"chromem (local files)", "qdrant (server)"},
	}
	backendIdx, _, err := backendPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("store selection: %w", err)
	}
	if backendIdx == 1 {
		cfg.Store.Backend = BackendQdrant
		qdrantPrompt := promptui.Prompt{
			Label:   "Qdrant host",
			Default: cfg.Store.QdrantHost,
		}
		if cfg.Store.QdrantHost, err = qdrantPrompt.Run(); err != nil {
			return nil, fmt.Errorf("qdrant host: %w", err)
		}
	}

	// 5. Extra exclude patterns.
	excludePrompt := promptui.Prompt{
		Label:   "Extra exclude patterns (comma-separated, leave blank for defaults)",
		Default: "",
	}
	excludeStr, err := excludePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}
	if excludeStr != "" {
		cfg.Exclude = append(append([]string{}, DefaultExcludes...), splitAndTrim(excludeStr)...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Check for API key.
	if envVar := APIKeyEnvVar(cfg.Provider); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment before running docqa ask.\n", envVar)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("must be a positive number")
	}
	return nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
