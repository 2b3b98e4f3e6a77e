package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docqa/internal/config"
	"github.com/ziadkadry99/docqa/internal/embeddings"
	"github.com/ziadkadry99/docqa/internal/llm"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the embedding model, language model and store are reachable",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func init() {
	doctorCmd.Flags().Duration("timeout", 30*time.Second, "time allowed for each check")
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")

	failed := 0
	check := func(name string, fn func(ctx context.Context) (string, error)) {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		detail, err := fn(ctx)
		if err != nil {
			failed++
			fmt.Printf("  ✗ %s: %v\n", name, err)
			return
		}
		fmt.Printf("  ✓ %s: %s\n", name, detail)
	}

	fmt.Println("Checking docqa setup...")

	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("  ✗ config: %v\n", err)
		return fmt.Errorf("setup check failed")
	}
	fmt.Printf("  ✓ config: %s\n", cfgFile)

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		fmt.Printf("  ✗ embedder: %v\n", err)
		return fmt.Errorf("setup check failed")
	}

	check("embedding model", func(ctx context.Context) (string, error) {
		vec, err := embeddings.EmbedOne(ctx, embedder, "This is a test sentence.")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s returned %d dimensions", embedder.Name(), len(vec)), nil
	})

	check("language model", func(ctx context.Context) (string, error) {
		provider, err := createLLMProviderFromConfig(cfg)
		if err != nil {
			return "", err
		}
		if cfg.Provider == config.ProviderOllama {
			host := cfg.LLMHost
			if host == "" {
				host = cfg.OllamaHost
			}
			if err := llm.NewOllamaProvider(host, cfg.Model, timeout).Ping(ctx); err != nil {
				return "", err
			}
			return fmt.Sprintf("ollama reachable at %s, model %s", host, cfg.Model), nil
		}
		return fmt.Sprintf("%s configured with model %s", provider.Name(), cfg.Model), nil
	})

	check("vector store", func(ctx context.Context) (string, error) {
		store, err := openStore(ctx, cfg, embedder)
		if err != nil {
			return "", err
		}
		defer store.Close()
		return fmt.Sprintf("%s backend holds %d chunks", cfg.Store.Backend, store.Count()), nil
	})

	fmt.Println()
	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	fmt.Println("All checks passed.")
	return nil
}
