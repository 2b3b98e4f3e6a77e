package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ziadkadry99/docqa/internal/llm"
)

// GeneratorOptions tunes answer generation.
type GeneratorOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
	// Timeout bounds one Generate call, retries included. 0 disables it.
	Timeout time.Duration
}

// Generator turns a question and retrieved context into an answer.
type Generator struct {
	provider llm.Provider
	opts     GeneratorOptions
	logger   *slog.Logger
}

// NewGenerator creates a Generator backed by provider.
func NewGenerator(provider llm.Provider, opts GeneratorOptions) *Generator {
	return &Generator{
		provider: provider,
		opts:     opts,
		logger:   slog.Default().With("component", "generator"),
	}
}

// Generate asks the model to answer question using only contexts, which are
// presented in the order given.
func (g *Generator) Generate(ctx context.Context, question string, contexts []string) (*Answer, error) {
	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}

	prompt := BuildPrompt(question, contexts)
	g.logger.Debug("generating answer", "provider", g.provider.Name(), "contexts", len(contexts), "prompt_chars", len(prompt))

	start := time.Now()
	resp, err := g.provider.Complete(ctx, llm.UserPrompt(g.opts.Model, prompt, g.opts.Temperature, g.opts.MaxTokens))
	if err != nil {
		if errors.Is(err, llm.ErrGeneration) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", llm.ErrGeneration, g.provider.Name(), err)
	}

	if resp.Truncated() {
		g.logger.Warn("answer truncated at the token limit", "max_tokens", g.opts.MaxTokens)
	}
	g.logger.Debug("answer generated", "model", resp.Model, "output_tokens", resp.OutputTokens, "elapsed", time.Since(start))
	return &Answer{
		Question: question,
		Text:     strings.TrimSpace(resp.Content),
		Model:    resp.Model,
	}, nil
}
