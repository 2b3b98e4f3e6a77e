package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryingProvider wraps a Provider and retries failed completions with
// exponential backoff. Client errors (4xx other than 429) are not retried.
type RetryingProvider struct {
	provider   Provider
	maxRetries int
	initial    time.Duration
	logger     *slog.Logger
}

// NewRetryingProvider wraps provider with up to maxRetries extra attempts.
func NewRetryingProvider(provider Provider, maxRetries int) *RetryingProvider {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &RetryingProvider{
		provider:   provider,
		maxRetries: maxRetries,
		initial:    500 * time.Millisecond,
		logger:     slog.Default().With("component", "llm"),
	}
}

func (r *RetryingProvider) Name() string {
	return r.provider.Name()
}

func (r *RetryingProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initial
	b.MaxElapsedTime = 0

	var resp *CompletionResponse
	attempt := 0
	operation := func() error {
		attempt++
		var err error
		resp, err = r.provider.Complete(ctx, req)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		if attempt <= r.maxRetries {
			r.logger.Warn("completion failed, retrying", "provider", r.provider.Name(), "attempt", attempt, "error", err)
		}
		return err
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.maxRetries)), ctx))
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}
