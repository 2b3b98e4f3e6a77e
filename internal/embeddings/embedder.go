package embeddings

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// ErrService is returned when the embedding model cannot be reached or
// returns output that is not a usable vector.
var ErrService = errors.New("embedding service error")

// Embedder defines the interface for generating text embeddings.
type Embedder interface {
	// Embed generates embeddings for one or more texts, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the name/identifier of the embedding model.
	Name() string
}

// EmbedOne embeds a single text.
func EmbedOne(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vecs, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("%w: %s returned %d embeddings for 1 text", ErrService, e.Name(), len(vecs))
	}
	return vecs[0], nil
}

// Validate checks that vecs holds want non-zero vectors of dims finite
// values each.
// dims <= 0 only requires all vectors to share one length.
func Validate(vecs [][]float32, want, dims int) error {
	if len(vecs) != want {
		return fmt.Errorf("%w: got %d embeddings, expected %d", ErrService, len(vecs), want)
	}
	for i, v := range vecs {
		if len(v) == 0 {
			return fmt.Errorf("%w: embedding %d is empty", ErrService, i)
		}
		if dims <= 0 {
			dims = len(v)
		}
		if len(v) != dims {
			return fmt.Errorf("%w: embedding %d has %d dimensions, expected %d", ErrService, i, len(v), dims)
		}
		zero := true
		for _, x := range v {
			if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
				return fmt.Errorf("%w: embedding %d contains non-finite values", ErrService, i)
			}
			if x != 0 {
				zero = false
			}
		}
		// A zero vector has no direction, so cosine similarity is undefined.
		if zero {
			return fmt.Errorf("%w: embedding %d is all zeros", ErrService, i)
		}
	}
	return nil
}
