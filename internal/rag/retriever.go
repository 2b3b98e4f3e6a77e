package rag

import (
	"context"
	"errors"
	"fmt"

	"github.com/ziadkadry99/docqa/internal/embeddings"
	"github.com/ziadkadry99/docqa/internal/vectordb"
)

// Retriever embeds a query and looks up the nearest stored chunks.
type Retriever struct {
	embedder embeddings.Embedder
	store    vectordb.VectorStore
}

// NewRetriever creates a Retriever.
func NewRetriever(embedder embeddings.Embedder, store vectordb.VectorStore) *Retriever {
	return &Retriever{embedder: embedder, store: store}
}

// Retrieve returns up to topK chunks ordered by similarity to query. An empty
// store yields an empty result.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]vectordb.SearchResult, error) {
	if topK <= 0 {
		return nil, vectordb.ErrInvalidTopK
	}

	vec, err := embeddings.EmbedOne(ctx, r.embedder, query)
	if err != nil {
		return nil, serviceError(err)
	}
	if err := embeddings.Validate([][]float32{vec}, 1, r.embedder.Dimensions()); err != nil {
		return nil, err
	}

	return r.store.Query(ctx, vec, topK)
}

// serviceError tags embedder failures that do not already carry ErrService.
func serviceError(err error) error {
	if errors.Is(err, embeddings.ErrService) || errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %w", embeddings.ErrService, err)
}
