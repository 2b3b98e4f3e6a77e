package vectordb

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ziadkadry99/docqa/internal/chunker"
)

var (
	// ErrStorageUnavailable is returned when the persistence layer cannot be
	// opened or reached.
	ErrStorageUnavailable = errors.New("vector storage unavailable")

	// ErrDimensionMismatch is returned when a vector's length differs from
	// the vectors already stored.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrInvalidTopK is returned for a non-positive result limit.
	ErrInvalidTopK = fmt.Errorf("%w: top_k must be positive", chunker.ErrInvalidConfig)
)

// VectorStore defines the interface for storing records and searching them
// by embedding similarity.
type VectorStore interface {
	// Add persists records and returns their IDs in input order.
	Add(ctx context.Context, records []Record) ([]string, error)

	// Query returns up to topK records ranked by cosine similarity to vector,
	// highest first. Equal similarities keep insertion order.
	Query(ctx context.Context, vector []float32, topK int) ([]SearchResult, error)

	// DeleteBySource removes all records that came from the given document.
	DeleteBySource(ctx context.Context, source string) error

	// Reset removes every record and forgets the stored dimension.
	Reset(ctx context.Context) error

	// Count returns the total number of records in the store.
	Count() int

	// Dimensions returns the dimension of stored vectors, 0 if unknown.
	Dimensions() int

	Close() error
}

// checkDimensions verifies that every vector has the same length and that it
// matches the stored dimension when one is known. It returns that length.
func checkDimensions(stored int, records []Record) (int, error) {
	dims := stored
	for i, r := range records {
		if len(r.Embedding) == 0 {
			return 0, fmt.Errorf("%w: record %d has no embedding", ErrDimensionMismatch, i)
		}
		if dims == 0 {
			dims = len(r.Embedding)
		}
		if len(r.Embedding) != dims {
			return 0, fmt.Errorf("%w: record %d has %d dimensions, store has %d", ErrDimensionMismatch, i, len(r.Embedding), dims)
		}
	}
	return dims, nil
}

// rank orders results by similarity, then by insertion, and keeps at most topK.
func rank(results []SearchResult, topK int) []SearchResult {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].Record.Metadata.seq < results[j].Record.Metadata.seq
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}
