package vectordb

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Record is a chunk of text with its embedding, as stored in the index.
type Record struct {
	ID        string
	Content   string
	Embedding []float32
	Metadata  RecordMetadata
}

// RecordMetadata holds structured information about a record.
type RecordMetadata struct {
	Source       string
	ChunkIndex   int
	Start        int
	End          int
	DocumentHash string
	IngestedAt   time.Time

	// seq is the insertion rank, assigned by the store.
	seq int64
}

// SearchResult pairs a record with its cosine similarity to the query.
type SearchResult struct {
	Record     Record
	Similarity float32
}

// ContentID derives a stable record ID from the source and chunk text, so
// re-adding the same chunk of the same document maps onto the same record.
func ContentID(source, content string) string {
	h := sha256.New()
	h.Write([]byte(source))
	h.Write([]byte{0})
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}
