package vectordb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
)

// DefaultCollection is the collection used when none is configured.
const DefaultCollection = "documents"

// ChromemOptions configures a ChromemStore.
type ChromemOptions struct {
	// Dir is the persistence directory. Empty keeps everything in memory.
	Dir        string
	Collection string
	// Dedup derives record IDs from source and content so identical chunks
	// are stored once. Without it every Add creates new records.
	Dedup bool
	// EmbeddingFunc is handed to chromem-go for records added without a
	// vector. Records produced by the pipeline always carry one.
	EmbeddingFunc chromem.EmbeddingFunc
}

// ChromemStore implements VectorStore using chromem-go.
type ChromemStore struct {
	mu         sync.RWMutex
	db         *chromem.DB
	collection *chromem.Collection
	opts       ChromemOptions
	manifest   manifest
}

// NewChromemStore opens (or creates) a chromem-go collection. With a
// directory set, every added record is written to disk immediately and is
// loaded back on the next open.
func NewChromemStore(opts ChromemOptions) (*ChromemStore, error) {
	if opts.Collection == "" {
		opts.Collection = DefaultCollection
	}

	s := &ChromemStore{opts: opts}

	if opts.Dir == "" {
		s.db = chromem.NewDB()
	} else {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: creating %s: %v", ErrStorageUnavailable, opts.Dir, err)
		}
		db, err := chromem.NewPersistentDB(filepath.Join(opts.Dir, "chromem"), true)
		if err != nil {
			return nil, fmt.Errorf("%w: opening chromem db in %s: %v", ErrStorageUnavailable, opts.Dir, err)
		}
		s.db = db

		m, err := readManifest(manifestPath(opts.Dir, opts.Collection))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		s.manifest = m
	}
	s.manifest.Collection = opts.Collection

	if err := s.openCollection(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ChromemStore) openCollection() error {
	col, err := s.db.GetOrCreateCollection(s.opts.Collection, map[string]string{
		"description": "Document chunks with embeddings",
	}, s.embeddingFunc())
	if err != nil {
		return fmt.Errorf("%w: create collection: %v", ErrStorageUnavailable, err)
	}
	s.collection = col
	return nil
}

func (s *ChromemStore) embeddingFunc() chromem.EmbeddingFunc {
	if s.opts.EmbeddingFunc != nil {
		return s.opts.EmbeddingFunc
	}
	return func(context.Context, string) ([]float32, error) {
		return nil, fmt.Errorf("record added without an embedding")
	}
}

func (s *ChromemStore) Add(ctx context.Context, records []Record) ([]string, error) {
	if len(records) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dims, err := checkDimensions(s.manifest.Dimensions, records)
	if err != nil {
		return nil, err
	}

	next := s.manifest
	next.Dimensions = dims

	ids := make([]string, len(records))
	seen := make(map[string]bool, len(records))
	var docs []chromem.Document
	for i, r := range records {
		id := r.ID
		if id == "" {
			if s.opts.Dedup {
				id = ContentID(r.Metadata.Source, r.Content)
			} else {
				id = uuid.NewString()
			}
		}
		ids[i] = id

		if s.opts.Dedup {
			if seen[id] {
				continue
			}
			seen[id] = true
			if _, err := s.collection.GetByID(ctx, id); err == nil {
				continue
			}
		}

		md := r.Metadata
		md.seq = next.NextSeq
		next.NextSeq++
		if md.IngestedAt.IsZero() {
			md.IngestedAt = time.Now()
		}

		docs = append(docs, chromem.Document{
			ID:        id,
			Content:   r.Content,
			Embedding: r.Embedding,
			Metadata:  metadataToMap(md),
		})
	}

	if len(docs) > 0 {
		if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
			return nil, fmt.Errorf("chromem add: %w", err)
		}
	}

	if err := s.saveManifest(next); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *ChromemStore) Query(ctx context.Context, vector []float32, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		return nil, ErrInvalidTopK
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	count := s.collection.Count()
	if count == 0 {
		return []SearchResult{}, nil
	}
	if s.manifest.Dimensions > 0 && len(vector) != s.manifest.Dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, store has %d", ErrDimensionMismatch, len(vector), s.manifest.Dimensions)
	}

	// Score every record so ties at the top_k boundary resolve by insertion
	// order rather than by chromem's heap order.
	results, err := s.collection.QueryEmbedding(ctx, vector, count, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	searchResults := make([]SearchResult, len(results))
	for i, r := range results {
		searchResults[i] = SearchResult{
			Record: Record{
				ID:        r.ID,
				Content:   r.Content,
				Embedding: r.Embedding,
				Metadata:  mapToMetadata(r.Metadata),
			},
			Similarity: r.Similarity,
		}
	}

	return rank(searchResults, topK), nil
}

func (s *ChromemStore) DeleteBySource(ctx context.Context, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collection.Count() == 0 {
		return nil
	}
	if err := s.collection.Delete(ctx, map[string]string{"source": source}, nil); err != nil {
		return fmt.Errorf("chromem delete %s: %w", source, err)
	}
	if s.collection.Count() == 0 {
		// An empty collection accepts any dimension again.
		next := s.manifest
		next.Dimensions = 0
		return s.saveManifest(next)
	}
	return nil
}

func (s *ChromemStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.DeleteCollection(s.opts.Collection); err != nil {
		return fmt.Errorf("chromem delete collection: %w", err)
	}
	if err := s.openCollection(); err != nil {
		return err
	}
	return s.saveManifest(manifest{Collection: s.opts.Collection})
}

func (s *ChromemStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collection.Count()
}

func (s *ChromemStore) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.manifest.Dimensions
}

// Close is a no-op: the persistent chromem DB writes through on every change.
func (s *ChromemStore) Close() error {
	return nil
}

func (s *ChromemStore) saveManifest(m manifest) error {
	if s.opts.Dir != "" {
		if err := m.write(manifestPath(s.opts.Dir, s.opts.Collection)); err != nil {
			return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
	}
	s.manifest = m
	return nil
}

// metadataToMap converts RecordMetadata to a flat map[string]string for chromem.
func metadataToMap(m RecordMetadata) map[string]string {
	return map[string]string{
		"source":        m.Source,
		"chunk_index":   strconv.Itoa(m.ChunkIndex),
		"start":         strconv.Itoa(m.Start),
		"end":           strconv.Itoa(m.End),
		"document_hash": m.DocumentHash,
		"ingested_at":   m.IngestedAt.Format(time.RFC3339),
		"seq":           strconv.FormatInt(m.seq, 10),
	}
}

// mapToMetadata converts a flat map[string]string back to RecordMetadata.
func mapToMetadata(m map[string]string) RecordMetadata {
	chunkIndex, _ := strconv.Atoi(m["chunk_index"])
	start, _ := strconv.Atoi(m["start"])
	end, _ := strconv.Atoi(m["end"])
	seq, _ := strconv.ParseInt(m["seq"], 10, 64)
	ingestedAt, _ := time.Parse(time.RFC3339, m["ingested_at"])

	return RecordMetadata{
		Source:       m["source"],
		ChunkIndex:   chunkIndex,
		Start:        start,
		End:          end,
		DocumentHash: m["document_hash"],
		IngestedAt:   ingestedAt,
		seq:          seq,
	}
}
