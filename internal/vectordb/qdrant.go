package vectordb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// QdrantOptions configures a QdrantStore.
type QdrantOptions struct {
	Host       string
	Port       int
	UseTLS     bool
	APIKey     string
	Collection string
	Dedup      bool
	// Dimensions creates the collection eagerly. When 0 the collection is
	// created on the first Add, sized from its vectors.
	Dimensions int
}

// QdrantStore implements VectorStore against a Qdrant server over gRPC.
//
// Qdrant returns only the top_k points it ranks highest, so ties that
// straddle the top_k boundary are resolved by Qdrant rather than by
// insertion order.
type QdrantStore struct {
	mu     sync.Mutex
	client *qdrant.Client
	opts   QdrantOptions
	dims   int
	count  int
}

// NewQdrantStore connects to Qdrant and loads the collection's dimension.
func NewQdrantStore(ctx context.Context, opts QdrantOptions) (*QdrantStore, error) {
	if opts.Collection == "" {
		opts.Collection = DefaultCollection
	}
	if opts.Host == "" {
		opts.Host = "localhost"
	}
	if opts.Port == 0 {
		opts.Port = 6334
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   opts.Host,
		Port:   opts.Port,
		UseTLS: opts.UseTLS,
		APIKey: opts.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: qdrant client: %v", ErrStorageUnavailable, err)
	}

	s := &QdrantStore{client: client, opts: opts}
	if err := s.load(ctx); err != nil {
		client.Close()
		return nil, err
	}
	if s.dims == 0 && opts.Dimensions > 0 {
		if err := s.ensureCollection(ctx, opts.Dimensions); err != nil {
			client.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *QdrantStore) load(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.opts.Collection)
	if err != nil {
		return wrapQdrant("collection exists", err)
	}
	if !exists {
		return nil
	}

	info, err := s.client.GetCollectionInfo(ctx, s.opts.Collection)
	if err != nil {
		return wrapQdrant("collection info", err)
	}
	s.dims = int(info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize())

	n, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.opts.Collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return wrapQdrant("count", err)
	}
	s.count = int(n)
	return nil
}

func (s *QdrantStore) ensureCollection(ctx context.Context, dims int) error {
	if s.dims != 0 {
		return nil
	}
	err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.opts.Collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dims),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return wrapQdrant("create collection", err)
	}
	s.dims = dims
	return nil
}

func (s *QdrantStore) Add(ctx context.Context, records []Record) ([]string, error) {
	if len(records) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dims, err := checkDimensions(s.dims, records)
	if err != nil {
		return nil, err
	}
	if err := s.ensureCollection(ctx, dims); err != nil {
		return nil, err
	}

	ids := make([]string, len(records))
	seen := make(map[string]bool, len(records))
	base := time.Now().UnixNano()
	var points []*qdrant.PointStruct
	var pointIDs []*qdrant.PointId
	for i, r := range records {
		id := pointID(r, s.opts.Dedup)
		ids[i] = id
		if s.opts.Dedup && seen[id] {
			continue
		}
		seen[id] = true

		md := r.Metadata
		if md.IngestedAt.IsZero() {
			md.IngestedAt = time.Now()
		}
		md.seq = base + int64(i)
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(id),
			Vectors: qdrant.NewVectors(r.Embedding...),
			Payload: qdrant.NewValueMap(pointPayload(r.Content, md)),
		})
		pointIDs = append(pointIDs, qdrant.NewID(id))
	}

	if s.opts.Dedup {
		existing, err := s.client.Get(ctx, &qdrant.GetPoints{
			CollectionName: s.opts.Collection,
			Ids:            pointIDs,
		})
		if err != nil {
			return nil, wrapQdrant("get", err)
		}
		skip := make(map[string]bool, len(existing))
		for _, p := range existing {
			skip[p.GetId().GetUuid()] = true
		}
		kept := points[:0]
		for _, p := range points {
			if !skip[p.GetId().GetUuid()] {
				kept = append(kept, p)
			}
		}
		points = kept
	}

	if len(points) > 0 {
		_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: s.opts.Collection,
			Points:         points,
			Wait:           qdrant.PtrOf(true),
		})
		if err != nil {
			return nil, wrapQdrant("upsert", err)
		}
		s.count += len(points)
	}
	return ids, nil
}

func (s *QdrantStore) Query(ctx context.Context, vector []float32, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		return nil, ErrInvalidTopK
	}

	s.mu.Lock()
	dims, count := s.dims, s.count
	s.mu.Unlock()

	if dims == 0 || count == 0 {
		return []SearchResult{}, nil
	}
	if len(vector) != dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, store has %d", ErrDimensionMismatch, len(vector), dims)
	}

	hits, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.opts.Collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, wrapQdrant("query", err)
	}

	results := make([]SearchResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, SearchResult{
			Record:     payloadRecord(hit.GetId().GetUuid(), hit.GetPayload()),
			Similarity: hit.GetScore(),
		})
	}
	return rank(results, topK), nil
}

func (s *QdrantStore) DeleteBySource(ctx context.Context, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dims == 0 {
		return nil
	}
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.opts.Collection,
		Wait:           qdrant.PtrOf(true),
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("source", source)},
		}),
	})
	if err != nil {
		return wrapQdrant("delete", err)
	}
	return s.load(ctx)
}

func (s *QdrantStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dims != 0 {
		if err := s.client.DeleteCollection(ctx, s.opts.Collection); err != nil {
			return wrapQdrant("delete collection", err)
		}
	}
	s.dims, s.count = 0, 0
	if s.opts.Dimensions > 0 {
		return s.ensureCollection(ctx, s.opts.Dimensions)
	}
	return nil
}

func (s *QdrantStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func (s *QdrantStore) Dimensions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dims
}

func (s *QdrantStore) Close() error {
	return s.client.Close()
}

// pointID returns the point ID for r. Qdrant IDs must be UUIDs or integers,
// so content IDs are mapped to name-based UUIDs.
func pointID(r Record, dedup bool) string {
	switch {
	case r.ID != "":
		return r.ID
	case dedup:
		return uuid.NewSHA1(uuid.NameSpaceURL, []byte(ContentID(r.Metadata.Source, r.Content))).String()
	default:
		return uuid.NewString()
	}
}

func pointPayload(content string, md RecordMetadata) map[string]any {
	return map[string]any{
		"content":       content,
		"source":        md.Source,
		"chunk_index":   md.ChunkIndex,
		"start":         md.Start,
		"end":           md.End,
		"document_hash": md.DocumentHash,
		"ingested_at":   md.IngestedAt.Unix(),
		"seq":           md.seq,
	}
}

func payloadRecord(id string, p map[string]*qdrant.Value) Record {
	return Record{
		ID:      id,
		Content: p["content"].GetStringValue(),
		Metadata: RecordMetadata{
			Source:       p["source"].GetStringValue(),
			ChunkIndex:   int(p["chunk_index"].GetIntegerValue()),
			Start:        int(p["start"].GetIntegerValue()),
			End:          int(p["end"].GetIntegerValue()),
			DocumentHash: p["document_hash"].GetStringValue(),
			IngestedAt:   time.Unix(p["ingested_at"].GetIntegerValue(), 0),
			seq:          p["seq"].GetIntegerValue(),
		},
	}
}

// wrapQdrant tags connection-level gRPC failures as ErrStorageUnavailable.
func wrapQdrant(op string, err error) error {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: qdrant %s: %v", ErrStorageUnavailable, op, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: qdrant %s: %v", ErrStorageUnavailable, op, err)
	}
	return fmt.Errorf("qdrant %s: %w", op, err)
}
