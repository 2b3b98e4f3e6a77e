package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/ziadkadry99/docqa/internal/chunker"
	"github.com/ziadkadry99/docqa/internal/embeddings"
	"github.com/ziadkadry99/docqa/internal/ledger"
	"github.com/ziadkadry99/docqa/internal/llm"
	"github.com/ziadkadry99/docqa/internal/loader"
	"github.com/ziadkadry99/docqa/internal/vectordb"
	"github.com/ziadkadry99/docqa/internal/walker"
)

var (
	// ErrEmptyQuestion is returned by Ask and Search for a blank query.
	ErrEmptyQuestion = errors.New("question is empty")

	// ErrUnknownSource is returned by Remove for a document the ledger has
	// no record of.
	ErrUnknownSource = errors.New("document was never ingested")

	// ErrNoGenerator is returned by Ask when the pipeline has no language model.
	ErrNoGenerator = errors.New("no language model configured")
)

// Ledger records which document versions are already stored.
type Ledger interface {
	Get(ctx context.Context, source string) (*ledger.Document, error)
	Upsert(ctx context.Context, d ledger.Document) (*ledger.Document, error)
	List(ctx context.Context) ([]ledger.Document, error)
	Delete(ctx context.Context, source string) error
	Clear(ctx context.Context) error
}

// Options configures a Pipeline.
type Options struct {
	ChunkSize    int
	ChunkOverlap int
	TopK         int
	// BatchSize is the number of chunks sent to the embedder per request.
	BatchSize int
	// Concurrency bounds the number of embedding requests in flight.
	Concurrency int
	Include     []string
	Exclude     []string
	Generator   GeneratorOptions
}

// Pipeline orchestrates the document workflow: load -> chunk -> embed -> store,
// and at query time retrieve -> generate.
type Pipeline struct {
	embedder  embeddings.Embedder
	store     vectordb.VectorStore
	ledger    Ledger
	retriever *Retriever
	generator *Generator
	opts      Options
	logger    *slog.Logger

	onProgress ProgressFunc
}

// NewPipeline creates a Pipeline. provider and ledger may be nil: without a
// provider only retrieval is available, without a ledger every ingestion
// re-embeds the document.
func NewPipeline(
	embedder embeddings.Embedder,
	store vectordb.VectorStore,
	provider llm.Provider,
	led Ledger,
	opts Options,
) (*Pipeline, error) {
	if err := (chunker.Options{Size: opts.ChunkSize, Overlap: opts.ChunkOverlap}).Validate(); err != nil {
		return nil, err
	}
	if opts.TopK <= 0 {
		return nil, vectordb.ErrInvalidTopK
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 32
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}

	p := &Pipeline{
		embedder:  embedder,
		store:     store,
		ledger:    led,
		retriever: NewRetriever(embedder, store),
		opts:      opts,
		logger:    slog.Default().With("component", "pipeline"),
	}
	if provider != nil {
		p.generator = NewGenerator(provider, opts.Generator)
	}
	return p, nil
}

// SetProgressFunc sets the embedding progress callback.
func (p *Pipeline) SetProgressFunc(fn ProgressFunc) {
	p.onProgress = fn
}

// IngestFile loads one document and stores its chunks. A document whose
// content and chunk parameters match the ledger is skipped. A changed
// document replaces all records previously stored for it.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (*IngestReport, error) {
	start := time.Now()
	source := filepath.Clean(path)
	log := p.logger.With("source", source)

	doc, err := loader.Load(ctx, source)
	if err != nil {
		return nil, err
	}

	report := &IngestReport{
		Source:     source,
		Type:       doc.Type,
		Pages:      doc.Pages,
		Characters: doc.Characters(),
	}

	if p.ledger != nil {
		prev, err := p.ledger.Get(ctx, source)
		if err != nil {
			return nil, err
		}
		if prev.Unchanged(doc.Hash, p.opts.ChunkSize, p.opts.ChunkOverlap, p.embedder.Name()) {
			log.Info("document unchanged, skipping", "chunks", prev.Chunks)
			report.Chunks = prev.Chunks
			report.Skipped = true
			report.Duration = time.Since(start)
			return report, nil
		}
	}

	chunks, err := chunker.Collect(doc.Text, chunker.Options{
		Size:    p.opts.ChunkSize,
		Overlap: p.opts.ChunkOverlap,
		Source:  source,
	})
	if err != nil {
		return nil, err
	}
	report.Chunks = len(chunks)
	log.Debug("document chunked", "characters", report.Characters, "chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	// Embed before touching the store so a failed embedding keeps the
	// previous version of the document searchable.
	b := &batcher{
		embedder:    p.embedder,
		size:        p.opts.BatchSize,
		concurrency: p.opts.Concurrency,
		onProgress:  p.onProgress,
	}
	vecs, err := b.embed(ctx, source, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding %s: %w", source, err)
	}

	// The store only checks dimensions on Add, after the old records are gone.
	if dims := p.store.Dimensions(); dims > 0 && len(vecs) > 0 && len(vecs[0]) != dims {
		return nil, fmt.Errorf("storing %s: %w: embedder %s produces %d dimensions, store has %d (re-ingest with --reset after changing the embedding model)",
			source, vectordb.ErrDimensionMismatch, p.embedder.Name(), len(vecs[0]), dims)
	}

	if err := p.store.DeleteBySource(ctx, source); err != nil {
		return nil, fmt.Errorf("deleting old records for %s: %w", source, err)
	}

	records := make([]vectordb.Record, len(chunks))
	now := time.Now()
	for i, c := range chunks {
		records[i] = vectordb.Record{
			Content:   c.Text,
			Embedding: vecs[i],
			Metadata: vectordb.RecordMetadata{
				Source:       source,
				ChunkIndex:   c.Index,
				Start:        c.Start,
				End:          c.End,
				DocumentHash: doc.Hash,
				IngestedAt:   now,
			},
		}
	}
	if _, err := p.store.Add(ctx, records); err != nil {
		return nil, fmt.Errorf("storing %s: %w", source, err)
	}

	if p.ledger != nil {
		if _, err := p.ledger.Upsert(ctx, ledger.Document{
			Source:         source,
			ContentHash:    doc.Hash,
			DocType:        string(doc.Type),
			Characters:     report.Characters,
			Pages:          doc.Pages,
			Chunks:         len(chunks),
			ChunkSize:      p.opts.ChunkSize,
			ChunkOverlap:   p.opts.ChunkOverlap,
			EmbeddingModel: p.embedder.Name(),
		}); err != nil {
			return nil, err
		}
	}

	report.Duration = time.Since(start)
	log.Info("document ingested", "chunks", report.Chunks, "elapsed", report.Duration)
	return report, nil
}

// IngestDir ingests every supported document under root. A failing document
// is recorded in the report and does not stop the others.
func (p *Pipeline) IngestDir(ctx context.Context, root string) (*DirReport, error) {
	start := time.Now()

	files, err := walker.Walk(root, walker.Options{
		Include: p.opts.Include,
		Exclude: p.opts.Exclude,
		Accept:  loader.IsSupported,
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info("ingesting directory", "root", root, "files", len(files))

	result := &DirReport{}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		rep, err := p.IngestFile(ctx, f.Path)
		if err != nil {
			p.logger.Warn("document failed", "source", f.Path, "error", err)
			result.Errors = append(result.Errors, FileError{Path: f.Path, Err: err})
			continue
		}
		result.Reports = append(result.Reports, *rep)
	}

	result.Duration = time.Since(start)
	return result, nil
}

// Search returns the chunks most similar to query. topK 0 uses the
// configured default.
func (p *Pipeline) Search(ctx context.Context, query string, topK int) ([]vectordb.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuestion
	}
	if topK == 0 {
		topK = p.opts.TopK
	}
	return p.retriever.Retrieve(ctx, query, topK)
}

// Ask retrieves context for question and generates an answer from it. When
// nothing is retrieved the model is not called and NotFoundAnswer is
// returned.
func (p *Pipeline) Ask(ctx context.Context, question string) (*Answer, error) {
	if p.generator == nil {
		return nil, ErrNoGenerator
	}

	results, err := p.Search(ctx, question, p.opts.TopK)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &Answer{Question: question, Text: NotFoundAnswer, Sources: results}, nil
	}

	contexts := make([]string, len(results))
	for i, r := range results {
		contexts[i] = r.Record.Content
	}

	answer, err := p.generator.Generate(ctx, question, contexts)
	if err != nil {
		return nil, err
	}
	answer.Sources = results
	return answer, nil
}

// Documents lists ingested documents ordered by source.
func (p *Pipeline) Documents(ctx context.Context) ([]ledger.Document, error) {
	if p.ledger == nil {
		return nil, nil
	}
	return p.ledger.List(ctx)
}

// Remove deletes every record stored for source.
func (p *Pipeline) Remove(ctx context.Context, source string) error {
	source = filepath.Clean(source)
	if p.ledger != nil {
		d, err := p.ledger.Get(ctx, source)
		if err != nil {
			return err
		}
		if d == nil {
			return fmt.Errorf("%w: %s", ErrUnknownSource, source)
		}
	}
	if err := p.store.DeleteBySource(ctx, source); err != nil {
		return err
	}
	if p.ledger != nil {
		return p.ledger.Delete(ctx, source)
	}
	return nil
}

// Reset removes all records and ledger entries.
func (p *Pipeline) Reset(ctx context.Context) error {
	if err := p.store.Reset(ctx); err != nil {
		return err
	}
	if p.ledger != nil {
		return p.ledger.Clear(ctx)
	}
	return nil
}

// Count returns the number of stored chunks.
func (p *Pipeline) Count() int {
	return p.store.Count()
}
