package rag

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ziadkadry99/docqa/internal/chunker"
	"github.com/ziadkadry99/docqa/internal/db"
	"github.com/ziadkadry99/docqa/internal/embeddings"
	"github.com/ziadkadry99/docqa/internal/ledger"
	"github.com/ziadkadry99/docqa/internal/llm"
	"github.com/ziadkadry99/docqa/internal/vectordb"
)

// --- Mock Embedder ---

// letterEmbedder maps text to letter frequencies plus a constant component,
// so identical texts get identical vectors and no vector is zero.
type letterEmbedder struct {
	err   error
	delay func(batch int) time.Duration
	calls atomic.Int64
	texts atomic.Int64
}

func (m *letterEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	n := m.calls.Add(1)
	m.texts.Add(int64(len(texts)))
	if m.err != nil {
		return nil, m.err
	}
	if m.delay != nil {
		select {
		case <-time.After(m.delay(int(n))):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = letterVector(t)
	}
	return out, nil
}

func (m *letterEmbedder) Dimensions() int { return 27 }
func (m *letterEmbedder) Name() string    { return "mock/letters" }

func letterVector(text string) []float32 {
	vec := make([]float32, 27)
	for _, ch := range strings.ToLower(text) {
		if ch >= 'a' && ch <= 'z' {
			vec[ch-'a']++
		}
	}
	vec[26] = 1
	return vec
}

// --- Mock LLM Provider ---

type mockProvider struct {
	mu       sync.Mutex
	prompts  []string
	response string
	err      error
}

func (m *mockProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, req.Messages[0].Content)
	if m.err != nil {
		return nil, m.err
	}
	return &llm.CompletionResponse{Content: m.response, Model: "mock-model"}, nil
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// --- Helpers ---

var words = []string{
	"artificial", "intelligence", "machine", "learning", "neural", "network",
	"language", "vision", "robot", "data", "model", "training", "inference",
	"gradient", "layer", "token", "embedding", "vector", "query", "answer",
}

// sampleText returns n characters of varied prose.
func sampleText(n int) string {
	var sb strings.Builder
	for i := 0; sb.Len() < n; i++ {
		sb.WriteString(words[(i*7+i/3)%len(words)])
		sb.WriteByte(' ')
	}
	return sb.String()[:n]
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

type fixture struct {
	store    *vectordb.ChromemStore
	ledger   *ledger.Store
	embedder *letterEmbedder
	provider *mockProvider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := vectordb.NewChromemStore(vectordb.ChromemOptions{Dedup: true})
	if err != nil {
		t.Fatalf("NewChromemStore: %v", err)
	}
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return &fixture{
		store:    store,
		ledger:   ledger.NewStore(database),
		embedder: &letterEmbedder{},
		provider: &mockProvider{response: "  The answer.\n"},
	}
}

func (f *fixture) pipeline(t *testing.T, opts Options) *Pipeline {
	t.Helper()
	p, err := NewPipeline(f.embedder, f.store, f.provider, f.ledger, opts)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	return p
}

func defaultOptions() Options {
	return Options{ChunkSize: 300, ChunkOverlap: 50, TopK: 3, BatchSize: 2, Concurrency: 2}
}

// --- Tests ---

func TestNewPipelineRejectsInvalidOptions(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		opts Options
	}{
		{"overlap equals size", Options{ChunkSize: 100, ChunkOverlap: 100, TopK: 3}},
		{"zero size", Options{ChunkSize: 0, TopK: 3}},
		{"zero top_k", Options{ChunkSize: 100, ChunkOverlap: 10, TopK: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPipeline(f.embedder, f.store, nil, nil, tt.opts)
			if !errors.Is(err, chunker.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestIngestFileAndSearch(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, defaultOptions())
	ctx := context.Background()

	text := sampleText(1000)
	path := writeDoc(t, t.TempDir(), "ai.txt", text)

	rep, err := p.IngestFile(ctx, path)
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}
	if rep.Chunks != 4 || rep.Skipped {
		t.Fatalf("report = %+v, want 4 chunks not skipped", rep)
	}
	if rep.Characters != 1000 {
		t.Errorf("characters = %d", rep.Characters)
	}
	if p.Count() != 4 {
		t.Fatalf("store holds %d records, want 4", p.Count())
	}

	chunks, _ := chunker.Collect(text, chunker.Options{Size: 300, Overlap: 50})
	for _, c := range chunks {
		results, err := p.Search(ctx, c.Text, 0)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(results) == 0 || len(results) > 3 {
			t.Fatalf("got %d results", len(results))
		}
		top := results[0].Record
		if top.Metadata.ChunkIndex != c.Index || top.Metadata.Start != c.Start || top.Metadata.End != c.End {
			t.Errorf("chunk %d: top result is chunk %d [%d,%d)", c.Index, top.Metadata.ChunkIndex, top.Metadata.Start, top.Metadata.End)
		}
		if top.Metadata.Source != filepath.Clean(path) {
			t.Errorf("source = %q", top.Metadata.Source)
		}
		for i := 1; i < len(results); i++ {
			if results[i].Similarity > results[i-1].Similarity {
				t.Errorf("results not ordered by similarity at %d", i)
			}
		}
	}
}

func TestIngestFileSkipsUnchanged(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, defaultOptions())
	ctx := context.Background()
	path := writeDoc(t, t.TempDir(), "ai.txt", sampleText(1000))

	if _, err := p.IngestFile(ctx, path); err != nil {
		t.Fatalf("IngestFile: %v", err)
	}
	embedded := f.embedder.texts.Load()

	rep, err := p.IngestFile(ctx, path)
	if err != nil {
		t.Fatalf("second IngestFile: %v", err)
	}
	if !rep.Skipped {
		t.Error("expected unchanged document to be skipped")
	}
	if rep.Chunks != 4 {
		t.Errorf("skipped report chunks = %d, want 4", rep.Chunks)
	}
	if got := f.embedder.texts.Load(); got != embedded {
		t.Errorf("embedder called for unchanged document: %d texts, had %d", got, embedded)
	}
	if p.Count() != 4 {
		t.Errorf("store holds %d records, want 4", p.Count())
	}
}

func TestIngestFileReplacesChangedDocument(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, defaultOptions())
	ctx := context.Background()
	dir := t.TempDir()
	path := writeDoc(t, dir, "ai.txt", sampleText(1000))

	if _, err := p.IngestFile(ctx, path); err != nil {
		t.Fatalf("IngestFile: %v", err)
	}

	writeDoc(t, dir, "ai.txt", sampleText(500))
	rep, err := p.IngestFile(ctx, path)
	if err != nil {
		t.Fatalf("IngestFile changed: %v", err)
	}
	if rep.Skipped || rep.Chunks != 2 {
		t.Fatalf("report = %+v, want 2 fresh chunks", rep)
	}
	if p.Count() != 2 {
		t.Errorf("store holds %d records, want 2 after replacement", p.Count())
	}

	doc, err := f.ledger.Get(ctx, filepath.Clean(path))
	if err != nil || doc == nil {
		t.Fatalf("ledger Get: %v %v", doc, err)
	}
	if doc.Chunks != 2 || doc.Characters != 500 {
		t.Errorf("ledger entry = %+v", doc)
	}
}

func TestIngestFileReembedsOnNewChunkParameters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	path := writeDoc(t, t.TempDir(), "ai.txt", sampleText(1000))

	if _, err := f.pipeline(t, defaultOptions()).IngestFile(ctx, path); err != nil {
		t.Fatalf("IngestFile: %v", err)
	}

	opts := defaultOptions()
	opts.ChunkSize, opts.ChunkOverlap = 500, 0
	rep, err := f.pipeline(t, opts).IngestFile(ctx, path)
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}
	if rep.Skipped || rep.Chunks != 2 {
		t.Fatalf("report = %+v, want 2 fresh chunks", rep)
	}
	if f.store.Count() != 2 {
		t.Errorf("store holds %d records, want 2", f.store.Count())
	}
}

func TestIngestFileEmbeddingFailureKeepsOldRecords(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, defaultOptions())
	ctx := context.Background()
	dir := t.TempDir()
	path := writeDoc(t, dir, "ai.txt", sampleText(1000))

	if _, err := p.IngestFile(ctx, path); err != nil {
		t.Fatalf("IngestFile: %v", err)
	}

	writeDoc(t, dir, "ai.txt", sampleText(700))
	f.embedder.err = errors.New("connection refused")
	_, err := p.IngestFile(ctx, path)
	if !errors.Is(err, embeddings.ErrService) {
		t.Fatalf("expected ErrService, got %v", err)
	}
	if p.Count() != 4 {
		t.Errorf("store holds %d records, want the original 4", p.Count())
	}
}

// wideEmbedder stands in for a different embedding model: letter vectors
// with one extra dimension.
type wideEmbedder struct{}

func (wideEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = append(letterVector(t), 1)
	}
	return out, nil
}
func (wideEmbedder) Dimensions() int { return 28 }
func (wideEmbedder) Name() string    { return "mock/wide" }

func TestIngestFileNewModelKeepsOldRecords(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, defaultOptions())
	ctx := context.Background()
	path := writeDoc(t, t.TempDir(), "a.txt", sampleText(1000))

	if _, err := p.IngestFile(ctx, path); err != nil {
		t.Fatalf("IngestFile: %v", err)
	}

	wide, err := NewPipeline(wideEmbedder{}, f.store, f.provider, f.ledger, defaultOptions())
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	if _, err := wide.IngestFile(ctx, path); !errors.Is(err, vectordb.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}

	if p.Count() != 4 {
		t.Errorf("store holds %d records, want the original 4", p.Count())
	}
	results, err := p.Search(ctx, "machine learning", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("got %d results from the original model, want 3", len(results))
	}
	docs, err := p.Documents(ctx)
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	if len(docs) != 1 || docs[0].EmbeddingModel != "mock/letters" {
		t.Errorf("ledger = %+v, want the original entry", docs)
	}
}

func TestIngestFileEmptyDocument(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, defaultOptions())
	path := writeDoc(t, t.TempDir(), "empty.txt", "")

	rep, err := p.IngestFile(context.Background(), path)
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}
	if rep.Chunks != 0 || p.Count() != 0 {
		t.Errorf("expected nothing stored, got %d chunks, %d records", rep.Chunks, p.Count())
	}
	if f.embedder.calls.Load() != 0 {
		t.Error("embedder should not be called for an empty document")
	}
}

func TestIngestFileParallelBatchesKeepOrder(t *testing.T) {
	f := newFixture(t)
	// Earlier batches finish last.
	f.embedder.delay = func(batch int) time.Duration {
		return time.Duration(10-batch%10) * time.Millisecond
	}
	opts := defaultOptions()
	opts.ChunkSize, opts.ChunkOverlap = 60, 10
	opts.BatchSize, opts.Concurrency = 1, 8
	p := f.pipeline(t, opts)

	var mu sync.Mutex
	var last, total int
	p.SetProgressFunc(func(done, all int, _ string) {
		mu.Lock()
		defer mu.Unlock()
		if done <= last {
			t.Errorf("progress went from %d to %d", last, done)
		}
		last = done
		total = all
	})

	ctx := context.Background()
	text := sampleText(600)
	path := writeDoc(t, t.TempDir(), "ai.txt", text)
	rep, err := p.IngestFile(ctx, path)
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}
	if last != rep.Chunks || total != rep.Chunks {
		t.Errorf("progress reached %d/%d, want %d", last, total, rep.Chunks)
	}

	chunks, _ := chunker.Collect(text, chunker.Options{Size: 60, Overlap: 10})
	for _, c := range chunks {
		results, err := p.Search(ctx, c.Text, 1)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if results[0].Record.Content != c.Text {
			t.Errorf("chunk %d: embedding stored against the wrong text %q", c.Index, results[0].Record.Content)
		}
	}
}

func TestIngestDirCollectsFailures(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, defaultOptions())
	dir := t.TempDir()
	writeDoc(t, dir, "notes/ai.txt", sampleText(1000))
	writeDoc(t, dir, "guide.md", sampleText(400))
	writeDoc(t, dir, "broken.pdf", "not really a pdf")
	writeDoc(t, dir, "image.png", "\x89PNG")

	rep, err := p.IngestDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("IngestDir: %v", err)
	}
	if len(rep.Reports) != 2 {
		t.Errorf("got %d reports, want 2", len(rep.Reports))
	}
	if len(rep.Errors) != 1 || !strings.HasSuffix(rep.Errors[0].Path, "broken.pdf") {
		t.Errorf("errors = %v, want one for broken.pdf", rep.Errors)
	}
	if rep.Ingested() != 2 || rep.Chunks() != 4+2 {
		t.Errorf("ingested %d documents, %d chunks", rep.Ingested(), rep.Chunks())
	}

	docs, err := p.Documents(context.Background())
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("ledger lists %d documents, want 2", len(docs))
	}
}

func TestSearchEmptyStore(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, defaultOptions())

	results, err := p.Search(context.Background(), "anything", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("expected an empty non-nil result, got %v", results)
	}
}

func TestSearchRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, defaultOptions())
	ctx := context.Background()

	if _, err := p.Search(ctx, "   ", 3); !errors.Is(err, ErrEmptyQuestion) {
		t.Errorf("expected ErrEmptyQuestion, got %v", err)
	}
	if _, err := p.Search(ctx, "query", -1); !errors.Is(err, vectordb.ErrInvalidTopK) {
		t.Errorf("expected ErrInvalidTopK, got %v", err)
	}
}

func TestRetrieverDimensionMismatch(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, defaultOptions())
	ctx := context.Background()
	path := writeDoc(t, t.TempDir(), "ai.txt", sampleText(400))
	if _, err := p.IngestFile(ctx, path); err != nil {
		t.Fatalf("IngestFile: %v", err)
	}

	r := NewRetriever(shortEmbedder{}, f.store)
	if _, err := r.Retrieve(ctx, "query", 3); !errors.Is(err, vectordb.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

type shortEmbedder struct{}

func (shortEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1, 0, 0, 0, 0}
	}
	return out, nil
}
func (shortEmbedder) Dimensions() int { return 0 }
func (shortEmbedder) Name() string    { return "short" }

func TestAskUsesRetrievedContext(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, defaultOptions())
	ctx := context.Background()
	text := sampleText(1000)
	path := writeDoc(t, t.TempDir(), "ai.txt", text)
	if _, err := p.IngestFile(ctx, path); err != nil {
		t.Fatalf("IngestFile: %v", err)
	}

	chunks, _ := chunker.Collect(text, chunker.Options{Size: 300, Overlap: 50})
	question := chunks[1].Text

	answer, err := p.Ask(ctx, question)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if answer.Text != "The answer." {
		t.Errorf("answer text = %q", answer.Text)
	}
	if len(answer.Sources) == 0 || len(answer.Sources) > 3 {
		t.Fatalf("got %d sources", len(answer.Sources))
	}
	if answer.Sources[0].Record.Metadata.ChunkIndex != 1 {
		t.Errorf("top source is chunk %d, want 1", answer.Sources[0].Record.Metadata.ChunkIndex)
	}

	if f.provider.calls() != 1 {
		t.Fatalf("provider called %d times", f.provider.calls())
	}
	prompt := f.provider.prompts[0]
	if !strings.Contains(prompt, "Context 1:\n"+chunks[1].Text) {
		t.Error("prompt does not start its context with the best match")
	}
	if !strings.Contains(prompt, "Question: "+question) {
		t.Error("prompt does not contain the question")
	}
	for i := range answer.Sources {
		if !strings.Contains(prompt, fmt.Sprintf("Context %d:\n%s", i+1, answer.Sources[i].Record.Content)) {
			t.Errorf("context %d missing or out of retrieval order", i+1)
		}
	}
}

func TestAskEmptyStoreSkipsModel(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, defaultOptions())

	answer, err := p.Ask(context.Background(), "What is AI?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if answer.Text != NotFoundAnswer {
		t.Errorf("answer = %q", answer.Text)
	}
	if f.provider.calls() != 0 {
		t.Error("provider should not be called without context")
	}
}

func TestAskGenerationFailure(t *testing.T) {
	f := newFixture(t)
	f.provider.err = errors.New("timeout awaiting response headers")
	p := f.pipeline(t, defaultOptions())
	ctx := context.Background()
	path := writeDoc(t, t.TempDir(), "ai.txt", sampleText(400))
	if _, err := p.IngestFile(ctx, path); err != nil {
		t.Fatalf("IngestFile: %v", err)
	}

	if _, err := p.Ask(ctx, "neural network"); !errors.Is(err, llm.ErrGeneration) {
		t.Errorf("expected ErrGeneration, got %v", err)
	}
}

func TestAskWithoutProvider(t *testing.T) {
	f := newFixture(t)
	p, err := NewPipeline(f.embedder, f.store, nil, f.ledger, defaultOptions())
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	if _, err := p.Ask(context.Background(), "question"); !errors.Is(err, ErrNoGenerator) {
		t.Errorf("expected ErrNoGenerator, got %v", err)
	}
}

func TestRemoveAndReset(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, defaultOptions())
	ctx := context.Background()
	dir := t.TempDir()
	a := writeDoc(t, dir, "a.txt", sampleText(1000))
	b := writeDoc(t, dir, "b.txt", sampleText(400))
	for _, path := range []string{a, b} {
		if _, err := p.IngestFile(ctx, path); err != nil {
			t.Fatalf("IngestFile %s: %v", path, err)
		}
	}
	if p.Count() != 6 {
		t.Fatalf("store holds %d records, want 6", p.Count())
	}

	if err := p.Remove(ctx, a); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if p.Count() != 2 {
		t.Errorf("store holds %d records after Remove, want 2", p.Count())
	}
	if err := p.Remove(ctx, a); !errors.Is(err, ErrUnknownSource) {
		t.Errorf("expected ErrUnknownSource, got %v", err)
	}

	if err := p.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if p.Count() != 0 {
		t.Errorf("store holds %d records after Reset", p.Count())
	}
	docs, _ := p.Documents(ctx)
	if len(docs) != 0 {
		t.Errorf("ledger still lists %d documents", len(docs))
	}
}

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt("What is ML?", []string{"first chunk", "second chunk"})
	want := `You are a helpful assistant answering questions based on the provided context.
Use ONLY the information from the context below to answer the question.
If the answer cannot be found in the context, say "I cannot find this information in the provided document."

Context:
Context 1:
first chunk

Context 2:
second chunk

Question: What is ML?

Answer:`
	if got != want {
		t.Errorf("BuildPrompt mismatch:\n%s", got)
	}
}

func TestGeneratorTimeout(t *testing.T) {
	g := NewGenerator(blockingProvider{}, GeneratorOptions{Timeout: 20 * time.Millisecond})
	_, err := g.Generate(context.Background(), "q", []string{"c"})
	if !errors.Is(err, llm.ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected the deadline to be reported, got %v", err)
	}
}

type blockingProvider struct{}

func (blockingProvider) Complete(ctx context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
func (blockingProvider) Name() string { return "blocking" }

func TestIngestSampleDocument(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, Options{ChunkSize: 400, ChunkOverlap: 50, TopK: 3})
	ctx := context.Background()

	path := filepath.Join("..", "..", "testdata", "sample_doc.txt")
	rep, err := p.IngestFile(ctx, path)
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}
	want, _ := chunker.Count(rep.Characters, chunker.Options{Size: 400, Overlap: 50})
	if rep.Chunks != want || p.Count() != want {
		t.Errorf("stored %d chunks (report %d), want %d", p.Count(), rep.Chunks, want)
	}

	answer, err := p.Ask(ctx, "What is machine learning?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if len(answer.Sources) != 3 {
		t.Errorf("got %d sources, want 3", len(answer.Sources))
	}
	for _, s := range answer.Sources {
		if s.Record.Metadata.Source != filepath.Clean(path) {
			t.Errorf("source = %q", s.Record.Metadata.Source)
		}
	}
}
