package rag

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/docqa/internal/embeddings"
)

// batcher embeds texts in fixed-size batches with bounded parallelism.
type batcher struct {
	embedder    embeddings.Embedder
	size        int
	concurrency int
	onProgress  ProgressFunc
}

// embed returns one vector per text, in input order. The first failing batch
// cancels the others.
func (b *batcher) embed(ctx context.Context, source string, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	if len(texts) == 0 {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	var (
		mu   sync.Mutex
		done int
	)
	total := len(texts)
	for start := 0; start < total; start += b.size {
		end := min(start+b.size, total)
		g.Go(func() error {
			vecs, err := b.embedder.Embed(gctx, texts[start:end])
			if err != nil {
				return serviceError(err)
			}
			if err := embeddings.Validate(vecs, end-start, b.embedder.Dimensions()); err != nil {
				return err
			}
			copy(out[start:end], vecs)

			// Counting and reporting under one lock keeps the reported
			// counts increasing whatever order batches finish in.
			mu.Lock()
			done += end - start
			if b.onProgress != nil {
				b.onProgress(done, total, source)
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
