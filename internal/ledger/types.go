package ledger

import "time"

// Document is the ledger entry for one ingested source file.
type Document struct {
	ID             string
	Source         string
	ContentHash    string
	DocType        string
	Characters     int
	Pages          int
	Chunks         int
	ChunkSize      int
	ChunkOverlap   int
	EmbeddingModel string
	IngestedAt     time.Time
}

// Unchanged reports whether re-ingesting a document with the given hash and
// chunk parameters would produce exactly the records already stored.
func (d *Document) Unchanged(hash string, size, overlap int, model string) bool {
	return d != nil &&
		d.ContentHash == hash &&
		d.ChunkSize == size &&
		d.ChunkOverlap == overlap &&
		d.EmbeddingModel == model
}
