package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/docqa/internal/db"
)

// Store records which documents have been ingested and with what settings.
type Store struct {
	db *db.DB
}

// NewStore creates a new ledger store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Upsert records the ingestion of a document, replacing any earlier entry
// for the same source.
func (s *Store) Upsert(ctx context.Context, d Document) (*Document, error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.IngestedAt.IsZero() {
		d.IngestedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (source, id, content_hash, doc_type, characters, pages, chunks, chunk_size, chunk_overlap, embedding_model, ingested_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(source) DO UPDATE SET
		   id = excluded.id,
		   content_hash = excluded.content_hash,
		   doc_type = excluded.doc_type,
		   characters = excluded.characters,
		   pages = excluded.pages,
		   chunks = excluded.chunks,
		   chunk_size = excluded.chunk_size,
		   chunk_overlap = excluded.chunk_overlap,
		   embedding_model = excluded.embedding_model,
		   ingested_at = excluded.ingested_at`,
		d.Source, d.ID, d.ContentHash, d.DocType, d.Characters, d.Pages, d.Chunks, d.ChunkSize, d.ChunkOverlap, d.EmbeddingModel, d.IngestedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upserting document %s: %w", d.Source, err)
	}
	return &d, nil
}

// Get returns the entry for source, or nil if it was never ingested.
func (s *Store) Get(ctx context.Context, source string) (*Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, content_hash, doc_type, characters, pages, chunks, chunk_size, chunk_overlap, embedding_model, ingested_at
		 FROM documents WHERE source = ?`, source)

	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting document %s: %w", source, err)
	}
	return d, nil
}

// List returns all entries ordered by source.
func (s *Store) List(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, content_hash, doc_type, characters, pages, chunks, chunk_size, chunk_overlap, embedding_model, ingested_at
		 FROM documents ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, *d)
	}
	return docs, rows.Err()
}

// Delete removes the entry for source. Deleting an unknown source is not an error.
func (s *Store) Delete(ctx context.Context, source string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE source = ?`, source); err != nil {
		return fmt.Errorf("deleting document %s: %w", source, err)
	}
	return nil
}

// Clear removes every entry.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return fmt.Errorf("clearing documents: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.Source, &d.ContentHash, &d.DocType, &d.Characters, &d.Pages, &d.Chunks,
		&d.ChunkSize, &d.ChunkOverlap, &d.EmbeddingModel, &d.IngestedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
