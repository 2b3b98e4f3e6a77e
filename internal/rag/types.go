package rag

import (
	"time"

	"github.com/ziadkadry99/docqa/internal/loader"
	"github.com/ziadkadry99/docqa/internal/vectordb"
)

// IngestReport summarizes the ingestion of one document.
type IngestReport struct {
	Source     string
	Type       loader.DocType
	Pages      int
	Characters int
	Chunks     int
	// Skipped is set when the ledger already held this exact version of the
	// document and nothing was embedded.
	Skipped  bool
	Duration time.Duration
}

// FileError pairs a document with the error that stopped its ingestion.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e FileError) Unwrap() error {
	return e.Err
}

// DirReport summarizes a directory ingestion run.
type DirReport struct {
	Reports  []IngestReport
	Errors   []FileError
	Duration time.Duration
}

// Ingested returns the number of documents that were embedded and stored.
func (r *DirReport) Ingested() int {
	n := 0
	for _, rep := range r.Reports {
		if !rep.Skipped {
			n++
		}
	}
	return n
}

// Chunks returns the total number of chunks stored during the run.
func (r *DirReport) Chunks() int {
	n := 0
	for _, rep := range r.Reports {
		if !rep.Skipped {
			n += rep.Chunks
		}
	}
	return n
}

// Answer is a generated response together with the chunks it was based on.
type Answer struct {
	Question string
	Text     string
	Sources  []vectordb.SearchResult
	Model    string
}

// ProgressFunc is called as chunks of a document finish embedding.
type ProgressFunc func(embedded int, total int, source string)
