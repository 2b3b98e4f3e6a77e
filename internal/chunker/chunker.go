package chunker

import (
	"errors"
	"fmt"
	"iter"
)

// ErrInvalidConfig is returned when chunk size and overlap do not describe a
// valid sliding window.
var ErrInvalidConfig = errors.New("invalid configuration")

// Chunk is a contiguous window of a document's text.
// Start and End are character (rune) offsets into the document, End exclusive.
type Chunk struct {
	Index  int
	Start  int
	End    int
	Text   string
	Source string
}

// Len returns the number of characters in the chunk.
func (c Chunk) Len() int {
	return c.End - c.Start
}

// Options controls how Split windows the text.
type Options struct {
	Size    int
	Overlap int
	Source  string
}

// Validate checks that Size and Overlap form a window that always advances.
func (o Options) Validate() error {
	if o.Size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, o.Size)
	}
	if o.Overlap < 0 {
		return fmt.Errorf("%w: overlap must be non-negative, got %d", ErrInvalidConfig, o.Overlap)
	}
	if o.Overlap >= o.Size {
		return fmt.Errorf("%w: overlap (%d) must be smaller than chunk size (%d)", ErrInvalidConfig, o.Overlap, o.Size)
	}
	return nil
}

// Split returns the overlapping chunks of text as a lazy sequence.
//
// Each chunk after the first starts Size-Overlap characters after the
// previous one. The last chunk may be shorter than Size and the sequence ends
// with the first chunk that reaches the end of the text. The returned
// sequence can be ranged over any number of times and always yields the same
// chunks. Empty text yields no chunks.
func Split(text string, opts Options) (iter.Seq[Chunk], error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	runes := []rune(text)
	step := opts.Size - opts.Overlap

	return func(yield func(Chunk) bool) {
		for i, start := 0, 0; start < len(runes); i, start = i+1, start+step {
			end := min(start+opts.Size, len(runes))
			c := Chunk{
				Index:  i,
				Start:  start,
				End:    end,
				Text:   string(runes[start:end]),
				Source: opts.Source,
			}
			if !yield(c) {
				return
			}
			if end == len(runes) {
				return
			}
		}
	}, nil
}

// Collect splits text and returns all chunks as a slice.
func Collect(text string, opts Options) ([]Chunk, error) {
	seq, err := Split(text, opts)
	if err != nil {
		return nil, err
	}
	var chunks []Chunk
	for c := range seq {
		chunks = append(chunks, c)
	}
	return chunks, nil
}

// Count returns how many chunks Split would produce for a text of n
// characters, without materialising them.
func Count(n int, opts Options) (int, error) {
	if err := opts.Validate(); err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	if n <= opts.Size {
		return 1, nil
	}
	step := opts.Size - opts.Overlap
	// Chunks start at 0, step, 2*step... until one reaches n.
	return (n-opts.Size+step-1)/step + 1, nil
}
