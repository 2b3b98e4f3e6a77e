package vectordb

import (
	"fmt"
	"strings"
)

// FormatResults renders search results as human-readable text.
func FormatResults(results []SearchResult) string {
	if len(results) == 0 {
		return "No results found."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d result(s):\n\n", len(results)))

	for i, r := range results {
		sb.WriteString(fmt.Sprintf("--- Result %d (similarity: %.4f) ---\n", i+1, r.Similarity))

		md := r.Record.Metadata
		if md.Source != "" {
			sb.WriteString(fmt.Sprintf("Source: %s (chunk %d, chars %d-%d)\n", md.Source, md.ChunkIndex+1, md.Start, md.End))
		}

		sb.WriteString("\n")
		sb.WriteString(r.Record.Content)
		sb.WriteString("\n\n")
	}

	return sb.String()
}
