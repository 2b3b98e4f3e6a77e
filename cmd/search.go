package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docqa/internal/vectordb"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find the stored chunks most similar to a query",
	Long:  `Embeds the query and returns the nearest chunks with their cosine similarity, without calling the language model.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().Int("limit", 0, "maximum number of results (default top_k from config)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.pipeline.Count() == 0 && !jsonOutput {
		fmt.Println("Vector store is empty. Run `docqa ingest` first.")
		return nil
	}

	results, err := a.pipeline.Search(ctx, args[0], limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if jsonOutput {
		return printSearchResultsJSON(results)
	}
	fmt.Print(vectordb.FormatResults(results))
	return nil
}

type searchResultJSON struct {
	Rank       int     `json:"rank"`
	Similarity float64 `json:"similarity"`
	Source     string  `json:"source"`
	Chunk      int     `json:"chunk"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Content    string  `json:"content"`
}

func printSearchResultsJSON(results []vectordb.SearchResult) error {
	out := make([]searchResultJSON, 0, len(results))
	for i, r := range results {
		md := r.Record.Metadata
		out = append(out, searchResultJSON{
			Rank:       i + 1,
			Similarity: float64(r.Similarity),
			Source:     md.Source,
			Chunk:      md.ChunkIndex,
			Start:      md.Start,
			End:        md.End,
			Content:    r.Record.Content,
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
