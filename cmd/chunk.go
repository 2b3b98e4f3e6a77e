package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docqa/internal/chunker"
	"github.com/ziadkadry99/docqa/internal/config"
	"github.com/ziadkadry99/docqa/internal/loader"
)

var chunkCmd = &cobra.Command{
	Use:   "chunk <file>",
	Short: "Load a document and print its chunks",
	Long:  `Extracts the text of a document and prints the chunks it would be split into, without embedding or storing anything.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runChunk,
}

func init() {
	chunkCmd.Flags().Int("size", 0, "chunk size in characters (overrides config)")
	chunkCmd.Flags().Int("overlap", -1, "chunk overlap in characters (overrides config)")
	chunkCmd.Flags().Bool("full", false, "print whole chunks instead of previews")
	rootCmd.AddCommand(chunkCmd)
}

func runChunk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if size, _ := cmd.Flags().GetInt("size"); size > 0 {
		cfg.ChunkSize = size
	}
	if overlap, _ := cmd.Flags().GetInt("overlap"); overlap >= 0 {
		cfg.ChunkOverlap = overlap
	}
	full, _ := cmd.Flags().GetBool("full")

	doc, err := loader.Load(ctx, args[0])
	if err != nil {
		return err
	}

	opts := cfg.ChunkOptions(doc.Source)
	seq, err := chunker.Split(doc.Text, opts)
	if err != nil {
		return err
	}
	n, _ := chunker.Count(doc.Characters(), opts)

	fmt.Printf("Document: %s (%s)\n", doc.Source, doc.Type)
	if doc.Pages > 0 {
		fmt.Printf("  Pages:      %d\n", doc.Pages)
	}
	fmt.Printf("  Characters: %d\n", doc.Characters())
	fmt.Printf("  Chunks:     %d (size %d, overlap %d)\n\n", n, opts.Size, opts.Overlap)

	for c := range seq {
		fmt.Printf("--- Chunk %d [%d-%d] (%d chars) ---\n", c.Index+1, c.Start, c.End, c.Len())
		if full {
			fmt.Println(c.Text)
		} else {
			fmt.Println(truncate(c.Text, 200))
		}
		fmt.Println()
	}
	return nil
}
