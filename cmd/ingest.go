package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docqa/internal/progress"
	"github.com/ziadkadry99/docqa/internal/rag"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>...",
	Short: "Load, chunk, embed and store documents",
	Long: `Ingests each file, or every supported document under each directory, into
the vector store. Documents that have not changed since their last ingestion
are skipped; changed documents replace their previous chunks.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().Bool("reset", false, "remove all stored documents before ingesting")
	ingestCmd.Flags().BoolP("quiet", "q", false, "do not show embedding progress")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	start := time.Now()
	ctx := context.Background()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if reset, _ := cmd.Flags().GetBool("reset"); reset {
		if err := a.pipeline.Reset(ctx); err != nil {
			return fmt.Errorf("resetting store: %w", err)
		}
		fmt.Println("Store reset.")
	}

	// Set up progress reporting, one bar per document.
	var reporter progress.Reporter = progress.NewReporter()
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		reporter = progress.Nop{}
	}
	var mu sync.Mutex
	current := ""
	a.pipeline.SetProgressFunc(func(embedded int, total int, source string) {
		mu.Lock()
		defer mu.Unlock()
		if source != current {
			if current != "" {
				reporter.Finish()
			}
			reporter.Start(total, "Embedding "+filepath.Base(source))
			current = source
		}
		reporter.Update(embedded, "")
	})
	finish := func() {
		mu.Lock()
		defer mu.Unlock()
		if current != "" {
			reporter.Finish()
			current = ""
		}
	}

	result := &rag.DirReport{}
	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			result.Errors = append(result.Errors, rag.FileError{Path: path, Err: err})
			continue
		}

		if info.IsDir() {
			rep, err := a.pipeline.IngestDir(ctx, path)
			finish()
			if err != nil {
				return fmt.Errorf("ingesting %s: %w", path, err)
			}
			result.Reports = append(result.Reports, rep.Reports...)
			result.Errors = append(result.Errors, rep.Errors...)
			continue
		}

		rep, err := a.pipeline.IngestFile(ctx, path)
		finish()
		if err != nil {
			result.Errors = append(result.Errors, rag.FileError{Path: path, Err: err})
			continue
		}
		result.Reports = append(result.Reports, *rep)
	}

	for _, rep := range result.Reports {
		if rep.Skipped {
			fmt.Printf("  - %s: unchanged, skipped\n", rep.Source)
			continue
		}
		fmt.Printf("  + %s: %d chunks from %d characters (%s)\n", rep.Source, rep.Chunks, rep.Characters, rep.Duration.Round(time.Millisecond))
	}
	for _, fe := range result.Errors {
		fmt.Fprintf(os.Stderr, "  ! %s: %v\n", fe.Path, fe.Err)
	}

	fmt.Println()
	fmt.Println("Ingestion complete!")
	fmt.Printf("  Documents ingested: %d\n", result.Ingested())
	fmt.Printf("  Documents skipped:  %d (unchanged)\n", len(result.Reports)-result.Ingested())
	fmt.Printf("  Documents failed:   %d\n", len(result.Errors))
	fmt.Printf("  Chunks stored:      %d\n", result.Chunks())
	fmt.Printf("  Store total:        %d chunks\n", a.pipeline.Count())
	fmt.Printf("  Duration:           %s\n", time.Since(start).Round(time.Millisecond))

	if len(result.Errors) > 0 {
		return fmt.Errorf("%d document(s) failed to ingest", len(result.Errors))
	}
	return nil
}
