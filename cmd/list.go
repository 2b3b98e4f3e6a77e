package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested documents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		a, err := newApp(ctx, false)
		if err != nil {
			return err
		}
		defer a.Close()

		docs, err := a.pipeline.Documents(ctx)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			fmt.Println("No documents ingested yet.")
			return nil
		}

		fmt.Printf("%-50s %-5s %10s %7s  %s\n", "SOURCE", "TYPE", "CHARS", "CHUNKS", "INGESTED")
		for _, d := range docs {
			fmt.Printf("%-50s %-5s %10d %7d  %s\n",
				truncate(d.Source, 50), d.DocType, d.Characters, d.Chunks, d.IngestedAt.Local().Format("2006-01-02 15:04"))
		}
		fmt.Printf("\n%d document(s), %d chunks in store\n", len(docs), a.pipeline.Count())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
