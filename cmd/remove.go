package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <source>",
	Short: "Delete a document's chunks from the store",
	Long:  `Removes every chunk stored for the given source path, as shown by docqa list.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		a, err := newApp(ctx, false)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.pipeline.Remove(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed %s (%d chunks remain)\n", args[0], a.pipeline.Count())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
}
