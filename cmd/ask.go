package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docqa/internal/rag"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the ingested documents",
	Long: `Retrieves the chunks most relevant to the question and asks the language
model to answer from them only. Without a question an interactive session
starts; type quit, exit or q to leave.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().Bool("no-sources", false, "do not print the chunks used for the answer")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	noSources, _ := cmd.Flags().GetBool("no-sources")

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.pipeline.Count() == 0 {
		fmt.Println("Vector store is empty. Run `docqa ingest` first.")
		return nil
	}

	if len(args) == 1 {
		answer, err := a.pipeline.Ask(ctx, args[0])
		if err != nil {
			return err
		}
		printAnswer(answer, !noSources)
		return nil
	}

	fmt.Printf("Interactive mode: %d chunks loaded. Type quit, exit or q to leave.\n\n", a.pipeline.Count())
	prompt := promptui.Prompt{Label: "Question"}
	for {
		question, err := prompt.Run()
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			fmt.Println("Goodbye!")
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading question: %w", err)
		}

		question = strings.TrimSpace(question)
		switch strings.ToLower(question) {
		case "":
			continue
		case "quit", "exit", "q":
			fmt.Println("Goodbye!")
			return nil
		}

		answer, err := a.pipeline.Ask(ctx, question)
		if err != nil {
			// A failed question does not end the session.
			fmt.Printf("Error: %v\n\n", err)
			continue
		}
		printAnswer(answer, !noSources)
	}
}

func printAnswer(answer *rag.Answer, withSources bool) {
	rule := strings.Repeat("=", 60)
	fmt.Println(rule)
	fmt.Println("ANSWER")
	fmt.Println(rule)
	fmt.Printf("\nQuestion: %s\n\nAnswer:\n%s\n\n", answer.Question, answer.Text)

	if !withSources || len(answer.Sources) == 0 {
		return
	}
	fmt.Println(rule)
	fmt.Println("SOURCES")
	fmt.Println(rule)
	for i, s := range answer.Sources {
		md := s.Record.Metadata
		fmt.Printf("\n[%d] %s, chunk %d (similarity: %.3f)\n", i+1, md.Source, md.ChunkIndex+1, s.Similarity)
		fmt.Printf("    %s\n", truncate(strings.Join(strings.Fields(s.Record.Content), " "), 200))
	}
	fmt.Println()
}
