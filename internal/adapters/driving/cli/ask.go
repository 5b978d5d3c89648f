package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the ingested documents",
	Long: `Ask embeds the question, retrieves the most similar chunks from the
document store, optionally reranks them with the cross-encoder and
generates an answer grounded in the retrieved text.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

// Ask flags.
var (
	askModel        string
	askFiltering    string
	askTopK         int
	askNoRerank     bool
	askShowContexts bool
	askAnswerPrompt string
)

func init() {
	askCmd.Flags().StringVarP(&askModel, "model", "m", "", "chat model override")
	askCmd.Flags().StringVarP(&askFiltering, "filtering", "f", "", "restrict retrieval to one filtering category")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to retrieve (default from settings)")
	askCmd.Flags().BoolVar(&askNoRerank, "no-rerank", false, "skip the rerank stage")
	askCmd.Flags().BoolVar(&askShowContexts, "show-contexts", false, "print the retrieved chunks")
	askCmd.Flags().StringVar(&askAnswerPrompt, "answer-prompt", "", "extra instruction appended to the prompt's answer section")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured (set DATABASE_URL and GENAI_*)")
	}

	question := args[0]
	ctx := context.Background()

	result, err := answerService.Ask(ctx, question, domain.AskOptions{
		Model:         askModel,
		Filtering:     askFiltering,
		TopK:          askTopK,
		DisableRerank: askNoRerank,
		AnswerPrompt:  askAnswerPrompt,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	cmd.Println(renderAnswerPanel(result.Question, result.Answer))
	if result.Truncated {
		cmd.Println(warningStyle.Render("The answer may be cut off mid-sentence."))
	}

	cmd.Println()
	cmd.Printf("  Model:         %s\n", result.ModelUsed)
	cmd.Printf("  Vector search: %s\n", formatSeconds(result.VectorSearchTime))
	if result.Reranked {
		cmd.Printf("  Rerank:        %s\n", formatSeconds(result.RerankTime))
	}
	cmd.Printf("  Generation:    %s\n", formatSeconds(result.GenerationTime))
	cmd.Printf("  Total:         %s\n", formatSeconds(result.TotalTime))

	if askShowContexts {
		cmd.Println()
		cmd.Println(headingStyle.Render("Retrieved contexts"))
		for i, chunk := range result.Contexts {
			cmd.Printf("\n[%d] %s (distance %.4f", i+1, chunk.Filename, chunk.Distance)
			if chunk.RerankScore != nil {
				cmd.Printf(", rerank %.4f", *chunk.RerankScore)
			}
			cmd.Println(")")
			cmd.Println(mutedStyle.Render(truncateRunes(chunk.Content, 200)))
		}
	}
	return nil
}
