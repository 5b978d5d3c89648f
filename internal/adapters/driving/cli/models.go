package cli

import (
	"github.com/spf13/cobra"

	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the supported models",
	Long: `Models prints the chat and embedding model catalog with each model's
family and output token ceiling. Pass a chat model to ask, batch or
evaluate with --model.`,
	Run: runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, _ []string) {
	cmd.Println(headingStyle.Render("Chat models"))
	for _, id := range domain.ChatModels {
		family := domain.FamilyOf(id)
		marker := " "
		if id == domain.DefaultChatModel {
			marker = "*"
		}
		cmd.Printf("%s %-34s %-32s max %d tokens\n", marker, id, family.Description(), family.MaxTokens())
	}

	cmd.Println()
	cmd.Println(headingStyle.Render("Embedding models"))
	for _, id := range domain.EmbedModels {
		marker := " "
		if id == domain.DefaultEmbedModel {
			marker = "*"
		}
		cmd.Printf("%s %-34s %d dimensions\n", marker, id, domain.DefaultEmbedDimensions)
	}

	cmd.Println()
	cmd.Println(mutedStyle.Render("* default"))
}
