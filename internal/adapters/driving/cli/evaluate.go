package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Answer the FAQ workbook and score the answers",
	Long: `Evaluate runs the batch pipeline over the FAQ workbook, then scores
every answer against its ground truth with LLM-judged metrics:
faithfulness, answer correctness, context precision and context recall.

The results workbook gains one column per metric; aggregates are the
mean over the questions each metric could score.`,
	RunE: runEvaluate,
}

// Evaluate flags.
var (
	evaluateOut        string
	evaluateModel      string
	evaluateJudgeModel string
)

func init() {
	evaluateCmd.Flags().StringVarP(&evaluateOut, "out", "o", "results.xlsx", "output workbook path")
	evaluateCmd.Flags().StringVarP(&evaluateModel, "model", "m", "", "chat model override for answering")
	evaluateCmd.Flags().StringVarP(&evaluateJudgeModel, "judge-model", "j", "", "chat model override for judging")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	if answerService == nil {
		return errors.New("answer service not configured (set DATABASE_URL and GENAI_*)")
	}
	if evaluationService == nil {
		return errors.New("evaluation service not configured (set GENAI_*)")
	}
	if faqObjects == nil || faqStore == nil {
		return errors.New("FAQ workbook not configured (set FAQ_BUCKET and FAQ_OBJECT)")
	}

	ctx := context.Background()

	entries, err := loadFAQEntries(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("Loaded %d questions\n\n", len(entries))

	batch, err := answerService.AskBatch(ctx, entries, domain.AskOptions{Model: evaluateModel}, batchProgress(cmd))
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}

	cmd.Println()
	cmd.Printf("Scoring %d answers\n\n", batch.Succeeded)

	report, err := evaluationService.Evaluate(ctx, batch,
		domain.EvaluateOptions{JudgeModel: evaluateJudgeModel}, evaluateProgress(cmd))
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	if err := faqStore.SaveResults(ctx, evaluateOut, report, workbookSettings(report.ModelUsed, report.JudgeModel)); err != nil {
		return fmt.Errorf("saving results: %w", err)
	}

	cmd.Println()
	cmd.Println(headingStyle.Render("Evaluation summary"))
	cmd.Printf("  Faithfulness:       %s\n", formatMetric(report.MeanFaithfulness))
	cmd.Printf("  Answer correctness: %s\n", formatMetric(report.MeanAnswerCorrectness))
	cmd.Printf("  Context precision:  %s\n", formatMetric(report.MeanContextPrecision))
	cmd.Printf("  Context recall:     %s\n", formatMetric(report.MeanContextRecall))
	cmd.Printf("  Model:              %s\n", report.ModelUsed)
	cmd.Printf("  Judge:              %s\n", report.JudgeModel)
	cmd.Printf("  Elapsed:            %s\n", formatSeconds(report.Elapsed))
	cmd.Printf("  Saved:              %s\n", evaluateOut)
	return nil
}

// evaluateProgress prints one line per scored question.
func evaluateProgress(cmd *cobra.Command) func(domain.BatchProgress) {
	return func(p domain.BatchProgress) {
		if p.Err != "" {
			cmd.Printf("[%d/%d] %s %s (%s)\n", p.Index, p.Total, warningStyle.Render("!"),
				truncateRunes(p.Question, 40), p.Err)
			return
		}
		cmd.Printf("[%d/%d] %s %s\n", p.Index, p.Total, successStyle.Render("✓"),
			truncateRunes(p.Question, 40))
	}
}
