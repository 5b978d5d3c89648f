package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Answer every question in the FAQ workbook",
	Long: `Batch loads the FAQ workbook from the configured bucket, answers every
question through the retrieval pipeline and writes a results workbook
with per-question answers and stage timings.

Each workbook row may carry a filtering category; one question's
failure never aborts the batch.`,
	RunE: runBatch,
}

// Batch flags.
var (
	batchOut   string
	batchModel string
)

func init() {
	batchCmd.Flags().StringVarP(&batchOut, "out", "o", "results.xlsx", "output workbook path")
	batchCmd.Flags().StringVarP(&batchModel, "model", "m", "", "chat model override")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, _ []string) error {
	if answerService == nil {
		return errors.New("answer service not configured (set DATABASE_URL and GENAI_*)")
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

	result, err := answerService.AskBatch(ctx, entries, domain.AskOptions{Model: batchModel}, batchProgress(cmd))
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}

	report := &domain.EvaluationReport{
		ModelUsed: result.ModelUsed,
		Elapsed:   result.Elapsed,
	}
	for _, item := range result.Items {
		report.Items = append(report.Items, domain.EvaluatedItem{BatchItem: item})
	}

	if err := faqStore.SaveResults(ctx, batchOut, report, workbookSettings(result.ModelUsed, "")); err != nil {
		return fmt.Errorf("saving results: %w", err)
	}

	cmd.Println()
	cmd.Println(headingStyle.Render("Batch summary"))
	cmd.Printf("  Questions: %d\n", len(result.Items))
	cmd.Printf("  Succeeded: %d\n", result.Succeeded)
	cmd.Printf("  Failed:    %d\n", result.Failed)
	cmd.Printf("  Model:     %s\n", result.ModelUsed)
	cmd.Printf("  Elapsed:   %s\n", formatSeconds(result.Elapsed))
	cmd.Printf("  Saved:     %s\n", batchOut)
	return nil
}

// loadFAQEntries fetches the workbook from the FAQ bucket and parses it.
func loadFAQEntries(ctx context.Context) ([]domain.FAQEntry, error) {
	raw, err := faqObjects.Fetch(ctx, settings.FAQ.Object)
	if err != nil {
		return nil, fmt.Errorf("fetching FAQ workbook: %w", err)
	}
	entries, err := faqStore.LoadFAQ(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("parsing FAQ workbook: %w", err)
	}
	if len(entries) == 0 {
		return nil, errors.New("FAQ workbook contains no questions")
	}
	return entries, nil
}

// batchProgress prints one line per answered question.
func batchProgress(cmd *cobra.Command) func(domain.BatchProgress) {
	return func(p domain.BatchProgress) {
		if p.Err != "" {
			cmd.Printf("[%d/%d] %s %s (%s)\n", p.Index, p.Total, errorStyle.Render("✗"),
				truncateRunes(p.Question, 40), p.Err)
			return
		}
		cmd.Printf("[%d/%d] %s %s\n", p.Index, p.Total, successStyle.Render("✓"),
			truncateRunes(p.Question, 40))
	}
}

// workbookSettings collects the run parameters recorded on the Settings
// sheet of a results workbook.
func workbookSettings(modelUsed, judgeModel string) map[string]string {
	params := map[string]string{
		"model":        modelUsed,
		"generated_at": time.Now().Format(time.RFC3339),
	}
	if judgeModel != "" {
		params["judge_model"] = judgeModel
	}
	if settings != nil {
		params["embed_model"] = settings.GenAI.EmbedModel
		params["top_k"] = fmt.Sprintf("%d", settings.TopK)
		params["chunk_size"] = fmt.Sprintf("%d", settings.Chunking.Size)
		params["chunk_overlap"] = fmt.Sprintf("%d", settings.Chunking.Overlap)
		params["rerank_enabled"] = fmt.Sprintf("%t", settings.RerankConfigured())
		if settings.RerankConfigured() {
			params["rerank_model"] = settings.Rerank.Model
		}
	}
	return params
}
