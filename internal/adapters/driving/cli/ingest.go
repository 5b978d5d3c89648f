package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest bucket documents into the vector store",
	Long: `Ingest lists the objects in the configured bucket, extracts their text,
splits it into overlapping chunks, embeds each chunk and stores the
result in the document store.

Documents under a folder get that folder name as their filtering
category; --filtering sets the category for documents at the bucket
root. One file's failure never aborts the run.`,
	RunE: runIngest,
}

// Ingest flags.
var (
	ingestPrefix    string
	ingestFiltering string
)

func init() {
	ingestCmd.Flags().StringVarP(&ingestPrefix, "prefix", "p", "", "only ingest objects under this key prefix")
	ingestCmd.Flags().StringVarP(&ingestFiltering, "filtering", "f", "", "filtering category for documents without a folder")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured (set OBJECT_STORE_*, GENAI_* and DATABASE_URL)")
	}

	ctx := context.Background()

	opts := domain.IngestOptions{
		Prefix:    ingestPrefix,
		Filtering: ingestFiltering,
		Progress: func(p domain.IngestProgress) {
			if p.Stage != domain.StageDone || p.Outcome == nil {
				return
			}
			o := p.Outcome
			switch o.Status {
			case domain.FileSucceeded:
				cmd.Printf("[%d/%d] %s %s (%d chunks)\n", p.Index, p.Total, statusGlyph(o.Status), o.Filename, o.ChunksSaved)
			default:
				cmd.Printf("[%d/%d] %s %s (%s: %s)\n", p.Index, p.Total, statusGlyph(o.Status), o.Filename, o.Status, o.Reason)
			}
		},
	}

	report, err := ingestService.Ingest(ctx, opts)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Println()
	cmd.Println(headingStyle.Render("Ingest summary"))
	cmd.Printf("  Files:     %d\n", report.TotalFiles)
	cmd.Printf("  Succeeded: %d\n", report.Succeeded)
	cmd.Printf("  Failed:    %d\n", report.Failed)
	cmd.Printf("  Skipped:   %d\n", report.Skipped)
	cmd.Printf("  Chunks:    %d\n", report.TotalChunks)
	cmd.Printf("  Elapsed:   %s\n", formatSeconds(report.Elapsed))

	if report.Failed > 0 {
		cmd.Println()
		cmd.Println(errorStyle.Render("Failed files:"))
		for _, o := range report.Outcomes {
			if o.Status == domain.FileFailed {
				cmd.Printf("  %s: %s\n", o.Filename, o.Reason)
			}
		}
	}
	return nil
}
