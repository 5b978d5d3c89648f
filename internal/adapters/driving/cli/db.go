package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the document store",
	Long:  `Initialise the schema, show stored counts, or delete stored documents.`,
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create or migrate the database schema",
	Long: `Init applies the embedded migrations: the pgvector extension, the
documents and chunks tables and the similarity index. Safe to run
repeatedly.`,
	RunE: runDBInit,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show document and chunk counts",
	RunE:  runDBStats,
}

var dbListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested documents",
	RunE:  runDBList,
}

var dbCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete stored documents",
	Long: `Cleanup deletes one document and its chunks (--document) or every
stored row (--all). Exactly one of the two must be given.`,
	RunE: runDBCleanup,
}

// Cleanup flags.
var (
	cleanupAll      bool
	cleanupDocument string
)

func init() {
	dbCleanupCmd.Flags().BoolVar(&cleanupAll, "all", false, "delete every document and chunk")
	dbCleanupCmd.Flags().StringVar(&cleanupDocument, "document", "", "delete one document by ID")

	dbCmd.AddCommand(dbInitCmd)
	dbCmd.AddCommand(dbStatsCmd)
	dbCmd.AddCommand(dbListCmd)
	dbCmd.AddCommand(dbCleanupCmd)
	rootCmd.AddCommand(dbCmd)
}

func runDBInit(cmd *cobra.Command, _ []string) error {
	if adminService == nil {
		return errors.New("admin service not configured")
	}

	ctx := context.Background()

	if err := adminService.InitSchema(ctx); err != nil {
		return fmt.Errorf("initialising schema: %w", err)
	}
	cmd.Println("Schema is up to date.")
	return nil
}

func runDBStats(cmd *cobra.Command, _ []string) error {
	if adminService == nil {
		return errors.New("admin service not configured")
	}

	ctx := context.Background()

	stats, err := adminService.Stats(ctx)
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}
	cmd.Printf("Documents: %d\n", stats.Documents)
	cmd.Printf("Chunks:    %d\n", stats.Chunks)
	return nil
}

func runDBList(cmd *cobra.Command, _ []string) error {
	if adminService == nil {
		return errors.New("admin service not configured")
	}

	ctx := context.Background()

	docs, err := adminService.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}
	if len(docs) == 0 {
		cmd.Println("No documents ingested yet.")
		return nil
	}

	cmd.Printf("%-36s  %-30s  %-12s  %10s  %s\n", "ID", "FILENAME", "FILTERING", "TEXT CHARS", "REGISTERED")
	for _, doc := range docs {
		cmd.Printf("%-36s  %-30s  %-12s  %10d  %s\n",
			doc.ID,
			truncateRunes(doc.Filename, 30),
			doc.Filtering,
			doc.TextLength,
			doc.RegisteredAt.Format("2006-01-02 15:04"))
	}
	cmd.Printf("\n%d documents\n", len(docs))
	return nil
}

func runDBCleanup(cmd *cobra.Command, _ []string) error {
	if adminService == nil {
		return errors.New("admin service not configured")
	}
	if cleanupAll == (cleanupDocument != "") {
		return errors.New("pass exactly one of --all or --document")
	}

	ctx := context.Background()

	if cleanupAll {
		docs, chunks, err := adminService.DeleteAll(ctx)
		if err != nil {
			return fmt.Errorf("deleting documents: %w", err)
		}
		cmd.Printf("Deleted %d documents and %d chunks.\n", docs, chunks)
		return nil
	}

	if err := adminService.DeleteDocument(ctx, cleanupDocument); err != nil {
		return fmt.Errorf("deleting document %s: %w", cleanupDocument, err)
	}
	cmd.Printf("Deleted document %s.\n", cleanupDocument)
	return nil
}
