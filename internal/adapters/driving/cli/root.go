// Package cli implements the oshiete command-line interface.
//
// Commands are declared as package variables and registered with the root
// command in init(). The root command's PersistentPreRunE loads settings
// and wires adapters into the package-level service variables; a service
// stays nil when the settings it needs are absent, and each command
// guards against that.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshiete-dev/oshiete-cli/internal/config"
	"github.com/oshiete-dev/oshiete-cli/internal/core/ports/driven"
	"github.com/oshiete-dev/oshiete-cli/internal/core/ports/driving"
	"github.com/oshiete-dev/oshiete-cli/internal/logger"
)

// version is stamped at build time via -ldflags.
var version = "dev"

// Services consumed by the commands, wired by initServices.
var (
	ingestService     driving.IngestService
	answerService     driving.AnswerService
	evaluationService driving.EvaluationService
	adminService      driving.AdminService

	// faqStore parses and writes question workbooks; faqObjects is the
	// bucket holding the ground-truth workbook.
	faqStore   driven.FAQStore
	faqObjects driven.ObjectStore

	settings *config.Settings
)

// servicesWired suppresses wiring when the services were injected
// directly. Tests do this.
var servicesWired bool

// Root flags.
var (
	verbose    bool
	envFile    string
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "oshiete",
	Short: "Document ingestion and RAG question answering",
	Long: `oshiete ingests documents from object storage into a pgvector store and
answers questions about them with retrieval-augmented generation.

Typical flow:
  oshiete db init     create the database schema
  oshiete ingest      extract, chunk, embed and store bucket documents
  oshiete ask "..."   answer a single question
  oshiete batch       answer every question in the FAQ workbook
  oshiete evaluate    score batch answers against ground truth`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "path to a .env file (default ./.env)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a TOML profile (default ~/.oshiete/config.toml)")
}

// initServices loads settings and wires adapters into the service
// variables. Commands that only print static information skip wiring,
// so they work with no configuration at all.
func initServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	switch cmd.Name() {
	case "version", "models", "help", "completion":
		return nil
	}
	if servicesWired {
		return nil
	}

	s, err := config.Load(config.LoadOptions{EnvFile: envFile, ConfigFile: configFile})
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	settings = s

	if err := wireServices(cmd.Context(), s); err != nil {
		return err
	}
	servicesWired = true
	return nil
}
