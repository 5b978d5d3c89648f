package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the health of every configured dependency",
	Long: `Doctor pings the database, the object store, the embedding service,
the LLM service and the reranker, and reports what is reachable,
unreachable or not configured.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	if adminService == nil {
		return errors.New("admin service not configured")
	}

	ctx := context.Background()

	unhealthy := 0
	for _, status := range adminService.Doctor(ctx) {
		switch {
		case !status.Configured:
			cmd.Printf("%s %-18s %s\n", healthGlyph(status), status.Name, mutedStyle.Render("not configured"))
		case status.Err != nil:
			unhealthy++
			cmd.Printf("%s %-18s %v\n", healthGlyph(status), status.Name, status.Err)
		default:
			cmd.Printf("%s %-18s ok\n", healthGlyph(status), status.Name)
		}
	}

	if unhealthy > 0 {
		return errors.New("some dependencies are unhealthy")
	}
	return nil
}
