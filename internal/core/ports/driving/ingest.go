package driving

import (
	"context"

	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
)

// IngestService runs the data pipeline: list bucket objects, extract
// text, chunk, embed, persist. Files are processed sequentially and
// one file's failure never aborts the run.
type IngestService interface {
	// Ingest processes every object under the configured bucket
	// (optionally restricted by opts.Prefix) and reports per-file
	// outcomes.
	Ingest(ctx context.Context, opts domain.IngestOptions) (*domain.IngestReport, error)
}
