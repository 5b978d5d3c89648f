package driving

import (
	"context"

	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
)

// EvaluationService scores batch answers against ground truth with
// RAGAS-style metrics (faithfulness, answer correctness, context
// precision, context recall).
type EvaluationService interface {
	// Evaluate computes metrics for every answered question in the
	// batch. Per-question metric failures are recorded, not fatal.
	// The progress callback may be nil.
	Evaluate(ctx context.Context, batch *domain.BatchResult, opts domain.EvaluateOptions, progress func(domain.BatchProgress)) (*domain.EvaluationReport, error)
}
