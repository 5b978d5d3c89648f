package driving

import (
	"context"

	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
)

// AnswerService runs the retrieval pipeline for questions:
// embed query, vector search, optional rerank, generate.
type AnswerService interface {
	// Ask answers a single question and reports per-stage latencies.
	Ask(ctx context.Context, question string, opts domain.AskOptions) (*domain.RAGResult, error)

	// AskBatch answers every FAQ entry, classifying each as success or
	// failure without aborting the batch. The progress callback may be
	// nil.
	AskBatch(ctx context.Context, entries []domain.FAQEntry, opts domain.AskOptions, progress func(domain.BatchProgress)) (*domain.BatchResult, error)
}
