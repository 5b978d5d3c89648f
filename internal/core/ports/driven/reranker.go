package driven

import (
	"context"

	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
)

// Reranker reorders retrieval candidates with a cross-encoder relevance
// model. This is an optional stage: when nil or failing, the pipeline
// keeps the vector-distance order.
type Reranker interface {
	// Rerank scores each candidate against the query and returns at
	// most topN of them, ordered by descending relevance score.
	Rerank(ctx context.Context, query string, candidates []domain.SearchResult, topN int) ([]domain.RankedChunk, error)

	// ModelName returns the cross-encoder model identifier.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
