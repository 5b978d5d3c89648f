// Package tei provides a reranker adapter for a text-embeddings-inference
// style /rerank endpoint.
package tei

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
	"github.com/oshiete-dev/oshiete-cli/internal/core/ports/driven"
)

// Ensure Reranker implements the interface.
var _ driven.Reranker = (*Reranker)(nil)

// Default configuration values.
const (
	DefaultModel   = "hotchpotch/japanese-reranker-base-v2"
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration for the reranker service.
type Config struct {
	// Endpoint is the inference server base URL (required).
	Endpoint string

	// Model is the served cross-encoder identifier, for display only;
	// the server decides which model it runs
	// (default: hotchpotch/japanese-reranker-base-v2).
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Reranker scores retrieval candidates with a hosted cross-encoder.
type Reranker struct {
	client   *http.Client
	endpoint string
	model    string
}

// rerankRequest is the /rerank request format.
type rerankRequest struct {
	Query     string   `json:"query"`
	Texts     []string `json:"texts"`
	RawScores bool     `json:"raw_scores"`
}

// rerankResult is one entry of the /rerank response array.
type rerankResult struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// New creates a new reranker client.
func New(cfg Config) (*Reranker, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: reranker endpoint is required", domain.ErrNotConfigured)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Reranker{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		model:    cfg.Model,
	}, nil
}

// Rerank scores each candidate against the query and returns at most topN
// of them, ordered by descending relevance score.
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []domain.SearchResult, topN int) ([]domain.RankedChunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}
	if topN <= 0 {
		return nil, fmt.Errorf("%w: topN must be positive", domain.ErrInvalidInput)
	}
	if len(candidates) == 0 {
		return []domain.RankedChunk{}, nil
	}

	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Content
	}

	results, err := r.rerank(ctx, rerankRequest{
		Query:     query,
		Texts:     texts,
		RawScores: false,
	})
	if err != nil {
		return nil, err
	}

	ranked := make([]domain.RankedChunk, 0, len(results))
	for _, res := range results {
		if res.Index < 0 || res.Index >= len(candidates) {
			return nil, fmt.Errorf("rerank: index %d out of range for %d candidates", res.Index, len(candidates))
		}
		c := candidates[res.Index]
		score := res.Score
		ranked = append(ranked, domain.RankedChunk{
			ChunkID:     c.ChunkID,
			DocumentID:  c.DocumentID,
			Filename:    c.Filename,
			Content:     c.Content,
			Distance:    c.Distance,
			RerankScore: &score,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		return *ranked[i].RerankScore > *ranked[j].RerankScore
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked, nil
}

// rerank sends one /rerank request and decodes the response array.
func (r *Reranker) rerank(ctx context.Context, reqBody rerankRequest) ([]rerankResult, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		r.endpoint+"/rerank",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	// The server answers 429 when its inference queue is full.
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: rerank returned 429: %s", domain.ErrRateLimited, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rerank error (status %d): %s", resp.StatusCode, string(body))
	}

	var results []rerankResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return results, nil
}

// ModelName returns the cross-encoder model identifier.
func (r *Reranker) ModelName() string {
	return r.model
}

// Ping validates the server is reachable via its health route.
func (r *Reranker) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("create ping request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRerankerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health returned status %d", domain.ErrRerankerUnavailable, resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (r *Reranker) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
