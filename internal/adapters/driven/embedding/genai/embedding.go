// Package genai provides an embedding service adapter for the OCI
// Generative AI inference API.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
	"github.com/oshiete-dev/oshiete-cli/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel   = domain.DefaultEmbedModel
	DefaultTimeout = 60 * time.Second

	// DefaultRequestsPerSecond throttles embedText calls so bulk
	// ingestion stays under the tenancy request quota.
	DefaultRequestsPerSecond = 2.0

	// MaxBatchSize is the embedText input cap per request. Larger input
	// sets are split transparently.
	MaxBatchSize = 96

	// embedTextPath is the inference API action for text embeddings.
	embedTextPath = "/20231130/actions/embedText"
)

// Config holds configuration for the hosted embedding service.
type Config struct {
	// Endpoint is the inference API base URL (required), e.g.
	// https://inference.generativeai.<region>.oci.oraclecloud.com.
	Endpoint string

	// APIKey is the bearer token for the inference API (required).
	APIKey string

	// CompartmentID is the compartment OCID billed for inference (required).
	CompartmentID string

	// Model is the embedding model identifier (default: cohere.embed-v4.0).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// Dimensions overrides the vector width reported by Dimensions().
	// The default matches the catalog entry for Model.
	Dimensions int

	// RequestsPerSecond bounds the request rate (default: 2).
	RequestsPerSecond float64
}

// EmbeddingService generates embeddings using the hosted inference API.
type EmbeddingService struct {
	client        *http.Client
	endpoint      string
	apiKey        string
	compartmentID string
	model         string
	dimensions    int
	limiter       *rate.Limiter
}

// embedTextRequest is the inference API request format.
type embedTextRequest struct {
	Inputs        []string    `json:"inputs"`
	ServingMode   servingMode `json:"servingMode"`
	CompartmentID string      `json:"compartmentId"`
	Truncate      string      `json:"truncate"`
}

// servingMode selects the hosted model for a request.
type servingMode struct {
	ServingType string `json:"servingType"`
	ModelID     string `json:"modelId"`
}

// embedTextResponse is the inference API response format.
type embedTextResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// apiError is the inference API error body.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEmbeddingService creates a new hosted embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.Endpoint == "" || cfg.APIKey == "" || cfg.CompartmentID == "" {
		return nil, fmt.Errorf("%w: generative AI endpoint, API key and compartment ID are required", domain.ErrNotConfigured)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}

	dimensions := cfg.Dimensions
	if dimensions == 0 {
		dimensions = domain.DefaultEmbedDimensions
	}

	return &EmbeddingService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		endpoint:      cfg.Endpoint,
		apiKey:        cfg.APIKey,
		compartmentID: cfg.CompartmentID,
		model:         cfg.Model,
		dimensions:    dimensions,
		limiter:       rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("genai: no embedding returned")
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts. Input sets larger
// than MaxBatchSize are split into sequential requests; the results keep
// input order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += MaxBatchSize {
		end := start + MaxBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := s.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		embeddings = append(embeddings, batch...)
	}

	return embeddings, nil
}

// embedBatch sends a single embedText request. len(texts) must not
// exceed MaxBatchSize.
func (s *EmbeddingService) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	reqBody := embedTextRequest{
		Inputs: texts,
		ServingMode: servingMode{
			ServingType: "ON_DEMAND",
			ModelID:     s.model,
		},
		CompartmentID: s.compartmentID,
		Truncate:      "NONE",
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.endpoint+embedTextPath,
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: embedText returned 429: %s", domain.ErrRateLimited, apiMessage(body))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("genai error (status %d): %s", resp.StatusCode, apiMessage(body))
	}

	var embedResp embedTextResponse
	if err := json.Unmarshal(body, &embedResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(embedResp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("genai: expected %d embeddings, got %d", len(texts), len(embedResp.Embeddings))
	}

	return embedResp.Embeddings, nil
}

// apiMessage extracts the error message from an API error body, falling
// back to the raw body when it is not the documented JSON shape.
func apiMessage(body []byte) string {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return apiErr.Message
	}
	return string(body)
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the service by embedding a single short input. The
// inference host has no metadata endpoint, so a minimal real request is
// the only reliable reachability check.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.embedBatch(ctx, []string{"ping"}); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
