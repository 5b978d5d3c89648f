// Package genai provides an LLM service adapter for the OCI Generative AI
// inference API.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
	"github.com/oshiete-dev/oshiete-cli/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultModel   = domain.DefaultChatModel
	DefaultTimeout = 120 * time.Second

	// chatPath is the inference API action for chat completions.
	chatPath = "/20231130/actions/chat"
)

// API format discriminators. The cohere family takes a flat single-message
// request; every other family takes the message-list request.
const (
	apiFormatCohere  = "COHERE"
	apiFormatGeneric = "GENERIC"
)

// Config holds configuration for the hosted LLM service.
type Config struct {
	// Endpoint is the inference API base URL (required), e.g.
	// https://inference.generativeai.<region>.oci.oraclecloud.com.
	Endpoint string

	// APIKey is the bearer token for the inference API (required).
	APIKey string

	// CompartmentID is the compartment OCID billed for inference (required).
	CompartmentID string

	// Model is the default chat model (default: cohere.command-a-03-2025).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService generates text using the hosted inference API.
type LLMService struct {
	client        *http.Client
	endpoint      string
	apiKey        string
	compartmentID string
	model         string
}

// chatDetails is the inference API request envelope.
type chatDetails struct {
	CompartmentID string      `json:"compartmentId"`
	ServingMode   servingMode `json:"servingMode"`
	ChatRequest   any         `json:"chatRequest"`
}

// servingMode selects the hosted model for a request.
type servingMode struct {
	ServingType string `json:"servingType"`
	ModelID     string `json:"modelId"`
}

// cohereChatRequest is the COHERE api-format chat request.
type cohereChatRequest struct {
	APIFormat        string  `json:"apiFormat"`
	Message          string  `json:"message"`
	MaxTokens        int     `json:"maxTokens"`
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"topP"`
	FrequencyPenalty float64 `json:"frequencyPenalty"`
	TopK             int     `json:"topK"`
}

// genericChatRequest is the GENERIC api-format chat request.
type genericChatRequest struct {
	APIFormat   string        `json:"apiFormat"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"maxTokens"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"topP"`
}

// chatMessage is one turn in a GENERIC chat request.
type chatMessage struct {
	Role    string        `json:"role"`
	Content []textContent `json:"content"`
}

// textContent is one content block in a GENERIC chat message.
type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// chatResult is the inference API response envelope.
type chatResult struct {
	ModelID      string       `json:"modelId"`
	ModelVersion string       `json:"modelVersion"`
	ChatResponse chatResponse `json:"chatResponse"`
}

// chatResponse carries the generated text. The populated field depends on
// the request's api format.
type chatResponse struct {
	APIFormat string `json:"apiFormat"`

	// Text is set for COHERE format responses.
	Text string `json:"text"`

	// Choices is set for GENERIC format responses.
	Choices []struct {
		Message struct {
			Role    string        `json:"role"`
			Content []textContent `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finishReason"`
	} `json:"choices"`
}

// apiError is the inference API error body.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewLLMService creates a new hosted LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.Endpoint == "" || cfg.APIKey == "" || cfg.CompartmentID == "" {
		return nil, fmt.Errorf("%w: generative AI endpoint, API key and compartment ID are required", domain.ErrNotConfigured)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &LLMService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		endpoint:      cfg.Endpoint,
		apiKey:        cfg.APIKey,
		compartmentID: cfg.CompartmentID,
		model:         cfg.Model,
	}, nil
}

// Generate produces a completion for the prompt. The request format is
// picked by model family; max tokens are clamped to the family ceiling.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	model := opts.Model
	if model == "" {
		model = s.model
	}
	maxTokens := domain.ClampMaxTokens(model, opts.MaxTokens)

	var chatRequest any
	if domain.FamilyOf(model) == domain.FamilyCohere {
		chatRequest = cohereChatRequest{
			APIFormat:        apiFormatCohere,
			Message:          prompt,
			MaxTokens:        maxTokens,
			Temperature:      opts.Temperature,
			TopP:             opts.TopP,
			FrequencyPenalty: opts.FrequencyPenalty,
			TopK:             opts.TopK,
		}
	} else {
		chatRequest = genericChatRequest{
			APIFormat: apiFormatGeneric,
			Messages: []chatMessage{
				{Role: "USER", Content: []textContent{{Type: "TEXT", Text: prompt}}},
			},
			MaxTokens:   maxTokens,
			Temperature: opts.Temperature,
			TopP:        opts.TopP,
		}
	}

	result, err := s.chat(ctx, chatDetails{
		CompartmentID: s.compartmentID,
		ServingMode: servingMode{
			ServingType: "ON_DEMAND",
			ModelID:     model,
		},
		ChatRequest: chatRequest,
	})
	if err != nil {
		return "", err
	}

	return extractText(result)
}

// chat sends one chat request and decodes the response envelope.
func (s *LLMService) chat(ctx context.Context, details chatDetails) (*chatResult, error) {
	jsonBody, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.endpoint+chatPath,
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
		return nil, fmt.Errorf("%w: chat returned 429: %s", domain.ErrRateLimited, apiMessage(body))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("genai error (status %d): %s", resp.StatusCode, apiMessage(body))
	}

	var result chatResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &result, nil
}

// extractText pulls the answer text out of a format-specific response.
func extractText(result *chatResult) (string, error) {
	if result.ChatResponse.Text != "" {
		return result.ChatResponse.Text, nil
	}

	for _, choice := range result.ChatResponse.Choices {
		for _, block := range choice.Message.Content {
			if block.Text != "" {
				return block.Text, nil
			}
		}
	}

	return "", fmt.Errorf("genai: empty chat response")
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

// ModelName returns the default chat model identifier.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the service by requesting a single-token completion.
// The inference host has no metadata endpoint, so a minimal real request
// is the only reliable reachability check.
func (s *LLMService) Ping(ctx context.Context) error {
	_, err := s.Generate(ctx, "ping", driven.GenerateOptions{MaxTokens: 1})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLLMUnavailable, err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
