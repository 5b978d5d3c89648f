package driven

import "context"

// LLMService generates text through a hosted chat endpoint.
//
// Rate-limit responses surface as domain.ErrRateLimited so callers can
// wrap Generate in the retry helper; the adapter itself never sleeps.
type LLMService interface {
	// Generate produces a completion for the prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the default chat model identifier.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
// An empty Model and a zero MaxTokens fall back to the service defaults;
// sampling parameters are sent as given (0.0 temperature is deterministic,
// not "unset").
type GenerateOptions struct {
	// Model overrides the default model for this call.
	Model string

	// MaxTokens is the maximum number of tokens to generate.
	// Values above the model family's ceiling are clamped.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// TopP is the nucleus sampling parameter.
	TopP float64

	// FrequencyPenalty discourages repetition (cohere family only).
	FrequencyPenalty float64

	// TopK limits sampling to the K most likely tokens
	// (cohere family only, 0 disables).
	TopK int
}
