package domain

const unknownDescription = "Unknown"

// ModelFamily identifies the provider family a hosted model belongs to.
// The family decides the chat request format and the max-token ceiling.
type ModelFamily string

// Supported model families.
const (
	// FamilyCohere uses the COHERE chat format (single message string).
	FamilyCohere ModelFamily = "cohere"

	// FamilyMeta uses the GENERIC chat format.
	FamilyMeta ModelFamily = "meta"

	// FamilyXAI uses the GENERIC chat format.
	FamilyXAI ModelFamily = "xai"

	// FamilyGoogle uses the GENERIC chat format.
	FamilyGoogle ModelFamily = "google"

	// FamilyOpenAI uses the GENERIC chat format.
	FamilyOpenAI ModelFamily = "openai"
)

// Max-token ceilings per family. Requests above the ceiling are clamped.
const (
	// MaxTokensCohere is the hard output ceiling for cohere chat models.
	MaxTokensCohere = 4000

	// MaxTokensDefault is the output ceiling for all other families.
	MaxTokensDefault = 128000
)

// ChatModels lists the supported chat model identifiers.
var ChatModels = []string{
	"cohere.command-a-03-2025",
	"cohere.command-r-plus-08-2024",
	"meta.llama-3.3-70b-instruct",
	"xai.grok-4-fast-non-reasoning",
	"xai.grok-4-fast-reasoning",
	"xai.grok-4",
	"google.gemini-2.5-pro",
	"google.gemini-2.5-flash",
	"google.gemini-2.5-flash-lite",
	"openai.gpt-oss-20b",
	"openai.gpt-oss-120b",
}

// EmbedModels lists the supported embedding model identifiers.
var EmbedModels = []string{
	"cohere.embed-v4.0",
}

// Default model identifiers.
const (
	// DefaultChatModel is used when no model is configured or requested.
	DefaultChatModel = "cohere.command-a-03-2025"

	// DefaultEmbedModel is used when no embedding model is configured.
	DefaultEmbedModel = "cohere.embed-v4.0"

	// DefaultEmbedDimensions is the vector width of DefaultEmbedModel.
	DefaultEmbedDimensions = 1024
)

// Default generation parameters. Services fill these into generate
// requests when the caller does not override them.
const (
	DefaultTemperature      = 0.3
	DefaultTopP             = 0.75
	DefaultFrequencyPenalty = 0.0
	DefaultSamplingTopK     = 0
)

// IsValid returns true if the family is recognised.
func (f ModelFamily) IsValid() bool {
	switch f {
	case FamilyCohere, FamilyMeta, FamilyXAI, FamilyGoogle, FamilyOpenAI:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (f ModelFamily) String() string {
	return string(f)
}

// Description returns a human-readable description of the family.
func (f ModelFamily) Description() string {
	switch f {
	case FamilyCohere:
		return "Cohere (COHERE chat format)"
	case FamilyMeta:
		return "Meta Llama (GENERIC chat format)"
	case FamilyXAI:
		return "xAI Grok (GENERIC chat format)"
	case FamilyGoogle:
		return "Google Gemini (GENERIC chat format)"
	case FamilyOpenAI:
		return "OpenAI GPT-OSS (GENERIC chat format)"
	default:
		return unknownDescription
	}
}

// MaxTokens returns the output token ceiling for the family.
func (f ModelFamily) MaxTokens() int {
	if f == FamilyCohere {
		return MaxTokensCohere
	}
	return MaxTokensDefault
}

// FamilyOf derives the model family from a model identifier prefix.
// Returns an empty family for identifiers with no recognised prefix.
func FamilyOf(modelID string) ModelFamily {
	for i := 0; i < len(modelID); i++ {
		if modelID[i] == '.' {
			f := ModelFamily(modelID[:i])
			if f.IsValid() {
				return f
			}
			return ""
		}
	}
	return ""
}

// IsSupportedChatModel reports whether the identifier is in the chat catalog.
func IsSupportedChatModel(modelID string) bool {
	for _, m := range ChatModels {
		if m == modelID {
			return true
		}
	}
	return false
}

// IsSupportedEmbedModel reports whether the identifier is in the embedding catalog.
func IsSupportedEmbedModel(modelID string) bool {
	for _, m := range EmbedModels {
		if m == modelID {
			return true
		}
	}
	return false
}

// ClampMaxTokens applies the family ceiling to a requested max-token count.
// Non-positive requests get the full ceiling.
func ClampMaxTokens(modelID string, requested int) int {
	limit := FamilyOf(modelID).MaxTokens()
	if requested <= 0 || requested > limit {
		return limit
	}
	return requested
}
