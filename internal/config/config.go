// Package config loads runtime settings for the oshiete CLI.
//
// Settings are resolved in ascending precedence: built-in defaults, an
// optional TOML profile, a .env file, then live environment variables.
// The resulting Settings value is built once at process start and passed
// by reference; nothing mutates it afterwards.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
)

// DefaultChunkSize is the default chunk length in runes.
const DefaultChunkSize = 500

// DefaultChunkOverlap is the default overlap between adjacent chunks in runes.
const DefaultChunkOverlap = 50

// DefaultTopK is the default number of chunks retrieved per question.
const DefaultTopK = domain.DefaultTopK

// DefaultRerankModel is the cross-encoder served by the reranker endpoint.
const DefaultRerankModel = "hotchpotch/japanese-reranker-base-v2"

// Settings holds every runtime option for the oshiete CLI.
type Settings struct {
	Database    DatabaseSettings    `toml:"database"`
	ObjectStore ObjectStoreSettings `toml:"object_store"`
	FAQ         FAQSettings         `toml:"faq"`
	GenAI       GenAISettings       `toml:"genai"`
	Rerank      RerankSettings      `toml:"rerank"`
	Chunking    ChunkingSettings    `toml:"chunking"`
	TopK        int                 `toml:"top_k"`
}

// DatabaseSettings configures the Postgres document store.
type DatabaseSettings struct {
	URL string `toml:"url"`
}

// ObjectStoreSettings configures the S3-compatible bucket holding source files.
type ObjectStoreSettings struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Region    string `toml:"region"`
	UseSSL    bool   `toml:"use_ssl"`
	Bucket    string `toml:"bucket"`
}

// FAQSettings locates the evaluation workbook in object storage.
type FAQSettings struct {
	Bucket string `toml:"bucket"`
	Object string `toml:"object"`
}

// GenAISettings configures the generative AI inference service.
type GenAISettings struct {
	Region        string `toml:"region"`
	Endpoint      string `toml:"endpoint"`
	APIKey        string `toml:"api_key"`
	CompartmentID string `toml:"compartment_id"`
	EmbedModel    string `toml:"embed_model"`
	LLMModel      string `toml:"llm_model"`
}

// ResolvedEndpoint returns the explicit endpoint when set, otherwise the
// endpoint derived from the region. Empty when neither is configured.
func (g GenAISettings) ResolvedEndpoint() string {
	if g.Endpoint != "" {
		return g.Endpoint
	}
	if g.Region == "" {
		return ""
	}
	return fmt.Sprintf("https://inference.generativeai.%s.oci.oraclecloud.com", g.Region)
}

// RerankSettings configures the optional reranking stage.
type RerankSettings struct {
	Enabled  bool   `toml:"enabled"`
	Endpoint string `toml:"endpoint"`
	Model    string `toml:"model"`
}

// ChunkingSettings configures document splitting.
type ChunkingSettings struct {
	Size    int `toml:"size"`
	Overlap int `toml:"overlap"`
}

// Defaults returns the built-in settings before any file or env overrides.
func Defaults() Settings {
	return Settings{
		ObjectStore: ObjectStoreSettings{
			UseSSL: true,
		},
		GenAI: GenAISettings{
			EmbedModel: domain.DefaultEmbedModel,
			LLMModel:   domain.DefaultChatModel,
		},
		Rerank: RerankSettings{
			Enabled: true,
			Model:   DefaultRerankModel,
		},
		Chunking: ChunkingSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		TopK: DefaultTopK,
	}
}

// LoadOptions controls where Load looks for configuration files.
type LoadOptions struct {
	// EnvFile is an explicit .env path. When empty, ./.env is loaded if present.
	EnvFile string
	// ConfigFile is an explicit TOML profile path. When empty,
	// ~/.oshiete/config.toml is loaded if present.
	ConfigFile string
}

// Load builds Settings from defaults, the TOML profile, the .env file and
// the process environment, then validates the result.
func Load(opts LoadOptions) (*Settings, error) {
	s := Defaults()

	path := opts.ConfigFile
	explicit := path != ""
	if !explicit {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".oshiete", "config.toml")
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, &s); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		case os.IsNotExist(err) && !explicit:
			// The default profile is optional.
		default:
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			return nil, fmt.Errorf("loading env file %s: %w", opts.EnvFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if err := s.applyEnv(); err != nil {
		return nil, err
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

// applyEnv overlays environment variables onto the settings.
func (s *Settings) applyEnv() error {
	envString("DATABASE_URL", &s.Database.URL)

	envString("OBJECT_STORE_ENDPOINT", &s.ObjectStore.Endpoint)
	envString("OBJECT_STORE_ACCESS_KEY", &s.ObjectStore.AccessKey)
	envString("OBJECT_STORE_SECRET_KEY", &s.ObjectStore.SecretKey)
	envString("OBJECT_STORE_REGION", &s.ObjectStore.Region)
	envString("OBJECT_STORE_BUCKET", &s.ObjectStore.Bucket)
	if err := envBool("OBJECT_STORE_USE_SSL", &s.ObjectStore.UseSSL); err != nil {
		return err
	}

	envString("FAQ_BUCKET", &s.FAQ.Bucket)
	envString("FAQ_OBJECT", &s.FAQ.Object)

	envString("GENAI_REGION", &s.GenAI.Region)
	envString("GENAI_ENDPOINT", &s.GenAI.Endpoint)
	envString("GENAI_API_KEY", &s.GenAI.APIKey)
	envString("GENAI_COMPARTMENT_ID", &s.GenAI.CompartmentID)
	envString("EMBED_MODEL", &s.GenAI.EmbedModel)
	envString("LLM_MODEL", &s.GenAI.LLMModel)

	envString("RERANK_ENDPOINT", &s.Rerank.Endpoint)
	envString("RERANK_MODEL", &s.Rerank.Model)
	if err := envBool("RERANK_ENABLED", &s.Rerank.Enabled); err != nil {
		return err
	}

	if err := envInt("CHUNK_SIZE", &s.Chunking.Size); err != nil {
		return err
	}
	if err := envInt("CHUNK_OVERLAP", &s.Chunking.Overlap); err != nil {
		return err
	}
	return envInt("TOP_K", &s.TopK)
}

// Validate checks cross-field consistency. Presence of credentials is not
// checked here; each adapter reports ErrNotConfigured when constructed
// without the settings it needs.
func (s *Settings) Validate() error {
	if s.Chunking.Size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidInput, s.Chunking.Size)
	}
	if s.Chunking.Overlap < 0 {
		return fmt.Errorf("%w: chunk overlap must not be negative, got %d", domain.ErrInvalidInput, s.Chunking.Overlap)
	}
	if s.Chunking.Overlap >= s.Chunking.Size {
		return fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d",
			domain.ErrInvalidInput, s.Chunking.Overlap, s.Chunking.Size)
	}
	if s.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidInput, s.TopK)
	}
	if !domain.IsSupportedEmbedModel(s.GenAI.EmbedModel) {
		return fmt.Errorf("%w: unsupported embedding model %q", domain.ErrInvalidInput, s.GenAI.EmbedModel)
	}
	if !domain.IsSupportedChatModel(s.GenAI.LLMModel) {
		return fmt.Errorf("%w: unsupported LLM model %q", domain.ErrInvalidInput, s.GenAI.LLMModel)
	}
	return nil
}

// DatabaseConfigured reports whether the document store can be constructed.
func (s *Settings) DatabaseConfigured() bool {
	return s.Database.URL != ""
}

// ObjectStoreConfigured reports whether the object store can be constructed.
func (s *Settings) ObjectStoreConfigured() bool {
	return s.ObjectStore.Endpoint != "" &&
		s.ObjectStore.AccessKey != "" &&
		s.ObjectStore.SecretKey != "" &&
		s.ObjectStore.Bucket != ""
}

// GenAIConfigured reports whether the inference client can be constructed.
func (s *Settings) GenAIConfigured() bool {
	return s.GenAI.APIKey != "" &&
		s.GenAI.CompartmentID != "" &&
		s.GenAI.ResolvedEndpoint() != ""
}

// RerankConfigured reports whether the reranking stage is available.
func (s *Settings) RerankConfigured() bool {
	return s.Rerank.Enabled && s.Rerank.Endpoint != ""
}

// FAQConfigured reports whether the evaluation workbook is locatable.
func (s *Settings) FAQConfigured() bool {
	return s.FAQ.Bucket != "" && s.FAQ.Object != ""
}

// envString overwrites dst when the variable is set and non-empty.
func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// envInt overwrites dst when the variable is set and parses as an integer.
func envInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%w: %s must be an integer, got %q", domain.ErrInvalidInput, key, v)
	}
	*dst = n
	return nil
}

// envBool overwrites dst when the variable is set and parses as a boolean.
func envBool(key string, dst *bool) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%w: %s must be a boolean, got %q", domain.ErrInvalidInput, key, v)
	}
	*dst = b
	return nil
}
