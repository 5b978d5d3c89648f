package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Note: This is separate from DocumentStore which stores and searches
// vectors. EmbeddingService generates vectors; DocumentStore stores them.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// Implementations split oversized input sets into service-sized
	// batches transparently.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g. 1024).
	// This must match the vector column width in the document store.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
