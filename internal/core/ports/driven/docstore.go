package driven

import (
	"context"

	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
)

// DocumentStore persists documents and chunks and performs vector
// similarity search. Storage durability and nearest-neighbour ordering
// are delegated to the underlying database engine.
type DocumentStore interface {
	// SaveDocumentWithChunks stores a document and its chunks in a
	// single unit of work. Any error discards the whole file's writes.
	SaveDocumentWithChunks(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error

	// SearchSimilar returns the topK nearest chunks to the embedding by
	// cosine distance, ordered by non-decreasing distance. A non-empty
	// filtering restricts results to documents with that category.
	SearchSimilar(ctx context.Context, embedding []float32, topK int, filtering string) ([]domain.SearchResult, error)

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound when it does not exist.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns all documents ordered by registration time.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document; its chunks cascade.
	// Returns domain.ErrNotFound when it does not exist.
	DeleteDocument(ctx context.Context, id string) error

	// DeleteAll removes every document and chunk and reports the counts.
	DeleteAll(ctx context.Context) (docs int64, chunks int64, err error)

	// Stats returns row counts.
	Stats(ctx context.Context) (*domain.StoreStats, error)

	// Ping validates the database is reachable.
	Ping(ctx context.Context) error

	// Close releases the connection pool.
	Close() error
}

// SchemaManager applies the persisted schema. Kept separate from
// DocumentStore so read/write paths cannot accidentally migrate.
type SchemaManager interface {
	// InitSchema applies pending migrations. Idempotent.
	InitSchema(ctx context.Context) error
}
