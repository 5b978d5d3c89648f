package driving

import (
	"context"

	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
)

// AdminService manages the persisted schema and stored data.
type AdminService interface {
	// InitSchema applies pending database migrations. Idempotent.
	InitSchema(ctx context.Context) error

	// Stats returns document and chunk counts.
	Stats(ctx context.Context) (*domain.StoreStats, error)

	// ListDocuments returns every ingested document.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes one document; its chunks cascade.
	DeleteDocument(ctx context.Context, id string) error

	// DeleteAll removes every document and chunk and reports the counts.
	DeleteAll(ctx context.Context) (docs int64, chunks int64, err error)

	// Doctor pings every configured dependency and reports its status.
	Doctor(ctx context.Context) []DependencyStatus
}

// DependencyStatus reports one external dependency's health.
type DependencyStatus struct {
	// Name identifies the dependency (e.g. "database", "object store").
	Name string

	// Configured is false when the dependency is optional and absent.
	Configured bool

	// Err holds the ping failure; nil when healthy or unconfigured.
	Err error
}
