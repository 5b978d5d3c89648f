package services

import (
	"context"
	"fmt"

	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
	"github.com/oshiete-dev/oshiete-cli/internal/core/ports/driven"
	"github.com/oshiete-dev/oshiete-cli/internal/core/ports/driving"
	"github.com/oshiete-dev/oshiete-cli/internal/logger"
)

// Ensure AdminService implements the interface.
var _ driving.AdminService = (*AdminService)(nil)

// AdminService manages the persisted schema and stored data, and checks
// dependency health. Any dependency may be nil when unconfigured; data
// operations then fail with ErrNotConfigured while Doctor reports the
// dependency as absent.
type AdminService struct {
	schema   driven.SchemaManager
	docs     driven.DocumentStore
	objects  driven.ObjectStore
	embedder driven.EmbeddingService
	llm      driven.LLMService
	reranker driven.Reranker
}

// NewAdminService creates an admin service.
func NewAdminService(
	schema driven.SchemaManager,
	docs driven.DocumentStore,
	objects driven.ObjectStore,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	reranker driven.Reranker,
) *AdminService {
	return &AdminService{
		schema:   schema,
		docs:     docs,
		objects:  objects,
		embedder: embedder,
		llm:      llm,
		reranker: reranker,
	}
}

// InitSchema applies pending database migrations.
func (s *AdminService) InitSchema(ctx context.Context) error {
	if s.schema == nil {
		return fmt.Errorf("%w: database", domain.ErrNotConfigured)
	}
	if err := s.schema.InitSchema(ctx); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	logger.Info("Schema is up to date")
	return nil
}

// Stats returns document and chunk counts.
func (s *AdminService) Stats(ctx context.Context) (*domain.StoreStats, error) {
	if s.docs == nil {
		return nil, fmt.Errorf("%w: database", domain.ErrNotConfigured)
	}
	return s.docs.Stats(ctx)
}

// ListDocuments returns every ingested document.
func (s *AdminService) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	if s.docs == nil {
		return nil, fmt.Errorf("%w: database", domain.ErrNotConfigured)
	}
	return s.docs.ListDocuments(ctx)
}

// DeleteDocument removes one document; its chunks cascade.
func (s *AdminService) DeleteDocument(ctx context.Context, id string) error {
	if s.docs == nil {
		return fmt.Errorf("%w: database", domain.ErrNotConfigured)
	}
	if id == "" {
		return fmt.Errorf("%w: document ID is empty", domain.ErrInvalidInput)
	}
	if err := s.docs.DeleteDocument(ctx, id); err != nil {
		return err
	}
	logger.Info("Deleted document %s", id)
	return nil
}

// DeleteAll removes every document and chunk.
func (s *AdminService) DeleteAll(ctx context.Context) (int64, int64, error) {
	if s.docs == nil {
		return 0, 0, fmt.Errorf("%w: database", domain.ErrNotConfigured)
	}
	docs, chunks, err := s.docs.DeleteAll(ctx)
	if err != nil {
		return 0, 0, err
	}
	logger.Info("Deleted %d documents and %d chunks", docs, chunks)
	return docs, chunks, nil
}

// Doctor pings every dependency and reports per-dependency status in a
// fixed order. Unconfigured dependencies are reported, not pinged.
func (s *AdminService) Doctor(ctx context.Context) []driving.DependencyStatus {
	checks := []struct {
		name string
		ping func(context.Context) error
	}{
		{"database", pingFunc(s.docs)},
		{"object store", pingFunc(s.objects)},
		{"embedding service", pingFunc(s.embedder)},
		{"LLM service", pingFunc(s.llm)},
		{"reranker", pingFunc(s.reranker)},
	}

	statuses := make([]driving.DependencyStatus, 0, len(checks))
	for _, check := range checks {
		status := driving.DependencyStatus{Name: check.name}
		if check.ping != nil {
			status.Configured = true
			status.Err = check.ping(ctx)
		}
		if status.Err != nil {
			logger.Debug("Doctor: %s failed: %v", check.name, status.Err)
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// pinger is the health-check surface shared by all driven adapters.
type pinger interface {
	Ping(ctx context.Context) error
}

// pingFunc lifts a dependency's Ping method, mapping nil (unconfigured)
// dependencies to a nil function.
func pingFunc(p pinger) func(context.Context) error {
	if p == nil {
		return nil
	}
	return p.Ping
}
