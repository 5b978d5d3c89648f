package cli

import (
	"context"
	"fmt"

	"github.com/oshiete-dev/oshiete-cli/internal/adapters/driven/docstore/postgres"
	genaiembed "github.com/oshiete-dev/oshiete-cli/internal/adapters/driven/embedding/genai"
	genaillm "github.com/oshiete-dev/oshiete-cli/internal/adapters/driven/llm/genai"
	"github.com/oshiete-dev/oshiete-cli/internal/adapters/driven/objectstore/minio"
	"github.com/oshiete-dev/oshiete-cli/internal/adapters/driven/reranker/tei"
	"github.com/oshiete-dev/oshiete-cli/internal/adapters/driven/workbook/excel"
	"github.com/oshiete-dev/oshiete-cli/internal/config"
	"github.com/oshiete-dev/oshiete-cli/internal/core/ports/driven"
	"github.com/oshiete-dev/oshiete-cli/internal/core/services"
	"github.com/oshiete-dev/oshiete-cli/internal/extractors"
	"github.com/oshiete-dev/oshiete-cli/internal/extractors/pdf"
	"github.com/oshiete-dev/oshiete-cli/internal/extractors/plaintext"
	"github.com/oshiete-dev/oshiete-cli/internal/extractors/tabular"
	"github.com/oshiete-dev/oshiete-cli/internal/logger"
	"github.com/oshiete-dev/oshiete-cli/internal/postprocessors/chunker"
)

// wireServices constructs the adapters the settings allow and the
// services on top of them. A missing optional dependency leaves the
// dependent service nil rather than failing; construction errors mean
// the settings are malformed and are fatal. Interface variables are
// assigned only from successful constructions so nil checks hold.
func wireServices(ctx context.Context, s *config.Settings) error {
	var docs driven.DocumentStore
	var schema driven.SchemaManager
	if store, err := createDocumentStore(ctx, s); err != nil {
		return err
	} else if store != nil {
		docs = store
		schema = store
	}

	var objects driven.ObjectStore
	if store, err := createObjectStore(s); err != nil {
		return err
	} else if store != nil {
		objects = store
	}

	embedder, llm, err := createGenAI(s)
	if err != nil {
		return err
	}

	var reranker driven.Reranker
	if r, err := createReranker(s); err != nil {
		return err
	} else if r != nil {
		reranker = r
	}

	if store, err := createFAQObjects(s); err != nil {
		return err
	} else if store != nil {
		faqObjects = store
	}
	faqStore = excel.New()

	if objects != nil && embedder != nil && docs != nil {
		registry := extractors.NewRegistry(plaintext.New(), tabular.New(), pdf.New())
		splitter := chunker.New(
			chunker.WithChunkSize(s.Chunking.Size),
			chunker.WithOverlap(s.Chunking.Overlap),
		)
		ingestService = services.NewIngestService(objects, registry, splitter, embedder, docs)
	}

	if embedder != nil && docs != nil && llm != nil {
		answerService = services.NewAnswerService(embedder, docs, reranker, llm, s.TopK)
	}

	if llm != nil && embedder != nil {
		evaluationService = services.NewEvaluationService(llm, embedder, "")
	}

	adminService = services.NewAdminService(schema, docs, objects, embedder, llm, reranker)
	return nil
}

// createDocumentStore opens the Postgres store. The pool is lazy, so a
// down database surfaces on first use (or in doctor), not here.
func createDocumentStore(ctx context.Context, s *config.Settings) (*postgres.Store, error) {
	if !s.DatabaseConfigured() {
		logger.Debug("Database not configured, store commands unavailable")
		return nil, nil
	}
	store, err := postgres.New(ctx, s.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("opening document store: %w", err)
	}
	return store, nil
}

// createObjectStore opens the bucket holding the source documents.
func createObjectStore(s *config.Settings) (*minio.Store, error) {
	if !s.ObjectStoreConfigured() {
		logger.Debug("Object store not configured, ingest unavailable")
		return nil, nil
	}
	store, err := minio.New(minio.Config{
		Endpoint:  s.ObjectStore.Endpoint,
		AccessKey: s.ObjectStore.AccessKey,
		SecretKey: s.ObjectStore.SecretKey,
		Region:    s.ObjectStore.Region,
		UseSSL:    s.ObjectStore.UseSSL,
		Bucket:    s.ObjectStore.Bucket,
	})
	if err != nil {
		return nil, fmt.Errorf("opening object store: %w", err)
	}
	return store, nil
}

// createFAQObjects opens the bucket holding the FAQ workbook. It shares
// the object store credentials but reads a different bucket.
func createFAQObjects(s *config.Settings) (*minio.Store, error) {
	if !s.FAQConfigured() || !s.ObjectStoreConfigured() {
		logger.Debug("FAQ workbook not configured, batch and evaluate unavailable")
		return nil, nil
	}
	store, err := minio.New(minio.Config{
		Endpoint:  s.ObjectStore.Endpoint,
		AccessKey: s.ObjectStore.AccessKey,
		SecretKey: s.ObjectStore.SecretKey,
		Region:    s.ObjectStore.Region,
		UseSSL:    s.ObjectStore.UseSSL,
		Bucket:    s.FAQ.Bucket,
	})
	if err != nil {
		return nil, fmt.Errorf("opening FAQ bucket: %w", err)
	}
	return store, nil
}

// createGenAI builds the embedding and LLM clients against the inference
// endpoint. Both share credentials, so they come and go together.
func createGenAI(s *config.Settings) (driven.EmbeddingService, driven.LLMService, error) {
	if !s.GenAIConfigured() {
		logger.Debug("GenAI credentials not configured, ask and batch unavailable")
		return nil, nil, nil
	}

	embedder, err := genaiembed.NewEmbeddingService(genaiembed.Config{
		Endpoint:      s.GenAI.ResolvedEndpoint(),
		APIKey:        s.GenAI.APIKey,
		CompartmentID: s.GenAI.CompartmentID,
		Model:         s.GenAI.EmbedModel,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating embedding client: %w", err)
	}

	llm, err := genaillm.NewLLMService(genaillm.Config{
		Endpoint:      s.GenAI.ResolvedEndpoint(),
		APIKey:        s.GenAI.APIKey,
		CompartmentID: s.GenAI.CompartmentID,
		Model:         s.GenAI.LLMModel,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating LLM client: %w", err)
	}

	return embedder, llm, nil
}

// createReranker builds the cross-encoder client when reranking is
// enabled and an endpoint is set.
func createReranker(s *config.Settings) (*tei.Reranker, error) {
	if !s.RerankConfigured() {
		logger.Debug("Reranker not configured or disabled")
		return nil, nil
	}
	reranker, err := tei.New(tei.Config{
		Endpoint: s.Rerank.Endpoint,
		Model:    s.Rerank.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("creating reranker client: %w", err)
	}
	return reranker, nil
}
