package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
	"github.com/oshiete-dev/oshiete-cli/internal/core/ports/driven"
	"github.com/oshiete-dev/oshiete-cli/internal/core/ports/driving"
	"github.com/oshiete-dev/oshiete-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService runs the document ingestion pipeline: list bucket
// objects, extract text, chunk, embed, persist.
type IngestService struct {
	objects    driven.ObjectStore
	extractors driven.ExtractorRegistry
	chunker    driven.Chunker
	embedder   driven.EmbeddingService
	docs       driven.DocumentStore
}

// NewIngestService creates an ingestion service.
func NewIngestService(
	objects driven.ObjectStore,
	extractors driven.ExtractorRegistry,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	docs driven.DocumentStore,
) *IngestService {
	return &IngestService{
		objects:    objects,
		extractors: extractors,
		chunker:    chunker,
		embedder:   embedder,
		docs:       docs,
	}
}

// Ingest processes every object under the bucket, optionally restricted
// by opts.Prefix. Files run sequentially and one file's failure never
// aborts the run; only a failed listing or a cancelled context does.
func (s *IngestService) Ingest(ctx context.Context, opts domain.IngestOptions) (*domain.IngestReport, error) {
	start := time.Now()

	objects, err := s.objects.List(ctx, opts.Prefix)
	if err != nil {
		return nil, fmt.Errorf("listing objects: %w", err)
	}

	logger.Section("Ingest")
	logger.Info("Ingesting %d files", len(objects))

	report := &domain.IngestReport{TotalFiles: len(objects)}
	for i, obj := range objects {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		outcome := s.processOne(ctx, i+1, len(objects), obj.Key, opts)
		report.Add(outcome)
		notifyIngest(opts.Progress, domain.IngestProgress{
			Index:    i + 1,
			Total:    len(objects),
			Filename: obj.Key,
			Stage:    domain.StageDone,
			Outcome:  &outcome,
		})
	}

	report.Elapsed = time.Since(start)
	logger.Info("Ingest complete: %d success, %d failed, %d skipped, %d chunks",
		report.Succeeded, report.Failed, report.Skipped, report.TotalChunks)
	logger.Timing("ingest", report.Elapsed)
	return report, nil
}

// processOne runs the per-file pipeline: fetch, extract, chunk, embed,
// persist. Unsupported types, empty text and zero chunks are skips;
// every other error is a failure. Persistence is a single unit of work,
// so a failed file leaves no rows behind.
func (s *IngestService) processOne(ctx context.Context, index, total int, key string, opts domain.IngestOptions) domain.FileOutcome {
	stage := func(st domain.IngestStage) {
		notifyIngest(opts.Progress, domain.IngestProgress{
			Index:    index,
			Total:    total,
			Filename: key,
			Stage:    st,
		})
	}

	stage(domain.StageFetch)
	raw, err := s.objects.Fetch(ctx, key)
	if err != nil {
		logger.Warn("Fetch failed for %s: %v", key, err)
		return failed(key, fmt.Errorf("fetching object: %w", err))
	}

	extractor, contentType, ok := s.extractors.ExtractorFor(key)
	if !ok {
		logger.Debug("Skipping %s: unsupported file type", key)
		return skipped(key, "unsupported file type")
	}

	stage(domain.StageExtract)
	text, err := extractor.Extract(ctx, raw)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedType) || errors.Is(err, domain.ErrEmptyDocument) {
			logger.Debug("Skipping %s: %v", key, err)
			return skipped(key, err.Error())
		}
		logger.Warn("Extraction failed for %s: %v", key, err)
		return failed(key, fmt.Errorf("extracting text: %w", err))
	}
	if strings.TrimSpace(text) == "" {
		logger.Debug("Skipping %s: no text extracted", key)
		return skipped(key, "no text extracted")
	}

	doc := &domain.Document{
		ID:          uuid.New().String(),
		Filename:    path.Base(key),
		Filtering:   filteringFor(key, opts.Filtering),
		ContentType: contentType,
		FileSize:    int64(len(raw)),
		TextLength:  utf8.RuneCountInString(text),
	}

	stage(domain.StageChunk)
	chunks := s.chunker.Split(doc.ID, text)
	if len(chunks) == 0 {
		logger.Debug("Skipping %s: no chunks produced", key)
		return skipped(key, "no chunks produced")
	}

	stage(domain.StageEmbed)
	contents := make([]string, len(chunks))
	for i, chunk := range chunks {
		contents[i] = chunk.Content
	}
	embeddings, err := s.embedder.EmbedBatch(ctx, contents)
	if err != nil {
		logger.Warn("Embedding failed for %s: %v", key, err)
		return failed(key, fmt.Errorf("embedding chunks: %w", err))
	}
	if len(embeddings) != len(chunks) {
		return failed(key, fmt.Errorf("embedding count mismatch: %d chunks, %d embeddings", len(chunks), len(embeddings)))
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	stage(domain.StagePersist)
	if err := s.docs.SaveDocumentWithChunks(ctx, doc, chunks); err != nil {
		logger.Warn("Persist failed for %s: %v", key, err)
		return failed(key, fmt.Errorf("saving document: %w", err))
	}

	logger.Debug("Ingested %s: %d chunks", key, len(chunks))
	return domain.FileOutcome{
		Filename:    key,
		Status:      domain.FileSucceeded,
		DocumentID:  doc.ID,
		ChunksSaved: len(chunks),
	}
}

// filteringFor derives the document category: the key's top-level folder
// when present, else the run-level option.
func filteringFor(key, fallback string) string {
	if i := strings.IndexByte(key, '/'); i > 0 {
		return key[:i]
	}
	return fallback
}

func failed(filename string, err error) domain.FileOutcome {
	return domain.FileOutcome{
		Filename: filename,
		Status:   domain.FileFailed,
		Reason:   err.Error(),
	}
}

func skipped(filename, reason string) domain.FileOutcome {
	return domain.FileOutcome{
		Filename: filename,
		Status:   domain.FileSkipped,
		Reason:   reason,
	}
}

// notifyIngest invokes the progress callback when one is configured.
func notifyIngest(cb func(domain.IngestProgress), p domain.IngestProgress) {
	if cb != nil {
		cb(p)
	}
}
