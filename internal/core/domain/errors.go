package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file type no extractor handles.
	// Files of unsupported types are skipped, not failed.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrEmptyDocument indicates extraction produced no usable text.
	// Empty documents are skipped, not failed.
	ErrEmptyDocument = errors.New("empty document")

	// ErrRateLimited indicates the generative AI endpoint returned HTTP 429.
	// Callers retry these with exponential backoff before giving up.
	ErrRateLimited = errors.New("rate limited")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Answer generation and evaluation are disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Ingestion and retrieval are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrStoreUnavailable indicates the document store is not reachable.
	ErrStoreUnavailable = errors.New("document store unavailable")

	// ErrObjectStoreUnavailable indicates the object storage service is not reachable.
	ErrObjectStoreUnavailable = errors.New("object store unavailable")

	// ErrRerankerUnavailable indicates the reranker endpoint is not configured.
	// Retrieval falls back to vector distance order without it.
	ErrRerankerUnavailable = errors.New("reranker unavailable")

	// ErrNotConfigured indicates a required setting is missing.
	ErrNotConfigured = errors.New("not configured")
)
