package domain

import "time"

// Document represents one ingested source file.
// Created once per successfully ingested file and never mutated;
// removed only by explicit cleanup, which cascades to its chunks.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Filename is the base file name of the ingested object. The folder
	// part of the key becomes Filtering, not part of the name.
	Filename string

	// Filtering is the category label used to restrict retrieval.
	// Empty means the document matches unfiltered queries only.
	Filtering string

	// ContentType is the detected content type (e.g. "application/pdf").
	ContentType string

	// FileSize is the raw object size in bytes.
	FileSize int64

	// TextLength is the extracted text length in runes.
	TextLength int

	// RegisteredAt is when the document was ingested.
	RegisteredAt time.Time
}

// Chunk represents a retrievable unit within a document.
// Chunks are created in bulk during ingestion and are immutable;
// they are deleted when the owning document is deleted.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Embedding is the vector representation for similarity search.
	Embedding []float32
}

// StoreStats summarises the contents of the document store.
type StoreStats struct {
	// Documents is the number of document rows.
	Documents int64

	// Chunks is the number of chunk rows.
	Chunks int64
}
