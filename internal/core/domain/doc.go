// Package domain defines the core business entities for oshiete.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested source file with metadata
//   - Chunk: A retrievable unit within a document
//   - SearchResult / RankedChunk: Retrieval candidates before/after rerank
//   - RAGResult / BatchResult: Question-answering outcomes with timings
//   - FAQEntry / EvaluationReport: Ground truth and quality metrics
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
