// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ObjectStore: Lists and fetches source files from a bucket
//   - TextExtractor: Extracts text from raw file bytes per content type
//   - Chunker: Splits extracted text into retrieval units
//   - EmbeddingService: Generates vector embeddings
//   - DocumentStore: Document/chunk persistence and similarity search
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Reranker: Cross-encoder reordering of retrieval candidates.
//     Without it, retrieval keeps vector-distance order.
//   - LLMService: Answer generation and evaluation judging. Without it,
//     ingestion still works but ask/batch/evaluate are disabled.
//   - FAQStore: Ground-truth workbook I/O. Without it, batch and
//     evaluate are disabled.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
