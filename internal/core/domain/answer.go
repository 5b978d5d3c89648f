package domain

import "time"

// DefaultTopK is the number of chunks retrieved per question when no
// override is configured. The rerank stage keeps at most this many.
const DefaultTopK = 5

// SearchResult is one chunk returned by vector similarity search,
// ordered by non-decreasing cosine distance.
type SearchResult struct {
	// ChunkID identifies the matched chunk.
	ChunkID string

	// DocumentID identifies the owning document.
	DocumentID string

	// Filename is the owning document's file name.
	Filename string

	// Content is the chunk text.
	Content string

	// Distance is the cosine distance to the query vector
	// (smaller is more similar).
	Distance float64
}

// RankedChunk is a retrieval candidate after the rerank stage.
// When the reranker is disabled or fails, candidates keep their
// vector-distance order and RerankScore stays nil.
type RankedChunk struct {
	// ChunkID identifies the chunk.
	ChunkID string

	// DocumentID identifies the owning document.
	DocumentID string

	// Filename is the owning document's file name.
	Filename string

	// Content is the chunk text.
	Content string

	// Distance is the cosine distance from the vector search stage.
	Distance float64

	// RerankScore is the cross-encoder relevance score
	// (higher is more relevant). Nil when reranking did not run.
	RerankScore *float64
}

// RankedFromSearch converts search results to ranked chunks without scores.
// Used as the fallback ordering when reranking is skipped or fails.
func RankedFromSearch(results []SearchResult) []RankedChunk {
	ranked := make([]RankedChunk, len(results))
	for i, r := range results {
		ranked[i] = RankedChunk{
			ChunkID:    r.ChunkID,
			DocumentID: r.DocumentID,
			Filename:   r.Filename,
			Content:    r.Content,
			Distance:   r.Distance,
		}
	}
	return ranked
}

// AskOptions configures one question through the retrieval pipeline.
type AskOptions struct {
	// Model overrides the configured chat model. Empty uses the default.
	Model string

	// Filtering restricts retrieval to documents with this category.
	// Empty searches all documents.
	Filtering string

	// TopK overrides the configured retrieval count. Zero uses the default.
	TopK int

	// DisableRerank skips the rerank stage even when a reranker is configured.
	DisableRerank bool

	// AnswerPrompt is an extra instruction appended to the answer section.
	AnswerPrompt string
}

// RAGResult is the full outcome of one question, including the
// per-stage latencies the batch reports aggregate.
type RAGResult struct {
	// Question is the input question.
	Question string

	// Answer is the generated answer text.
	Answer string

	// ModelUsed is the chat model that produced the answer.
	ModelUsed string

	// Contexts are the chunks given to the model, in prompt order.
	Contexts []RankedChunk

	// Reranked is true when the rerank stage ran successfully.
	Reranked bool

	// Truncated is true when the answer does not end at a sentence
	// boundary, which suggests the model stopped mid-sentence.
	Truncated bool

	// Stage latencies.
	VectorSearchTime time.Duration
	RerankTime       time.Duration
	GenerationTime   time.Duration
	TotalTime        time.Duration
}

// BatchItem is the outcome of one question within a batch run.
type BatchItem struct {
	// ID is the workbook row identifier.
	ID string

	// Question is the input question.
	Question string

	// Filtering is the per-question category restriction.
	Filtering string

	// GroundTruth is the reference answer from the workbook.
	GroundTruth string

	// Result is nil when the question failed.
	Result *RAGResult

	// Err holds the failure message; empty on success.
	Err string
}

// Succeeded reports whether the question produced an answer.
func (b BatchItem) Succeeded() bool {
	return b.Result != nil && b.Err == ""
}

// BatchResult aggregates a batch Q&A run. One question's failure
// never aborts the batch.
type BatchResult struct {
	// Items holds per-question outcomes in input order.
	Items []BatchItem

	// Succeeded and Failed partition the items.
	Succeeded int
	Failed    int

	// ModelUsed is the chat model for the run.
	ModelUsed string

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration
}

// BatchProgress is delivered once per processed question.
type BatchProgress struct {
	// Index is the 1-based position of the question.
	Index int

	// Total is the number of questions in the batch.
	Total int

	// Question is the question text (may be truncated for display).
	Question string

	// Err holds the failure message when the question failed.
	Err string
}
