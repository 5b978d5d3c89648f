package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
	"github.com/oshiete-dev/oshiete-cli/internal/core/ports/driven"
	"github.com/oshiete-dev/oshiete-cli/internal/core/ports/driving"
	"github.com/oshiete-dev/oshiete-cli/internal/logger"
	"github.com/oshiete-dev/oshiete-cli/internal/retry"
)

// answerPromptTemplate is the fixed Japanese RAG prompt: reference
// documents, question, answer sections. The trailing slot carries an
// optional extra instruction for the answer.
const answerPromptTemplate = `以下のドキュメントを参考に、質問に回答してください。

【参考ドキュメント】
%s

【質問】
%s

【回答】
%s
`

// Runes a complete answer may end with, after closing quotes and
// brackets are stripped.
const sentenceTerminators = "。．！？!?."

// Closing marks that may legitimately follow the final terminator.
const closingMarks = "」』）)\"'"

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// AnswerService answers questions through the retrieval pipeline:
// embed query, vector search, optional rerank, generate.
type AnswerService struct {
	embedder driven.EmbeddingService
	docs     driven.DocumentStore
	reranker driven.Reranker // nil disables the rerank stage
	llm      driven.LLMService
	topK     int
	retryCfg retry.Config
}

// NewAnswerService creates an answer service. A nil reranker disables
// the rerank stage; topK <= 0 falls back to the default.
func NewAnswerService(
	embedder driven.EmbeddingService,
	docs driven.DocumentStore,
	reranker driven.Reranker,
	llm driven.LLMService,
	topK int,
) *AnswerService {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	return &AnswerService{
		embedder: embedder,
		docs:     docs,
		reranker: reranker,
		llm:      llm,
		topK:     topK,
		retryCfg: retry.DefaultConfig(),
	}
}

// Ask answers a single question and reports per-stage latencies.
// Zero retrieved chunks is a failure: the model never answers without
// grounding documents.
func (s *AnswerService) Ask(ctx context.Context, question string, opts domain.AskOptions) (*domain.RAGResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}

	start := time.Now()

	topK := opts.TopK
	if topK <= 0 {
		topK = s.topK
	}

	// Query embedding counts toward the vector search stage.
	searchStart := time.Now()
	queryVec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}
	results, err := s.docs.SearchSimilar(ctx, queryVec, topK, opts.Filtering)
	if err != nil {
		return nil, fmt.Errorf("searching chunks: %w", err)
	}
	vectorSearchTime := time.Since(searchStart)

	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no chunks matched the question", domain.ErrNotFound)
	}
	logger.Debug("Vector search returned %d chunks in %s", len(results), vectorSearchTime)

	rerankStart := time.Now()
	contexts, reranked := s.rerankResults(ctx, question, results, topK, opts.DisableRerank)
	rerankTime := time.Since(rerankStart)

	model := opts.Model
	if model == "" {
		model = s.llm.ModelName()
	}
	prompt := buildPrompt(question, contexts, opts.AnswerPrompt)

	generationStart := time.Now()
	answer, err := retry.DoValue(ctx, s.retryCfg, func(ctx context.Context) (string, error) {
		return s.llm.Generate(ctx, prompt, driven.GenerateOptions{
			Model:            model,
			Temperature:      domain.DefaultTemperature,
			TopP:             domain.DefaultTopP,
			FrequencyPenalty: domain.DefaultFrequencyPenalty,
			TopK:             domain.DefaultSamplingTopK,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}
	generationTime := time.Since(generationStart)

	truncated := !endsAtSentenceBoundary(answer)
	if truncated {
		logger.Warn("Answer does not end at a sentence boundary and may be cut off")
	}

	return &domain.RAGResult{
		Question:         question,
		Answer:           answer,
		ModelUsed:        model,
		Contexts:         contexts,
		Reranked:         reranked,
		Truncated:        truncated,
		VectorSearchTime: vectorSearchTime,
		RerankTime:       rerankTime,
		GenerationTime:   generationTime,
		TotalTime:        time.Since(start),
	}, nil
}

// AskBatch answers every FAQ entry. The workbook's filter column decides
// each question's retrieval category; one question's failure never
// aborts the batch.
func (s *AnswerService) AskBatch(ctx context.Context, entries []domain.FAQEntry, opts domain.AskOptions, progress func(domain.BatchProgress)) (*domain.BatchResult, error) {
	start := time.Now()

	model := opts.Model
	if model == "" {
		model = s.llm.ModelName()
	}

	logger.Section("Batch Q&A")
	logger.Info("Answering %d questions with %s", len(entries), model)

	result := &domain.BatchResult{ModelUsed: model}
	for i, entry := range entries {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		entryOpts := opts
		entryOpts.Filtering = entry.Filtering

		item := domain.BatchItem{
			ID:          entry.ID,
			Question:    entry.Question,
			Filtering:   entry.Filtering,
			GroundTruth: entry.GroundTruth,
		}

		ragResult, err := s.Ask(ctx, entry.Question, entryOpts)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, ctx.Err()
		case err != nil:
			item.Err = err.Error()
			result.Failed++
			logger.Warn("Question %d/%d failed: %v", i+1, len(entries), err)
		default:
			item.Result = ragResult
			result.Succeeded++
		}
		result.Items = append(result.Items, item)

		if progress != nil {
			progress(domain.BatchProgress{
				Index:    i + 1,
				Total:    len(entries),
				Question: entry.Question,
				Err:      item.Err,
			})
		}
	}

	result.Elapsed = time.Since(start)
	logger.Info("Batch complete: %d success, %d failed", result.Succeeded, result.Failed)
	logger.Timing("batch", result.Elapsed)
	return result, nil
}

// rerankResults reorders the candidates with the cross-encoder. When the
// stage is disabled, unconfigured or failing, candidates keep their
// vector-distance order with nil scores.
func (s *AnswerService) rerankResults(ctx context.Context, question string, results []domain.SearchResult, topN int, disabled bool) ([]domain.RankedChunk, bool) {
	if !disabled && s.reranker != nil {
		ranked, err := s.reranker.Rerank(ctx, question, results, topN)
		if err == nil {
			return ranked, true
		}
		logger.Warn("Rerank failed, keeping vector-distance order: %v", err)
	}

	ranked := domain.RankedFromSearch(results)
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked, false
}

// buildPrompt renders the retrieval contexts into the fixed template.
// Each chunk appears under a numbered document header carrying its
// source file name.
func buildPrompt(question string, contexts []domain.RankedChunk, answerPrompt string) string {
	sections := make([]string, len(contexts))
	for i, chunk := range contexts {
		sections[i] = fmt.Sprintf("[ドキュメント %d: %s]\n%s", i+1, chunk.Filename, chunk.Content)
	}
	return fmt.Sprintf(answerPromptTemplate, strings.Join(sections, "\n\n"), question, answerPrompt)
}

// endsAtSentenceBoundary reports whether the answer ends with a sentence
// terminator, ignoring trailing whitespace and closing marks. Answers
// that do not are likely cut off by the token limit.
func endsAtSentenceBoundary(answer string) bool {
	trimmed := strings.TrimRightFunc(answer, unicode.IsSpace)
	trimmed = strings.TrimRight(trimmed, closingMarks)
	if trimmed == "" {
		return true
	}
	last, _ := utf8.DecodeLastRuneInString(trimmed)
	return strings.ContainsRune(sentenceTerminators, last)
}
