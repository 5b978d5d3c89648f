package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
	"github.com/oshiete-dev/oshiete-cli/internal/core/ports/driven"
	"github.com/oshiete-dev/oshiete-cli/internal/core/ports/driving"
	"github.com/oshiete-dev/oshiete-cli/internal/logger"
	"github.com/oshiete-dev/oshiete-cli/internal/retry"
)

// judgeMaxTokens bounds judge completions. Verdict JSON is small; the
// ceiling only matters for statement decomposition of long answers.
const judgeMaxTokens = 4000

// Answer correctness blends factual overlap with embedding similarity.
const (
	factualWeight    = 0.75
	similarityWeight = 0.25
)

// Judge prompt templates. Each demands bare JSON so the responses
// survive strict parsing; fenced or prefixed output is tolerated by
// decodeJudge.
const (
	statementsPrompt = `Break the answer to the question into standalone factual statements. Each statement must be understandable on its own. Respond with only JSON in the form {"statements": ["..."]}.

Question: %s

Answer: %s`

	faithfulnessPrompt = `Judge for each numbered statement whether it can be directly inferred from the context. Respond with only JSON in the form {"verdicts": [1, 0]}, one verdict per statement in order: 1 when the context supports the statement, 0 when it does not.

Context:
%s

Statements:
%s`

	correctnessPrompt = `Compare the answer with the ground truth and classify their factual statements. "TP" are statements present in both the answer and the ground truth, "FP" are statements in the answer that the ground truth does not support, "FN" are statements in the ground truth missing from the answer. Respond with only JSON in the form {"TP": ["..."], "FP": ["..."], "FN": ["..."]}.

Question: %s

Answer: %s

Ground truth: %s`

	precisionPrompt = `Judge for each numbered context whether it was useful in arriving at the ground truth for the question. Respond with only JSON in the form {"verdicts": [1, 0]}, one verdict per context in order: 1 when useful, 0 when not.

Question: %s

Ground truth: %s

Contexts:
%s`

	recallPrompt = `Classify each sentence of the ground truth: can the sentence be attributed to the given contexts? Respond with only JSON in the form {"classifications": [{"statement": "...", "attributed": 1}]}, covering every sentence in order.

Question: %s

Contexts:
%s

Ground truth: %s`
)

// Judge response shapes.
type statementsResponse struct {
	Statements []string `json:"statements"`
}

type verdictsResponse struct {
	Verdicts []int `json:"verdicts"`
}

type correctnessResponse struct {
	TP []string `json:"TP"`
	FP []string `json:"FP"`
	FN []string `json:"FN"`
}

type recallResponse struct {
	Classifications []struct {
		Statement  string `json:"statement"`
		Attributed int    `json:"attributed"`
	} `json:"classifications"`
}

// Ensure EvaluationService implements the interface.
var _ driving.EvaluationService = (*EvaluationService)(nil)

// EvaluationService scores batch answers against ground truth with
// RAGAS-style metrics. The judge model runs at temperature 0 so verdicts
// are reproducible.
type EvaluationService struct {
	llm        driven.LLMService
	embedder   driven.EmbeddingService
	judgeModel string
	retryCfg   retry.Config
}

// NewEvaluationService creates an evaluation service. An empty judgeModel
// uses the LLM service default.
func NewEvaluationService(llm driven.LLMService, embedder driven.EmbeddingService, judgeModel string) *EvaluationService {
	return &EvaluationService{
		llm:        llm,
		embedder:   embedder,
		judgeModel: judgeModel,
		retryCfg:   retry.DefaultConfig(),
	}
}

// Evaluate computes metrics for every answered question in the batch.
// Questions that failed before answering keep nil scores; per-question
// metric failures are recorded in EvalErr without aborting the run.
func (s *EvaluationService) Evaluate(ctx context.Context, batch *domain.BatchResult, opts domain.EvaluateOptions, progress func(domain.BatchProgress)) (*domain.EvaluationReport, error) {
	if batch == nil || len(batch.Items) == 0 {
		return nil, fmt.Errorf("%w: batch has no items to evaluate", domain.ErrInvalidInput)
	}

	start := time.Now()

	judge := opts.JudgeModel
	if judge == "" {
		judge = s.judgeModel
	}
	if judge == "" {
		judge = s.llm.ModelName()
	}

	logger.Section("Evaluation")
	logger.Info("Evaluating %d answers with judge %s", len(batch.Items), judge)

	report := &domain.EvaluationReport{
		ModelUsed:  batch.ModelUsed,
		JudgeModel: judge,
	}

	total := len(batch.Items)
	for i, item := range batch.Items {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Debug("Scoring question %d/%d", i+1, total)

		evaluated := domain.EvaluatedItem{BatchItem: item}
		if item.Succeeded() {
			scores, err := s.evaluateItem(ctx, judge, item)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				evaluated.EvalErr = err.Error()
				logger.Warn("Evaluation of question %d/%d failed: %v", i+1, total, err)
			}
			evaluated.Scores = scores
		}
		report.Items = append(report.Items, evaluated)

		if progress != nil {
			progress(domain.BatchProgress{
				Index:    i + 1,
				Total:    total,
				Question: item.Question,
				Err:      evaluated.EvalErr,
			})
		}
	}

	report.Aggregate()
	report.Elapsed = time.Since(start)
	logger.Info("Evaluation complete: faithfulness %s, correctness %s, precision %s, recall %s",
		formatMean(report.MeanFaithfulness), formatMean(report.MeanAnswerCorrectness),
		formatMean(report.MeanContextPrecision), formatMean(report.MeanContextRecall))
	logger.Timing("evaluate", report.Elapsed)
	return report, nil
}

// evaluateItem computes the four metrics for one answered question.
// A single failing metric stays nil with a warning; the item errors only
// when every metric failed.
func (s *EvaluationService) evaluateItem(ctx context.Context, judge string, item domain.BatchItem) (domain.MetricScores, error) {
	contexts := make([]string, len(item.Result.Contexts))
	for i, chunk := range item.Result.Contexts {
		contexts[i] = chunk.Content
	}

	var scores domain.MetricScores
	var errs []error

	record := func(name string, value *float64, err error) *float64 {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			logger.Warn("Metric %s failed for question %q: %v", name, item.ID, err)
			return nil
		}
		return value
	}

	faith, err := s.faithfulness(ctx, judge, item.Question, item.Result.Answer, contexts)
	scores.Faithfulness = record("faithfulness", faith, err)
	if ctx.Err() != nil {
		return scores, ctx.Err()
	}

	correct, err := s.answerCorrectness(ctx, judge, item.Question, item.Result.Answer, item.GroundTruth)
	scores.AnswerCorrectness = record("answer_correctness", correct, err)
	if ctx.Err() != nil {
		return scores, ctx.Err()
	}

	precision, err := s.contextPrecision(ctx, judge, item.Question, item.GroundTruth, contexts)
	scores.ContextPrecision = record("context_precision", precision, err)
	if ctx.Err() != nil {
		return scores, ctx.Err()
	}

	recall, err := s.contextRecall(ctx, judge, item.Question, item.GroundTruth, contexts)
	scores.ContextRecall = record("context_recall", recall, err)

	if len(errs) == 4 {
		return scores, fmt.Errorf("all metrics failed: %w", errs[0])
	}
	return scores, nil
}

// faithfulness decomposes the answer into statements and judges each
// statement's support by the retrieved contexts.
func (s *EvaluationService) faithfulness(ctx context.Context, judge, question, answer string, contexts []string) (*float64, error) {
	raw, err := s.judge(ctx, judge, fmt.Sprintf(statementsPrompt, question, answer))
	if err != nil {
		return nil, fmt.Errorf("decomposing statements: %w", err)
	}
	var statements statementsResponse
	if err := decodeJudge(raw, &statements); err != nil {
		return nil, err
	}
	if len(statements.Statements) == 0 {
		return nil, nil
	}

	raw, err = s.judge(ctx, judge, fmt.Sprintf(faithfulnessPrompt,
		strings.Join(contexts, "\n\n"), numberedList(statements.Statements)))
	if err != nil {
		return nil, fmt.Errorf("judging statements: %w", err)
	}
	var verdicts verdictsResponse
	if err := decodeJudge(raw, &verdicts); err != nil {
		return nil, err
	}
	if len(verdicts.Verdicts) != len(statements.Statements) {
		return nil, fmt.Errorf("judge returned %d verdicts for %d statements",
			len(verdicts.Verdicts), len(statements.Statements))
	}

	supported := 0
	for _, v := range verdicts.Verdicts {
		if v > 0 {
			supported++
		}
	}
	score := float64(supported) / float64(len(verdicts.Verdicts))
	return &score, nil
}

// answerCorrectness blends the factual-overlap F1 between answer and
// ground truth with the embedding cosine similarity.
func (s *EvaluationService) answerCorrectness(ctx context.Context, judge, question, answer, groundTruth string) (*float64, error) {
	raw, err := s.judge(ctx, judge, fmt.Sprintf(correctnessPrompt, question, answer, groundTruth))
	if err != nil {
		return nil, fmt.Errorf("classifying statements: %w", err)
	}
	var classified correctnessResponse
	if err := decodeJudge(raw, &classified); err != nil {
		return nil, err
	}

	tp := float64(len(classified.TP))
	fp := float64(len(classified.FP))
	fn := float64(len(classified.FN))
	var f1 float64
	if tp > 0 {
		f1 = tp / (tp + 0.5*(fp+fn))
	}

	similarity, err := s.embeddingSimilarity(ctx, answer, groundTruth)
	if err != nil {
		return nil, fmt.Errorf("embedding similarity: %w", err)
	}

	score := factualWeight*f1 + similarityWeight*similarity
	return &score, nil
}

// contextPrecision judges each retrieved context's usefulness for the
// ground truth and averages precision@k over the useful positions.
func (s *EvaluationService) contextPrecision(ctx context.Context, judge, question, groundTruth string, contexts []string) (*float64, error) {
	if len(contexts) == 0 {
		return nil, nil
	}

	raw, err := s.judge(ctx, judge, fmt.Sprintf(precisionPrompt, question, groundTruth, numberedList(contexts)))
	if err != nil {
		return nil, fmt.Errorf("judging contexts: %w", err)
	}
	var verdicts verdictsResponse
	if err := decodeJudge(raw, &verdicts); err != nil {
		return nil, err
	}
	if len(verdicts.Verdicts) != len(contexts) {
		return nil, fmt.Errorf("judge returned %d verdicts for %d contexts",
			len(verdicts.Verdicts), len(contexts))
	}

	score := meanPrecisionAtK(verdicts.Verdicts)
	return &score, nil
}

// contextRecall asks the judge to attribute each ground-truth sentence
// to the contexts; the score is the attributed fraction.
func (s *EvaluationService) contextRecall(ctx context.Context, judge, question, groundTruth string, contexts []string) (*float64, error) {
	raw, err := s.judge(ctx, judge, fmt.Sprintf(recallPrompt, question, strings.Join(contexts, "\n\n"), groundTruth))
	if err != nil {
		return nil, fmt.Errorf("attributing sentences: %w", err)
	}
	var classifications recallResponse
	if err := decodeJudge(raw, &classifications); err != nil {
		return nil, err
	}
	if len(classifications.Classifications) == 0 {
		return nil, nil
	}

	attributed := 0
	for _, c := range classifications.Classifications {
		if c.Attributed > 0 {
			attributed++
		}
	}
	score := float64(attributed) / float64(len(classifications.Classifications))
	return &score, nil
}

// judge runs one scoring call at temperature 0 through the retry wrapper.
func (s *EvaluationService) judge(ctx context.Context, model, prompt string) (string, error) {
	return retry.DoValue(ctx, s.retryCfg, func(ctx context.Context) (string, error) {
		return s.llm.Generate(ctx, prompt, driven.GenerateOptions{
			Model:       model,
			MaxTokens:   judgeMaxTokens,
			Temperature: 0,
			TopP:        domain.DefaultTopP,
		})
	})
}

// embeddingSimilarity returns the cosine similarity of two texts,
// clamped to [0,1].
func (s *EvaluationService) embeddingSimilarity(ctx context.Context, a, b string) (float64, error) {
	vectors, err := s.embedder.EmbedBatch(ctx, []string{a, b})
	if err != nil {
		return 0, err
	}
	if len(vectors) != 2 {
		return 0, fmt.Errorf("expected 2 embeddings, got %d", len(vectors))
	}
	similarity := cosineSimilarity(vectors[0], vectors[1])
	if similarity < 0 {
		similarity = 0
	}
	if similarity > 1 {
		similarity = 1
	}
	return similarity, nil
}

// decodeJudge parses a judge response as JSON, tolerating fenced code
// blocks and surrounding prose around the JSON body.
func decodeJudge(raw string, v any) error {
	if err := json.Unmarshal([]byte(extractJSON(raw)), v); err != nil {
		return fmt.Errorf("parsing judge response: %w", err)
	}
	return nil
}

// extractJSON trims a string to its outermost JSON object or array.
func extractJSON(s string) string {
	start := strings.IndexAny(s, "[{")
	if start == -1 {
		return s
	}
	end := strings.LastIndexAny(s, "]}")
	if end <= start {
		return s
	}
	return s[start : end+1]
}

// numberedList renders items as "[N] item" lines for judge prompts.
func numberedList(items []string) string {
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, item)
	}
	return strings.TrimRight(b.String(), "\n")
}

// meanPrecisionAtK averages precision@k over the positions judged
// relevant. All-irrelevant verdicts score zero.
func meanPrecisionAtK(verdicts []int) float64 {
	var relevant, sum float64
	for k, v := range verdicts {
		if v > 0 {
			relevant++
			sum += relevant / float64(k+1)
		}
	}
	if relevant == 0 {
		return 0
	}
	return sum / relevant
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched or zero-norm vectors score zero.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// formatMean renders an aggregate for the summary log line.
func formatMean(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", *v)
}
