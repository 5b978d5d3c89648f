package domain

import "time"

// FAQEntry is one row of the ground-truth workbook.
type FAQEntry struct {
	// ID is the row identifier.
	ID string

	// Question is the question text.
	Question string

	// GroundTruth is the reference answer.
	GroundTruth string

	// Filtering restricts retrieval for this question. Empty means none.
	Filtering string
}

// EvaluateOptions configures one evaluation run.
type EvaluateOptions struct {
	// JudgeModel overrides the chat model that scores the answers.
	// Empty uses the service default.
	JudgeModel string
}

// MetricScores holds the quality metrics for one evaluated question.
// A nil field means the metric could not be computed for that question;
// aggregates exclude nil scores.
type MetricScores struct {
	// Faithfulness is the fraction of answer statements supported by
	// the retrieved contexts.
	Faithfulness *float64

	// AnswerCorrectness blends factual overlap with the ground truth
	// and embedding similarity.
	AnswerCorrectness *float64

	// ContextPrecision is the mean precision@k over the retrieved
	// contexts judged useful for the ground truth.
	ContextPrecision *float64

	// ContextRecall is the fraction of ground-truth sentences
	// attributable to the retrieved contexts.
	ContextRecall *float64
}

// EvaluatedItem pairs a batch outcome with its metric scores.
type EvaluatedItem struct {
	BatchItem

	// Scores holds the per-question metrics. All nil when the
	// question failed before evaluation.
	Scores MetricScores

	// EvalErr holds an evaluation failure message; empty when
	// evaluation ran (even if individual metrics are nil).
	EvalErr string
}

// EvaluationReport aggregates an evaluation run.
type EvaluationReport struct {
	// Items holds per-question results in input order.
	Items []EvaluatedItem

	// Aggregates are the mean of each metric over scored questions.
	MeanFaithfulness      *float64
	MeanAnswerCorrectness *float64
	MeanContextPrecision  *float64
	MeanContextRecall     *float64

	// ModelUsed is the chat model that produced the answers.
	ModelUsed string

	// JudgeModel is the chat model that scored the answers.
	JudgeModel string

	// Elapsed is the wall-clock duration of the whole run.
	Elapsed time.Duration
}

// mean returns the average of the non-nil values, or nil when none scored.
func mean(values []*float64) *float64 {
	var sum float64
	var n int
	for _, v := range values {
		if v == nil {
			continue
		}
		sum += *v
		n++
	}
	if n == 0 {
		return nil
	}
	m := sum / float64(n)
	return &m
}

// Aggregate recomputes the mean metrics from the items.
func (r *EvaluationReport) Aggregate() {
	faith := make([]*float64, len(r.Items))
	correct := make([]*float64, len(r.Items))
	precision := make([]*float64, len(r.Items))
	recall := make([]*float64, len(r.Items))
	for i, item := range r.Items {
		faith[i] = item.Scores.Faithfulness
		correct[i] = item.Scores.AnswerCorrectness
		precision[i] = item.Scores.ContextPrecision
		recall[i] = item.Scores.ContextRecall
	}
	r.MeanFaithfulness = mean(faith)
	r.MeanAnswerCorrectness = mean(correct)
	r.MeanContextPrecision = mean(precision)
	r.MeanContextRecall = mean(recall)
}
