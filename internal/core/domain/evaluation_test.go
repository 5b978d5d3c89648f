package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func score(v float64) *float64 { return &v }

// TestEvaluationReport_Aggregate tests mean computation over scored items
func TestEvaluationReport_Aggregate(t *testing.T) {
	report := EvaluationReport{
		Items: []EvaluatedItem{
			{Scores: MetricScores{
				Faithfulness:      score(1.0),
				AnswerCorrectness: score(0.8),
				ContextPrecision:  score(0.5),
				ContextRecall:     score(1.0),
			}},
			{Scores: MetricScores{
				Faithfulness:      score(0.5),
				AnswerCorrectness: score(0.6),
				ContextPrecision:  score(1.0),
				ContextRecall:     score(0.0),
			}},
		},
	}

	report.Aggregate()

	require.NotNil(t, report.MeanFaithfulness)
	assert.InDelta(t, 0.75, *report.MeanFaithfulness, 1e-9)
	require.NotNil(t, report.MeanAnswerCorrectness)
	assert.InDelta(t, 0.7, *report.MeanAnswerCorrectness, 1e-9)
	require.NotNil(t, report.MeanContextPrecision)
	assert.InDelta(t, 0.75, *report.MeanContextPrecision, 1e-9)
	require.NotNil(t, report.MeanContextRecall)
	assert.InDelta(t, 0.5, *report.MeanContextRecall, 1e-9)
}

// TestEvaluationReport_Aggregate_SkipsUnscored tests nil scores are excluded
func TestEvaluationReport_Aggregate_SkipsUnscored(t *testing.T) {
	report := EvaluationReport{
		Items: []EvaluatedItem{
			{Scores: MetricScores{Faithfulness: score(1.0)}},
			{Scores: MetricScores{}}, // failed question, nothing scored
		},
	}

	report.Aggregate()

	require.NotNil(t, report.MeanFaithfulness)
	assert.InDelta(t, 1.0, *report.MeanFaithfulness, 1e-9)
	assert.Nil(t, report.MeanAnswerCorrectness)
	assert.Nil(t, report.MeanContextPrecision)
	assert.Nil(t, report.MeanContextRecall)
}

// TestEvaluationReport_Aggregate_Empty tests aggregation with no items
func TestEvaluationReport_Aggregate_Empty(t *testing.T) {
	var report EvaluationReport
	report.Aggregate()

	assert.Nil(t, report.MeanFaithfulness)
	assert.Nil(t, report.MeanAnswerCorrectness)
	assert.Nil(t, report.MeanContextPrecision)
	assert.Nil(t, report.MeanContextRecall)
}
