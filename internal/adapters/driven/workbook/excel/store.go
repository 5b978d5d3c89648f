// Package excel provides an FAQ workbook adapter backed by xlsx files.
package excel

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
	"github.com/oshiete-dev/oshiete-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.FAQStore = (*Store)(nil)

// Sheet names in a results workbook.
const (
	ResultsSheet  = "Results"
	SettingsSheet = "Settings"
)

// requiredColumns are the header columns an FAQ workbook must carry.
var requiredColumns = []string{"id", "question", "ground_truth", "filter"}

// resultColumns are the fixed Results sheet headers. Metric columns are
// appended when the report carries scores.
var resultColumns = []string{
	"id", "question", "filter", "answer", "ground_truth",
	"vector_search_time", "rerank_time", "generation_time", "total_time",
	"model_used", "status", "error",
}

// metricColumns are appended after an evaluation run.
var metricColumns = []string{
	"faithfulness", "answer_correctness", "context_precision", "context_recall",
}

// Store reads FAQ workbooks and writes result workbooks.
type Store struct{}

// New creates a workbook store.
func New() *Store {
	return &Store{}
}

// LoadFAQ parses FAQ entries from workbook bytes. The first sheet must
// carry the required header columns; rows with a blank question are
// skipped.
func (s *Store) LoadFAQ(_ context.Context, raw []byte) ([]domain.FAQEntry, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only close

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%w: workbook has no sheets", domain.ErrInvalidInput)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q has no header row", domain.ErrInvalidInput, sheet)
	}

	columns, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	entries := make([]domain.FAQEntry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		question := strings.TrimSpace(cell(row, columns["question"]))
		if question == "" {
			continue
		}
		entries = append(entries, domain.FAQEntry{
			ID:          strings.TrimSpace(cell(row, columns["id"])),
			Question:    question,
			GroundTruth: strings.TrimSpace(cell(row, columns["ground_truth"])),
			Filtering:   strings.TrimSpace(cell(row, columns["filter"])),
		})
	}

	return entries, nil
}

// headerIndex maps required column names to their positions, rejecting
// workbooks with missing columns.
func headerIndex(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required columns: %s", domain.ErrInvalidInput, strings.Join(missing, ", "))
	}

	return columns, nil
}

// cell returns the value at idx, tolerating short rows. Trailing empty
// cells are trimmed from xlsx rows, so this happens on every blank tail.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// SaveResults writes a results workbook: a Results sheet with one row per
// question and a Settings sheet with the run parameters. Metric columns
// appear only when at least one item carries a score.
func (s *Store) SaveResults(_ context.Context, path string, report *domain.EvaluationReport, settings map[string]string) error {
	if path == "" {
		return fmt.Errorf("%w: output path is empty", domain.ErrInvalidInput)
	}
	if report == nil {
		return fmt.Errorf("%w: report is nil", domain.ErrInvalidInput)
	}

	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // flushed by SaveAs

	if err := f.SetSheetName(f.GetSheetName(0), ResultsSheet); err != nil {
		return fmt.Errorf("naming results sheet: %w", err)
	}
	if err := writeResults(f, report); err != nil {
		return err
	}
	if err := writeSettings(f, settings); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook to %s: %w", path, err)
	}
	return nil
}

// writeResults fills the Results sheet from the report items.
func writeResults(f *excelize.File, report *domain.EvaluationReport) error {
	withMetrics := hasMetrics(report)

	header := make([]any, 0, len(resultColumns)+len(metricColumns))
	for _, name := range resultColumns {
		header = append(header, name)
	}
	if withMetrics {
		for _, name := range metricColumns {
			header = append(header, name)
		}
	}
	if err := setRow(f, ResultsSheet, 1, header); err != nil {
		return err
	}

	for i, item := range report.Items {
		row := []any{
			item.ID,
			item.Question,
			item.Filtering,
			"",
			item.GroundTruth,
			0.0, 0.0, 0.0, 0.0,
			report.ModelUsed,
			"failed",
			item.Err,
		}
		if item.Succeeded() {
			row[3] = item.Result.Answer
			row[5] = item.Result.VectorSearchTime.Seconds()
			row[6] = item.Result.RerankTime.Seconds()
			row[7] = item.Result.GenerationTime.Seconds()
			row[8] = item.Result.TotalTime.Seconds()
			row[9] = item.Result.ModelUsed
			row[10] = "success"
		}
		if withMetrics {
			row = append(row,
				metricCell(item.Scores.Faithfulness),
				metricCell(item.Scores.AnswerCorrectness),
				metricCell(item.Scores.ContextPrecision),
				metricCell(item.Scores.ContextRecall),
			)
		}
		if err := setRow(f, ResultsSheet, i+2, row); err != nil {
			return err
		}
	}

	return nil
}

// writeSettings fills the Settings sheet with sorted parameter rows.
func writeSettings(f *excelize.File, settings map[string]string) error {
	if _, err := f.NewSheet(SettingsSheet); err != nil {
		return fmt.Errorf("creating settings sheet: %w", err)
	}
	if err := setRow(f, SettingsSheet, 1, []any{"parameter", "value"}); err != nil {
		return err
	}

	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for i, k := range keys {
		if err := setRow(f, SettingsSheet, i+2, []any{k, settings[k]}); err != nil {
			return err
		}
	}
	return nil
}

// setRow writes one whole row starting at column A.
func setRow(f *excelize.File, sheet string, row int, values []any) error {
	axis, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("computing cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, axis, &values); err != nil {
		return fmt.Errorf("writing row %d of %s: %w", row, sheet, err)
	}
	return nil
}

// hasMetrics reports whether any item carries at least one score.
func hasMetrics(report *domain.EvaluationReport) bool {
	for _, item := range report.Items {
		sc := item.Scores
		if sc.Faithfulness != nil || sc.AnswerCorrectness != nil ||
			sc.ContextPrecision != nil || sc.ContextRecall != nil {
			return true
		}
	}
	return false
}

// metricCell converts an optional score to a cell value, blank when the
// metric was not computed.
func metricCell(score *float64) any {
	if score == nil {
		return ""
	}
	return *score
}
