package cli

import (
	"context"
	"time"

	"github.com/oshiete-dev/oshiete-cli/internal/config"
	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
	"github.com/oshiete-dev/oshiete-cli/internal/core/ports/driven"
	"github.com/oshiete-dev/oshiete-cli/internal/core/ports/driving"
)

// --- Mock implementations ---

type mockIngestService struct {
	report   *domain.IngestReport
	err      error
	lastOpts domain.IngestOptions
}

func (m *mockIngestService) Ingest(_ context.Context, opts domain.IngestOptions) (*domain.IngestReport, error) {
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	if opts.Progress != nil {
		for i, o := range m.report.Outcomes {
			outcome := o
			opts.Progress(domain.IngestProgress{
				Index:    i + 1,
				Total:    len(m.report.Outcomes),
				Filename: o.Filename,
				Stage:    domain.StageDone,
				Outcome:  &outcome,
			})
		}
	}
	return m.report, nil
}

type mockAnswerService struct {
	result       *domain.RAGResult
	askErr       error
	batch        *domain.BatchResult
	batchErr     error
	lastQuestion string
	lastOpts     domain.AskOptions
	lastEntries  []domain.FAQEntry
}

func (m *mockAnswerService) Ask(_ context.Context, question string, opts domain.AskOptions) (*domain.RAGResult, error) {
	m.lastQuestion = question
	m.lastOpts = opts
	if m.askErr != nil {
		return nil, m.askErr
	}
	return m.result, nil
}

func (m *mockAnswerService) AskBatch(_ context.Context, entries []domain.FAQEntry, opts domain.AskOptions, progress func(domain.BatchProgress)) (*domain.BatchResult, error) {
	m.lastEntries = entries
	m.lastOpts = opts
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	if progress != nil {
		for i, item := range m.batch.Items {
			progress(domain.BatchProgress{
				Index:    i + 1,
				Total:    len(m.batch.Items),
				Question: item.Question,
				Err:      item.Err,
			})
		}
	}
	return m.batch, nil
}

type mockEvaluationService struct {
	report    *domain.EvaluationReport
	err       error
	lastBatch *domain.BatchResult
	lastOpts  domain.EvaluateOptions
}

func (m *mockEvaluationService) Evaluate(_ context.Context, batch *domain.BatchResult, opts domain.EvaluateOptions, progress func(domain.BatchProgress)) (*domain.EvaluationReport, error) {
	m.lastBatch = batch
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	if progress != nil {
		for i, item := range m.report.Items {
			progress(domain.BatchProgress{
				Index:    i + 1,
				Total:    len(m.report.Items),
				Question: item.Question,
				Err:      item.EvalErr,
			})
		}
	}
	return m.report, nil
}

type mockAdminService struct {
	initErr       error
	initCalls     int
	stats         *domain.StoreStats
	statsErr      error
	docs          []domain.Document
	listErr       error
	deleteErr     error
	deletedID     string
	deletedDocs   int64
	deletedChunks int64
	statuses      []driving.DependencyStatus
}

func (m *mockAdminService) InitSchema(_ context.Context) error {
	m.initCalls++
	return m.initErr
}

func (m *mockAdminService) Stats(_ context.Context) (*domain.StoreStats, error) {
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	return m.stats, nil
}

func (m *mockAdminService) ListDocuments(_ context.Context) ([]domain.Document, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.docs, nil
}

func (m *mockAdminService) DeleteDocument(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedID = id
	return nil
}

func (m *mockAdminService) DeleteAll(_ context.Context) (int64, int64, error) {
	if m.deleteErr != nil {
		return 0, 0, m.deleteErr
	}
	return m.deletedDocs, m.deletedChunks, nil
}

func (m *mockAdminService) Doctor(_ context.Context) []driving.DependencyStatus {
	return m.statuses
}

type mockFAQStore struct {
	entries       []domain.FAQEntry
	loadErr       error
	saveErr       error
	savedPath     string
	savedReport   *domain.EvaluationReport
	savedSettings map[string]string
}

func (m *mockFAQStore) LoadFAQ(_ context.Context, _ []byte) ([]domain.FAQEntry, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.entries, nil
}

func (m *mockFAQStore) SaveResults(_ context.Context, path string, report *domain.EvaluationReport, settings map[string]string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.savedPath = path
	m.savedReport = report
	m.savedSettings = settings
	return nil
}

type mockBucket struct {
	content  map[string][]byte
	fetchErr error
	pingErr  error
}

func (m *mockBucket) List(_ context.Context, _ string) ([]driven.ObjectInfo, error) {
	return nil, nil
}

func (m *mockBucket) Fetch(_ context.Context, key string) ([]byte, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	if raw, ok := m.content[key]; ok {
		return raw, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockBucket) Stat(_ context.Context, _ string) (*driven.ObjectInfo, error) {
	return nil, domain.ErrNotFound
}

func (m *mockBucket) Ping(_ context.Context) error { return m.pingErr }

func (m *mockBucket) Close() error { return nil }

// --- Test helpers ---

func testRAGResult() *domain.RAGResult {
	score := 0.91
	return &domain.RAGResult{
		Question:  "就業時間を教えてください。",
		Answer:    "就業時間は9時から18時までです。",
		ModelUsed: domain.DefaultChatModel,
		Contexts: []domain.RankedChunk{
			{
				ChunkID:     "c1",
				DocumentID:  "d1",
				Filename:    "就業規則.pdf",
				Content:     "従業員の就業時間は9時から18時までとします。",
				Distance:    0.12,
				RerankScore: &score,
			},
			{
				ChunkID:    "c2",
				DocumentID: "d1",
				Filename:   "就業規則.pdf",
				Content:    "休憩時間は12時から13時までとします。",
				Distance:   0.20,
			},
		},
		Reranked:         true,
		VectorSearchTime: 120 * time.Millisecond,
		RerankTime:       40 * time.Millisecond,
		GenerationTime:   900 * time.Millisecond,
		TotalTime:        1060 * time.Millisecond,
	}
}

func testBatch() *domain.BatchResult {
	result := testRAGResult()
	return &domain.BatchResult{
		Items: []domain.BatchItem{
			{ID: "1", Question: result.Question, GroundTruth: "9時から18時です。", Result: result},
			{ID: "2", Question: "存在しない質問", Err: "no chunks matched the question"},
		},
		Succeeded: 1,
		Failed:    1,
		ModelUsed: domain.DefaultChatModel,
		Elapsed:   2 * time.Second,
	}
}

func testEvaluationReport() *domain.EvaluationReport {
	faith := 0.5
	correct := 0.75
	report := &domain.EvaluationReport{
		ModelUsed:  domain.DefaultChatModel,
		JudgeModel: domain.DefaultChatModel,
		Elapsed:    3 * time.Second,
	}
	for _, item := range testBatch().Items {
		evaluated := domain.EvaluatedItem{BatchItem: item}
		if item.Succeeded() {
			evaluated.Scores = domain.MetricScores{
				Faithfulness:      &faith,
				AnswerCorrectness: &correct,
			}
		}
		report.Items = append(report.Items, evaluated)
	}
	report.Aggregate()
	return report
}

func healthyStatuses() []driving.DependencyStatus {
	return []driving.DependencyStatus{
		{Name: "database", Configured: true},
		{Name: "object store", Configured: true},
		{Name: "embedding service", Configured: true},
		{Name: "LLM service", Configured: true},
		{Name: "reranker", Configured: false},
	}
}

// setupTestServices swaps every service variable for a happy-path mock
// and returns a cleanup that restores the previous wiring.
func setupTestServices() func() {
	oldIngest := ingestService
	oldAnswer := answerService
	oldEvaluation := evaluationService
	oldAdmin := adminService
	oldFAQStore := faqStore
	oldFAQObjects := faqObjects
	oldSettings := settings
	oldWired := servicesWired

	ingestService = &mockIngestService{report: &domain.IngestReport{
		TotalFiles:  2,
		Succeeded:   2,
		TotalChunks: 5,
		Elapsed:     1500 * time.Millisecond,
		Outcomes: []domain.FileOutcome{
			{Filename: "hr/就業規則.txt", Status: domain.FileSucceeded, DocumentID: "d1", ChunksSaved: 3},
			{Filename: "faq.txt", Status: domain.FileSucceeded, DocumentID: "d2", ChunksSaved: 2},
		},
	}}
	answerService = &mockAnswerService{result: testRAGResult(), batch: testBatch()}
	evaluationService = &mockEvaluationService{report: testEvaluationReport()}
	adminService = &mockAdminService{
		stats:         &domain.StoreStats{Documents: 2, Chunks: 5},
		deletedDocs:   2,
		deletedChunks: 5,
		statuses:      healthyStatuses(),
	}
	faqStore = &mockFAQStore{entries: []domain.FAQEntry{
		{ID: "1", Question: "就業時間を教えてください。", GroundTruth: "9時から18時です。"},
		{ID: "2", Question: "存在しない質問"},
	}}
	faqObjects = &mockBucket{content: map[string][]byte{"faq.xlsx": []byte("workbook")}}

	testSettings := config.Defaults()
	testSettings.FAQ = config.FAQSettings{Bucket: "faq", Object: "faq.xlsx"}
	settings = &testSettings
	servicesWired = true

	return func() {
		ingestService = oldIngest
		answerService = oldAnswer
		evaluationService = oldEvaluation
		adminService = oldAdmin
		faqStore = oldFAQStore
		faqObjects = oldFAQObjects
		settings = oldSettings
		servicesWired = oldWired
	}
}
