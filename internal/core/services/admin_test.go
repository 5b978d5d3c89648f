package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
)

// --- Mock implementations ---

// mockSchemaManager implements driven.SchemaManager for testing.
type mockSchemaManager struct {
	initErr error
	calls   int
}

func (m *mockSchemaManager) InitSchema(_ context.Context) error {
	m.calls++
	return m.initErr
}

// --- Test helpers ---

func seededDocStore() *mockDocStore {
	return &mockDocStore{
		docs: []*domain.Document{
			{ID: "d1", Filename: "就業規則.pdf"},
			{ID: "d2", Filename: "faq.txt"},
		},
		chunks: map[string][]domain.Chunk{
			"d1": {{ID: "c1", DocumentID: "d1"}, {ID: "c2", DocumentID: "d1"}},
			"d2": {{ID: "c3", DocumentID: "d2"}},
		},
	}
}

// --- Tests ---

func TestAdminService_InitSchema(t *testing.T) {
	schema := &mockSchemaManager{}
	service := NewAdminService(schema, seededDocStore(), nil, nil, nil, nil)
	ctx := context.Background()

	require.NoError(t, service.InitSchema(ctx))
	assert.Equal(t, 1, schema.calls)
}

func TestAdminService_InitSchema_Error(t *testing.T) {
	schema := &mockSchemaManager{initErr: errors.New("migration 002 failed")}
	service := NewAdminService(schema, nil, nil, nil, nil, nil)
	ctx := context.Background()

	err := service.InitSchema(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "applying migrations")
}

func TestAdminService_InitSchema_NotConfigured(t *testing.T) {
	service := NewAdminService(nil, nil, nil, nil, nil, nil)
	ctx := context.Background()

	err := service.InitSchema(ctx)

	require.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestAdminService_Stats(t *testing.T) {
	service := NewAdminService(nil, seededDocStore(), nil, nil, nil, nil)
	ctx := context.Background()

	stats, err := service.Stats(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Documents)
	assert.Equal(t, int64(3), stats.Chunks)
}

func TestAdminService_Stats_NotConfigured(t *testing.T) {
	service := NewAdminService(nil, nil, nil, nil, nil, nil)
	ctx := context.Background()

	_, err := service.Stats(ctx)

	require.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestAdminService_ListDocuments(t *testing.T) {
	service := NewAdminService(nil, seededDocStore(), nil, nil, nil, nil)
	ctx := context.Background()

	docs, err := service.ListDocuments(ctx)

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "就業規則.pdf", docs[0].Filename)
}

func TestAdminService_ListDocuments_NotConfigured(t *testing.T) {
	service := NewAdminService(nil, nil, nil, nil, nil, nil)
	ctx := context.Background()

	_, err := service.ListDocuments(ctx)

	require.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestAdminService_DeleteDocument(t *testing.T) {
	docs := seededDocStore()
	service := NewAdminService(nil, docs, nil, nil, nil, nil)
	ctx := context.Background()

	require.NoError(t, service.DeleteDocument(ctx, "d1"))

	_, err := docs.GetDocument(ctx, "d1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// The other document is untouched.
	_, err = docs.GetDocument(ctx, "d2")
	assert.NoError(t, err)
}

func TestAdminService_DeleteDocument_EmptyID(t *testing.T) {
	service := NewAdminService(nil, seededDocStore(), nil, nil, nil, nil)
	ctx := context.Background()

	err := service.DeleteDocument(ctx, "")

	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAdminService_DeleteDocument_NotFound(t *testing.T) {
	service := NewAdminService(nil, seededDocStore(), nil, nil, nil, nil)
	ctx := context.Background()

	err := service.DeleteDocument(ctx, "missing")

	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdminService_DeleteAll(t *testing.T) {
	docs := seededDocStore()
	service := NewAdminService(nil, docs, nil, nil, nil, nil)
	ctx := context.Background()

	deletedDocs, deletedChunks, err := service.DeleteAll(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(2), deletedDocs)
	assert.Equal(t, int64(3), deletedChunks)

	stats, err := docs.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Documents)
}

func TestAdminService_Doctor_AllHealthy(t *testing.T) {
	service := NewAdminService(
		&mockSchemaManager{},
		seededDocStore(),
		testObjectStore(),
		&mockEmbedder{},
		&mockLLM{},
		&mockReranker{},
	)
	ctx := context.Background()

	statuses := service.Doctor(ctx)

	require.Len(t, statuses, 5)
	names := make([]string, len(statuses))
	for i, status := range statuses {
		names[i] = status.Name
		assert.True(t, status.Configured, status.Name)
		assert.NoError(t, status.Err, status.Name)
	}
	assert.Equal(t, []string{"database", "object store", "embedding service", "LLM service", "reranker"}, names)
}

func TestAdminService_Doctor_PartiallyConfigured(t *testing.T) {
	service := NewAdminService(nil, seededDocStore(), nil, &mockEmbedder{}, &mockLLM{}, nil)
	ctx := context.Background()

	statuses := service.Doctor(ctx)

	require.Len(t, statuses, 5)
	byName := make(map[string]bool, len(statuses))
	for _, status := range statuses {
		byName[status.Name] = status.Configured
	}
	assert.True(t, byName["database"])
	assert.False(t, byName["object store"])
	assert.True(t, byName["embedding service"])
	assert.False(t, byName["reranker"])
}

func TestAdminService_Doctor_FailingDependency(t *testing.T) {
	docs := seededDocStore()
	docs.pingErr = errors.New("connection refused")
	objects := testObjectStore()
	objects.pingErr = domain.ErrObjectStoreUnavailable
	service := NewAdminService(nil, docs, objects, &mockEmbedder{}, &mockLLM{}, &mockReranker{})
	ctx := context.Background()

	statuses := service.Doctor(ctx)

	assert.Error(t, statuses[0].Err)
	assert.ErrorIs(t, statuses[1].Err, domain.ErrObjectStoreUnavailable)
	assert.NoError(t, statuses[2].Err)
}
