// Package postgres implements the DocumentStore port on PostgreSQL with
// the pgvector extension. Similarity search is the database's cosine
// distance operator over an HNSW index.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvector "github.com/pgvector/pgvector-go/pgx"

	"github.com/oshiete-dev/oshiete-cli/internal/adapters/driven/docstore/postgres/migrations"
	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
	"github.com/oshiete-dev/oshiete-cli/internal/core/ports/driven"
)

// Ensure Store implements the interfaces.
var (
	_ driven.DocumentStore = (*Store)(nil)
	_ driven.SchemaManager = (*Store)(nil)
)

// Store is a Postgres-backed document and chunk store.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a store connected to the database at url. The pool is lazy;
// reachability is checked by Ping. The schema is not touched here, apply
// it with InitSchema.
func New(ctx context.Context, url string) (*Store, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: database URL is empty", domain.ErrNotConfigured)
	}

	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		if err := pgxvector.RegisterTypes(ctx, conn); err != nil {
			// A fresh database has no vector type until InitSchema runs
			// CREATE EXTENSION; InitSchema resets the pool afterwards.
			if strings.Contains(err.Error(), "vector type not found") {
				return nil
			}
			return err
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ping validates the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// InitSchema applies pending migrations. Safe to run repeatedly.
func (s *Store) InitSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.pool.QueryRow(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	applied := false
	for _, name := range upFiles {
		// Extract version number (e.g., "001_init.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.pool.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.pool.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		applied = true
	}

	if applied {
		// New connections must pick up types created by the migrations.
		s.pool.Reset()
	}

	return nil
}

// SaveDocumentWithChunks stores a document and its chunks in one
// transaction. Any failure discards the whole file's writes.
func (s *Store) SaveDocumentWithChunks(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	if doc == nil {
		return domain.ErrInvalidInput
	}

	if doc.RegisteredAt.IsZero() {
		doc.RegisteredAt = time.Now().UTC()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	_, err = tx.Exec(ctx, `
		INSERT INTO source_documents (id, filename, filtering, content_type, file_size, text_length, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, doc.ID, doc.Filename, nullString(doc.Filtering), doc.ContentType,
		doc.FileSize, doc.TextLength, doc.RegisteredAt)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}

	batch := &pgx.Batch{}
	for _, chunk := range chunks {
		batch.Queue(`
			INSERT INTO chunks (id, document_id, content, position, embedding)
			VALUES ($1, $2, $3, $4, $5)
		`, chunk.ID, chunk.DocumentID, chunk.Content, chunk.Position,
			pgvector.NewVector(chunk.Embedding))
	}

	results := tx.SendBatch(ctx, batch)
	for range chunks {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("saving chunk: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("closing chunk batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// SearchSimilar returns the topK chunks nearest to embedding by cosine
// distance, joined with their source document for the filename. A
// non-empty filtering restricts candidates to documents in that category.
func (s *Store) SearchSimilar(ctx context.Context, embedding []float32, topK int, filtering string) ([]domain.SearchResult, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive, got %d", domain.ErrInvalidInput, topK)
	}

	query := `
		SELECT c.id, c.document_id, d.filename, c.content,
		       c.embedding <=> $1 AS distance
		FROM chunks c
		JOIN source_documents d ON d.id = c.document_id`
	args := []any{pgvector.NewVector(embedding)}

	if filtering != "" {
		query += `
		WHERE d.filtering = $2`
		args = append(args, filtering)
	}

	query += fmt.Sprintf(`
		ORDER BY c.embedding <=> $1
		LIMIT $%d`, len(args)+1)
	args = append(args, topK)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching chunks: %w", err)
	}
	defer rows.Close()

	var results []domain.SearchResult
	for rows.Next() {
		var r domain.SearchResult
		if err := rows.Scan(&r.ChunkID, &r.DocumentID, &r.Filename, &r.Content, &r.Distance); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search results: %w", err)
	}

	return results, nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, filename, filtering, content_type, file_size, text_length, registered_at
		FROM source_documents WHERE id = $1
	`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	return doc, nil
}

// ListDocuments returns all documents ordered by registration time.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, filename, filtering, content_type, file_size, text_length, registered_at
		FROM source_documents
		ORDER BY registered_at, filename
	`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// DeleteDocument removes a document; its chunks cascade.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM source_documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteAll removes every document and chunk and reports the counts.
func (s *Store) DeleteAll(ctx context.Context) (int64, int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	var docs, chunks int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM source_documents`).Scan(&docs); err != nil {
		return 0, 0, fmt.Errorf("counting documents: %w", err)
	}
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&chunks); err != nil {
		return 0, 0, fmt.Errorf("counting chunks: %w", err)
	}

	// Chunks cascade with their documents.
	if _, err := tx.Exec(ctx, `DELETE FROM source_documents`); err != nil {
		return 0, 0, fmt.Errorf("deleting documents: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("committing transaction: %w", err)
	}

	return docs, chunks, nil
}

// Stats returns row counts.
func (s *Store) Stats(ctx context.Context) (*domain.StoreStats, error) {
	var stats domain.StoreStats
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM source_documents`).Scan(&stats.Documents); err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&stats.Chunks); err != nil {
		return nil, fmt.Errorf("counting chunks: %w", err)
	}
	return &stats, nil
}

// scanDocument reads one source_documents row.
func scanDocument(row pgx.Row) (*domain.Document, error) {
	var doc domain.Document
	var filtering *string
	if err := row.Scan(&doc.ID, &doc.Filename, &filtering, &doc.ContentType,
		&doc.FileSize, &doc.TextLength, &doc.RegisteredAt); err != nil {
		return nil, err
	}
	if filtering != nil {
		doc.Filtering = *filtering
	}
	return &doc, nil
}

// nullString maps "" to NULL so optional columns stay NULL in the schema.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
