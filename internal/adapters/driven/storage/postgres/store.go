package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"github.com/kbdb-labs/kbdb/internal/adapters/driven/storage/postgres/migrations"
	"github.com/kbdb-labs/kbdb/internal/core/domain"
	"github.com/kbdb-labs/kbdb/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// Pool defaults. Connections are request-scoped: every query runs through
// the pool with a context, so checkout and checkin stay failure-safe.
const (
	defaultMaxOpenConns    = 10
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 30 * time.Minute
)

// Store is the pgvector-backed document store.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// NewStore opens a connection pool against the given DSN, verifies
// connectivity and runs pending migrations.
func NewStore(dsn string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s := &Store{db: db, log: log}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	log.Info("postgres store ready")
	return s, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStore, err)
	}
	return nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}

		s.log.Info("applied migration", zap.String("file", name))
	}

	return nil
}

// SearchNearest executes the metric-specific nearest-neighbour query.
func (s *Store) SearchNearest(
	ctx context.Context, query []float32, model, task string, metric domain.Metric, topK int,
) ([]domain.SearchResult, error) {
	stmt, err := buildSearchQuery(metric)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, stmt, pgvector.NewVector(query), model, task, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: nearest-neighbour query: %v", domain.ErrStore, err)
	}
	defer rows.Close()

	var results []domain.SearchResult
	for rows.Next() {
		var r domain.SearchResult
		if err := rows.Scan(&r.DocumentID, &r.DocumentName, &r.ChunkID, &r.ChunkIndex, &r.Content, &r.Score); err != nil {
			return nil, fmt.Errorf("%w: scanning result: %v", domain.ErrStore, err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating results: %v", domain.ErrStore, err)
	}

	return results, nil
}

// SaveDocument stores or updates a document.
func (s *Store) SaveDocument(ctx context.Context, doc *domain.Document) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, name, content)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			content = excluded.content
	`, doc.ID, doc.Name, doc.Content)
	if err != nil {
		return fmt.Errorf("%w: saving document: %v", domain.ErrStore, err)
	}
	return nil
}

// SaveChunks stores chunks for a document in one transaction.
func (s *Store) SaveChunks(ctx context.Context, chunks []domain.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", domain.ErrStore, err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO document_chunks (id, document_id, "index", content)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			document_id = excluded.document_id,
			"index" = excluded."index",
			content = excluded.content
	`)
	if err != nil {
		return fmt.Errorf("%w: preparing statement: %v", domain.ErrStore, err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID, chunk.Index, chunk.Content); err != nil {
			return fmt.Errorf("%w: saving chunk: %v", domain.ErrStore, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %v", domain.ErrStore, err)
	}
	return nil
}

// SaveEmbedding stores or replaces the embedding for a (chunk, model, task)
// triple. The composite key keeps at most one embedding per pair.
func (s *Store) SaveEmbedding(ctx context.Context, emb domain.Embedding) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO embeddings (chunk_id, model, task, embedding)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (chunk_id, model, task) DO UPDATE SET
			embedding = excluded.embedding
	`, emb.ChunkID, emb.Model, emb.Task, pgvector.NewVector(emb.Vector))
	if err != nil {
		return fmt.Errorf("%w: saving embedding: %v", domain.ErrStore, err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, content FROM documents WHERE id = $1
	`, id)

	var doc domain.Document
	if err := row.Scan(&doc.ID, &doc.Name, &doc.Content); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning document: %v", domain.ErrStore, err)
	}
	return &doc, nil
}

// GetChunks retrieves a document's chunks ordered by index.
func (s *Store) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, "index", content
		FROM document_chunks
		WHERE document_id = $1
		ORDER BY "index" ASC
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying chunks: %v", domain.ErrStore, err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Index, &c.Content); err != nil {
			return nil, fmt.Errorf("%w: scanning chunk: %v", domain.ErrStore, err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating chunks: %v", domain.ErrStore, err)
	}
	return chunks, nil
}

// DeleteDocument removes a document. Chunks and embeddings cascade.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("%w: deleting document: %v", domain.ErrStore, err)
	}
	return nil
}
