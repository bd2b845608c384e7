package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/kbdb-labs/kbdb/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/kbdb-labs/kbdb/internal/core/domain"
	"github.com/kbdb-labs/kbdb/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// Store is the SQLite-backed document store.
type Store struct {
	db   *sql.DB
	path string
	log  *zap.Logger
}

// NewStore creates a SQLite store at the given path. ":memory:" opens an
// in-memory database (used by tests).
func NewStore(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	// Cascades rely on foreign key enforcement, and the pragma is
	// per-connection in SQLite, so it has to ride the DSN: every
	// connection the pool opens gets it, not just the first.
	dsn := path + "?_pragma=foreign_keys(1)"
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0700); err != nil {
				return nil, fmt.Errorf("creating data directory: %w", err)
			}
		}
		// WAL mode for better concurrency
		dsn += "&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// A pooled ":memory:" DSN would open one empty database per
	// connection; pin the pool to a single connection instead.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, path: path, log: log}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	log.Info("sqlite store ready", zap.String("path", path))
	return s, nil
}

// Close closes the database connection.
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
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
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
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// SearchNearest scans all embeddings tagged (model, task), scores them
// in-process under the metric and returns the topK best. Exact, not
// approximate: fine at local scale.
func (s *Store) SearchNearest(
	ctx context.Context, query []float32, model, task string, metric domain.Metric, topK int,
) ([]domain.SearchResult, error) {
	var score func(a, b []float32) float64
	switch metric {
	case domain.MetricCosine:
		score = cosineDistance
	case domain.MetricInnerProduct:
		score = negInnerProduct
	case domain.MetricL2:
		score = l2Distance
	default:
		return nil, fmt.Errorf("%w: unsupported metric %q", domain.ErrInvalidInput, metric)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.name, c.id, c."index", c.content, e.embedding
		FROM embeddings e
		JOIN document_chunks c ON e.chunk_id = c.id
		JOIN documents d ON c.document_id = d.id
		WHERE e.model = ? AND e.task = ?
	`, model, task)
	if err != nil {
		return nil, fmt.Errorf("%w: querying embeddings: %v", domain.ErrStore, err)
	}
	defer rows.Close()

	var results []domain.SearchResult
	for rows.Next() {
		var r domain.SearchResult
		var blob []byte
		if err := rows.Scan(&r.DocumentID, &r.DocumentName, &r.ChunkID, &r.ChunkIndex, &r.Content, &blob); err != nil {
			return nil, fmt.Errorf("%w: scanning embedding row: %v", domain.ErrStore, err)
		}

		vector := bytesToFloat32Slice(blob)
		if len(vector) != len(query) {
			return nil, fmt.Errorf("%w: stored vector has %d dimensions, query has %d",
				domain.ErrStore, len(vector), len(query))
		}

		r.Score = score(query, vector)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating embeddings: %v", domain.ErrStore, err)
	}

	// Score ascending, ties by (document_id, index) ascending.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score < results[j].Score
		}
		if results[i].DocumentID != results[j].DocumentID {
			return results[i].DocumentID < results[j].DocumentID
		}
		return results[i].ChunkIndex < results[j].ChunkIndex
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// SaveDocument stores or updates a document.
func (s *Store) SaveDocument(ctx context.Context, doc *domain.Document) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, name, content)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
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
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
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
// triple.
func (s *Store) SaveEmbedding(ctx context.Context, emb domain.Embedding) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO embeddings (chunk_id, model, task, embedding)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(chunk_id, model, task) DO UPDATE SET
			embedding = excluded.embedding
	`, emb.ChunkID, emb.Model, emb.Task, float32SliceToBytes(emb.Vector))
	if err != nil {
		return fmt.Errorf("%w: saving embedding: %v", domain.ErrStore, err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, content FROM documents WHERE id = ?
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
		WHERE document_id = ?
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
	_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: deleting document: %v", domain.ErrStore, err)
	}
	return nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
