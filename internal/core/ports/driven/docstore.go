package driven

import (
	"context"

	"github.com/kbdb-labs/kbdb/internal/core/domain"
)

// DocumentStore persists documents, chunks and their embeddings.
//
// The retrieval engine only reads through VectorSearcher; the mutating
// methods exist for the out-of-process ingestion tooling and for tests.
// Deleting a document cascades to its chunks and their embeddings.
type DocumentStore interface {
	VectorSearcher

	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SaveChunks stores chunks for a document.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// SaveEmbedding stores or replaces the embedding for a
	// (chunk, model, task) triple.
	SaveEmbedding(ctx context.Context, emb domain.Embedding) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetChunks retrieves a document's chunks ordered by index.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// DeleteDocument removes a document, its chunks and their embeddings.
	DeleteDocument(ctx context.Context, id string) error

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connection pool.
	Close() error
}
