package driven

import (
	"context"

	"github.com/kbdb-labs/kbdb/internal/core/domain"
)

// EmbeddingService generates vector embeddings from text.
//
// Each call embeds a single query string live; document-chunk embeddings
// are pre-computed out-of-process and stored. No caching happens here.
//
// Implementations may include:
//   - OpenAI-compatible endpoints (Ollama, llama.cpp server, OpenAI)
//   - Local models via inference servers
type EmbeddingService interface {
	// Embed generates a vector for the given text using the modality's
	// strategy: the strategy's prefix/suffix transform is applied and the
	// strategy's model is requested. The returned vector always has
	// Dimensions() elements; anything else is an error.
	Embed(ctx context.Context, text string, strategy domain.Strategy) ([]float32, error)

	// Dimensions returns the system-fixed embedding vector size (e.g. 768).
	// This must match the vector column width of the document store.
	Dimensions() int

	// Ping validates the service is reachable with a lightweight request.
	// Used at startup to fail fast on bad endpoints or credentials.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
