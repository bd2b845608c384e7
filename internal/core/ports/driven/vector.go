package driven

import (
	"context"

	"github.com/kbdb-labs/kbdb/internal/core/domain"
)

// VectorSearcher executes metric-scoped nearest-neighbour queries against
// stored embeddings.
type VectorSearcher interface {
	// SearchNearest returns the topK chunks whose embeddings tagged
	// (model, task) are nearest to query under the given metric, each
	// joined back to its chunk and parent document.
	//
	// Ordering: metric score ascending (smaller sorts first for every
	// metric, inner product included; the stored score for inner product
	// is negated). Ties break by (document_id, index) ascending.
	//
	// An empty result set is not an error.
	SearchNearest(ctx context.Context, query []float32, model, task string, metric domain.Metric, topK int) ([]domain.SearchResult, error)
}
