package driving

import (
	"context"

	"github.com/kbdb-labs/kbdb/internal/core/domain"
)

// SearchService provides modality-scoped retrieval to external actors.
type SearchService interface {
	// Search runs one nearest-neighbour search under the named modality.
	// topK must be in (0, domain.MaxTopK]; callers apply domain.DefaultTopK
	// when the user omits the value.
	Search(ctx context.Context, modality, query string, topK int) ([]domain.SearchResult, error)

	// Modalities lists the registered modalities in name order.
	Modalities() []domain.Modality
}
