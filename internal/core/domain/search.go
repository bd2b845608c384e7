package domain

// Top-k bounds for a single search request. Values above the ceiling are
// rejected rather than clamped, so misuse is visible to the caller.
const (
	// DefaultTopK is applied at the tool/CLI boundary when the caller
	// omits top_k.
	DefaultTopK = 3

	// MaxTopK bounds response size for a single request.
	MaxTopK = 50
)

// SearchResult represents a single ranked hit: a chunk joined back to its
// parent document plus the metric score for the query.
type SearchResult struct {
	// DocumentID is the parent document.
	DocumentID string

	// DocumentName is the parent document's display name.
	DocumentName string

	// ChunkID is the matched chunk.
	ChunkID string

	// ChunkIndex is the chunk's position within the document.
	ChunkIndex int

	// Content is the matched chunk's text.
	Content string

	// Score is the raw metric value between the query vector and the
	// stored vector. Smaller always sorts first; see Metric.
	Score float64
}
