package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kbdb-labs/kbdb/internal/core/domain"
	"github.com/kbdb-labs/kbdb/internal/core/ports/driven"
	"github.com/kbdb-labs/kbdb/internal/core/ports/driving"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// Default bounds for the two blocking operations per request.
const (
	DefaultEmbedTimeout = 30 * time.Second
	DefaultQueryTimeout = 10 * time.Second
)

// Timeouts bounds the embedding call and the database query.
// A request exceeding either fails instead of hanging.
type Timeouts struct {
	Embed time.Duration
	Query time.Duration
}

// SearchService executes modality-scoped nearest-neighbour searches.
// The registry is read-only after construction, so a single instance is
// safe for concurrent requests.
type SearchService struct {
	registry *domain.Registry
	embedder driven.EmbeddingService
	searcher driven.VectorSearcher
	timeouts Timeouts
	log      *zap.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(
	registry *domain.Registry,
	embedder driven.EmbeddingService,
	searcher driven.VectorSearcher,
	timeouts Timeouts,
	log *zap.Logger,
) *SearchService {
	if timeouts.Embed <= 0 {
		timeouts.Embed = DefaultEmbedTimeout
	}
	if timeouts.Query <= 0 {
		timeouts.Query = DefaultQueryTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SearchService{
		registry: registry,
		embedder: embedder,
		searcher: searcher,
		timeouts: timeouts,
		log:      log,
	}
}

// Search runs one retrieval request: resolve the modality, embed the query
// text, then execute the metric-specific nearest-neighbour query.
//
// Argument validation and modality resolution happen before any side
// effect: an unknown modality or a bad topK issues neither an embedding
// call nor a database query.
func (s *SearchService) Search(
	ctx context.Context, modality, query string, topK int,
) ([]domain.SearchResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: must be positive, got %d", domain.ErrInvalidTopK, topK)
	}
	if topK > domain.MaxTopK {
		return nil, fmt.Errorf("%w: %d exceeds maximum %d", domain.ErrInvalidTopK, topK, domain.MaxTopK)
	}

	m, err := s.registry.Resolve(modality)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)

	s.log.Debug("executing search",
		zap.String("modality", m.Name),
		zap.String("model", m.Strategy.Model),
		zap.String("metric", string(m.Metric)),
		zap.Int("top_k", topK))

	embedCtx, cancelEmbed := context.WithTimeout(ctx, s.timeouts.Embed)
	defer cancelEmbed()

	start := time.Now()
	vector, err := s.embedder.Embed(embedCtx, query, m.Strategy)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	s.log.Debug("query embedded",
		zap.Int("dimensions", len(vector)),
		zap.Duration("took", time.Since(start)))

	queryCtx, cancelQuery := context.WithTimeout(ctx, s.timeouts.Query)
	defer cancelQuery()

	start = time.Now()
	results, err := s.searcher.SearchNearest(queryCtx, vector, m.Strategy.Model, m.Name, m.Metric, topK)
	if err != nil {
		return nil, fmt.Errorf("nearest-neighbour query: %w", err)
	}
	s.log.Debug("search complete",
		zap.Int("results", len(results)),
		zap.Duration("took", time.Since(start)))

	return results, nil
}

// Modalities lists the registered modalities in name order.
func (s *SearchService) Modalities() []domain.Modality {
	return s.registry.Modalities()
}
