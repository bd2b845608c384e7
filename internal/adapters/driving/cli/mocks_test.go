package cli

import (
	"context"
	"errors"

	"github.com/kbdb-labs/kbdb/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	modalities []domain.Modality
	results    []domain.SearchResult
	err        error

	lastModality string
	lastQuery    string
	lastTopK     int
}

func (m *mockSearchService) Search(
	_ context.Context,
	modality, query string,
	topK int,
) ([]domain.SearchResult, error) {
	m.lastModality = modality
	m.lastQuery = query
	m.lastTopK = topK
	return m.results, m.err
}

func (m *mockSearchService) Modalities() []domain.Modality {
	return m.modalities
}

// setupTestServices installs a mock search service with one canned result
// and returns the mock plus a cleanup restoring the previous state.
func setupTestServices() (*mockSearchService, func()) {
	mock := &mockSearchService{
		modalities: []domain.Modality{
			{
				Name:        "qa",
				Description: "Answer questions from the knowledge base",
				Strategy:    domain.Strategy{Model: "test-model", Prefix: "search_query: "},
				Metric:      domain.MetricCosine,
			},
		},
		results: []domain.SearchResult{
			{
				DocumentID:   "doc-1",
				DocumentName: "Test Document",
				ChunkID:      "chunk-1",
				ChunkIndex:   0,
				Content:      "Some relevant content",
				Score:        0.25,
			},
		},
	}

	old := searchService
	searchService = mock
	return mock, func() {
		searchService = old
	}
}

// setupFailingService installs a search service that always errors.
func setupFailingService(msg string) func() {
	old := searchService
	searchService = &mockSearchService{err: errors.New(msg)}
	return func() {
		searchService = old
	}
}
