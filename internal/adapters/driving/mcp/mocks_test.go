package mcp

import (
	"context"

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
