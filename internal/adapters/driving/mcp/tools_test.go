package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbdb-labs/kbdb/internal/core/domain"
	"github.com/kbdb-labs/kbdb/internal/core/services"
)

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestServer_searchHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("returns formatted results", func(t *testing.T) {
		mockSearch := &mockSearchService{
			results: []domain.SearchResult{
				{
					DocumentID:   "doc-1",
					DocumentName: "Recipe Book",
					ChunkID:      "chunk-1",
					ChunkIndex:   0,
					Content:      "Preheat the oven to 200C.",
					Score:        0.1234,
				},
			},
		}

		server, err := NewServer(&Ports{Search: mockSearch}, nil)
		require.NoError(t, err)

		result, _, err := server.searchHandler("qa")(ctx, nil, SearchInput{Query: "oven"})
		require.NoError(t, err)

		text := textOf(t, result)
		assert.Contains(t, text, "--- Result 1 | Recipe Book | chunk 0 | score 0.1234 ---")
		assert.Contains(t, text, "Content: Preheat the oven to 200C.")
		assert.Equal(t, "qa", mockSearch.lastModality)
		assert.Equal(t, "oven", mockSearch.lastQuery)
	})

	t.Run("zero top_k defaults to 3", func(t *testing.T) {
		mockSearch := &mockSearchService{}
		server, err := NewServer(&Ports{Search: mockSearch}, nil)
		require.NoError(t, err)

		_, _, err = server.searchHandler("qa")(ctx, nil, SearchInput{Query: "test"})
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultTopK, mockSearch.lastTopK)
	})

	t.Run("explicit top_k passes through", func(t *testing.T) {
		mockSearch := &mockSearchService{}
		server, err := NewServer(&Ports{Search: mockSearch}, nil)
		require.NoError(t, err)

		_, _, err = server.searchHandler("qa")(ctx, nil, SearchInput{Query: "test", TopK: 7})
		require.NoError(t, err)
		assert.Equal(t, 7, mockSearch.lastTopK)
	})

	t.Run("empty results return the no-results message", func(t *testing.T) {
		mockSearch := &mockSearchService{}
		server, err := NewServer(&Ports{Search: mockSearch}, nil)
		require.NoError(t, err)

		result, _, err := server.searchHandler("qa")(ctx, nil, SearchInput{Query: "test"})
		require.NoError(t, err)
		assert.Equal(t, services.NoResultsMessage, textOf(t, result))
	})

	t.Run("failures come back as text, not a protocol error", func(t *testing.T) {
		mockSearch := &mockSearchService{
			err: errors.New("embedding service unavailable"),
		}
		server, err := NewServer(&Ports{Search: mockSearch}, nil)
		require.NoError(t, err)

		result, _, err := server.searchHandler("qa")(ctx, nil, SearchInput{Query: "test"})
		require.NoError(t, err)
		assert.Equal(t, "Search failed: embedding service unavailable", textOf(t, result))
	})

	t.Run("negative top_k is rejected downstream and reported as text", func(t *testing.T) {
		mockSearch := &mockSearchService{
			err: domain.ErrInvalidTopK,
		}
		server, err := NewServer(&Ports{Search: mockSearch}, nil)
		require.NoError(t, err)

		result, _, err := server.searchHandler("qa")(ctx, nil, SearchInput{Query: "test", TopK: -1})
		require.NoError(t, err)
		assert.Contains(t, textOf(t, result), "Search failed: ")
		assert.Equal(t, -1, mockSearch.lastTopK)
	})
}
