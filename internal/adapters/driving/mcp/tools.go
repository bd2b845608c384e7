package mcp

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/kbdb-labs/kbdb/internal/core/domain"
	"github.com/kbdb-labs/kbdb/internal/core/services"
)

// SearchInput is the input schema shared by every search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query text"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of results to return (default 3)"`
}

// registerTools registers one search tool per modality.
func (s *Server) registerTools() {
	for _, m := range s.ports.Search.Modalities() {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "search_" + m.Name,
			Description: m.Description,
		}, s.searchHandler(m.Name))
	}
}

// searchHandler builds the tool handler for one modality. Tool calls never
// return a protocol-level error: failures come back as readable text so the
// calling assistant can relay them.
func (s *Server) searchHandler(modality string) func(
	context.Context, *mcp.CallToolRequest, SearchInput,
) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, any, error) {
		log := s.log.With(
			zap.String("request_id", uuid.NewString()),
			zap.String("modality", modality),
		)

		topK := input.TopK
		if topK == 0 {
			topK = domain.DefaultTopK
		}

		results, err := s.ports.Search.Search(ctx, modality, input.Query, topK)
		if err != nil {
			log.Error("search failed", zap.Error(err))
			return textResult(fmt.Sprintf("Search failed: %v", err)), nil, nil
		}

		log.Debug("search complete", zap.Int("results", len(results)))
		return textResult(services.FormatResults(results)), nil, nil
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
