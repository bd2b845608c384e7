package services

import (
	"fmt"
	"strings"

	"github.com/kbdb-labs/kbdb/internal/core/domain"
)

// NoResultsMessage is returned when a search matched nothing. An empty
// result set is a normal outcome, not a failure.
const NoResultsMessage = "No relevant information found in the knowledge base."

// FormatResults renders a ranked result sequence as the text returned to
// the calling agent. Pure and deterministic: identical input always
// produces identical output.
func FormatResults(results []domain.SearchResult) string {
	if len(results) == 0 {
		return NoResultsMessage
	}

	parts := make([]string, 0, len(results))
	for i, r := range results {
		parts = append(parts, fmt.Sprintf(
			"--- Result %d | %s | chunk %d | score %.4f ---\n"+
				"--- Document Start ---\n"+
				"Content: %s\n"+
				"--- Document End ---\n",
			i+1, r.DocumentName, r.ChunkIndex, r.Score, r.Content,
		))
	}

	return strings.Join(parts, "\n")
}
