package postgres

import (
	"fmt"

	"github.com/kbdb-labs/kbdb/internal/core/domain"
)

// metricOperator maps the closed metric set to pgvector operators.
// pgvector's <#> returns the NEGATED inner product, so every operator
// yields a score where smaller is closer and a single ascending sort
// direction serves all three metrics.
func metricOperator(m domain.Metric) (string, error) {
	switch m {
	case domain.MetricCosine:
		return "<=>", nil
	case domain.MetricInnerProduct:
		return "<#>", nil
	case domain.MetricL2:
		return "<->", nil
	default:
		return "", fmt.Errorf("%w: unsupported metric %q", domain.ErrInvalidInput, m)
	}
}

// buildSearchQuery assembles the nearest-neighbour query for the given
// metric. Only the operator varies; the filter, ordering and tie-break
// (document_id, "index" ascending) are fixed.
func buildSearchQuery(m domain.Metric) (string, error) {
	op, err := metricOperator(m)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`
		SELECT d.id, d.name, c.id, c."index", c.content,
		       (e.embedding %s $1::vector) AS score
		FROM embeddings e
		JOIN document_chunks c ON e.chunk_id = c.id
		JOIN documents d ON c.document_id = d.id
		WHERE e.model = $2 AND e.task = $3
		ORDER BY score ASC, c.document_id ASC, c."index" ASC
		LIMIT $4
	`, op), nil
}
