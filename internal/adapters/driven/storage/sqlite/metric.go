package sqlite

import "math"

// Metric scores follow the "smaller sorts first" convention shared with
// the Postgres backend: cosine distance (1 - similarity), negated inner
// product and L2 distance.

func cosineDistance(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := 0; i < len(a); i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1.0
	}
	return 1.0 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

func negInnerProduct(a, b []float32) float64 {
	var dot float64
	for i := 0; i < len(a); i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	return -dot
}

func l2Distance(a, b []float32) float64 {
	var sum float64
	for i := 0; i < len(a); i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
