package rank

import "math"

// CosineSimilarity computes the normalized dot product of two vectors.
// Returns 0 when either vector has zero magnitude or the lengths differ,
// never dividing by zero. Accumulates in float64 for stability.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
