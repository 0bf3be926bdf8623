package domain

import "math"

// CosineSimilarity computes dot(a,b) / (norm(a) * norm(b)) in [-1, 1].
// Mismatched lengths yield 0, and a zero-norm vector yields 0 rather
// than NaN. Every similarity implementation in this module uses this
// definition so the in-process fallback paths rank identically to the
// native store operator.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
