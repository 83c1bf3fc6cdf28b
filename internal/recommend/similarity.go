package recommend

import "gonum.org/v1/gonum/floats"

// cosineSimilarity computes cosine similarity between two vectors in float64
// precision. Nil, mismatched or zero-norm inputs yield 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0.0
	}

	// Convert to float64 for precision
	va := make([]float64, len(a))
	vb := make([]float64, len(b))
	for i := range a {
		va[i] = float64(a[i])
		vb[i] = float64(b[i])
	}

	normA := floats.Norm(va, 2)
	normB := floats.Norm(vb, 2)
	if normA == 0 || normB == 0 {
		return 0.0
	}

	return floats.Dot(va, vb) / (normA * normB)
}

// maxSimilarity returns the highest cosine similarity between v and any of
// the reference vectors, and whether at least one comparison was computable.
// Nearest-neighbor semantics: closeness to a single reference is enough.
func maxSimilarity(v []float32, refs [][]float32) (float64, bool) {
	if len(v) == 0 {
		return 0.0, false
	}

	best := 0.0
	computable := false
	for _, ref := range refs {
		if len(ref) != len(v) {
			continue
		}
		sim := cosineSimilarity(v, ref)
		if !computable || sim > best {
			best = sim
		}
		computable = true
	}

	return best, computable
}
