// Package embedding generates vector embeddings for semantic search over
// ordinance documents. Two backends: the Gemini embedding API, and a local
// feature-hash embedder that needs no network and is fully deterministic.
package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
)

// Engine generates vector embeddings for text.
type Engine interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

const hashDimensions = 512

// HashEngine embeds text by feature hashing its words into a fixed-size
// normalized vector. No external model; deterministic across runs, which
// also makes it the engine of choice in tests.
type HashEngine struct{}

// NewHashEngine creates a HashEngine.
func NewHashEngine() *HashEngine {
	return &HashEngine{}
}

func (e *HashEngine) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, hashDimensions)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		vec[int(h.Sum32())%hashDimensions]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm = math.Sqrt(norm); norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}

	return vec, nil
}

func (e *HashEngine) Dimensions() int {
	return hashDimensions
}

// CosineSimilarity computes the cosine similarity of two vectors.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("embedding: dimension mismatch: %d vs %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0, nil
	}

	return dot / denom, nil
}
