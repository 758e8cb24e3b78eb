// Package mock provides a deterministic embedder for tests and demos.
// It produces stable unit vectors from a text hash; similar texts do NOT
// get similar vectors, so it exercises plumbing, not semantics.
package mock

import (
	"context"
	"hash/fnv"
	"math"
)

// DefaultDimensions matches all-MiniLM-L6-v2 so mock and ONNX embedders
// are drop-in replacements for each other.
const DefaultDimensions = 384

// Embedder generates deterministic embeddings from a text hash.
type Embedder struct {
	dimensions int
}

// New creates a mock embedder with DefaultDimensions.
func New() *Embedder {
	return NewWithDimensions(DefaultDimensions)
}

// NewWithDimensions creates a mock embedder with the given vector size.
func NewWithDimensions(dims int) *Embedder {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &Embedder{dimensions: dims}
}

// Embed returns a unit vector derived from an FNV hash of the text.
// The same text always yields the same vector.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	vec := make([]float32, e.dimensions)
	for i := range vec {
		// LCG keeps the expansion deterministic per seed.
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(int64(seed)) / float32(math.MaxInt64)
	}
	return normalize(vec), nil
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	norm = float32(math.Sqrt(float64(norm)))
	for i, v := range vec {
		vec[i] = v / norm
	}
	return vec
}
