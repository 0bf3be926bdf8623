// Package cache provides a Redis-backed cache for query embeddings.
// Assistant traffic repeats queries heavily, and the embedding call is
// the one external dependency on the hot retrieval path, so caching it
// saves both latency and provider cost.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/workmesh/talentrag/internal/llm"
)

const (
	keyPrefix  = "talentrag:embedding:"
	DefaultTTL = 15 * time.Minute
)

// EmbeddingCache decorates an Embedder with a read-through Redis cache.
// Cache failures are degradable: any Redis error falls through to the
// wrapped embedder and is logged, never surfaced.
type EmbeddingCache struct {
	inner  llm.Embedder
	client redis.UniversalClient
	ttl    time.Duration
}

// NewEmbeddingCache wraps inner with a cache on the given Redis client.
func NewEmbeddingCache(inner llm.Embedder, client redis.UniversalClient, ttl time.Duration) *EmbeddingCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &EmbeddingCache{inner: inner, client: client, ttl: ttl}
}

// Embed returns the cached vector for text when present, otherwise
// delegates and stores the result.
func (c *EmbeddingCache) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(text)

	if cached, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var vec []float32
		if err := json.Unmarshal(cached, &vec); err == nil && len(vec) > 0 {
			return vec, nil
		}
	} else if err != redis.Nil {
		log.Printf("embedding cache read failed, delegating: %v", err)
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(vec); err == nil {
		if err := c.client.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			log.Printf("embedding cache write failed: %v", err)
		}
	}

	return vec, nil
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return keyPrefix + hex.EncodeToString(sum[:])
}
