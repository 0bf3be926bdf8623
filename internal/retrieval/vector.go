package retrieval

import (
	"context"
	"fmt"

	"github.com/workmesh/talentrag/internal/domain"
	"github.com/workmesh/talentrag/internal/llm"
	"github.com/workmesh/talentrag/internal/store"
)

// VectorRetriever embeds the query and runs a similarity search against
// the document store.
type VectorRetriever struct {
	embedder llm.Embedder
	store    store.DocumentStore
}

func NewVectorRetriever(embedder llm.Embedder, st store.DocumentStore) *VectorRetriever {
	return &VectorRetriever{embedder: embedder, store: st}
}

func (r *VectorRetriever) Retrieve(ctx context.Context, query string, limit int, filter domain.Filter) ([]domain.ContentChunk, error) {
	if limit <= 0 {
		return nil, nil
	}

	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := r.store.SimilaritySearch(ctx, embedding, limit, filter)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}
	return results, nil
}
