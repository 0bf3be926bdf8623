// Package store holds the per-domain document stores. Each content
// domain owns exactly one store instance; low-volume domains run on the
// in-memory implementation and the job domain runs on Postgres with a
// native vector operator.
package store

import (
	"context"

	"github.com/workmesh/talentrag/internal/domain"
)

// DocumentStore is the contract every chunk store implements.
//
// AddDocuments upserts by chunk id and is safe to call repeatedly with
// the same ids. SimilaritySearch returns at most limit chunks ordered by
// descending similarity to the query vector; chunks without an embedding
// are never returned. UpdateDocument merges a partial patch; updating a
// nonexistent id is a no-op.
type DocumentStore interface {
	AddDocuments(ctx context.Context, chunks []domain.ContentChunk) error
	SimilaritySearch(ctx context.Context, query []float32, limit int, filter domain.Filter) ([]domain.ContentChunk, error)
	DeleteDocuments(ctx context.Context, ids []string) error
	UpdateDocument(ctx context.Context, id string, patch domain.ChunkPatch) error
}

func validateChunks(chunks []domain.ContentChunk) error {
	for i := range chunks {
		if err := domain.ValidateChunk(&chunks[i]); err != nil {
			return err
		}
	}
	return nil
}

func mergePatch(c *domain.ContentChunk, patch domain.ChunkPatch) {
	if patch.Content != nil {
		c.Content = *patch.Content
	}
	if patch.Embedding != nil {
		c.Embedding = make([]float32, len(patch.Embedding))
		copy(c.Embedding, patch.Embedding)
	}
	if len(patch.Metadata) > 0 {
		if c.Metadata == nil {
			c.Metadata = make(domain.Metadata, len(patch.Metadata))
		}
		for k, v := range patch.Metadata {
			c.Metadata[k] = v
		}
	}
}
