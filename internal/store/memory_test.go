package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workmesh/talentrag/internal/domain"
)

func chunkWithEmbedding(id string, embedding []float32, meta domain.Metadata) domain.ContentChunk {
	return domain.ContentChunk{
		ID:        id,
		Content:   "content for " + id,
		Embedding: embedding,
		Metadata:  meta,
	}
}

func TestMemoryStore_AddAndSearch(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.AddDocuments(ctx, []domain.ContentChunk{
		chunkWithEmbedding("a", []float32{1, 0, 0}, nil),
		chunkWithEmbedding("b", []float32{0, 1, 0}, nil),
		chunkWithEmbedding("c", []float32{0.9, 0.1, 0}, nil),
	}))

	results, err := s.SimilaritySearch(ctx, []float32{1, 0, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].ID)
	assert.Equal(t, "c", results[1].ID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestMemoryStore_UpsertOverwrites(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.AddDocuments(ctx, []domain.ContentChunk{
		chunkWithEmbedding("a", []float32{1, 0}, nil),
	}))
	updated := chunkWithEmbedding("a", []float32{0, 1}, nil)
	updated.Content = "rewritten"
	require.NoError(t, s.AddDocuments(ctx, []domain.ContentChunk{updated}))

	assert.Equal(t, 1, s.Count())
	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "rewritten", got.Content)
}

func TestMemoryStore_SearchSkipsUnembeddedChunks(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.AddDocuments(ctx, []domain.ContentChunk{
		chunkWithEmbedding("embedded", []float32{1, 0}, nil),
		chunkWithEmbedding("bare", nil, nil),
	}))

	results, err := s.SimilaritySearch(ctx, []float32{1, 0}, 10, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "embedded", results[0].ID)
}

func TestMemoryStore_SearchAppliesFilter(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.AddDocuments(ctx, []domain.ContentChunk{
		chunkWithEmbedding("berlin", []float32{1, 0}, domain.Metadata{"location": domain.String("Berlin")}),
		chunkWithEmbedding("munich", []float32{1, 0}, domain.Metadata{"location": domain.String("Munich")}),
	}))

	results, err := s.SimilaritySearch(ctx, []float32{1, 0}, 10, domain.Filter{"location": domain.String("Berlin")})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "berlin", results[0].ID)
}

func TestMemoryStore_DeleteIgnoresUnknownIDs(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.AddDocuments(ctx, []domain.ContentChunk{
		chunkWithEmbedding("a", []float32{1}, nil),
	}))
	require.NoError(t, s.DeleteDocuments(ctx, []string{"a", "missing"}))
	assert.Equal(t, 0, s.Count())
}

func TestMemoryStore_UpdateDocument(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.AddDocuments(ctx, []domain.ContentChunk{
		chunkWithEmbedding("a", []float32{1, 0}, domain.Metadata{"type": domain.String("job_header")}),
	}))

	newContent := "patched"
	require.NoError(t, s.UpdateDocument(ctx, "a", domain.ChunkPatch{
		Content:  &newContent,
		Metadata: domain.Metadata{"location": domain.String("Berlin")},
	}))

	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "patched", got.Content)
	loc, _ := got.Metadata["location"].AsString()
	assert.Equal(t, "Berlin", loc)
	typ, _ := got.Metadata["type"].AsString()
	assert.Equal(t, "job_header", typ)
	assert.Equal(t, []float32{1, 0}, got.Embedding)
}

func TestMemoryStore_UpdateNonexistentIsNoop(t *testing.T) {
	s := NewMemoryStore()
	content := "x"
	require.NoError(t, s.UpdateDocument(context.Background(), "ghost", domain.ChunkPatch{Content: &content}))
	assert.Equal(t, 0, s.Count())
}

func TestMemoryStore_RejectsInvalidChunks(t *testing.T) {
	s := NewMemoryStore()
	err := s.AddDocuments(context.Background(), []domain.ContentChunk{{ID: "", Content: "no id"}})
	assert.ErrorIs(t, err, domain.ErrInvalidChunk)
}
