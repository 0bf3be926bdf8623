//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workmesh/talentrag/internal/domain"
	"github.com/workmesh/talentrag/internal/llm"
	"github.com/workmesh/talentrag/internal/testutil"
)

func setupPostgresStore(t *testing.T) (context.Context, *pgxpool.Pool, *PostgresStore) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	t.Cleanup(func() { _ = pc.Terminate(ctx) })

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	t.Cleanup(pool.Close)

	return ctx, pool, NewPostgresStore(pool)
}

func insertJobRow(ctx context.Context, t *testing.T, pool *pgxpool.Pool, id, status string, expiresAt *time.Time) {
	_, err := pool.Exec(ctx,
		`INSERT INTO jobs (id, status, expires_at) VALUES ($1, $2, $3)`,
		id, status, expiresAt)
	require.NoError(t, err)
}

func embeddedChunk(t *testing.T, id, sourceID, text string) domain.ContentChunk {
	vec, err := llm.NewHashEmbedder(768).Embed(context.Background(), text)
	require.NoError(t, err)
	return domain.ContentChunk{
		ID:        id,
		Content:   text,
		Embedding: vec,
		Metadata: domain.Metadata{
			domain.MetaSource: domain.String(sourceID),
			domain.MetaType:   domain.String("job_header"),
		},
	}
}

func TestPostgresStore_AddAndSearch(t *testing.T) {
	ctx, pool, s := setupPostgresStore(t)

	insertJobRow(ctx, t, pool, "job-1", "active", nil)
	insertJobRow(ctx, t, pool, "job-2", "active", nil)

	target := embeddedChunk(t, "job:job-1_header", "job-1", "senior go engineer")
	other := embeddedChunk(t, "job:job-2_header", "job-2", "completely unrelated role")
	require.NoError(t, s.AddDocuments(ctx, []domain.ContentChunk{target, other}))

	results, err := s.SimilaritySearch(ctx, target.Embedding, 1, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "job:job-1_header", results[0].ID)
	assert.InDelta(t, 1.0, float64(results[0].Score), 1e-3)
}

func TestPostgresStore_SearchExcludesInactiveAndExpired(t *testing.T) {
	ctx, pool, s := setupPostgresStore(t)

	expired := time.Now().UTC().Add(-time.Hour)
	insertJobRow(ctx, t, pool, "job-active", "active", nil)
	insertJobRow(ctx, t, pool, "job-closed", "closed", nil)
	insertJobRow(ctx, t, pool, "job-expired", "active", &expired)

	query := embeddedChunk(t, "job:job-active_header", "job-active", "backend go role")
	require.NoError(t, s.AddDocuments(ctx, []domain.ContentChunk{
		query,
		embeddedChunk(t, "job:job-closed_header", "job-closed", "backend go role"),
		embeddedChunk(t, "job:job-expired_header", "job-expired", "backend go role"),
	}))

	results, err := s.SimilaritySearch(ctx, query.Embedding, 10, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "job:job-active_header", results[0].ID)
}

func TestPostgresStore_MetadataFilter(t *testing.T) {
	ctx, pool, s := setupPostgresStore(t)

	insertJobRow(ctx, t, pool, "job-1", "active", nil)
	insertJobRow(ctx, t, pool, "job-2", "active", nil)

	berlin := embeddedChunk(t, "job:job-1_header", "job-1", "go engineer berlin")
	berlin.Metadata["location"] = domain.String("Berlin")
	berlin.Metadata["tags"] = domain.StringList("remote", "backend")
	munich := embeddedChunk(t, "job:job-2_header", "job-2", "go engineer munich")
	munich.Metadata["location"] = domain.String("Munich")
	require.NoError(t, s.AddDocuments(ctx, []domain.ContentChunk{berlin, munich}))

	results, err := s.SimilaritySearch(ctx, berlin.Embedding, 10, domain.Filter{
		"location": domain.String("Berlin"),
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "job:job-1_header", results[0].ID)

	// A string filter also matches membership in an array field.
	results, err = s.SimilaritySearch(ctx, berlin.Embedding, 10, domain.Filter{
		"tags": domain.String("remote"),
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestPostgresStore_UpsertOverwrites(t *testing.T) {
	ctx, pool, s := setupPostgresStore(t)
	insertJobRow(ctx, t, pool, "job-1", "active", nil)

	c := embeddedChunk(t, "job:job-1_header", "job-1", "original text")
	require.NoError(t, s.AddDocuments(ctx, []domain.ContentChunk{c}))

	c.Content = "rewritten text"
	require.NoError(t, s.AddDocuments(ctx, []domain.ContentChunk{c}))

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM rag_job_chunks`).Scan(&count))
	assert.Equal(t, 1, count)

	var content string
	require.NoError(t, pool.QueryRow(ctx, `SELECT content FROM rag_job_chunks WHERE id = $1`, c.ID).Scan(&content))
	assert.Equal(t, "rewritten text", content)
}

func TestPostgresStore_DeleteAndUpdate(t *testing.T) {
	ctx, pool, s := setupPostgresStore(t)
	insertJobRow(ctx, t, pool, "job-1", "active", nil)

	c := embeddedChunk(t, "job:job-1_header", "job-1", "some text")
	require.NoError(t, s.AddDocuments(ctx, []domain.ContentChunk{c}))

	newContent := "patched"
	require.NoError(t, s.UpdateDocument(ctx, c.ID, domain.ChunkPatch{Content: &newContent}))

	var content string
	require.NoError(t, pool.QueryRow(ctx, `SELECT content FROM rag_job_chunks WHERE id = $1`, c.ID).Scan(&content))
	assert.Equal(t, "patched", content)

	// Updating a nonexistent id is a no-op, not an error.
	require.NoError(t, s.UpdateDocument(ctx, "ghost", domain.ChunkPatch{Content: &newContent}))

	require.NoError(t, s.DeleteDocuments(ctx, []string{c.ID, "ghost"}))
	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM rag_job_chunks`).Scan(&count))
	assert.Equal(t, 0, count)
}
