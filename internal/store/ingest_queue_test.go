//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workmesh/talentrag/internal/domain"
	"github.com/workmesh/talentrag/internal/testutil"
)

func setupQueue(t *testing.T) (context.Context, *IngestQueue) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	t.Cleanup(func() { _ = pc.Terminate(ctx) })

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	t.Cleanup(pool.Close)

	return ctx, NewIngestQueue(pool)
}

func newPendingJob() *domain.IngestJob {
	return &domain.IngestJob{
		ID:        uuid.NewString(),
		Domain:    domain.DomainJob,
		SourceID:  "job-1",
		Payload:   []byte(`{"id":"job-1","title":"Engineer"}`),
		Status:    domain.IngestJobStatusPending,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestIngestQueue_EnqueueAndGet(t *testing.T) {
	ctx, q := setupQueue(t)

	job := newPendingJob()
	require.NoError(t, q.Enqueue(ctx, job))

	got, err := q.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, domain.DomainJob, got.Domain)
	assert.Equal(t, domain.IngestJobStatusPending, got.Status)
	assert.JSONEq(t, string(job.Payload), string(got.Payload))
	assert.Nil(t, got.ProcessedAt)
}

func TestIngestQueue_GetByID_NotFound(t *testing.T) {
	ctx, q := setupQueue(t)

	_, err := q.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrIngestJobNotFound)
}

func TestIngestQueue_EnqueueRejectsInvalidJob(t *testing.T) {
	ctx, q := setupQueue(t)

	err := q.Enqueue(ctx, &domain.IngestJob{ID: uuid.NewString()})
	assert.Error(t, err)
}

func TestIngestQueue_ClaimPendingMovesToProcessing(t *testing.T) {
	ctx, q := setupQueue(t)

	first := newPendingJob()
	second := newPendingJob()
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	require.NoError(t, q.Enqueue(ctx, first))
	require.NoError(t, q.Enqueue(ctx, second))

	claimed, err := q.ClaimPending(ctx, 1)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, first.ID, claimed[0].ID, "oldest job is claimed first")
	assert.Equal(t, domain.IngestJobStatusProcessing, claimed[0].Status)

	// A second claim must not see the already-claimed job.
	claimed, err = q.ClaimPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, second.ID, claimed[0].ID)
}

func TestIngestQueue_UpdateStatusSetsProcessedAt(t *testing.T) {
	ctx, q := setupQueue(t)

	job := newPendingJob()
	require.NoError(t, q.Enqueue(ctx, job))

	require.NoError(t, q.UpdateStatus(ctx, job.ID, domain.IngestJobStatusCompleted, ""))

	got, err := q.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IngestJobStatusCompleted, got.Status)
	require.NotNil(t, got.ProcessedAt)
	assert.WithinDuration(t, time.Now().UTC(), *got.ProcessedAt, time.Minute)
}

func TestIngestQueue_UpdateStatusUnknownID(t *testing.T) {
	ctx, q := setupQueue(t)
	err := q.UpdateStatus(ctx, uuid.NewString(), domain.IngestJobStatusFailed, "boom")
	assert.ErrorIs(t, err, domain.ErrIngestJobNotFound)
}

func TestIngestQueue_IncrementRetries(t *testing.T) {
	ctx, q := setupQueue(t)

	job := newPendingJob()
	require.NoError(t, q.Enqueue(ctx, job))

	require.NoError(t, q.IncrementRetries(ctx, job.ID))
	require.NoError(t, q.IncrementRetries(ctx, job.ID))

	got, err := q.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(2), got.Retries)
}
