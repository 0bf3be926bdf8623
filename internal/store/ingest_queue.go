package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/workmesh/talentrag/internal/domain"
)

// IngestQueue persists queued ingestion work so the background worker
// can re-embed source objects asynchronously.
type IngestQueue struct {
	pool *pgxpool.Pool
}

func NewIngestQueue(pool *pgxpool.Pool) *IngestQueue {
	return &IngestQueue{pool: pool}
}

func (q *IngestQueue) Enqueue(ctx context.Context, job *domain.IngestJob) error {
	if err := domain.ValidateIngestJob(job); err != nil {
		return err
	}
	_, err := q.pool.Exec(ctx,
		`INSERT INTO rag_ingest_jobs (id, domain, source_id, payload, status, retries, error, created_at, processed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		job.ID, job.Domain, job.SourceID, job.Payload, job.Status, job.Retries, nullableText(job.Error), job.CreatedAt, job.ProcessedAt,
	)
	return err
}

func (q *IngestQueue) GetByID(ctx context.Context, id string) (*domain.IngestJob, error) {
	row := q.pool.QueryRow(ctx,
		`SELECT id, domain, source_id, payload, status, retries, error, created_at, processed_at
		 FROM rag_ingest_jobs WHERE id = $1`,
		id,
	)
	job, err := scanIngestJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrIngestJobNotFound
		}
		return nil, err
	}
	return job, nil
}

// ClaimPending atomically claims up to limit pending jobs, moving them
// to processing. FOR UPDATE SKIP LOCKED keeps concurrent workers from
// double-claiming.
func (q *IngestQueue) ClaimPending(ctx context.Context, limit int) ([]*domain.IngestJob, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := q.pool.Query(ctx,
		`WITH cte AS (
			 SELECT id
			 FROM rag_ingest_jobs
			 WHERE status = $1
			 ORDER BY created_at ASC
			 FOR UPDATE SKIP LOCKED
			 LIMIT $2
		 )
		 UPDATE rag_ingest_jobs
		 SET status = $3,
		     error = NULL,
		     processed_at = NULL
		 FROM cte
		 WHERE rag_ingest_jobs.id = cte.id
		 RETURNING rag_ingest_jobs.id, rag_ingest_jobs.domain, rag_ingest_jobs.source_id, rag_ingest_jobs.payload,
		           rag_ingest_jobs.status, rag_ingest_jobs.retries, rag_ingest_jobs.error,
		           rag_ingest_jobs.created_at, rag_ingest_jobs.processed_at`,
		domain.IngestJobStatusPending, limit, domain.IngestJobStatusProcessing,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*domain.IngestJob
	for rows.Next() {
		job, err := scanIngestJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (q *IngestQueue) UpdateStatus(ctx context.Context, id string, status domain.IngestJobStatus, errMsg string) error {
	var processedAt *time.Time
	if status == domain.IngestJobStatusCompleted || status == domain.IngestJobStatusFailed {
		now := time.Now().UTC()
		processedAt = &now
	}

	cmdTag, err := q.pool.Exec(ctx,
		`UPDATE rag_ingest_jobs SET status = $1, error = $2, processed_at = $3 WHERE id = $4`,
		status, nullableText(errMsg), processedAt, id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrIngestJobNotFound
	}
	return nil
}

func (q *IngestQueue) IncrementRetries(ctx context.Context, id string) error {
	cmdTag, err := q.pool.Exec(ctx,
		`UPDATE rag_ingest_jobs SET retries = retries + 1 WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrIngestJobNotFound
	}
	return nil
}

func scanIngestJob(row pgx.Row) (*domain.IngestJob, error) {
	var job domain.IngestJob
	var errMsg pgtype.Text
	if err := row.Scan(&job.ID, &job.Domain, &job.SourceID, &job.Payload, &job.Status, &job.Retries, &errMsg, &job.CreatedAt, &job.ProcessedAt); err != nil {
		return nil, err
	}
	if errMsg.Valid {
		job.Error = errMsg.String
	}
	return &job, nil
}

func nullableText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
