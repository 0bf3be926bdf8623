package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/workmesh/talentrag/internal/domain"
	"github.com/workmesh/talentrag/internal/telemetry"
)

const (
	// MaxRetries is the maximum number of retries for a failed job
	MaxRetries = 3

	// DefaultBatchSize is how many jobs are claimed per polling pass when
	// no batch size is configured.
	DefaultBatchSize = 50
)

// IngestJobQueue defines the interface for ingest job persistence
type IngestJobQueue interface {
	// ClaimPending retrieves and claims pending ingest jobs
	ClaimPending(ctx context.Context, limit int) ([]*domain.IngestJob, error)

	// UpdateStatus updates the status of an ingest job
	UpdateStatus(ctx context.Context, jobID string, status domain.IngestJobStatus, errMsg string) error

	// IncrementRetries increments the retry count for a job
	IncrementRetries(ctx context.Context, jobID string) error
}

// PayloadIngester decodes a queued payload and runs the full
// chunk/embed/store pipeline for one source object.
type PayloadIngester interface {
	IngestPayload(ctx context.Context, payload []byte) error
}

// IngestWorker processes queued ingest jobs, routing each payload to the
// ingester registered for its domain.
type IngestWorker struct {
	queue     IngestJobQueue
	ingesters map[domain.SearchDomain]PayloadIngester
	batchSize int
}

// NewIngestWorker creates a new IngestWorker instance. A batchSize of
// zero or less falls back to DefaultBatchSize.
func NewIngestWorker(queue IngestJobQueue, ingesters map[domain.SearchDomain]PayloadIngester, batchSize int) *IngestWorker {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &IngestWorker{
		queue:     queue,
		ingesters: ingesters,
		batchSize: batchSize,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *IngestWorker) ProcessJobs(ctx context.Context) error {
	jobs, err := w.queue.ClaimPending(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("failed to claim pending jobs: %w", err)
	}

	if len(jobs) == 0 {
		return nil
	}

	log.Printf("Processing %d pending ingest jobs", len(jobs))

	for _, job := range jobs {
		if err := w.processJob(ctx, job); err != nil {
			log.Printf("Error processing job %s: %v", job.ID, err)
		}
	}

	return nil
}

func (w *IngestWorker) processJob(ctx context.Context, job *domain.IngestJob) error {
	ctx, span := telemetry.StartSpan(ctx, "jobs.ingest", telemetry.SpanAttributes{
		Domain:    string(job.Domain),
		SourceID:  job.SourceID,
		Operation: "ingest",
	})
	defer span.End()

	ingester, ok := w.ingesters[job.Domain]
	if !ok {
		// No retry will ever fix an unroutable job.
		errMsg := fmt.Sprintf("no ingester registered for domain %s", job.Domain)
		if err := w.queue.UpdateStatus(ctx, job.ID, domain.IngestJobStatusFailed, errMsg); err != nil {
			return fmt.Errorf("failed to update job status to failed: %w", err)
		}
		return fmt.Errorf("job %s: %s", job.ID, errMsg)
	}

	log.Printf("Processing job %s for %s source %s", job.ID, job.Domain, job.SourceID)

	if err := ingester.IngestPayload(ctx, job.Payload); err != nil {
		span.SetError(err)
		return w.handleJobFailure(ctx, job, err)
	}

	if err := w.queue.UpdateStatus(ctx, job.ID, domain.IngestJobStatusCompleted, ""); err != nil {
		return fmt.Errorf("failed to update job status to completed: %w", err)
	}

	log.Printf("Job %s completed successfully", job.ID)
	return nil
}

// handleJobFailure handles a failed job with retry logic
func (w *IngestWorker) handleJobFailure(ctx context.Context, job *domain.IngestJob, jobErr error) error {
	log.Printf("Job %s failed: %v", job.ID, jobErr)

	if err := w.queue.IncrementRetries(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to increment retries: %w", err)
	}

	if job.Retries+1 >= MaxRetries {
		log.Printf("Job %s exceeded max retries (%d), marking as failed", job.ID, MaxRetries)
		errMsg := fmt.Sprintf("max retries exceeded: %v", jobErr)
		if err := w.queue.UpdateStatus(ctx, job.ID, domain.IngestJobStatusFailed, errMsg); err != nil {
			return fmt.Errorf("failed to update job status to failed: %w", err)
		}
		return nil
	}

	log.Printf("Job %s will be retried (attempt %d/%d)", job.ID, job.Retries+1, MaxRetries)
	errMsg := fmt.Sprintf("retry %d: %v", job.Retries+1, jobErr)
	if err := w.queue.UpdateStatus(ctx, job.ID, domain.IngestJobStatusPending, errMsg); err != nil {
		return fmt.Errorf("failed to reset job status to pending: %w", err)
	}

	return nil
}
