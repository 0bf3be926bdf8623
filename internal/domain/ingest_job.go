package domain

import (
	"fmt"
	"time"
)

// IngestJobStatus represents the status of an async ingestion job
type IngestJobStatus string

const (
	IngestJobStatusPending    IngestJobStatus = "pending"
	IngestJobStatusProcessing IngestJobStatus = "processing"
	IngestJobStatusCompleted  IngestJobStatus = "completed"
	IngestJobStatusFailed     IngestJobStatus = "failed"
)

// IngestJob represents one queued re-ingestion of a source object. The
// payload is the JSON-encoded source object; ingestion is idempotent per
// source id so retrying a job is always safe.
type IngestJob struct {
	ID          string
	Domain      SearchDomain
	SourceID    string
	Payload     []byte
	Status      IngestJobStatus
	Retries     int32
	Error       string
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// ValidateIngestJob validates an IngestJob instance
func ValidateIngestJob(j *IngestJob) error {
	if j == nil {
		return fmt.Errorf("ingest job cannot be nil")
	}

	if j.ID == "" {
		return fmt.Errorf("ingest job ID is required")
	}

	if j.SourceID == "" {
		return fmt.Errorf("ingest job SourceID is required")
	}

	if !IsValidSearchDomain(j.Domain) {
		return fmt.Errorf("ingest job Domain is invalid: %s", j.Domain)
	}

	if !isValidIngestJobStatus(j.Status) {
		return fmt.Errorf("ingest job Status is invalid: %s", j.Status)
	}

	if j.Retries < 0 {
		return fmt.Errorf("ingest job Retries cannot be negative")
	}

	return nil
}

func isValidIngestJobStatus(s IngestJobStatus) bool {
	switch s {
	case IngestJobStatusPending, IngestJobStatusProcessing,
		IngestJobStatusCompleted, IngestJobStatusFailed:
		return true
	}
	return false
}
