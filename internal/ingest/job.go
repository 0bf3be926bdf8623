package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/workmesh/talentrag/internal/domain"
	"github.com/workmesh/talentrag/internal/llm"
	"github.com/workmesh/talentrag/internal/store"
)

// JobIngester chunks and embeds job postings into the job domain store.
type JobIngester struct {
	embedder llm.Embedder
	store    store.DocumentStore
}

func NewJobIngester(embedder llm.Embedder, st store.DocumentStore) *JobIngester {
	return &JobIngester{embedder: embedder, store: st}
}

// Chunks builds the chunk set for a posting without touching the
// embedder or store. The header chunk summarizes top-level fields so
// short structured queries match without the full body; optional
// sections emit only when present.
func (ing *JobIngester) Chunks(job domain.JobPosting) []domain.ContentChunk {
	jobMeta := domain.Metadata{
		"company": domain.String(job.Company),
	}
	if job.Location != "" {
		jobMeta["location"] = domain.String(job.Location)
	}
	if job.EmploymentType != "" {
		jobMeta["employment_type"] = domain.String(job.EmploymentType)
	}
	if len(job.Tags) > 0 {
		jobMeta["tags"] = domain.StringList(job.Tags...)
	}

	withType := func(chunkType string) domain.Metadata {
		return mergeMetadata(baseMetadata(job.ID, chunkType, job.PublishedAt), jobMeta)
	}

	chunks := []domain.ContentChunk{{
		ID:       chunkID(domain.DomainJob, job.ID, "header"),
		Content:  jobHeaderText(job),
		Metadata: withType("job_header"),
	}}

	chunks = append(chunks, windowChunks(domain.DomainJob, job.ID, "job_description", job.Description, withType("job_description"))...)
	chunks = append(chunks, sectionChunk(domain.DomainJob, job.ID, "culture", job.Culture, withType("job_culture"))...)
	chunks = append(chunks, sectionChunk(domain.DomainJob, job.ID, "benefits", job.Benefits, withType("job_benefits"))...)
	if len(job.Skills) > 0 {
		chunks = append(chunks, sectionChunk(domain.DomainJob, job.ID, "skills",
			"Skills: "+strings.Join(job.Skills, ", "), withType("job_skills"))...)
	}

	return chunks
}

// Ingest embeds and stores the posting's chunks. Idempotent per job id.
func (ing *JobIngester) Ingest(ctx context.Context, job domain.JobPosting) error {
	if job.ID == "" {
		return domain.ErrInvalidSource
	}
	return embedAndStore(ctx, ing.embedder, ing.store, job.ID, ing.Chunks(job))
}

// IngestPayload decodes a queued JSON payload and ingests it.
func (ing *JobIngester) IngestPayload(ctx context.Context, payload []byte) error {
	var job domain.JobPosting
	if err := json.Unmarshal(payload, &job); err != nil {
		return fmt.Errorf("failed to decode job posting payload: %w", err)
	}
	return ing.Ingest(ctx, job)
}

func jobHeaderText(job domain.JobPosting) string {
	var parts []string
	if job.Company != "" {
		parts = append(parts, fmt.Sprintf("%s at %s", job.Title, job.Company))
	} else {
		parts = append(parts, job.Title)
	}
	if job.Location != "" {
		parts = append(parts, "Location: "+job.Location)
	}
	if job.EmploymentType != "" {
		parts = append(parts, "Employment type: "+job.EmploymentType)
	}
	if job.SalaryRange != "" {
		parts = append(parts, "Salary: "+job.SalaryRange)
	}
	return strings.Join(parts, "\n")
}
