package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workmesh/talentrag/internal/domain"
	"github.com/workmesh/talentrag/internal/llm"
	"github.com/workmesh/talentrag/internal/store"
)

type failingEmbedder struct{}

func (failingEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, errors.New("provider unavailable")
}

func testJob() domain.JobPosting {
	return domain.JobPosting{
		ID:             "job-1",
		Title:          "Senior Backend Engineer",
		Company:        "Acme",
		Location:       "Berlin",
		EmploymentType: "full-time",
		SalaryRange:    "80-100k EUR",
		Description:    strings.Repeat("We build distributed systems in Go. ", 33), // ~1200 chars
		Skills:         []string{"Go", "Postgres", "Kubernetes"},
		Tags:           []string{"backend", "remote"},
		PublishedAt:    time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestJobIngester_Chunks(t *testing.T) {
	ing := NewJobIngester(llm.NewHashEmbedder(8), store.NewMemoryStore())
	chunks := ing.Chunks(testJob())

	// 1 header + 3 description windows + 1 skills section.
	require.Len(t, chunks, 5)

	header := chunks[0]
	assert.Equal(t, "job:job-1_header", header.ID)
	assert.Contains(t, header.Content, "Senior Backend Engineer at Acme")
	assert.Contains(t, header.Content, "Location: Berlin")
	assert.Contains(t, header.Content, "Salary: 80-100k EUR")
	assert.Equal(t, "job_header", header.Type())
	assert.Equal(t, "job-1", header.Source())

	loc, _ := header.Metadata["location"].AsString()
	assert.Equal(t, "Berlin", loc)
	tags, _ := header.Metadata["tags"].AsStringList()
	assert.Equal(t, []string{"backend", "remote"}, tags)
	published, ok := header.Metadata[domain.MetaPublishedAt].AsTime()
	require.True(t, ok)
	assert.Equal(t, 2026, published.Year())

	assert.Equal(t, "job:job-1_chunk_0", chunks[1].ID)
	assert.Equal(t, "job_description", chunks[1].Type())
	assert.Equal(t, "job:job-1_chunk_2", chunks[3].ID)

	skills := chunks[4]
	assert.Equal(t, "job:job-1_skills", skills.ID)
	assert.Contains(t, skills.Content, "Go, Postgres, Kubernetes")
}

func TestJobIngester_OptionalSectionsOmitted(t *testing.T) {
	ing := NewJobIngester(llm.NewHashEmbedder(8), store.NewMemoryStore())
	chunks := ing.Chunks(domain.JobPosting{
		ID:      "job-2",
		Title:   "Engineer",
		Company: "Acme",
	})

	require.Len(t, chunks, 1)
	assert.Equal(t, "job:job-2_header", chunks[0].ID)
}

func TestJobIngester_IngestWritesEmbeddedChunks(t *testing.T) {
	st := store.NewMemoryStore()
	ing := NewJobIngester(llm.NewHashEmbedder(8), st)

	require.NoError(t, ing.Ingest(context.Background(), testJob()))
	assert.Equal(t, 5, st.Count())

	header, ok := st.Get("job:job-1_header")
	require.True(t, ok)
	assert.Len(t, header.Embedding, 8)
}

func TestJobIngester_ReingestIsIdempotent(t *testing.T) {
	st := store.NewMemoryStore()
	ing := NewJobIngester(llm.NewHashEmbedder(8), st)
	ctx := context.Background()

	require.NoError(t, ing.Ingest(ctx, testJob()))
	require.NoError(t, ing.Ingest(ctx, testJob()))
	assert.Equal(t, 5, st.Count())
}

func TestJobIngester_EmbeddingErrorPropagates(t *testing.T) {
	st := store.NewMemoryStore()
	ing := NewJobIngester(failingEmbedder{}, st)

	err := ing.Ingest(context.Background(), testJob())
	require.Error(t, err)
	assert.Equal(t, 0, st.Count())
}

func TestJobIngester_EmptyIDRejected(t *testing.T) {
	ing := NewJobIngester(llm.NewHashEmbedder(8), store.NewMemoryStore())
	err := ing.Ingest(context.Background(), domain.JobPosting{Title: "No ID"})
	assert.ErrorIs(t, err, domain.ErrInvalidSource)
}

func TestJobIngester_IngestPayload(t *testing.T) {
	st := store.NewMemoryStore()
	ing := NewJobIngester(llm.NewHashEmbedder(8), st)

	payload := []byte(`{"id":"job-9","title":"Data Engineer","company":"Beta"}`)
	require.NoError(t, ing.IngestPayload(context.Background(), payload))

	_, ok := st.Get("job:job-9_header")
	assert.True(t, ok)
}

func TestJobIngester_IngestPayloadRejectsBadJSON(t *testing.T) {
	ing := NewJobIngester(llm.NewHashEmbedder(8), store.NewMemoryStore())
	err := ing.IngestPayload(context.Background(), []byte(`{not json`))
	assert.Error(t, err)
}
