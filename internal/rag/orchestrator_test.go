package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workmesh/talentrag/internal/domain"
	"github.com/workmesh/talentrag/internal/query"
)

func serviceFor(t *testing.T, d domain.SearchDomain, r *stubRetriever) *DomainService {
	t.Helper()
	svc, err := NewDomainService(d, r, query.NewRewriter(nil), nil, nil, nil)
	require.NoError(t, err)
	return svc
}

func TestOrchestrator_MergesAcrossDomains(t *testing.T) {
	jobs := serviceFor(t, domain.DomainJob, &stubRetriever{results: []domain.ContentChunk{
		scoredChunk("job:1_header", 0.9),
	}})
	faqs := serviceFor(t, domain.DomainFAQ, &stubRetriever{results: []domain.ContentChunk{
		scoredChunk("faq:1_header", 0.95),
	}})

	o := NewOrchestrator(jobs, faqs)
	result, err := o.Retrieve(context.Background(), "query",
		[]domain.SearchDomain{domain.DomainJob, domain.DomainFAQ},
		domain.RetrieveOptions{Limit: 5}, 10)
	require.NoError(t, err)

	require.Len(t, result.Merged, 2)
	assert.Len(t, result.PerDomain[domain.DomainJob], 1)
	assert.Len(t, result.PerDomain[domain.DomainFAQ], 1)

	// Globally sorted by fused score regardless of source domain.
	assert.Equal(t, "faq:1_header", result.Merged[0].ID)
}

func TestOrchestrator_PartialFailureIsolated(t *testing.T) {
	healthy := serviceFor(t, domain.DomainJob, &stubRetriever{results: []domain.ContentChunk{
		scoredChunk("job:1_header", 0.9),
	}})
	broken := serviceFor(t, domain.DomainFAQ, &stubRetriever{err: errors.New("store down")})

	o := NewOrchestrator(healthy, broken)
	result, err := o.Retrieve(context.Background(), "query",
		[]domain.SearchDomain{domain.DomainJob, domain.DomainFAQ},
		domain.RetrieveOptions{}, 10)
	require.NoError(t, err)

	require.Len(t, result.Merged, 1)
	assert.Equal(t, "job:1_header", result.Merged[0].ID)
	assert.Empty(t, result.PerDomain[domain.DomainFAQ])
}

func TestOrchestrator_DedupesByID(t *testing.T) {
	first := serviceFor(t, domain.DomainJob, &stubRetriever{results: []domain.ContentChunk{
		scoredChunk("dup", 0.9),
	}})
	second := serviceFor(t, domain.DomainCompany, &stubRetriever{results: []domain.ContentChunk{
		scoredChunk("dup", 0.4),
	}})

	o := NewOrchestrator(first, second)
	result, err := o.Retrieve(context.Background(), "query",
		[]domain.SearchDomain{domain.DomainJob, domain.DomainCompany},
		domain.RetrieveOptions{}, 10)
	require.NoError(t, err)

	// First occurrence in requested-domain order wins.
	require.Len(t, result.Merged, 1)
	assert.InDelta(t, 0.9, result.Merged[0].Metadata.Number(domain.MetaVectorScore, 0), 1e-6)
}

func TestOrchestrator_UnregisteredDomainSkipped(t *testing.T) {
	jobs := serviceFor(t, domain.DomainJob, &stubRetriever{results: []domain.ContentChunk{
		scoredChunk("job:1_header", 0.9),
	}})

	o := NewOrchestrator(jobs)
	result, err := o.Retrieve(context.Background(), "query",
		[]domain.SearchDomain{domain.DomainJob, domain.DomainLearning},
		domain.RetrieveOptions{}, 10)
	require.NoError(t, err)

	assert.Len(t, result.Merged, 1)
	_, hasLearning := result.PerDomain[domain.DomainLearning]
	assert.False(t, hasLearning)
}

func TestOrchestrator_TotalLimit(t *testing.T) {
	jobs := serviceFor(t, domain.DomainJob, &stubRetriever{results: []domain.ContentChunk{
		scoredChunk("a", 0.9), scoredChunk("b", 0.8), scoredChunk("c", 0.7),
	}})

	o := NewOrchestrator(jobs)
	result, err := o.Retrieve(context.Background(), "query",
		[]domain.SearchDomain{domain.DomainJob}, domain.RetrieveOptions{}, 2)
	require.NoError(t, err)

	assert.Len(t, result.Merged, 2)
}

func TestOrchestrator_ServiceLookup(t *testing.T) {
	jobs := serviceFor(t, domain.DomainJob, &stubRetriever{})
	o := NewOrchestrator(jobs)

	svc, ok := o.Service(domain.DomainJob)
	assert.True(t, ok)
	assert.Equal(t, domain.DomainJob, svc.Domain())

	_, ok = o.Service(domain.DomainFAQ)
	assert.False(t, ok)
}
