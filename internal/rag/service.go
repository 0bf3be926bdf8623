// Package rag wires the query, retrieval, and ranking stages into
// per-domain search services and a cross-domain orchestrator.
package rag

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/workmesh/talentrag/internal/domain"
	"github.com/workmesh/talentrag/internal/query"
	"github.com/workmesh/talentrag/internal/ranking"
	"github.com/workmesh/talentrag/internal/retrieval"
	"github.com/workmesh/talentrag/internal/telemetry"
)

const (
	// DefaultLimit is used when a caller passes no limit.
	DefaultLimit = 10

	// retrievalOverfetch widens the retrieval so reranking and fusion
	// have headroom to reorder before the final cut.
	retrievalOverfetch = 2
)

// DomainService runs the full pipeline for one content domain:
// normalize, rewrite, retrieve, rerank, fuse, truncate. The LLM stages
// degrade silently; only retrieval failures surface to the caller.
type DomainService struct {
	domain    domain.SearchDomain
	retriever retrieval.Retriever
	rewriter  *query.Rewriter
	expander  *query.Expander
	reranker  *ranking.Reranker
	fuser     *ranking.Fuser
}

func NewDomainService(
	d domain.SearchDomain,
	retriever retrieval.Retriever,
	rewriter *query.Rewriter,
	expander *query.Expander,
	reranker *ranking.Reranker,
	fuser *ranking.Fuser,
) (*DomainService, error) {
	if !domain.IsValidSearchDomain(d) {
		return nil, domain.ErrUnknownDomain
	}
	if retriever == nil {
		return nil, fmt.Errorf("retriever is required for domain %s", d)
	}
	if fuser == nil {
		fuser = ranking.NewFuser(ranking.DefaultFusionWeights())
	}
	return &DomainService{
		domain:    d,
		retriever: retriever,
		rewriter:  rewriter,
		expander:  expander,
		reranker:  reranker,
		fuser:     fuser,
	}, nil
}

// Domain returns the content domain this service searches.
func (s *DomainService) Domain() domain.SearchDomain {
	return s.domain
}

// Retrieve runs the pipeline and returns up to opts.Limit fused results
// in descending score order.
func (s *DomainService) Retrieve(ctx context.Context, rawQuery string, opts domain.RetrieveOptions) ([]domain.ContentChunk, error) {
	ctx, span := telemetry.StartSpan(ctx, "rag.retrieve", telemetry.SpanAttributes{
		Domain:    string(s.domain),
		Operation: "retrieve",
	})
	defer span.End()

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	q := query.Normalize(rawQuery)
	if q == "" {
		return nil, nil
	}
	q = s.rewriter.Rewrite(ctx, q, opts.Conversation, opts.DomainHint)

	candidates, err := s.retrieveCandidates(ctx, q, limit*retrievalOverfetch, opts.Filter)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("retrieval failed for domain %s: %w", s.domain, err)
	}

	if s.reranker != nil {
		candidates = s.reranker.Rerank(ctx, q, candidates)
	}
	fused := s.fuser.Fuse(candidates)

	if len(fused) > limit {
		fused = fused[:limit]
	}
	return fused, nil
}

// retrieveCandidates fetches for the query and, when expansion is
// enabled, for each variant. Variant results merge behind the original
// query's results: the first occurrence of a chunk wins, so the original
// phrasing keeps priority on duplicates.
func (s *DomainService) retrieveCandidates(ctx context.Context, q string, limit int, filter domain.Filter) ([]domain.ContentChunk, error) {
	queries := []string{q}
	if s.expander != nil {
		queries = s.expander.Expand(ctx, q)
	}

	if len(queries) == 1 {
		return s.retriever.Retrieve(ctx, queries[0], limit, filter)
	}

	seen := make(map[string]struct{}, limit)
	var merged []domain.ContentChunk
	for i, variant := range queries {
		results, err := s.retriever.Retrieve(ctx, variant, limit, filter)
		if err != nil {
			// Only the original query's retrieval is load-bearing.
			if i == 0 {
				return nil, err
			}
			log.Printf("variant retrieval failed for %q, skipping: %v", variant, err)
			continue
		}
		for _, chunk := range results {
			if _, dup := seen[chunk.ID]; dup {
				continue
			}
			seen[chunk.ID] = struct{}{}
			merged = append(merged, chunk)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}
