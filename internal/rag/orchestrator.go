package rag

import (
	"context"
	"log"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/workmesh/talentrag/internal/domain"
	"github.com/workmesh/talentrag/internal/telemetry"
)

// DefaultTotalLimit caps the merged cross-domain result list.
const DefaultTotalLimit = 20

// MultiDomainResult carries both the globally ranked merge and the
// per-domain lists it was built from, so callers can render either view.
type MultiDomainResult struct {
	Merged    []domain.ContentChunk
	PerDomain map[domain.SearchDomain][]domain.ContentChunk
}

// Orchestrator fans a query out to several domain services concurrently
// and merges the results. A failing domain is logged and contributes
// nothing; it never sinks the other domains.
type Orchestrator struct {
	services map[domain.SearchDomain]*DomainService
}

func NewOrchestrator(services ...*DomainService) *Orchestrator {
	byDomain := make(map[domain.SearchDomain]*DomainService, len(services))
	for _, svc := range services {
		byDomain[svc.Domain()] = svc
	}
	return &Orchestrator{services: byDomain}
}

// Service returns the registered service for a domain, if any.
func (o *Orchestrator) Service(d domain.SearchDomain) (*DomainService, bool) {
	svc, ok := o.services[d]
	return svc, ok
}

// Retrieve searches the requested domains concurrently. Unknown or
// unregistered domains are skipped with a log line. The merged list is
// deduplicated by chunk id (first occurrence in requested-domain order
// wins), globally sorted by score, and cut to totalLimit.
func (o *Orchestrator) Retrieve(ctx context.Context, rawQuery string, domains []domain.SearchDomain, opts domain.RetrieveOptions, totalLimit int) (MultiDomainResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "rag.retrieve_multi", telemetry.SpanAttributes{
		Operation: "retrieve_multi",
	})
	defer span.End()

	if totalLimit <= 0 {
		totalLimit = DefaultTotalLimit
	}

	result := MultiDomainResult{
		PerDomain: make(map[domain.SearchDomain][]domain.ContentChunk, len(domains)),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	requested := make([]domain.SearchDomain, 0, len(domains))
	for _, d := range domains {
		d := d
		svc, ok := o.services[d]
		if !ok {
			log.Printf("no service registered for domain %s, skipping", d)
			continue
		}
		requested = append(requested, d)

		g.Go(func() error {
			chunks, err := svc.Retrieve(gctx, rawQuery, opts)
			if err != nil {
				// Partial failure: this domain returns nothing, the
				// rest of the fan-out proceeds.
				log.Printf("retrieval failed for domain %s: %v", d, err)
				telemetry.CaptureError(gctx, err)
				chunks = nil
			}
			mu.Lock()
			result.PerDomain[d] = chunks
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[string]struct{}, totalLimit)
	for _, d := range requested {
		for _, chunk := range result.PerDomain[d] {
			if _, dup := seen[chunk.ID]; dup {
				continue
			}
			seen[chunk.ID] = struct{}{}
			result.Merged = append(result.Merged, chunk)
		}
	}

	sort.SliceStable(result.Merged, func(i, j int) bool {
		return result.Merged[i].Score > result.Merged[j].Score
	})
	if len(result.Merged) > totalLimit {
		result.Merged = result.Merged[:totalLimit]
	}
	return result, nil
}
