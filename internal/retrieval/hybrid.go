package retrieval

import (
	"context"
	"log"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/workmesh/talentrag/internal/domain"
)

const (
	// DefaultVectorWeight and DefaultKeywordWeight control how much each
	// channel contributes to the merged score.
	DefaultVectorWeight  = 0.7
	DefaultKeywordWeight = 0.3

	// channelOverfetch widens each channel's fetch so the merge has
	// enough candidates to promote cross-channel hits.
	channelOverfetch = 2
)

// HybridRetriever merges vector and keyword results with rank-decay
// scoring. A chunk found by both channels accumulates both
// contributions, so agreement between channels outranks a strong hit in
// either one alone.
type HybridRetriever struct {
	vector  Retriever
	keyword KeywordSearcher

	vectorWeight  float32
	keywordWeight float32
}

func NewHybridRetriever(vector Retriever, keyword KeywordSearcher) *HybridRetriever {
	if keyword == nil {
		keyword = NoopKeywordSearcher{}
	}
	return &HybridRetriever{
		vector:        vector,
		keyword:       keyword,
		vectorWeight:  DefaultVectorWeight,
		keywordWeight: DefaultKeywordWeight,
	}
}

func (r *HybridRetriever) Retrieve(ctx context.Context, query string, limit int, filter domain.Filter) ([]domain.ContentChunk, error) {
	if limit <= 0 {
		return nil, nil
	}

	fetchLimit := limit * channelOverfetch

	var vectorResults, keywordResults []domain.ContentChunk
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		results, err := r.vector.Retrieve(gctx, query, fetchLimit, filter)
		if err != nil {
			return err
		}
		vectorResults = results
		return nil
	})

	g.Go(func() error {
		results, err := r.keyword.SearchKeyword(gctx, query, fetchLimit, filter)
		if err != nil {
			// The keyword channel is an enhancement, not a dependency.
			log.Printf("keyword search failed, continuing with vector results only: %v", err)
			return nil
		}
		keywordResults = results
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := r.merge(vectorResults, keywordResults)
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

// merge assigns each result a rank-decay contribution weight*(1-rank/n)
// per channel and sums contributions for chunks present in both.
func (r *HybridRetriever) merge(vectorResults, keywordResults []domain.ContentChunk) []domain.ContentChunk {
	byID := make(map[string]*domain.ContentChunk, len(vectorResults)+len(keywordResults))
	order := make([]string, 0, len(vectorResults)+len(keywordResults))

	accumulate := func(results []domain.ContentChunk, weight float32, scoreKey string) {
		n := len(results)
		for rank, chunk := range results {
			contribution := weight * (1 - float32(rank)/float32(n))
			existing, ok := byID[chunk.ID]
			if !ok {
				merged := chunk.Clone()
				merged.Score = contribution
				if merged.Metadata == nil {
					merged.Metadata = domain.Metadata{}
				}
				merged.Metadata[scoreKey] = domain.Number(float64(contribution))
				byID[chunk.ID] = &merged
				order = append(order, chunk.ID)
				continue
			}
			existing.Score += contribution
			existing.Metadata[scoreKey] = domain.Number(float64(contribution))
		}
	}

	accumulate(vectorResults, r.vectorWeight, domain.MetaVectorScore)
	accumulate(keywordResults, r.keywordWeight, domain.MetaKeywordScore)

	merged := make([]domain.ContentChunk, 0, len(order))
	for _, id := range order {
		merged = append(merged, *byID[id])
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	return merged
}
