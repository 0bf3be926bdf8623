// Package retrieval implements the candidate-fetching stage: pure
// vector retrieval, an optional keyword channel, and the hybrid merge
// that combines the two with rank-decay weighting.
package retrieval

import (
	"context"

	"github.com/workmesh/talentrag/internal/domain"
)

// Retriever fetches the chunks most relevant to a query. Implementations
// must return results sorted by descending score.
type Retriever interface {
	Retrieve(ctx context.Context, query string, limit int, filter domain.Filter) ([]domain.ContentChunk, error)
}

// KeywordSearcher is the lexical counterpart to vector search. Results
// are expected in descending relevance order; scores need not be
// normalized, only the ordering matters to the hybrid merge.
type KeywordSearcher interface {
	SearchKeyword(ctx context.Context, query string, limit int, filter domain.Filter) ([]domain.ContentChunk, error)
}

// NoopKeywordSearcher satisfies KeywordSearcher with empty results, for
// deployments without a lexical index. The hybrid retriever degrades to
// pure vector ranking when the keyword channel returns nothing.
type NoopKeywordSearcher struct{}

func (NoopKeywordSearcher) SearchKeyword(_ context.Context, _ string, _ int, _ domain.Filter) ([]domain.ContentChunk, error) {
	return nil, nil
}
