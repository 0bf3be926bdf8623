// Package ranking reorders retrieval candidates: an LLM cross-reranker
// scores query/document pairs, and a fusion pass combines the per-signal
// scores into one final ranking.
package ranking

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/workmesh/talentrag/internal/domain"
	"github.com/workmesh/talentrag/internal/llm"
)

const (
	// DefaultTopK caps how many candidates are scored by the LLM, not how
	// many are returned. Reranking is the most expensive stage, and
	// relevance beyond the head of the candidate list rarely changes the
	// final page.
	DefaultTopK = 15

	// rerankDocLimit truncates each document in the prompt. The opening
	// of a chunk carries most of its relevance signal.
	rerankDocLimit = 500

	// rerankConcurrency and rerankPacing bound pressure on the LLM API.
	rerankConcurrency = 3
	rerankPacing      = 100 * time.Millisecond

	// neutralScore is assigned when a judgment cannot be obtained, so a
	// single failed call neither promotes nor buries a candidate.
	neutralScore = 0.5

	rerankSystemPrompt = "You judge how relevant a document is to a search query. " +
		"Respond with a single number between 0.0 (irrelevant) and 1.0 (highly relevant) and nothing else."
)

var scorePattern = regexp.MustCompile(`[01](?:\.\d+)?`)

// Reranker scores each candidate against the query with one completion
// call per pair, bounded by a concurrency limit and a shared rate
// limiter. Failures never propagate: a candidate whose call fails keeps
// the neutral score, and with no completer at all the input order passes
// through untouched.
type Reranker struct {
	completer llm.Completer
	limiter   *rate.Limiter
	topK      int
}

func NewReranker(completer llm.Completer) *Reranker {
	return &Reranker{
		completer: completer,
		limiter:   rate.NewLimiter(rate.Every(rerankPacing), 1),
		topK:      DefaultTopK,
	}
}

// Rerank returns all candidates reordered by LLM relevance judgment.
// Only the first topK candidates are scored; the rest keep no rerank
// score and sort with the neutral default. Stable sorting preserves the
// incoming order among equal scores, so full degradation leaves the
// input order untouched.
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []domain.ContentChunk) []domain.ContentChunk {
	if r == nil || r.completer == nil || len(candidates) == 0 {
		return candidates
	}

	scored := len(candidates)
	if scored > r.topK {
		scored = r.topK
	}

	scores := make([]float64, scored)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rerankConcurrency)

	for i, chunk := range candidates[:scored] {
		i, chunk := i, chunk
		g.Go(func() error {
			scores[i] = r.scoreOne(gctx, query, chunk)
			return nil
		})
	}
	_ = g.Wait()

	reranked := make([]domain.ContentChunk, len(candidates))
	for i, chunk := range candidates {
		out := chunk.Clone()
		if i < scored {
			if out.Metadata == nil {
				out.Metadata = domain.Metadata{}
			}
			out.Metadata[domain.MetaRerankScore] = domain.Number(scores[i])
		}
		reranked[i] = out
	}

	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].Metadata.Number(domain.MetaRerankScore, neutralScore) >
			reranked[j].Metadata.Number(domain.MetaRerankScore, neutralScore)
	})
	return reranked
}

func (r *Reranker) scoreOne(ctx context.Context, query string, chunk domain.ContentChunk) float64 {
	if err := r.limiter.Wait(ctx); err != nil {
		return neutralScore
	}

	doc := chunk.Content
	if runes := []rune(doc); len(runes) > rerankDocLimit {
		doc = string(runes[:rerankDocLimit])
	}

	resp, err := r.completer.Complete(ctx, llm.CompletionRequest{
		System:      rerankSystemPrompt,
		User:        fmt.Sprintf("Query: %s\n\nDocument:\n%s", query, doc),
		Temperature: 0,
		MaxTokens:   10,
	})
	if err != nil {
		log.Printf("rerank call failed for chunk %s, using neutral score: %v", chunk.ID, err)
		return neutralScore
	}
	return parseScore(resp)
}

// parseScore extracts a relevance score from the model output, clamped
// to [0,1]. Anything unparseable falls back to the neutral score.
func parseScore(resp string) float64 {
	resp = strings.TrimSpace(resp)

	score, err := strconv.ParseFloat(resp, 64)
	if err != nil {
		match := scorePattern.FindString(resp)
		if match == "" {
			return neutralScore
		}
		score, err = strconv.ParseFloat(match, 64)
		if err != nil {
			return neutralScore
		}
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
