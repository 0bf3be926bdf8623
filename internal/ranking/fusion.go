package ranking

import (
	"math"
	"sort"
	"time"

	"github.com/workmesh/talentrag/internal/domain"
)

// FusionWeights control how much each signal contributes to the final
// score. They should sum to 1 so fused scores stay comparable across
// queries.
type FusionWeights struct {
	Rerank  float64
	Vector  float64
	Keyword float64
	Recency float64
}

// DefaultFusionWeights favor vector similarity, then the lexical
// channel, then the LLM judgment and freshness signals.
func DefaultFusionWeights() FusionWeights {
	return FusionWeights{
		Vector:  0.4,
		Keyword: 0.3,
		Rerank:  0.2,
		Recency: 0.1,
	}
}

// recencyHalfLifeDays sets how fast freshness decays; a 30-day-old
// document scores 1/e.
const recencyHalfLifeDays = 30.0

// Fuser combines the per-signal scores written by earlier stages into
// one final score and re-sorts. Chunks that skipped a stage get that
// stage's neutral default, so fusion is total over any candidate list.
type Fuser struct {
	weights FusionWeights
	now     func() time.Time
}

func NewFuser(weights FusionWeights) *Fuser {
	return &Fuser{weights: weights, now: time.Now}
}

// Fuse scores and re-sorts the candidates. Each chunk's metadata gains
// the recency component so the full score breakdown is inspectable on
// the result.
func (f *Fuser) Fuse(candidates []domain.ContentChunk) []domain.ContentChunk {
	fused := make([]domain.ContentChunk, len(candidates))
	for i, chunk := range candidates {
		out := chunk.Clone()
		if out.Metadata == nil {
			out.Metadata = domain.Metadata{}
		}

		recency := f.recencyScore(out.Metadata)
		out.Metadata[domain.MetaRecencyScore] = domain.Number(recency)

		score := f.weights.Rerank*out.Metadata.Number(domain.MetaRerankScore, neutralScore) +
			f.weights.Vector*out.Metadata.Number(domain.MetaVectorScore, 0) +
			f.weights.Keyword*out.Metadata.Number(domain.MetaKeywordScore, 0) +
			f.weights.Recency*recency
		out.Score = float32(score)
		fused[i] = out
	}

	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].Score > fused[j].Score
	})
	return fused
}

// recencyScore decays exponentially with document age. Without a
// publication timestamp the score is neutral rather than zero, so
// undated content is not systematically buried.
func (f *Fuser) recencyScore(meta domain.Metadata) float64 {
	v, ok := meta[domain.MetaPublishedAt]
	if !ok {
		return neutralScore
	}
	published, ok := v.AsTime()
	if !ok {
		return neutralScore
	}

	days := f.now().Sub(published).Hours() / 24
	if days < 0 {
		days = 0
	}
	return math.Exp(-days / recencyHalfLifeDays)
}
