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

// LearningIngester chunks and embeds learning resources.
type LearningIngester struct {
	embedder llm.Embedder
	store    store.DocumentStore
}

func NewLearningIngester(embedder llm.Embedder, st store.DocumentStore) *LearningIngester {
	return &LearningIngester{embedder: embedder, store: st}
}

func (ing *LearningIngester) Chunks(res domain.LearningResource) []domain.ContentChunk {
	resMeta := domain.Metadata{}
	if res.Provider != "" {
		resMeta["provider"] = domain.String(res.Provider)
	}
	if res.SkillLevel != "" {
		resMeta["skill_level"] = domain.String(res.SkillLevel)
	}
	if len(res.Tags) > 0 {
		resMeta["tags"] = domain.StringList(res.Tags...)
	}

	withType := func(chunkType string) domain.Metadata {
		return mergeMetadata(baseMetadata(res.ID, chunkType, res.PublishedAt), resMeta)
	}

	var headerParts []string
	headerParts = append(headerParts, res.Title)
	if res.Provider != "" {
		headerParts = append(headerParts, "Provider: "+res.Provider)
	}
	if res.SkillLevel != "" {
		headerParts = append(headerParts, "Level: "+res.SkillLevel)
	}

	chunks := []domain.ContentChunk{{
		ID:       chunkID(domain.DomainLearning, res.ID, "header"),
		Content:  strings.Join(headerParts, "\n"),
		Metadata: withType("learning_header"),
	}}

	chunks = append(chunks, sectionChunk(domain.DomainLearning, res.ID, "summary", res.Summary, withType("learning_summary"))...)
	chunks = append(chunks, windowChunks(domain.DomainLearning, res.ID, "learning_content", res.Content, withType("learning_content"))...)

	return chunks
}

func (ing *LearningIngester) Ingest(ctx context.Context, res domain.LearningResource) error {
	if res.ID == "" {
		return domain.ErrInvalidSource
	}
	return embedAndStore(ctx, ing.embedder, ing.store, res.ID, ing.Chunks(res))
}

func (ing *LearningIngester) IngestPayload(ctx context.Context, payload []byte) error {
	var res domain.LearningResource
	if err := json.Unmarshal(payload, &res); err != nil {
		return fmt.Errorf("failed to decode learning resource payload: %w", err)
	}
	return ing.Ingest(ctx, res)
}
