package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/workmesh/talentrag/internal/domain"
	"github.com/workmesh/talentrag/internal/llm"
	"github.com/workmesh/talentrag/internal/store"
)

// FAQIngester chunks and embeds FAQ entries. The question serves as the
// header chunk; long answers fall through the same sliding window as
// the other domains.
type FAQIngester struct {
	embedder llm.Embedder
	store    store.DocumentStore
}

func NewFAQIngester(embedder llm.Embedder, st store.DocumentStore) *FAQIngester {
	return &FAQIngester{embedder: embedder, store: st}
}

func (ing *FAQIngester) Chunks(entry domain.FAQEntry) []domain.ContentChunk {
	entryMeta := domain.Metadata{}
	if entry.Category != "" {
		entryMeta["category"] = domain.String(entry.Category)
	}
	if len(entry.Tags) > 0 {
		entryMeta["tags"] = domain.StringList(entry.Tags...)
	}

	withType := func(chunkType string) domain.Metadata {
		return mergeMetadata(baseMetadata(entry.ID, chunkType, entry.UpdatedAt), entryMeta)
	}

	chunks := sectionChunk(domain.DomainFAQ, entry.ID, "header", entry.Question, withType("faq_question"))
	chunks = append(chunks, windowChunks(domain.DomainFAQ, entry.ID, "faq_answer", entry.Answer, withType("faq_answer"))...)
	return chunks
}

func (ing *FAQIngester) Ingest(ctx context.Context, entry domain.FAQEntry) error {
	if entry.ID == "" {
		return domain.ErrInvalidSource
	}
	return embedAndStore(ctx, ing.embedder, ing.store, entry.ID, ing.Chunks(entry))
}

func (ing *FAQIngester) IngestPayload(ctx context.Context, payload []byte) error {
	var entry domain.FAQEntry
	if err := json.Unmarshal(payload, &entry); err != nil {
		return fmt.Errorf("failed to decode faq entry payload: %w", err)
	}
	return ing.Ingest(ctx, entry)
}
