// Package ingest turns domain objects into embedded content chunks and
// writes them into the domain's document store. Chunk ids are derived
// deterministically from the domain tag, source id, and a chunk
// discriminator, so re-ingesting the same object overwrites its previous
// chunks instead of duplicating them.
package ingest

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/workmesh/talentrag/internal/domain"
	"github.com/workmesh/talentrag/internal/llm"
	"github.com/workmesh/talentrag/internal/store"
)

// chunkID namespaces ids by domain so a chunk id can never collide with
// another domain's when the orchestrator merges results.
func chunkID(d domain.SearchDomain, sourceID, discriminator string) string {
	return fmt.Sprintf("%s:%s_%s", d, sourceID, discriminator)
}

func windowID(d domain.SearchDomain, sourceID string, index int) string {
	return chunkID(d, sourceID, fmt.Sprintf("chunk_%d", index))
}

// embedAndStore generates an embedding per chunk and upserts the full
// set. Errors propagate: ingestion is all-or-nothing per object, and any
// chunks already written are safe leftovers because a retry overwrites
// them.
func embedAndStore(ctx context.Context, embedder llm.Embedder, st store.DocumentStore, sourceID string, chunks []domain.ContentChunk) error {
	for i := range chunks {
		vec, err := embedder.Embed(ctx, chunks[i].Content)
		if err != nil {
			log.Printf("ingestion failed for source %s: embedding chunk %s: %v", sourceID, chunks[i].ID, err)
			return fmt.Errorf("failed to embed chunk %s: %w", chunks[i].ID, err)
		}
		chunks[i].Embedding = vec
	}

	if err := st.AddDocuments(ctx, chunks); err != nil {
		log.Printf("ingestion failed for source %s: store write: %v", sourceID, err)
		return fmt.Errorf("failed to store chunks for %s: %w", sourceID, err)
	}
	return nil
}

func baseMetadata(sourceID, chunkType string, publishedAt time.Time) domain.Metadata {
	meta := domain.Metadata{
		domain.MetaSource: domain.String(sourceID),
		domain.MetaType:   domain.String(chunkType),
	}
	if !publishedAt.IsZero() {
		meta[domain.MetaPublishedAt] = domain.Time(publishedAt)
	}
	return meta
}

func mergeMetadata(base domain.Metadata, extra domain.Metadata) domain.Metadata {
	out := base.Clone()
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// sectionChunk emits one labeled chunk for an optional section, or
// nothing when the section is absent.
func sectionChunk(d domain.SearchDomain, sourceID, discriminator, content string, meta domain.Metadata) []domain.ContentChunk {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	return []domain.ContentChunk{{
		ID:       chunkID(d, sourceID, discriminator),
		Content:  strings.TrimSpace(content),
		Metadata: meta,
	}}
}

// windowChunks emits the sliding-window chunks for a long free-text
// field, indexed chunk_0, chunk_1, ...
func windowChunks(d domain.SearchDomain, sourceID, chunkType, text string, meta domain.Metadata) []domain.ContentChunk {
	windows := SlidingWindow(text, DefaultChunkSize, DefaultChunkOverlap)
	chunks := make([]domain.ContentChunk, 0, len(windows))
	for i, w := range windows {
		c := domain.ContentChunk{
			ID:       windowID(d, sourceID, i),
			Content:  w,
			Metadata: meta.Clone(),
		}
		c.Metadata[domain.MetaType] = domain.String(chunkType)
		chunks = append(chunks, c)
	}
	return chunks
}
