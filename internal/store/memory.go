package store

import (
	"context"
	"sort"
	"sync"

	"github.com/workmesh/talentrag/internal/domain"
)

// MemoryStore keeps chunks in a map keyed by id and scans all entries
// per similarity query. O(n) per search, which is acceptable for the
// low-volume domains it serves (FAQ, learning resources, companies).
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]domain.ContentChunk
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]domain.ContentChunk)}
}

// AddDocuments upserts chunks by id.
func (s *MemoryStore) AddDocuments(_ context.Context, chunks []domain.ContentChunk) error {
	if err := validateChunks(chunks); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		s.docs[c.ID] = c.Clone()
	}
	return nil
}

// SimilaritySearch scores every embedded chunk against the query vector
// with cosine similarity, filters, sorts descending, and truncates.
func (s *MemoryStore) SimilaritySearch(_ context.Context, query []float32, limit int, filter domain.Filter) ([]domain.ContentChunk, error) {
	if limit <= 0 {
		return []domain.ContentChunk{}, nil
	}

	s.mu.RLock()
	candidates := make([]domain.ContentChunk, 0, len(s.docs))
	for _, c := range s.docs {
		if len(c.Embedding) == 0 {
			continue
		}
		if !c.Metadata.Matches(filter) {
			continue
		}
		scored := c.Clone()
		scored.Score = domain.CosineSimilarity(query, c.Embedding)
		candidates = append(candidates, scored)
	}
	s.mu.RUnlock()

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// DeleteDocuments removes the given ids; unknown ids are ignored.
func (s *MemoryStore) DeleteDocuments(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.docs, id)
	}
	return nil
}

// UpdateDocument merges a partial patch into an existing chunk. A
// nonexistent id is a no-op.
func (s *MemoryStore) UpdateDocument(_ context.Context, id string, patch domain.ChunkPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.docs[id]
	if !ok {
		return nil
	}

	updated := existing.Clone()
	mergePatch(&updated, patch)
	s.docs[id] = updated
	return nil
}

// Count returns the number of stored chunks.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Get returns a copy of the chunk with the given id.
func (s *MemoryStore) Get(id string) (domain.ContentChunk, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.docs[id]
	if !ok {
		return domain.ContentChunk{}, false
	}
	return c.Clone(), true
}
