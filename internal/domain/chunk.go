package domain

// ContentChunk is the atomic retrievable unit: a span of text with its
// embedding and filterable metadata. IDs are stable across re-ingestion
// of the same source object so store upserts overwrite rather than
// duplicate. Score is set per retrieval call and is meaningless outside
// that call; it must never be persisted.
type ContentChunk struct {
	ID        string
	Content   string
	Embedding []float32
	Metadata  Metadata
	Score     float32
}

// Clone returns a copy that shares no mutable state with the original.
func (c ContentChunk) Clone() ContentChunk {
	out := c
	if c.Embedding != nil {
		out.Embedding = make([]float32, len(c.Embedding))
		copy(out.Embedding, c.Embedding)
	}
	out.Metadata = c.Metadata.Clone()
	return out
}

// Source returns the origin object id recorded at ingestion.
func (c ContentChunk) Source() string {
	if v, ok := c.Metadata[MetaSource]; ok {
		if s, ok := v.AsString(); ok {
			return s
		}
	}
	return ""
}

// Type returns the chunk role recorded at ingestion (e.g. "job_header").
func (c ContentChunk) Type() string {
	if v, ok := c.Metadata[MetaType]; ok {
		if s, ok := v.AsString(); ok {
			return s
		}
	}
	return ""
}

// ChunkPatch carries a partial update for UpdateDocument. Nil fields are
// left untouched; metadata entries are merged key by key.
type ChunkPatch struct {
	Content   *string
	Embedding []float32
	Metadata  Metadata
}

// ValidateChunk checks the fields every store requires before accepting
// a chunk.
func ValidateChunk(c *ContentChunk) error {
	if c == nil {
		return ErrInvalidChunk
	}
	if c.ID == "" || c.Content == "" {
		return ErrInvalidChunk
	}
	return nil
}
