package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/workmesh/talentrag/internal/domain"
)

const (
	// fallbackCandidateMultiplier and fallbackMaxCandidates bound the
	// candidate pull when the native vector operator is unavailable:
	// min(limit*5, 100) active rows, ranked in process.
	fallbackCandidateMultiplier = 5
	fallbackMaxCandidates       = 100
)

// PostgresStore backs the high-volume job domain. Similarity search is
// pushed into Postgres via the pgvector cosine operator and joined
// against the live jobs table so inactive, soft-deleted, or expired
// postings drop out at query time rather than at ingestion time. Any
// query error triggers an unconditional in-process cosine fallback; the
// caller never sees the native path fail.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store on the given connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// AddDocuments upserts chunks by id.
func (s *PostgresStore) AddDocuments(ctx context.Context, chunks []domain.ContentChunk) error {
	if err := validateChunks(chunks); err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, c := range chunks {
		meta, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode chunk metadata: %w", err)
		}

		var embedding any
		if len(c.Embedding) > 0 {
			embedding = pgvector.NewVector(c.Embedding)
		}

		var publishedAt *time.Time
		if v, ok := c.Metadata[domain.MetaPublishedAt]; ok {
			if ts, ok := v.AsTime(); ok && !ts.IsZero() {
				utc := ts.UTC()
				publishedAt = &utc
			}
		}

		_, err = s.pool.Exec(ctx,
			`INSERT INTO rag_job_chunks (id, source_id, chunk_type, content, embedding, metadata, published_at, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
			 ON CONFLICT (id) DO UPDATE SET
				source_id = EXCLUDED.source_id,
				chunk_type = EXCLUDED.chunk_type,
				content = EXCLUDED.content,
				embedding = EXCLUDED.embedding,
				metadata = EXCLUDED.metadata,
				published_at = EXCLUDED.published_at,
				updated_at = EXCLUDED.updated_at`,
			c.ID, c.Source(), c.Type(), c.Content, embedding, meta, publishedAt, now,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert chunk %s: %w", c.ID, err)
		}
	}
	return nil
}

// SimilaritySearch runs the native pgvector query and falls back to an
// in-process scan on any error.
func (s *PostgresStore) SimilaritySearch(ctx context.Context, query []float32, limit int, filter domain.Filter) ([]domain.ContentChunk, error) {
	if limit <= 0 {
		return []domain.ContentChunk{}, nil
	}

	results, err := s.searchNative(ctx, query, limit, filter)
	if err == nil {
		return results, nil
	}
	log.Printf("native vector search failed, falling back to in-process similarity: %v", err)

	return s.searchFallback(ctx, query, limit, filter)
}

func (s *PostgresStore) searchNative(ctx context.Context, query []float32, limit int, filter domain.Filter) ([]domain.ContentChunk, error) {
	vec := pgvector.NewVector(query)

	sql := `
		SELECT c.id, c.content, c.metadata, 1 - (c.embedding <=> $1) AS score
		FROM rag_job_chunks c
		JOIN jobs j ON j.id = c.source_id
		WHERE j.status = 'active'
		  AND (j.expires_at IS NULL OR j.expires_at > now())
		  AND c.embedding IS NOT NULL`
	args := []any{vec}

	filterSQL, args := buildFilterSQL(filter, args)
	sql += filterSQL
	args = append(args, limit)
	sql += fmt.Sprintf(" ORDER BY c.embedding <=> $1 LIMIT $%d", len(args))

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]domain.ContentChunk, 0, limit)
	for rows.Next() {
		var c domain.ContentChunk
		var meta []byte
		if err := rows.Scan(&c.ID, &c.Content, &meta, &c.Score); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(meta, &c.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode chunk metadata: %w", err)
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

// buildFilterSQL translates a metadata filter into jsonb predicates.
// String values match either a scalar field or membership in an array
// field; list values require every element to be present.
func buildFilterSQL(filter domain.Filter, args []any) (string, []any) {
	if len(filter) == 0 {
		return "", args
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, key := range keys {
		val := filter[key]
		switch val.Kind() {
		case domain.KindString:
			str, _ := val.AsString()
			args = append(args, key)
			keyArg := len(args)
			args = append(args, str)
			valArg := len(args)
			sb.WriteString(fmt.Sprintf(
				" AND (c.metadata->>$%d::text = $%d OR (jsonb_typeof(c.metadata->$%d::text) = 'array' AND jsonb_exists(c.metadata->$%d::text, $%d)))",
				keyArg, valArg, keyArg, keyArg, valArg,
			))
		case domain.KindStringList:
			list, _ := val.AsStringList()
			for _, item := range list {
				args = append(args, key)
				keyArg := len(args)
				args = append(args, item)
				valArg := len(args)
				sb.WriteString(fmt.Sprintf(
					" AND (c.metadata->>$%d::text = $%d OR (jsonb_typeof(c.metadata->$%d::text) = 'array' AND jsonb_exists(c.metadata->$%d::text, $%d)))",
					keyArg, valArg, keyArg, keyArg, valArg,
				))
			}
		case domain.KindNumber:
			num, _ := val.AsNumber()
			args = append(args, key)
			keyArg := len(args)
			args = append(args, num)
			valArg := len(args)
			sb.WriteString(fmt.Sprintf(" AND (c.metadata->>$%d::text)::numeric = $%d", keyArg, valArg))
		}
	}
	return sb.String(), args
}

// searchFallback pulls a bounded set of active candidates and ranks them
// in process with the shared cosine definition.
func (s *PostgresStore) searchFallback(ctx context.Context, query []float32, limit int, filter domain.Filter) ([]domain.ContentChunk, error) {
	candidateLimit := limit * fallbackCandidateMultiplier
	if candidateLimit > fallbackMaxCandidates {
		candidateLimit = fallbackMaxCandidates
	}

	rows, err := s.pool.Query(ctx,
		`SELECT c.id, c.content, c.metadata, c.embedding
		 FROM rag_job_chunks c
		 JOIN jobs j ON j.id = c.source_id
		 WHERE j.status = 'active'
		   AND (j.expires_at IS NULL OR j.expires_at > now())
		   AND c.embedding IS NOT NULL
		 ORDER BY c.updated_at DESC
		 LIMIT $1`,
		candidateLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("fallback candidate query failed: %w", err)
	}
	defer rows.Close()

	candidates := make([]domain.ContentChunk, 0, candidateLimit)
	for rows.Next() {
		var c domain.ContentChunk
		var meta []byte
		var embedding pgvector.Vector
		if err := rows.Scan(&c.ID, &c.Content, &meta, &embedding); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(meta, &c.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode chunk metadata: %w", err)
		}
		c.Embedding = embedding.Slice()
		if !c.Metadata.Matches(filter) {
			continue
		}
		c.Score = domain.CosineSimilarity(query, c.Embedding)
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// DeleteDocuments removes the given ids; unknown ids are ignored.
func (s *PostgresStore) DeleteDocuments(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM rag_job_chunks WHERE id = ANY($1)`, ids)
	return err
}

// UpdateDocument merges a partial patch into an existing chunk. A
// nonexistent id is a no-op.
func (s *PostgresStore) UpdateDocument(ctx context.Context, id string, patch domain.ChunkPatch) error {
	var c domain.ContentChunk
	var meta []byte
	var embedding *pgvector.Vector
	err := s.pool.QueryRow(ctx,
		`SELECT id, content, metadata, embedding FROM rag_job_chunks WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Content, &meta, &embedding)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	if err := json.Unmarshal(meta, &c.Metadata); err != nil {
		return fmt.Errorf("failed to decode chunk metadata: %w", err)
	}
	if embedding != nil {
		c.Embedding = embedding.Slice()
	}

	mergePatch(&c, patch)
	return s.AddDocuments(ctx, []domain.ContentChunk{c})
}
