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

// CompanyIngester chunks and embeds company profiles.
type CompanyIngester struct {
	embedder llm.Embedder
	store    store.DocumentStore
}

func NewCompanyIngester(embedder llm.Embedder, st store.DocumentStore) *CompanyIngester {
	return &CompanyIngester{embedder: embedder, store: st}
}

func (ing *CompanyIngester) Chunks(company domain.CompanyProfile) []domain.ContentChunk {
	companyMeta := domain.Metadata{}
	if company.Industry != "" {
		companyMeta["industry"] = domain.String(company.Industry)
	}
	if company.Location != "" {
		companyMeta["location"] = domain.String(company.Location)
	}
	if len(company.Tags) > 0 {
		companyMeta["tags"] = domain.StringList(company.Tags...)
	}

	withType := func(chunkType string) domain.Metadata {
		return mergeMetadata(baseMetadata(company.ID, chunkType, company.PublishedAt), companyMeta)
	}

	var headerParts []string
	headerParts = append(headerParts, company.Name)
	if company.Industry != "" {
		headerParts = append(headerParts, "Industry: "+company.Industry)
	}
	if company.Location != "" {
		headerParts = append(headerParts, "Location: "+company.Location)
	}

	chunks := []domain.ContentChunk{{
		ID:       chunkID(domain.DomainCompany, company.ID, "header"),
		Content:  strings.Join(headerParts, "\n"),
		Metadata: withType("company_header"),
	}}

	chunks = append(chunks, windowChunks(domain.DomainCompany, company.ID, "company_description", company.Description, withType("company_description"))...)
	chunks = append(chunks, sectionChunk(domain.DomainCompany, company.ID, "culture", company.Culture, withType("company_culture"))...)
	chunks = append(chunks, sectionChunk(domain.DomainCompany, company.ID, "benefits", company.Benefits, withType("company_benefits"))...)

	return chunks
}

func (ing *CompanyIngester) Ingest(ctx context.Context, company domain.CompanyProfile) error {
	if company.ID == "" {
		return domain.ErrInvalidSource
	}
	return embedAndStore(ctx, ing.embedder, ing.store, company.ID, ing.Chunks(company))
}

func (ing *CompanyIngester) IngestPayload(ctx context.Context, payload []byte) error {
	var company domain.CompanyProfile
	if err := json.Unmarshal(payload, &company); err != nil {
		return fmt.Errorf("failed to decode company profile payload: %w", err)
	}
	return ing.Ingest(ctx, company)
}
