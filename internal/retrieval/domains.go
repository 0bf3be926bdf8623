package retrieval

import (
	"context"

	"github.com/workmesh/talentrag/internal/domain"
)

// JobSearchOptions are the filterable facets of job chunks. Zero-value
// fields are not filtered on.
type JobSearchOptions struct {
	Location       string
	EmploymentType string
	Company        string
	Tags           []string
}

func (o JobSearchOptions) Filter() domain.Filter {
	f := domain.Filter{}
	if o.Location != "" {
		f["location"] = domain.String(o.Location)
	}
	if o.EmploymentType != "" {
		f["employment_type"] = domain.String(o.EmploymentType)
	}
	if o.Company != "" {
		f["company"] = domain.String(o.Company)
	}
	if len(o.Tags) > 0 {
		f["tags"] = domain.StringList(o.Tags...)
	}
	return f
}

// CompanySearchOptions are the filterable facets of company chunks.
type CompanySearchOptions struct {
	Industry string
	Location string
	Tags     []string
}

func (o CompanySearchOptions) Filter() domain.Filter {
	f := domain.Filter{}
	if o.Industry != "" {
		f["industry"] = domain.String(o.Industry)
	}
	if o.Location != "" {
		f["location"] = domain.String(o.Location)
	}
	if len(o.Tags) > 0 {
		f["tags"] = domain.StringList(o.Tags...)
	}
	return f
}

// LearningSearchOptions are the filterable facets of learning chunks.
type LearningSearchOptions struct {
	Provider   string
	SkillLevel string
	Tags       []string
}

func (o LearningSearchOptions) Filter() domain.Filter {
	f := domain.Filter{}
	if o.Provider != "" {
		f["provider"] = domain.String(o.Provider)
	}
	if o.SkillLevel != "" {
		f["skill_level"] = domain.String(o.SkillLevel)
	}
	if len(o.Tags) > 0 {
		f["tags"] = domain.StringList(o.Tags...)
	}
	return f
}

// FAQSearchOptions are the filterable facets of FAQ chunks.
type FAQSearchOptions struct {
	Category string
	Tags     []string
}

func (o FAQSearchOptions) Filter() domain.Filter {
	f := domain.Filter{}
	if o.Category != "" {
		f["category"] = domain.String(o.Category)
	}
	if len(o.Tags) > 0 {
		f["tags"] = domain.StringList(o.Tags...)
	}
	return f
}

// JobRetriever scopes an underlying retriever to job chunks with typed
// filter options. It also implements Retriever itself, so it slots
// between a domain service and the hybrid retriever: typed callers use
// Search, the pipeline passes an already-translated filter through
// Retrieve. The remaining domain retrievers follow the same shape.
type JobRetriever struct {
	inner Retriever
}

func NewJobRetriever(inner Retriever) *JobRetriever {
	return &JobRetriever{inner: inner}
}

func (r *JobRetriever) Search(ctx context.Context, query string, limit int, opts JobSearchOptions) ([]domain.ContentChunk, error) {
	return r.inner.Retrieve(ctx, query, limit, opts.Filter())
}

func (r *JobRetriever) Retrieve(ctx context.Context, query string, limit int, filter domain.Filter) ([]domain.ContentChunk, error) {
	return r.inner.Retrieve(ctx, query, limit, filter)
}

type CompanyRetriever struct {
	inner Retriever
}

func NewCompanyRetriever(inner Retriever) *CompanyRetriever {
	return &CompanyRetriever{inner: inner}
}

func (r *CompanyRetriever) Search(ctx context.Context, query string, limit int, opts CompanySearchOptions) ([]domain.ContentChunk, error) {
	return r.inner.Retrieve(ctx, query, limit, opts.Filter())
}

func (r *CompanyRetriever) Retrieve(ctx context.Context, query string, limit int, filter domain.Filter) ([]domain.ContentChunk, error) {
	return r.inner.Retrieve(ctx, query, limit, filter)
}

type LearningRetriever struct {
	inner Retriever
}

func NewLearningRetriever(inner Retriever) *LearningRetriever {
	return &LearningRetriever{inner: inner}
}

func (r *LearningRetriever) Search(ctx context.Context, query string, limit int, opts LearningSearchOptions) ([]domain.ContentChunk, error) {
	return r.inner.Retrieve(ctx, query, limit, opts.Filter())
}

func (r *LearningRetriever) Retrieve(ctx context.Context, query string, limit int, filter domain.Filter) ([]domain.ContentChunk, error) {
	return r.inner.Retrieve(ctx, query, limit, filter)
}

type FAQRetriever struct {
	inner Retriever
}

func NewFAQRetriever(inner Retriever) *FAQRetriever {
	return &FAQRetriever{inner: inner}
}

func (r *FAQRetriever) Search(ctx context.Context, query string, limit int, opts FAQSearchOptions) ([]domain.ContentChunk, error) {
	return r.inner.Retrieve(ctx, query, limit, opts.Filter())
}

func (r *FAQRetriever) Retrieve(ctx context.Context, query string, limit int, filter domain.Filter) ([]domain.ContentChunk, error) {
	return r.inner.Retrieve(ctx, query, limit, filter)
}

var (
	_ Retriever = (*JobRetriever)(nil)
	_ Retriever = (*CompanyRetriever)(nil)
	_ Retriever = (*LearningRetriever)(nil)
	_ Retriever = (*FAQRetriever)(nil)
)
