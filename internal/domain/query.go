package domain

// SearchDomain tags the content domain a store, retriever, or service
// operates on. One store instance exists per domain and stores are never
// shared, so chunk ids only need to be unique within a domain; ingestion
// additionally namespaces ids by domain so cross-domain merges stay
// unambiguous.
type SearchDomain string

const (
	DomainJob      SearchDomain = "job"
	DomainCompany  SearchDomain = "company"
	DomainLearning SearchDomain = "learning_resource"
	DomainFAQ      SearchDomain = "faq"
)

// IsValidSearchDomain checks if a SearchDomain is one of the known tags.
func IsValidSearchDomain(d SearchDomain) bool {
	switch d {
	case DomainJob, DomainCompany, DomainLearning, DomainFAQ:
		return true
	}
	return false
}

// ConversationTurn is one role/text turn of prior conversation supplied
// as context for query rewriting.
type ConversationTurn struct {
	Role    string
	Content string
}

// RetrieveOptions parameterizes one retrieval call. It lives for the
// duration of that call only and has no persisted identity.
type RetrieveOptions struct {
	Limit        int
	Filter       Filter
	Conversation []ConversationTurn
	DomainHint   string
}
