// Package cli implements the talentrag command set: database
// migrations, the background ingest worker, enqueueing source objects,
// and running searches from the terminal.
package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/workmesh/talentrag/internal/cache"
	"github.com/workmesh/talentrag/internal/config"
	"github.com/workmesh/talentrag/internal/database"
	"github.com/workmesh/talentrag/internal/domain"
	"github.com/workmesh/talentrag/internal/ingest"
	"github.com/workmesh/talentrag/internal/jobs"
	"github.com/workmesh/talentrag/internal/llm"
	"github.com/workmesh/talentrag/internal/query"
	"github.com/workmesh/talentrag/internal/rag"
	"github.com/workmesh/talentrag/internal/ranking"
	"github.com/workmesh/talentrag/internal/retrieval"
	"github.com/workmesh/talentrag/internal/store"
	"github.com/workmesh/talentrag/internal/telemetry"
)

// App bundles the wired pipeline for the CLI commands. The job domain
// is backed by Postgres; the lower-volume domains run on the in-memory
// store and are rebuilt from the ingest queue on startup.
type App struct {
	Config       *config.Config
	Pool         *pgxpool.Pool
	Queue        *store.IngestQueue
	Ingesters    map[domain.SearchDomain]jobs.PayloadIngester
	Orchestrator *rag.Orchestrator

	shutdownTelemetry func()
}

// NewApp wires the full stack from configuration. The returned App must
// be closed to release the database pool and flush telemetry.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	shutdownTelemetry, err := telemetry.Init(telemetry.Config{
		DSN:              cfg.SentryDSN,
		Environment:      cfg.SentryEnv,
		TracesSampleRate: cfg.TracesSampleRate,
		Debug:            cfg.Debug,
	})
	if err != nil {
		log.Printf("telemetry init failed (continuing without tracing): %v", err)
		shutdownTelemetry = func() {}
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		shutdownTelemetry()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("connected to database")

	embedder := buildEmbedder(cfg)
	completer := buildCompleter(cfg)

	jobStore := store.NewPostgresStore(pool)
	stores := map[domain.SearchDomain]store.DocumentStore{
		domain.DomainJob:      jobStore,
		domain.DomainCompany:  store.NewMemoryStore(),
		domain.DomainLearning: store.NewMemoryStore(),
		domain.DomainFAQ:      store.NewMemoryStore(),
	}

	ingesters := map[domain.SearchDomain]jobs.PayloadIngester{
		domain.DomainJob:      ingest.NewJobIngester(embedder, stores[domain.DomainJob]),
		domain.DomainCompany:  ingest.NewCompanyIngester(embedder, stores[domain.DomainCompany]),
		domain.DomainLearning: ingest.NewLearningIngester(embedder, stores[domain.DomainLearning]),
		domain.DomainFAQ:      ingest.NewFAQIngester(embedder, stores[domain.DomainFAQ]),
	}

	rewriter := query.NewRewriter(completer)
	reranker := ranking.NewReranker(completer)
	fuser := ranking.NewFuser(ranking.DefaultFusionWeights())

	var expander *query.Expander
	if cfg.ExpandQueries {
		expander = query.NewExpander(completer)
	}

	hybridFor := func(d domain.SearchDomain) *retrieval.HybridRetriever {
		return retrieval.NewHybridRetriever(retrieval.NewVectorRetriever(embedder, stores[d]), nil)
	}
	retrievers := map[domain.SearchDomain]retrieval.Retriever{
		domain.DomainJob:      retrieval.NewJobRetriever(hybridFor(domain.DomainJob)),
		domain.DomainCompany:  retrieval.NewCompanyRetriever(hybridFor(domain.DomainCompany)),
		domain.DomainLearning: retrieval.NewLearningRetriever(hybridFor(domain.DomainLearning)),
		domain.DomainFAQ:      retrieval.NewFAQRetriever(hybridFor(domain.DomainFAQ)),
	}

	services := make([]*rag.DomainService, 0, len(retrievers))
	for d, retriever := range retrievers {
		svc, err := rag.NewDomainService(d, retriever, rewriter, expander, reranker, fuser)
		if err != nil {
			pool.Close()
			shutdownTelemetry()
			return nil, err
		}
		services = append(services, svc)
	}

	return &App{
		Config:            cfg,
		Pool:              pool,
		Queue:             store.NewIngestQueue(pool),
		Ingesters:         ingesters,
		Orchestrator:      rag.NewOrchestrator(services...),
		shutdownTelemetry: shutdownTelemetry,
	}, nil
}

// Close releases the database pool and flushes pending telemetry.
func (a *App) Close() {
	a.Pool.Close()
	a.shutdownTelemetry()
}

// buildEmbedder assembles the embedding chain: OpenAI when configured,
// the deterministic hash fallback behind it, and a Redis read-through
// cache in front when Redis is configured.
func buildEmbedder(cfg *config.Config) llm.Embedder {
	var primary llm.Embedder
	if cfg.HasOpenAI() {
		primary = llm.NewOpenAIClient(llm.Config{APIKey: cfg.OpenAIAPIKey})
	} else {
		log.Println("no OpenAI API key configured, using deterministic fallback embeddings")
	}

	var embedder llm.Embedder = llm.NewFallbackEmbedder(primary, llm.DefaultEmbeddingDimensions)
	if cfg.HasRedis() {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Printf("invalid redis URL, embedding cache disabled: %v", err)
			return embedder
		}
		embedder = cache.NewEmbeddingCache(embedder, redis.NewClient(opts), cfg.EmbeddingCacheTTL)
	}
	return embedder
}

func buildCompleter(cfg *config.Config) llm.Completer {
	if !cfg.HasOpenAI() {
		return nil
	}
	return llm.NewOpenAIClient(llm.Config{APIKey: cfg.OpenAIAPIKey})
}
