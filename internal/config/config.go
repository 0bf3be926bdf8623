package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Debug bool `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	RedisURL    string `envconfig:"REDIS_URL"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	SentryDSN        string  `envconfig:"SENTRY_DSN"`
	SentryEnv        string  `envconfig:"SENTRY_ENVIRONMENT" default:"development"`
	TracesSampleRate float64 `envconfig:"SENTRY_TRACES_SAMPLE_RATE" default:"1.0"`

	// Retrieval tuning.
	SearchLimit      int  `envconfig:"SEARCH_LIMIT" default:"10"`
	TotalSearchLimit int  `envconfig:"TOTAL_SEARCH_LIMIT" default:"20"`
	ExpandQueries    bool `envconfig:"EXPAND_QUERIES" default:"false"`

	// Background ingestion.
	WorkerPollInterval time.Duration `envconfig:"WORKER_POLL_INTERVAL" default:"5s"`
	WorkerBatchSize    int           `envconfig:"WORKER_BATCH_SIZE" default:"50"`

	// Embedding cache.
	EmbeddingCacheTTL time.Duration `envconfig:"EMBEDDING_CACHE_TTL" default:"15m"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("TALENTRAG", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasRedis() bool {
	return c.RedisURL != ""
}
