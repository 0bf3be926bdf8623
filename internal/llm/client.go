// Package llm wraps the external embedding and text-completion services
// behind two small interfaces. Nothing outside this package knows which
// provider is in use, and both interfaces are treated as fallible:
// callers either degrade (query processing, ranking) or attach a
// deterministic fallback (embedding).
package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultEmbeddingModel is the OpenAI model used for generating embeddings
	DefaultEmbeddingModel = openai.SmallEmbedding3
	// DefaultChatModel is the OpenAI model used for completions
	DefaultChatModel = openai.GPT4oMini
	// DefaultEmbeddingDimensions is the fixed dimensionality every store
	// and fallback strategy in this module assumes
	DefaultEmbeddingDimensions = 768
	// DefaultCallTimeout bounds each external call so a hung provider
	// stalls at most one pipeline branch
	DefaultCallTimeout = 30 * time.Second
)

var (
	// ErrEmptyText is returned when text is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrWrongDimensions is returned when an embedding has unexpected dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	// ErrNoAPIKey is returned when the OpenAI API key is not set
	ErrNoAPIKey = errors.New("OPENAI_API_KEY environment variable not set")
	// ErrEmptyCompletion is returned when the provider returns no content
	ErrEmptyCompletion = errors.New("completion returned no content")
)

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CompletionRequest carries one prompt to the text-completion service.
type CompletionRequest struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

// Completer produces free text from a prompt. Output is untrusted and
// must be parsed/validated by the caller.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Config configures the OpenAI-backed client.
type Config struct {
	APIKey         string
	EmbeddingModel openai.EmbeddingModel
	ChatModel      string
	Dimensions     int
	CallTimeout    time.Duration
}

// OpenAIClient implements Embedder and Completer against the OpenAI API.
type OpenAIClient struct {
	api            *openai.Client
	embeddingModel openai.EmbeddingModel
	chatModel      string
	dimensions     int
	timeout        time.Duration
}

// NewOpenAIClient creates a client using defaults for anything unset.
func NewOpenAIClient(cfg Config) *OpenAIClient {
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = DefaultEmbeddingModel
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = DefaultChatModel
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultEmbeddingDimensions
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	return &OpenAIClient{
		api:            openai.NewClient(cfg.APIKey),
		embeddingModel: cfg.EmbeddingModel,
		chatModel:      cfg.ChatModel,
		dimensions:     cfg.Dimensions,
		timeout:        cfg.CallTimeout,
	}
}

// NewOpenAIClientFromEnv creates a client using the OPENAI_API_KEY
// environment variable.
func NewOpenAIClientFromEnv() (*OpenAIClient, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewOpenAIClient(Config{APIKey: apiKey}), nil
}

// Embed generates an embedding for the given text.
func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      c.embeddingModel,
		Dimensions: c.dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	embedding := resp.Data[0].Embedding
	if len(embedding) != c.dimensions {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrWrongDimensions, c.dimensions, len(embedding))
	}

	return embedding, nil
}

// Complete sends a single-turn prompt and returns the raw response text.
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.User,
	})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.chatModel,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create completion: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}

	return resp.Choices[0].Message.Content, nil
}
