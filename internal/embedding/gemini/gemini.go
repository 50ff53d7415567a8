// Package gemini embeds text with the Gemini API via google.golang.org/genai.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"aigist/internal/domain"
	"aigist/internal/embedding"
)

// Config configures the Gemini embeddings client.
type Config struct {
	APIKey            string
	Model             string
	Dimension         int
	MaxBatchSize      int
	Timeout           time.Duration
	RequestsPerSecond float64
	Retry             embedding.RetryPolicy
}

// Client implements domain.Embedder. Batches are split at MaxBatchSize and
// concatenated back in input order; transient upstream failures are retried
// per the configured policy and surface as ErrEmbeddingUnavailable once the
// ceiling is exhausted.
type Client struct {
	client    *genai.Client
	model     string
	dimension int
	maxBatch  int
	timeout   time.Duration
	limiter   *rate.Limiter
	retry     embedding.RetryPolicy
	logger    log.Logger
}

func NewClient(ctx context.Context, cfg Config, logger log.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("missing Gemini API key")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-embedding-001"
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = 1536
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = 64
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = embedding.DefaultRetryPolicy()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	logger.Debug().
		Str("model", cfg.Model).
		Int("dimension", cfg.Dimension).
		Int("max_batch", cfg.MaxBatchSize).
		Msg("gemini embedding client initialized")

	return &Client{
		client:    client,
		model:     cfg.Model,
		dimension: cfg.Dimension,
		maxBatch:  cfg.MaxBatchSize,
		timeout:   cfg.Timeout,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		retry:     cfg.Retry,
		logger:    logger,
	}, nil
}

func (c *Client) Dimension() int { return c.dimension }

// Embed embeds a single text, the query-time path.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in order, one vector per input.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.maxBatch {
		end := start + c.maxBatch
		if end > len(texts) {
			end = len(texts)
		}
		vectors, err := c.embedSubBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}
	return out, nil
}

func (c *Client) embedSubBatch(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}
	outputDim := int32(c.dimension)
	embedConfig := &genai.EmbedContentConfig{OutputDimensionality: &outputDim}

	start := time.Now()
	var vectors [][]float32
	err := c.retry.Do(ctx, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		result, err := c.client.Models.EmbedContent(callCtx, c.model, contents, embedConfig)
		if err != nil {
			c.logger.Warn().Err(err).Int("batch", len(texts)).Msg("embedding call failed")
			return err
		}
		if result == nil || len(result.Embeddings) != len(texts) {
			got := 0
			if result != nil {
				got = len(result.Embeddings)
			}
			return fmt.Errorf("expected %d embeddings, got %d", len(texts), got)
		}
		vectors = make([][]float32, len(texts))
		for i, emb := range result.Embeddings {
			if emb == nil || len(emb.Values) != c.dimension {
				got := 0
				if emb != nil {
					got = len(emb.Values)
				}
				return fmt.Errorf("%w: embedding %d has %d dimensions, want %d",
					domain.ErrDimensionMismatch, i, got, c.dimension)
			}
			vectors[i] = emb.Values
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrDimensionMismatch) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}

	c.logger.Debug().
		Int("batch", len(texts)).
		Dur("duration", time.Since(start)).
		Msg("embedded batch")
	return vectors, nil
}
